package csvio

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ElectionDataLab/precinctcore"
)

func TestNormalizeCandidate(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Clinton, Hillary", "hillary clinton"},
		{"Trump, Donald J.", "donald j. trump"},
		{"Cruz, Ted (R)", "ted cruz"},
		{"Johnson, Gary E. II", "gary ii johnson"},
		{"Samuel J.", "samuel j"},
		{"WRITE-IN", "write-in"},
		{"Write-Ins", "write-in"},
		{"write in", "write-in"},
		{"Smith (write-in)", "smith"},
		{"Trump / Pence", "trump/pence"},
		{"  Stein,   Jill ", "jill stein"},
		{", I", "i"},
		{"NA", "NA"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCandidate(tt.name); got != tt.want {
			t.Errorf("NormalizeCandidate(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestContainsTotal(t *testing.T) {
	tests := []struct {
		candidate string
		want      bool
	}{
		{"Total", true},
		{"GRAND TOTALS", true},
		{"Clinton, Hillary", false},
		{"NA", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := containsTotal(tt.candidate); got != tt.want {
			t.Errorf("containsTotal(%q) = %v, want %v", tt.candidate, got, tt.want)
		}
	}
}

func TestOpenElectionsTables(t *testing.T) {
	root := t.TempDir()
	content := "county,precinct,office,district,candidate,party,votes,notes\n" +
		"Dane,WARD 1,President,statewide,\"Clinton, Hillary\",DEM,\"1,377\",x\n" +
		"Dane,WARD 1,President,statewide,Total,,2000,x\n" +
		"Dane,WARD 1,President,statewide,WRITE-IN,,12,x\n"
	if err := os.MkdirAll(filepath.Join(root, "2016"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "2016", "20161108__wi__general__precinct.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Missing the votes column, skipped with a warning.
	if err := os.WriteFile(filepath.Join(root, "2016", "20161108__mn__general__precinct.csv"),
		[]byte("county,precinct,office,district,candidate,party\nHennepin,P-1,President,statewide,X,DEM\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	source := NewOpenElectionsSource(&precinctcore.DataSource{ID: "openelections", Root: root}, nil)
	tables, err := source.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables() error = %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("Tables() returned %d tables, want 1", len(tables))
	}

	table := tables[0]
	wantHeader := []string{"county", "precinct", "office", "district", "candidate", "party", "votes", "path"}
	if !reflect.DeepEqual(table.Header, wantHeader) {
		t.Errorf("Header = %v, want %v", table.Header, wantHeader)
	}
	wantRows := [][]string{
		{"Dane", "WARD 1", "President", "statewide", "hillary clinton", "DEM", "1377", "20161108__wi__general__precinct.csv"},
		{"Dane", "WARD 1", "President", "statewide", "write-in", "", "12", "20161108__wi__general__precinct.csv"},
	}
	if !reflect.DeepEqual(table.Rows, wantRows) {
		t.Errorf("Rows = %v, want %v", table.Rows, wantRows)
	}
}

func TestTallyByCandidateOffice(t *testing.T) {
	tables := []*precinctcore.RawTable{
		{
			ID:     "a",
			Header: []string{"office", "candidate", "votes"},
			Rows: [][]string{
				{"President", "hillary clinton", "10"},
				{"President", "donald trump", "7"},
				{"President", "hillary clinton", "5"},
				{"US Senate", "russ feingold", "9"},
				{"President", "donald trump", "bad"},
			},
		},
		{
			ID:     "b",
			Header: []string{"office", "candidate", "votes"},
			Rows: [][]string{
				{"President", "donald trump", "3"},
			},
		},
	}

	got := TallyByCandidateOffice(tables)
	want := []CandidateTally{
		{Office: "President", Candidate: "donald trump", Votes: 10},
		{Office: "President", Candidate: "hillary clinton", Votes: 15},
		{Office: "US Senate", Candidate: "russ feingold", Votes: 9},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TallyByCandidateOffice() = %v, want %v", got, want)
	}
}
