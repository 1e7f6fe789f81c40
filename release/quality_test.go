package release

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ElectionDataLab/precinctcore"
)

func inspectionTable(t *testing.T) *precinctcore.Table {
	t.Helper()
	table, err := precinctcore.NewTable("precinct-returns", []precinctcore.Column{
		{
			Spec: precinctcore.VariableSpec{Name: "office", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("US Senate"),
				precinctcore.Text("Total Votes Cast"),
				precinctcore.Text("US Senate"),
				precinctcore.Text("US Senate"),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "candidate", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("russ feingold"),
				precinctcore.Null(),
				precinctcore.Null(),
				precinctcore.Text("russ feingold"),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "writein", Type: precinctcore.TypeBoolean},
			Values: []precinctcore.Value{
				precinctcore.Bool(false),
				precinctcore.Bool(false),
				precinctcore.Bool(true),
				precinctcore.Bool(false),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "party", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("democrat"),
				precinctcore.Text("republican"),
				precinctcore.Text("republican"),
				precinctcore.Text("democrat"),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "votes", Type: precinctcore.TypeInteger},
			Values: []precinctcore.Value{
				precinctcore.Int(10),
				precinctcore.Null(),
				precinctcore.Int(3),
				precinctcore.Int(10),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "dataverse", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("senate"),
				precinctcore.Text("governor"),
				precinctcore.Text("senate"),
				precinctcore.Text("senate"),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestSuspectValues(t *testing.T) {
	findings := SuspectValues(inspectionTable(t))

	var patterns []string
	for _, f := range findings {
		if f.Column != "office" {
			t.Errorf("unexpected column %q in %v", f.Column, f)
		}
		if !strings.Contains(f.Detail, "Total Votes Cast") {
			t.Errorf("finding does not name the value: %v", f)
		}
		patterns = append(patterns, f.Detail[:strings.Index(f.Detail, ":")])
	}
	// "Total Votes Cast" matches three of the patterns.
	if len(findings) != 3 {
		t.Fatalf("SuspectValues() returned %d findings, want 3: %v", len(findings), findings)
	}
	want := []string{`matched "total"`, `matched "cast"`, `matched "votes"`}
	if !reflect.DeepEqual(patterns, want) {
		t.Errorf("patterns = %v, want %v", patterns, want)
	}
}

func TestDuplicateRows(t *testing.T) {
	table := inspectionTable(t)

	findings := DuplicateRows(table)
	if len(findings) != 1 {
		t.Fatalf("DuplicateRows() = %v, want one finding", findings)
	}
	if findings[0].Detail != "1 duplicate rows" {
		t.Errorf("Detail = %q", findings[0].Detail)
	}
}

func TestNullCandidates(t *testing.T) {
	findings := NullCandidates(inspectionTable(t))
	if len(findings) != 1 {
		t.Fatalf("NullCandidates() = %v, want one finding", findings)
	}
	// Row 1 has a null candidate and writein false; row 2 is a
	// write-in and does not count.
	if findings[0].Detail != "1 rows with null candidate outside write-ins" {
		t.Errorf("Detail = %q", findings[0].Detail)
	}
}

func TestPartyFindings(t *testing.T) {
	findings := PartyFindings(inspectionTable(t))
	if len(findings) != 2 {
		t.Fatalf("PartyFindings() = %v, want two findings", findings)
	}
	if findings[0].Check != "missing_party" || !strings.Contains(findings[0].Detail, "democratic") {
		t.Errorf("findings[0] = %v", findings[0])
	}
	if findings[1].Check != "party_spelling" {
		t.Errorf("findings[1] = %v", findings[1])
	}
}

func TestVoteFindings(t *testing.T) {
	findings := VoteFindings(inspectionTable(t))
	if len(findings) != 1 || findings[0].Detail != "1 rows without a usable vote count" {
		t.Errorf("VoteFindings() = %v", findings)
	}
}

func TestDataverseFindings(t *testing.T) {
	findings := DataverseFindings(inspectionTable(t))
	if len(findings) != 1 {
		t.Fatalf("DataverseFindings() = %v, want one finding", findings)
	}
	if findings[0].Detail != "unexpected values: governor" {
		t.Errorf("Detail = %q", findings[0].Detail)
	}
}

func TestInspectCleanTable(t *testing.T) {
	table, err := precinctcore.NewTable("clean", []precinctcore.Column{
		{
			Spec: precinctcore.VariableSpec{Name: "candidate", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("russ feingold"),
				precinctcore.Text("ron johnson"),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "writein", Type: precinctcore.TypeBoolean},
			Values: []precinctcore.Value{
				precinctcore.Bool(false),
				precinctcore.Bool(false),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "party", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("democratic"),
				precinctcore.Text("republican"),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "votes", Type: precinctcore.TypeInteger},
			Values: []precinctcore.Value{
				precinctcore.Int(30),
				precinctcore.Int(28),
			},
		},
		{
			Spec: precinctcore.VariableSpec{Name: "dataverse", Type: precinctcore.TypeString},
			Values: []precinctcore.Value{
				precinctcore.Text("senate"),
				precinctcore.Text("senate"),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if findings := Inspect(table); len(findings) != 0 {
		t.Errorf("Inspect() = %v, want none", findings)
	}
}

func TestUniqueValues(t *testing.T) {
	got := UniqueValues(inspectionTable(t))
	if got["party"] != "democrat; republican" {
		t.Errorf(`UniqueValues()["party"] = %q`, got["party"])
	}
	if got["dataverse"] != "governor; senate" {
		t.Errorf(`UniqueValues()["dataverse"] = %q`, got["dataverse"])
	}
	if got["writein"] != "FALSE; TRUE" {
		t.Errorf(`UniqueValues()["writein"] = %q`, got["writein"])
	}
	if _, ok := got["state"]; ok {
		t.Error("UniqueValues() reported a column the table does not have")
	}
}
