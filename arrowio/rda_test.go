package arrowio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRscript puts a shell stub named Rscript on PATH that records
// its arguments.
func fakeRscript(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Rscript")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	return dir
}

func TestWriteRda(t *testing.T) {
	dir := fakeRscript(t, `echo "$@" > "${0%/*}/args.txt"`+"\n")

	err := WriteRda(context.Background(),
		"scripts/feather_to_rda.R",
		"2016-precinct-senate.feather",
		"precinct_senate_2016",
		"2016-precinct-senate.rda")
	if err != nil {
		t.Fatalf("WriteRda() error = %v", err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "scripts/feather_to_rda.R 2016-precinct-senate.feather precinct_senate_2016 2016-precinct-senate.rda"
	if got := strings.TrimSpace(string(args)); got != want {
		t.Errorf("Rscript args = %q, want %q", got, want)
	}
}

func TestWriteRdaMissingRuntime(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := WriteRda(context.Background(), "s.R", "in.feather", "x", "out.rda")
	if !errors.Is(err, ErrRscriptMissing) {
		t.Errorf("WriteRda() error = %v, want ErrRscriptMissing", err)
	}
}

func TestWriteRdaFailure(t *testing.T) {
	fakeRscript(t, "echo \"could not open feather file\" >&2\nexit 1\n")

	err := WriteRda(context.Background(), "s.R", "in.feather", "x", "out.rda")
	if err == nil {
		t.Fatal("WriteRda() expected error")
	}
	if !strings.Contains(err.Error(), "could not open feather file") {
		t.Errorf("WriteRda() error = %v, want R output included", err)
	}
}
