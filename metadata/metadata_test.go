package metadata

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadDatasetMetaInherits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2016-precinct-senate.yaml"), `
dataverse: senate
title: Senate Returns
license: Dataset-specific license
inherits:
  - base.yaml
variables: [year, votes]
`)
	writeFile(t, filepath.Join(dir, "common", "base.yaml"), `
license: Shared license
citation: Shared citation
authors:
  - Election Data Lab
`)

	meta, err := LoadDatasetMeta(filepath.Join(dir, "2016-precinct-senate.yaml"))
	if err != nil {
		t.Fatalf("LoadDatasetMeta() error = %v", err)
	}

	if meta.Name != "2016-precinct-senate" {
		t.Errorf("Name = %q", meta.Name)
	}
	if meta.License != "Dataset-specific license" {
		t.Errorf("License = %q, dataset keys must win over inherited ones", meta.License)
	}
	if meta.Citation != "Shared citation" {
		t.Errorf("Citation = %q, inherited keys must fill gaps", meta.Citation)
	}
	if !reflect.DeepEqual(meta.Authors, []string{"Election Data Lab"}) {
		t.Errorf("Authors = %v", meta.Authors)
	}
	if meta.Version == "" {
		t.Error("Version not stamped with today's date")
	}
	if !reflect.DeepEqual(meta.Variables, []string{"year", "votes"}) {
		t.Errorf("Variables = %v", meta.Variables)
	}
}

func TestLoadDatasetMetaInheritChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "d.yaml"), `
dataverse: local
title: T
inherits: [first.yaml, second.yaml]
`)
	writeFile(t, filepath.Join(dir, "common", "first.yaml"), `contact: first@example.org`)
	writeFile(t, filepath.Join(dir, "common", "second.yaml"), `
contact: second@example.org
license: CC0 1.0
`)

	meta, err := LoadDatasetMeta(filepath.Join(dir, "d.yaml"))
	if err != nil {
		t.Fatalf("LoadDatasetMeta() error = %v", err)
	}
	// Earlier files in the chain win over later ones.
	if meta.Contact != "first@example.org" {
		t.Errorf("Contact = %q", meta.Contact)
	}
	if meta.License != "CC0 1.0" {
		t.Errorf("License = %q", meta.License)
	}
}

func TestLoadDatasetMetaMissingInherited(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "d.yaml"), `
dataverse: local
inherits: [gone.yaml]
`)
	if _, err := LoadDatasetMeta(filepath.Join(dir, "d.yaml")); err == nil {
		t.Error("LoadDatasetMeta() expected error for missing inherited file")
	}
}

// The shipped metadata tree must resolve for every release dataset.
func TestLoadShippedMetadata(t *testing.T) {
	for _, dataverse := range []string{"president", "senate", "house", "state", "local"} {
		t.Run(dataverse, func(t *testing.T) {
			meta, err := Load(".", 2016, dataverse)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if meta.Dataset.Dataverse != dataverse {
				t.Errorf("Dataset.Dataverse = %q", meta.Dataset.Dataverse)
			}
			if meta.Dataset.License == "" || meta.Dataset.Citation == "" {
				t.Error("shared metadata not inherited")
			}
			// Released datasets carry the registry minus the dataverse column.
			if meta.Schema.Len() != 37 {
				t.Errorf("Schema.Len() = %d, want 37", meta.Schema.Len())
			}
			if _, ok := meta.Schema.Lookup("dataverse"); ok {
				t.Error("dataverse column must not be documented in releases")
			}
			if meta.Dataverse.Alias == "" {
				t.Error("dataverse alias missing")
			}
			if len(meta.Coverage) == 0 {
				t.Error("coverage empty")
			}
		})
	}
}

func TestShippedVariableNotes(t *testing.T) {
	meta, err := Load(".", 2016, "president")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	district, ok := meta.Schema.Lookup("district")
	if !ok {
		t.Fatal("district not documented")
	}
	if district.Note != "Always statewide for presidential returns." {
		t.Errorf("district note = %q", district.Note)
	}
}
