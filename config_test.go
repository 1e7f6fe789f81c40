package precinctcore

import (
	"os"
	"reflect"
	"testing"
)

func TestLoadPipelineConfig(t *testing.T) {
	tests := []struct {
		name     string
		yamlData string
		expected *PipelineConfig
		wantErr  bool
	}{
		{
			name: "full config",
			yamlData: `
version: "1"
mode: lenient
workers: 4
metadata_dir: metadata
output_dir: release
sources:
  - id: state-files
    type: state_dir
    root: data
    year: 2016
  - id: openelections-wi
    type: openelections
    root: openelections/wi
`,
			expected: &PipelineConfig{
				Version:     "1",
				Mode:        ModeLenient,
				Workers:     4,
				MetadataDir: "metadata",
				OutputDir:   "release",
				Sources: []DataSource{
					{ID: "state-files", Type: SourceTypeStateDir, Root: "data", Year: 2016},
					{ID: "openelections-wi", Type: SourceTypeOpenElections, Root: "openelections/wi"},
				},
			},
		},
		{
			name: "minimal config",
			yamlData: `
version: "1"
sources:
  - id: state-files
    type: state_dir
    root: .
`,
			expected: &PipelineConfig{
				Version: "1",
				Sources: []DataSource{
					{ID: "state-files", Type: SourceTypeStateDir, Root: "."},
				},
			},
		},
		{
			name: "unknown mode",
			yamlData: `
version: "1"
mode: paranoid
sources:
  - id: state-files
    type: state_dir
    root: .
`,
			wantErr: true,
		},
		{
			name: "source without id",
			yamlData: `
version: "1"
sources:
  - type: state_dir
    root: .
`,
			wantErr: true,
		},
		{
			name: "source without root",
			yamlData: `
version: "1"
sources:
  - id: state-files
    type: state_dir
`,
			wantErr: true,
		},
		{
			name:     "malformed yaml",
			yamlData: "sources: [",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile, err := os.CreateTemp("", "precinctcore-test-config-*.yml")
			if err != nil {
				t.Fatalf("failed to create temp file: %v", err)
			}
			defer os.Remove(tmpFile.Name())
			defer tmpFile.Close()

			if _, err := tmpFile.WriteString(tt.yamlData); err != nil {
				t.Fatalf("failed to write temp file: %v", err)
			}
			tmpFile.Close()

			result, err := LoadPipelineConfig(tmpFile.Name())

			if tt.wantErr {
				if err == nil {
					t.Error("LoadPipelineConfig() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadPipelineConfig() unexpected error: %v", err)
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("LoadPipelineConfig() = %+v, expected %+v", result, tt.expected)
			}
		})
	}
}

func TestLoadPipelineConfigMissingFile(t *testing.T) {
	if _, err := LoadPipelineConfig("no-such-config.yml"); err == nil {
		t.Error("LoadPipelineConfig() expected error for missing file")
	}
}
