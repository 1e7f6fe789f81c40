// Copyright 2025 The Precinct Data Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package precinctcore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SourceType string

const (
	SourceTypeStateDir      SourceType = "state_dir"
	SourceTypeOpenElections SourceType = "openelections"
)

// DataSource locates one collection of raw returns tables.
type DataSource struct {
	ID   string     `yaml:"id"`
	Type SourceType `yaml:"type"`

	// Root is the directory the source reads from. For state_dir sources
	// it holds one directory per state; for openelections sources it is
	// searched recursively for returns CSVs.
	Root string `yaml:"root"`
	Year int    `yaml:"year,omitempty"`
}

// PipelineConfig is the on-disk YAML configuration of a checking or
// release run.
type PipelineConfig struct {
	Version     string       `yaml:"version"`
	Mode        Mode         `yaml:"mode,omitempty"`
	Workers     int          `yaml:"workers,omitempty"`
	MetadataDir string       `yaml:"metadata_dir,omitempty"`
	OutputDir   string       `yaml:"output_dir,omitempty"`
	Sources     []DataSource `yaml:"sources"`
}

func LoadPipelineConfig(fileName string) (*PipelineConfig, error) {
	file, err := os.Open(fileName)
	defer file.Close()
	if err != nil {
		return nil, err
	}

	var cfg PipelineConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if cfg.Mode != "" {
		if _, err := ParseMode(string(cfg.Mode)); err != nil {
			return nil, err
		}
	}
	for i, source := range cfg.Sources {
		if source.ID == "" {
			return nil, fmt.Errorf("source at position %d has no id", i)
		}
		if source.Root == "" {
			return nil, fmt.Errorf("source %q has no root directory", source.ID)
		}
	}
	return &cfg, nil
}
