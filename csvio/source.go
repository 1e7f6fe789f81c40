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

package csvio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ElectionDataLab/precinctcore"
)

// Source yields raw returns tables from some collection on disk.
type Source interface {
	ID() string
	Tables(ctx context.Context) ([]*precinctcore.RawTable, error)
}

// NewSource builds a source from its configuration.
func NewSource(dataSource *precinctcore.DataSource, logger *slog.Logger) (Source, error) {
	switch dataSource.Type {
	case precinctcore.SourceTypeStateDir:
		return NewStateDirSource(dataSource, logger), nil
	case precinctcore.SourceTypeOpenElections:
		return NewOpenElectionsSource(dataSource, logger), nil
	default:
		return nil, fmt.Errorf("unsupported data source type: %s", dataSource.Type)
	}
}

// StateDirSource reads final returns from per-state directories laid
// out as <root>/<ST>/final/<year>-<st>-precinct.csv.
type StateDirSource struct {
	config *precinctcore.DataSource
	logger *slog.Logger
}

func NewStateDirSource(dataSource *precinctcore.DataSource, logger *slog.Logger) *StateDirSource {
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &StateDirSource{
		config: dataSource,
		logger: logger,
	}
}

func (s *StateDirSource) ID() string {
	return s.config.ID
}

// Tables reads every discovered state file. A state that cannot be
// read is logged and dropped so one bad file does not sink the run.
func (s *StateDirSource) Tables(ctx context.Context) ([]*precinctcore.RawTable, error) {
	startTime := time.Now()

	files, err := DiscoverStateFiles(s.config.Root, s.config.Year)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Warn("no state files found", "source_id", s.config.ID, "root", s.config.Root)
	}

	var tables []*precinctcore.RawTable
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := ReadFile(file.Path)
		if err != nil {
			s.logger.Warn("skipping unreadable state file",
				"source_id", s.config.ID,
				"state", file.State,
				"path", file.Path,
				"error", err.Error())
			continue
		}
		s.logger.Debug("read state file",
			"state", file.State,
			"rows", table.NumRows())
		tables = append(tables, table)
	}

	s.logger.Debug("collected state tables",
		"source_id", s.config.ID,
		"tables", len(tables),
		"elapsed_ms", time.Since(startTime).Milliseconds())
	return tables, nil
}
