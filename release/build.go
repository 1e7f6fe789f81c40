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

package release

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ElectionDataLab/precinctcore"
	"github.com/ElectionDataLab/precinctcore/arrowio"
	"github.com/ElectionDataLab/precinctcore/codebook"
	"github.com/ElectionDataLab/precinctcore/csvio"
	"github.com/ElectionDataLab/precinctcore/metadata"
)

// Options configures a release build.
type Options struct {
	Year        int
	Mode        precinctcore.Mode
	Workers     int
	MetadataDir string
	OutputDir   string

	// RdaScript is the R script that converts Arrow files to rda.
	RdaScript string
	SkipRda   bool

	// Dataverses lists the datasets to build. Empty means all of them.
	Dataverses []string
}

// Builder runs the release pipeline: check, assemble, split per
// dataverse and write each dataset with its documentation.
type Builder struct {
	options Options
	logger  *slog.Logger
}

func NewBuilder(options Options, logger *slog.Logger) *Builder {
	if options.Mode == "" {
		options.Mode = precinctcore.ModeStrict
	}
	if len(options.Dataverses) == 0 {
		options.Dataverses = precinctcore.DataverseShortNames
	}
	if options.RdaScript == "" {
		options.RdaScript = filepath.Join("scripts", "feather_to_rda.R")
	}
	if logger == nil {
		// noop logger by default
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		options: options,
		logger:  logger,
	}
}

// Build checks every table the sources yield, assembles the returns
// that pass into one table, and writes a release bundle per dataverse.
// The returned report covers the checking stage and is produced even
// when the build stops afterwards.
func (b *Builder) Build(ctx context.Context, sources []csvio.Source) (*precinctcore.Report, error) {
	startTime := time.Now()

	registry, err := precinctcore.LoadSchemaFile(filepath.Join(b.options.MetadataDir, "variables.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load variable registry: %w", err)
	}

	var tables []*precinctcore.RawTable
	for _, source := range sources {
		collected, err := source.Tables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to collect tables from source %q: %w", source.ID(), err)
		}
		tables = append(tables, collected...)
	}
	if len(tables) == 0 {
		return nil, errors.New("no returns tables found")
	}

	runner := precinctcore.NewRunner(registry, precinctcore.RunnerOptions{
		Mode:    b.options.Mode,
		Workers: b.options.Workers,
	}, b.logger)
	results := runner.ValidateTables(tables)

	report := precinctcore.Summarize(results, b.options.Mode)
	report.RunID = uuid.NewString()
	report.GeneratedAt = time.Now().UTC()

	assembled, skipped := precinctcore.Assemble("precinct-returns", results, registry)
	for _, skip := range skipped {
		b.logger.Warn("table excluded from release", "table_id", skip.TableID, "reason", skip.Reason)
	}
	if assembled.NumRows() == 0 {
		return report, errors.New("no rows passed checks")
	}

	SortRows(assembled)
	for _, finding := range Inspect(assembled) {
		b.logger.Warn("pre-release finding",
			"check", finding.Check,
			"column", finding.Column,
			"detail", finding.Detail)
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, dataverse := range b.options.Dataverses {
		group.Go(func() error {
			return b.writeDataset(ctx, assembled, dataverse)
		})
	}
	if err := group.Wait(); err != nil {
		return report, err
	}

	b.logger.Debug("release complete",
		"datasets", len(b.options.Dataverses),
		"rows", assembled.NumRows(),
		"elapsed_ms", time.Since(startTime).Milliseconds())
	return report, nil
}

// writeDataset writes one dataverse's dataset directory: the data as
// CSV and Arrow, the rda when R is available, the frequency table,
// the documentation set and a zip of the distributable files.
func (b *Builder) writeDataset(ctx context.Context, assembled *precinctcore.Table, dataverse string) error {
	meta, err := metadata.Load(b.options.MetadataDir, b.options.Year, dataverse)
	if err != nil {
		return fmt.Errorf("failed to load metadata for %q: %w", dataverse, err)
	}

	subset, err := Subset(assembled, dataverse)
	if err != nil {
		return err
	}
	subset.ID = meta.Dataset.Name
	if err := codebook.CheckDocumentation(subset.Names(), meta.Schema); err != nil {
		return fmt.Errorf("dataset %s: %w", meta.Dataset.Name, err)
	}

	name := meta.Dataset.Name
	dir := filepath.Join(b.options.OutputDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	csvPath := filepath.Join(dir, name+".csv")
	if err := csvio.WriteFile(csvPath, subset); err != nil {
		return fmt.Errorf("failed to write %s: %w", csvPath, err)
	}

	featherPath := filepath.Join(dir, name+".feather")
	if err := arrowio.WriteFile(featherPath, subset); err != nil {
		return fmt.Errorf("failed to write %s: %w", featherPath, err)
	}

	frequenciesPath := filepath.Join(dir, "frequencies-"+name+".csv")
	if err := writeFrequencies(frequenciesPath, subset); err != nil {
		return err
	}

	book := codebook.Build(meta)
	docPaths, err := WriteDocs(dir, name, book)
	if err != nil {
		return err
	}

	if !b.options.SkipRda {
		rdaPath := filepath.Join(dir, name+".rda")
		err := arrowio.WriteRda(ctx, b.options.RdaScript, featherPath, book.RAlias(), rdaPath)
		switch {
		case errors.Is(err, arrowio.ErrRscriptMissing):
			b.logger.Warn("skipping rda output", "dataset", name, "error", err.Error())
		case err != nil:
			return err
		}
	}

	zipPath := filepath.Join(dir, name+".zip")
	if err := zipFiles(zipPath, append([]string{csvPath, frequenciesPath}, docPaths...)); err != nil {
		return err
	}

	b.logger.Debug("wrote dataset",
		"dataset", name,
		"rows", subset.NumRows(),
		"dir", dir)
	return nil
}

// WriteDocs renders the documentation set into dir and returns the
// paths of the Markdown files, the ones that travel inside the zip.
func WriteDocs(dir, name string, book *codebook.Codebook) ([]string, error) {
	var markdown []string
	docs := []struct {
		fileName string
		render   func() (string, error)
	}{
		{"codebook-" + name + ".md", book.Markdown},
		{"release-notes-" + name + ".md", book.ReleaseNotes},
		{"coverage-notes-" + name + ".md", book.CoverageNotes},
		{book.RAlias() + ".Rd", book.RdDoc},
	}
	for _, doc := range docs {
		text, err := doc.render()
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, doc.fileName)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if strings.HasSuffix(doc.fileName, ".md") {
			markdown = append(markdown, path)
		}
	}

	data, err := book.JSON()
	if err != nil {
		return nil, err
	}
	jsonPath := filepath.Join(dir, "codebook-"+name+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	return markdown, nil
}

func writeFrequencies(fileName string, t *precinctcore.Table) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	if err := codebook.WriteFrequenciesCSV(file, codebook.Frequencies(t)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return file.Close()
}

// zipFiles bundles the named files into a zip, flattened to their
// base names.
func zipFiles(zipPath string, files []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", zipPath, err)
	}
	writer := zip.NewWriter(out)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			writer.Close()
			out.Close()
			return fmt.Errorf("failed to add %s to %s: %w", file, zipPath, err)
		}
		entry, err := writer.Create(filepath.Base(file))
		if err == nil {
			_, err = entry.Write(data)
		}
		if err != nil {
			writer.Close()
			out.Close()
			return fmt.Errorf("failed to add %s to %s: %w", file, zipPath, err)
		}
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finish %s: %w", zipPath, err)
	}
	return out.Close()
}

// CopySourceCSVs copies the discovered final state CSVs into a
// source/ subdirectory of the output, zipping each copy next to it,
// so the per-state inputs ship alongside the combined datasets.
func (b *Builder) CopySourceCSVs(root string) error {
	files, err := csvio.DiscoverStateFiles(root, b.options.Year)
	if err != nil {
		return err
	}

	dir := filepath.Join(b.options.OutputDir, "source")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}
	for _, file := range files {
		data, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("failed to copy state file %s: %w", file.Path, err)
		}
		base := filepath.Base(file.Path)
		copyPath := filepath.Join(dir, base)
		if err := os.WriteFile(copyPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to copy state file %s: %w", file.Path, err)
		}
		zipPath := strings.TrimSuffix(copyPath, filepath.Ext(copyPath)) + ".zip"
		if err := zipFiles(zipPath, []string{copyPath}); err != nil {
			return err
		}
		b.logger.Debug("copied state file", "state", file.State, "path", copyPath)
	}
	return nil
}
