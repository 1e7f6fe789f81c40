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

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ElectionDataLab/precinctcore"
	"github.com/ElectionDataLab/precinctcore/csvio"
	"github.com/ElectionDataLab/precinctcore/release"
)

var releaseCmd = &cobra.Command{
	Use:   "release [flags]",
	Short: "Check state returns and build the release datasets.",
	Long: `Check state returns, assemble the rows that pass into one table and
write a dataset bundle per dataverse: csv, feather, rda, frequency
counts and rendered documentation. Sources come from a pipeline config
file, or from a single data directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		options := release.Options{
			Year:        getInt(cmd, "year"),
			Mode:        getMode(cmd),
			Workers:     getInt(cmd, "workers"),
			MetadataDir: getString(cmd, "metadata-dir"),
			OutputDir:   getString(cmd, "out"),
			SkipRda:     getFlag(cmd, "skip-rda"),
			Dataverses:  getStringSlice(cmd, "dataverse"),
		}

		var sources []csvio.Source
		var stateRoots []string
		if configPath := getString(cmd, "config"); configPath != "" {
			cfg, err := precinctcore.LoadPipelineConfig(configPath)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			// Flags win over the config when set explicitly.
			if cfg.Mode != "" && !cmd.Flags().Changed("mode") {
				options.Mode = cfg.Mode
			}
			if cfg.Workers > 0 && !cmd.Flags().Changed("workers") {
				options.Workers = cfg.Workers
			}
			if cfg.MetadataDir != "" && !cmd.Flags().Changed("metadata-dir") {
				options.MetadataDir = cfg.MetadataDir
			}
			if cfg.OutputDir != "" && !cmd.Flags().Changed("out") {
				options.OutputDir = cfg.OutputDir
			}
			for i := range cfg.Sources {
				dataSource := &cfg.Sources[i]
				if dataSource.Year == 0 {
					dataSource.Year = options.Year
				}
				source, err := csvio.NewSource(dataSource, logger)
				if err != nil {
					fmt.Println(err)
					os.Exit(2)
				}
				sources = append(sources, source)
				if dataSource.Type == precinctcore.SourceTypeStateDir {
					stateRoots = append(stateRoots, dataSource.Root)
				}
			}
		} else {
			root := getString(cmd, "data-dir")
			sources = append(sources, csvio.NewStateDirSource(&precinctcore.DataSource{
				ID:   "state-files",
				Type: precinctcore.SourceTypeStateDir,
				Root: root,
				Year: options.Year,
			}, logger))
			stateRoots = append(stateRoots, root)
		}

		builder := release.NewBuilder(options, logger)
		report, err := builder.Build(cmd.Context(), sources)
		if report != nil {
			if getFlag(cmd, "json") {
				data, jsonErr := report.JSON()
				if jsonErr != nil {
					fmt.Println(jsonErr)
					os.Exit(2)
				}
				fmt.Println(string(data))
			} else {
				printReport(report)
			}
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if getFlag(cmd, "copy-sources") {
			for _, root := range stateRoots {
				if err := builder.CopySourceCSVs(root); err != nil {
					fmt.Println(err)
					os.Exit(1)
				}
			}
		}
	},
}

func init() {
	releaseCmd.Flags().String("config", "", "pipeline config file listing the sources")
	releaseCmd.Flags().String("data-dir", ".", "data root, used when no config is given")
	releaseCmd.Flags().String("out", "release", "directory the dataset bundles are written to")
	releaseCmd.Flags().Int("year", 0, "election year, 0 means any")
	releaseCmd.Flags().Bool("skip-rda", false, "skip the rda output even when Rscript is available")
	releaseCmd.Flags().StringSlice("dataverse", nil, "dataverses to build, defaults to all of them")
	releaseCmd.Flags().Bool("copy-sources", false, "also copy and zip the raw state files")
	releaseCmd.Flags().Bool("json", false, "emit the checking report as JSON")
	rootCmd.AddCommand(releaseCmd)
}
