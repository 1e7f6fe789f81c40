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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ElectionDataLab/precinctcore"
	"github.com/ElectionDataLab/precinctcore/codebook"
	"github.com/ElectionDataLab/precinctcore/metadata"
	"github.com/ElectionDataLab/precinctcore/release"
)

var docsCmd = &cobra.Command{
	Use:   "docs [flags]",
	Short: "Render dataset documentation without building data.",
	Long: `Render the codebook, release notes, coverage notes, Rd page and JSON
codebook for each dataverse from the metadata alone. Useful for
reviewing documentation edits before a release run.`,
	Run: func(cmd *cobra.Command, args []string) {
		metadataDir := getString(cmd, "metadata-dir")
		year := getInt(cmd, "year")
		outDir := getString(cmd, "out")

		dataverses := getStringSlice(cmd, "dataverse")
		if len(dataverses) == 0 {
			dataverses = precinctcore.DataverseShortNames
		}

		for _, dataverse := range dataverses {
			meta, err := metadata.Load(metadataDir, year, dataverse)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			name := meta.Dataset.Name
			dir := filepath.Join(outDir, name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			if _, err := release.WriteDocs(dir, name, codebook.Build(meta)); err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
			fmt.Printf("rendered %s\n", dir)
		}
	},
}

func init() {
	docsCmd.Flags().Int("year", 0, "election year the dataset metadata is keyed by")
	docsCmd.Flags().String("out", "docs", "directory the rendered files are written to")
	docsCmd.Flags().StringSlice("dataverse", nil, "dataverses to render, defaults to all of them")
	rootCmd.AddCommand(docsCmd)
}
