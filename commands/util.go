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
)

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func getStringSlice(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// getMode parses the checking mode flag, or exits with usage.
func getMode(cmd *cobra.Command) precinctcore.Mode {
	mode, err := precinctcore.ParseMode(getString(cmd, "mode"))
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return mode
}

// loadRegistry reads the variable registry from the metadata
// directory, falling back to the compiled-in registry when the
// directory has none.
func loadRegistry(cmd *cobra.Command) *precinctcore.Schema {
	fileName := filepath.Join(getString(cmd, "metadata-dir"), "variables.yaml")
	if _, err := os.Stat(fileName); err != nil {
		return precinctcore.PrecinctSchema()
	}
	registry, err := precinctcore.LoadSchemaFile(fileName)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return registry
}
