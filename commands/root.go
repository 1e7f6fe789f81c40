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

// Package commands wires the precinct command line tool: checking raw
// returns, building release bundles and rendering documentation.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ElectionDataLab/precinctcore"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "precinct",
	Short: "Check, assemble and publish precinct-level election returns.",
	Long: `precinct validates precinct-level election returns against the
variable registry, combines the states that pass into release datasets,
and writes each dataset with its documentation.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Printf("precinct %s", precinctcore.LibVersion())
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				fmt.Printf(" (%s)", info.Main.Version)
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("metadata-dir", "metadata", "directory with the variable registry and dataset metadata")
	rootCmd.PersistentFlags().String("mode", "strict", "checking mode: strict or lenient")
	rootCmd.PersistentFlags().Int("workers", 0, "number of tables checked in parallel, 0 means one per CPU")
}

// newLogger builds the command logger, debug-level when verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if getFlag(cmd, "verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
