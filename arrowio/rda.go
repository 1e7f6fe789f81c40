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

package arrowio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrRscriptMissing reports that no R runtime is installed. Callers
// can skip the rda output instead of failing the release.
var ErrRscriptMissing = errors.New("Rscript not found in PATH")

// WriteRda converts an Arrow IPC file to an R data file by calling an
// R script with the input path, the R object name and the output
// path. R, not Go, owns the rda format, so the conversion stays a
// system call.
func WriteRda(ctx context.Context, scriptPath, inputPath, alias, outputPath string) error {
	rscript, err := exec.LookPath("Rscript")
	if err != nil {
		return ErrRscriptMissing
	}

	cmd := exec.CommandContext(ctx, rscript, scriptPath, inputPath, alias, outputPath)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write %s: %w: %s", outputPath, err, output.String())
	}
	return nil
}
