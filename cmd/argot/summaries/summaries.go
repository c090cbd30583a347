// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
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

// Package summaries implements the front-end of the Argot summaries tool, which prints the taint signature computed
// for every function of the programs analyzed.
package summaries

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/report"
	"github.com/awslabs/ar-go-taintcheck/cmd/argot/tools"
)

// Usage is the usage of the summaries command
const Usage = ` Print the taint signatures of the functions of your packages.
Usage:
  argot summaries [options] <package path(s) | program file(s)>
Examples:
  % argot summaries -config config.yaml package...
`

// Run computes the signatures and prints them on standard output
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.Configure(flags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)

	programs, err := tools.LoadPrograms(cfg, logger, flags)
	if err != nil {
		return err
	}
	return write(os.Stdout, analysis.RunTaintAll(cfg, logger, programs, flags.Routines))
}

func write(w io.Writer, results []analysis.TaintResult) error {
	for _, result := range results {
		if len(results) > 1 {
			fmt.Fprintf(w, "# %s\n", result.Name)
		}
		if result.Err != nil {
			return fmt.Errorf("analysis of %s failed: %w", result.Name, result.Err)
		}
		if err := report.WriteSummaries(w, result.Result.Signatures); err != nil {
			return err
		}
	}
	return nil
}
