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

package taint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/report"
	"github.com/awslabs/ar-go-taintcheck/cmd/argot/tools"
	"github.com/awslabs/ar-go-taintcheck/internal/formatutil"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

const usage = ` Perform taint analysis on your packages.
Usage:
  argot taint [options] <package path(s) | program file(s)>
  argot check [options] <package path(s) | program file(s)>
Examples:
  % argot taint -config config.yaml package...
  % argot check -format sarif -exclude vendor/ ./...
`

// Flags represents the parsed flags for the taint analysis.
type Flags struct {
	tools.CommonFlags
	dumpDeps string
	// FailOnIssues makes the analysis fail when it reports unsafe issues
	FailOnIssues bool
}

// NewFlags returns the parsed flags for the taint analysis with args. The command name is either "taint" or "check".
func NewFlags(name string, args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags(name)
	dumpDeps := flags.FlagSet.String("dump-deps", "", "directory where the dependency graphs are written in dot format")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags:  common,
		dumpDeps:     *dumpDeps,
		FailOnIssues: name == "check",
	}, nil
}

// ErrIssuesFound is returned by Run when issues are reported and the flags require the analysis to fail
var ErrIssuesFound = fmt.Errorf("taint issues found")

// Run runs the taint analysis with flags.
func Run(flags Flags) error {
	cfg, err := tools.Configure(flags.CommonFlags)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)

	logger.Infof("%s", formatutil.Faint("Argot taint tool - "+analysis.Version))
	logger.Infof("%s", formatutil.Faint("Reading sources"))

	programs, err := tools.LoadPrograms(cfg, logger, flags.CommonFlags)
	if err != nil {
		return err
	}

	start := time.Now()
	results := analysis.RunTaintAll(cfg, logger, programs, flags.Routines)
	duration := time.Since(start)

	data := report.New(cfg.ReportLikelyFalsePositives, flags.Exclude)
	for _, result := range results {
		data.Add(result.Result, result.Err)
	}
	logger.Infof(strings.Repeat("*", 80))
	logger.Infof("Analysis took %3.4f s", duration.Seconds())
	if data.Unsafe() == 0 {
		logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No taint flows detected ✓")) // safe %s
	} else {
		logger.Errorf("RESULT:\n\t\t%s", formatutil.Red("Taint flows detected!")) // safe %s
	}

	if flags.dumpDeps != "" {
		if err := dumpDependencies(flags.dumpDeps, programs, results); err != nil {
			return err
		}
	}
	if err := report.WriteReport(os.Stdout, cfg.ReportFormat, true, data); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	if cfg.ReportsDir != "" {
		if err := saveReport(cfg, logger, data); err != nil {
			return err
		}
	}
	if cfg.ReportSummaries && cfg.ReportsDir != "" {
		if err := saveSummaries(cfg, logger, results); err != nil {
			return err
		}
	}

	if len(data.Errors) > 0 {
		return fmt.Errorf("taint analysis failed: %s", strings.Join(data.Errors, "; "))
	}
	if flags.FailOnIssues && data.Unsafe() > 0 {
		return ErrIssuesFound
	}
	return nil
}

func saveReport(cfg *config.Config, logger *config.LogGroup, data *report.Report) error {
	if err := os.MkdirAll(cfg.ReportsDir, 0750); err != nil {
		return fmt.Errorf("could not create reports directory: %w", err)
	}
	filename := filepath.Join(cfg.ReportsDir,
		fmt.Sprintf("issues-%s.%s", data.RunID, report.Extension(cfg.ReportFormat)))
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	logger.Infof("Saving report in %s", filename)
	return report.WriteReport(f, cfg.ReportFormat, false, data)
}

func saveSummaries(cfg *config.Config, logger *config.LogGroup, results []analysis.TaintResult) error {
	f, err := os.CreateTemp(cfg.ReportsDir, "summaries-*.out")
	if err != nil {
		return fmt.Errorf("could not create summaries file: %w", err)
	}
	defer f.Close()
	logger.Infof("Saving function summaries in %s", f.Name())
	for _, result := range results {
		if len(results) > 1 {
			fmt.Fprintf(f, "# %s\n", result.Name)
		}
		if err := report.WriteSummaries(f, result.Result.Signatures); err != nil {
			return err
		}
	}
	return nil
}

// dumpDependencies writes the dependency graph of every program analyzed as deps-<index>.dot in dir
func dumpDependencies(dir string, programs []analysis.LoadedProgram, results []analysis.TaintResult) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create directory for dependency graphs: %w", err)
	}
	for i, result := range results {
		deps := result.Result.Dependencies
		if deps == nil {
			continue
		}
		g := deps.Export(programs[i].Program)
		b, err := dot.Marshal(g, fmt.Sprintf("deps%d", i), "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode dependency graph of %s: %w", result.Name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("deps-%d.dot", i)), b, 0600); err != nil {
			return fmt.Errorf("could not write dependency graph of %s: %w", result.Name, err)
		}
	}
	return nil
}
