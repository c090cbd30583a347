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

// Package analysis contains helper functions for loading programs and running the taint analysis on them.
package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/hooks"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
	"github.com/awslabs/ar-go-taintcheck/internal/funcutil"
)

// TaintResult is the result of the taint analysis of one program
type TaintResult struct {
	// Name is the name of the program analyzed
	Name   string
	Result taint.AnalysisResult
	// Err is the error that stopped the analysis, if any
	Err  error
	Time time.Duration
}

// RunTaint runs the taint analysis on program, with the hooks described in the config
func RunTaint(cfg *config.Config, logger *config.LogGroup, program LoadedProgram) TaintResult {
	logger.Debugf("%-10s %s ...", "Analyzing", program.Name)
	start := time.Now()
	res, err := taint.Analyze(logger, cfg, program.Program, hooks.NewCollaborator(cfg))
	if err != nil {
		logger.Errorf("error while analyzing %s:\n\t%v\n", program.Name, err)
	}
	elapsed := time.Since(start)
	logger.Debugf("%-10s %s | %d issues | %.2f s", " ", program.Name, len(res.Issues), elapsed.Seconds())
	return TaintResult{Name: program.Name, Result: res, Err: err, Time: elapsed}
}

// RunTaintAll runs the taint analysis of each program in parallel using numRoutines. The programs are independent:
// each analysis has its own engine. The results are in the order of the programs.
func RunTaintAll(cfg *config.Config, logger *config.LogGroup, programs []LoadedProgram,
	numRoutines int) []TaintResult {
	logger.Infof("Starting taint analysis of %d program(s) ...", len(programs))
	start := time.Now()

	if numRoutines < 1 {
		numRoutines = 1
	}
	results := funcutil.MapParallel(programs, func(p LoadedProgram) TaintResult {
		return RunTaint(cfg, logger, p)
	}, numRoutines)
	collectTimes(cfg, logger, results)

	logger.Infof("Taint analysis done (%.2f s).", time.Since(start).Seconds())
	return results
}

// collectTimes writes the analysis time of each program in a report file, when the config requests summaries
func collectTimes(cfg *config.Config, logger *config.LogGroup, results []TaintResult) {
	if !cfg.ReportSummaries || cfg.ReportsDir == "" {
		return
	}
	f, err := os.CreateTemp(cfg.ReportsDir, "analysis-times-*.csv")
	if err != nil {
		logger.Errorf("Could not create analysis times report file.")
		return
	}
	defer f.Close()
	path, err := filepath.Abs(f.Name())
	if err != nil {
		logger.Errorf("Could not find absolute path of analysis times report file %s.", f.Name())
	}
	logger.Infof("Saving report of analysis times in %s\n", path)
	for _, result := range results {
		reportTime(f, result)
	}
}

func reportTime(w io.Writer, result TaintResult) {
	str := fmt.Sprintf("%s, %d, %.2f\n", result.Name, len(result.Result.Issues), result.Time.Seconds())
	w.Write([]byte(str))
}
