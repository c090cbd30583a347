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

// Package report writes the issues found by the taint analysis in the formats supported: text, json, yaml and
// sarif. It also writes the signatures computed for the functions of the programs analyzed.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
	"github.com/awslabs/ar-go-taintcheck/internal/analysisutil"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Report is the content of a report: the issues of all the programs analyzed in one run
type Report struct {
	// RunID identifies the run that produced the report
	RunID  string         `json:"run-id" yaml:"run-id"`
	Issues []*taint.Issue `json:"issues" yaml:"issues"`
	Stats  Stats          `json:"stats" yaml:"stats"`
	// Errors are the errors that stopped the analysis of some program
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	includeLikelyFalsePositives bool
	exclude                     []string
}

// Stats counts the programs analyzed and the issues found
type Stats struct {
	Programs             int `json:"programs" yaml:"programs"`
	Functions            int `json:"functions" yaml:"functions"`
	Issues               int `json:"issues" yaml:"issues"`
	LikelyFalsePositives int `json:"likely-false-positives" yaml:"likely-false-positives"`
	Suppressed           int `json:"suppressed" yaml:"suppressed"`
	Dropped              int `json:"dropped" yaml:"dropped"`
	Excluded             int `json:"excluded" yaml:"excluded"`
}

// New returns an empty report with a fresh run id. Likely false positives are only kept when
// includeLikelyFalsePositives is set, and issues in the files or directories of exclude are dropped.
func New(includeLikelyFalsePositives bool, exclude []string) *Report {
	return &Report{
		RunID:                       uuid.New().String(),
		Issues:                      []*taint.Issue{},
		includeLikelyFalsePositives: includeLikelyFalsePositives,
		exclude:                     exclude,
	}
}

// Add adds the result of the analysis of one program to the report. err is the error that stopped the analysis,
// if any.
func (r *Report) Add(res taint.AnalysisResult, err error) {
	r.Stats.Programs++
	r.Stats.Functions += len(res.Signatures)
	r.Stats.Suppressed += res.Suppressed
	r.Stats.Dropped += res.Dropped
	for _, issue := range res.Issues {
		if analysisutil.IsExcluded(issue.Pos, r.exclude) {
			r.Stats.Excluded++
			continue
		}
		if issue.IsLikelyFalsePositive() {
			r.Stats.LikelyFalsePositives++
			if !r.includeLikelyFalsePositives {
				continue
			}
		}
		r.Issues = append(r.Issues, issue)
	}
	r.Stats.Issues = len(r.Issues)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
	slices.SortStableFunc(r.Issues, func(a, b *taint.Issue) bool { return lessPos(a.Pos, b.Pos) })
}

func lessPos(a, b ir.Pos) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Col < b.Col
}

// Unsafe returns the number of issues of the report that are not likely false positives
func (r *Report) Unsafe() int {
	n := 0
	for _, issue := range r.Issues {
		if !issue.IsLikelyFalsePositive() {
			n++
		}
	}
	return n
}

// Extension returns the file extension of the reports in format
func Extension(format string) string {
	switch format {
	case "json":
		return "json"
	case "yaml":
		return "yaml"
	case "sarif":
		return "sarif"
	}
	return "txt"
}

// WriteReport writes the report in format. Colors are only used in text reports, when enableColor is set.
func WriteReport(w io.Writer, format string, enableColor bool, data *Report) error {
	switch format {
	case "json":
		return writeJSON(w, data)
	case "yaml":
		raw, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	case "sarif":
		return writeJSON(w, GenerateSarif(data))
	case "text", "":
		return writeText(w, data, enableColor)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

func writeJSON(w io.Writer, data any) error {
	raw, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
