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

package report

import (
	"fmt"
	"path/filepath"

	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

const (
	// SarifVersion is the version of the SARIF schema of the reports
	SarifVersion = "2.1.0"
	// SarifSchema is the URL of the SARIF schema
	SarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
)

// SarifReport is the top-level object of a SARIF log
type SarifReport struct {
	Version string      `json:"version"`
	Schema  string      `json:"$schema"`
	Runs    []*SarifRun `json:"runs"`
}

// SarifRun is a run of the analysis
type SarifRun struct {
	Tool              SarifTool              `json:"tool"`
	AutomationDetails SarifAutomationDetails `json:"automationDetails"`
	Results           []*SarifResult         `json:"results"`
}

// SarifTool describes the analyzer and its rules
type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

// SarifDriver is the component of the tool that ran the analysis
type SarifDriver struct {
	Name           string       `json:"name"`
	InformationURI string       `json:"informationUri"`
	Rules          []*SarifRule `json:"rules"`
}

// SarifRule is a kind of issue
type SarifRule struct {
	ID               string       `json:"id"`
	GUID             string       `json:"guid"`
	ShortDescription SarifMessage `json:"shortDescription"`
}

// SarifAutomationDetails identifies the run
type SarifAutomationDetails struct {
	GUID string `json:"guid"`
}

// SarifResult is an issue
type SarifResult struct {
	RuleID     string            `json:"ruleId"`
	RuleIndex  int               `json:"ruleIndex"`
	Level      string            `json:"level"`
	Message    SarifMessage      `json:"message"`
	Locations  []*SarifLocation  `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

// SarifMessage is a plain text message
type SarifMessage struct {
	Text string `json:"text"`
}

// SarifLocation is the location of a result
type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

// SarifPhysicalLocation is a region of a file
type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

// SarifArtifactLocation is the location of a file
type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifRegion is a line and column in a file
type SarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

var ruleDescriptions = map[string]string{
	"xss":                 "Value from an external input is emitted as markup without escaping",
	"sql-injection":       "Value from an external input is used in a SQL query",
	"shell-injection":     "Value from an external input is used in a shell command",
	"code-injection":      "Value from an external input is evaluated as code",
	"serialize-injection": "Value from an external input is deserialized",
}

// GenerateSarif returns the SARIF log of the report. Unsafe issues are errors and likely false positives are
// warnings.
func GenerateSarif(data *Report) *SarifReport {
	var rules []*SarifRule
	indices := map[string]int{}
	for _, issue := range data.Issues {
		if _, ok := indices[issue.Kind]; ok {
			continue
		}
		indices[issue.Kind] = 0
		desc, ok := ruleDescriptions[issue.Kind]
		if !ok {
			desc = fmt.Sprintf("Value from an external input reaches a %s sink", issue.Kind)
		}
		rules = append(rules, &SarifRule{
			ID:               issue.Kind,
			GUID:             uuid3(issue.Kind),
			ShortDescription: SarifMessage{Text: desc},
		})
	}
	slices.SortFunc(rules, func(a, b *SarifRule) bool { return a.ID < b.ID })
	for i, rule := range rules {
		indices[rule.ID] = i
	}

	results := []*SarifResult{}
	for _, issue := range data.Issues {
		results = append(results, sarifResult(issue, indices[issue.Kind]))
	}

	run := &SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:           "argot",
			InformationURI: "https://github.com/awslabs/ar-go-taintcheck",
			Rules:          rules,
		}},
		AutomationDetails: SarifAutomationDetails{GUID: data.RunID},
		Results:           results,
	}
	return &SarifReport{Version: SarifVersion, Schema: SarifSchema, Runs: []*SarifRun{run}}
}

func sarifResult(issue *taint.Issue, ruleIndex int) *SarifResult {
	level := "error"
	if issue.IsLikelyFalsePositive() {
		level = "warning"
	}
	res := &SarifResult{
		RuleID:    issue.Kind,
		RuleIndex: ruleIndex,
		Level:     level,
		Message:   SarifMessage{Text: issue.Message},
		Locations: []*SarifLocation{{
			PhysicalLocation: SarifPhysicalLocation{
				ArtifactLocation: SarifArtifactLocation{URI: filepath.ToSlash(issue.Pos.File)},
				Region:           SarifRegion{StartLine: issue.Pos.Line, StartColumn: issue.Pos.Col},
			},
		}},
	}
	if issue.Provenance != "" || issue.Function != "" {
		res.Properties = map[string]string{}
		if issue.Provenance != "" {
			res.Properties["provenance"] = issue.Provenance
		}
		if issue.Function != "" {
			res.Properties["function"] = issue.Function
		}
	}
	return res
}

func uuid3(value string) string {
	return uuid.NewMD5(uuid.Nil, []byte(value)).String()
}
