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

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/internal/formatutil"
)

// Category distinguishes confirmed issues from issues that are likely false positives
type Category string

const (
	// CategoryUnsafe is the category of issues where a value carrying dangerous content reaches a sink
	CategoryUnsafe Category = "unsafe"
	// CategoryLikelyFalsePositive is the category of issues caused only by values of unknown taint
	CategoryLikelyFalsePositive Category = "likely-false-positive"
)

// Issue is a use of a tainted value in a position where it is unsafe
type Issue struct {
	Category Category `json:"category" yaml:"category"`
	// Kind is the kind of vulnerability, e.g. "xss" or "sql-injection"
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	// Provenance lists the locations that caused the taint
	Provenance string `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	Pos        ir.Pos `json:"pos" yaml:"pos"`
	// Function is the name of the function where the issue is reported
	Function string `json:"function,omitempty" yaml:"function,omitempty"`
}

func (i *Issue) String() string {
	return fmt.Sprintf("%s: [%s/%s] %s", i.Pos, i.Category, i.Kind, i.Message)
}

// IsLikelyFalsePositive returns true when the issue is caused only by values of unknown taint
func (i *Issue) IsLikelyFalsePositive() bool {
	return i.Category == CategoryLikelyFalsePositive
}

type issueKey struct {
	file    string
	line    int
	kind    string
	message string
}

// issueSet collects the issues of an analysis, without duplicates
type issueSet struct {
	max        int
	seen       map[issueKey]bool
	issues     []*Issue
	suppressed int
	dropped    int
}

func newIssueSet(max int) *issueSet {
	return &issueSet{max: max, seen: map[issueKey]bool{}}
}

// add returns true when the issue has been added
func (s *issueSet) add(issue *Issue, base string) bool {
	key := issueKey{file: issue.Pos.File, line: issue.Pos.Line, kind: issue.Kind, message: base}
	if s.seen[key] {
		return false
	}
	if s.max > 0 && len(s.issues) >= s.max {
		s.dropped++
		return false
	}
	s.seen[key] = true
	s.issues = append(s.issues, issue)
	return true
}

// MaybeEmitIssue reports an issue at the current position when a value of taint observed is used where required
// says it is unsafe. cause is the expression whose taint is observed; its provenance is appended to the message.
// Returns true when a new issue has been reported.
func (e *Engine) MaybeEmitIssue(required, observed lattice.Taint, cause *ir.Node, message string) bool {
	return e.maybeEmitIssue(required, observed, cause, message)
}

func (e *Engine) maybeEmitIssue(required, observed lattice.Taint, cause *ir.Node, message string) bool {
	if lattice.IsSafeAssignment(required, observed) {
		return false
	}
	kind := lattice.Kind(lattice.YesToExec(observed) & required)
	if kind == "" {
		kind = lattice.Kind(required)
	}
	category := CategoryUnsafe
	if lattice.IsLikelyFalsePositive(observed) {
		category = CategoryLikelyFalsePositive
	}
	issue := &Issue{
		Category: category,
		Kind:     kind,
		Message:  message,
		Pos:      e.pos,
	}
	if fn := e.CurrentFunction(); fn != nil {
		issue.Function = fn.String()
	}
	if cause != nil {
		issue.Provenance = e.provenance(cause)
	}
	if issue.Provenance != "" {
		issue.Message = fmt.Sprintf("%s (caused by: %s)", message, issue.Provenance)
	}
	if e.program.IsSuppressed(e.pos) {
		e.issues.suppressed++
		e.logger.Debugf("%s: suppressed %s issue: %s", e.pos, kind, message)
		return false
	}
	if !e.issues.add(issue, message) {
		return false
	}
	if category == CategoryUnsafe {
		e.logger.Infof("%s %s at %s: %s", formatutil.Red("issue"), kind, e.pos, issue.Message)
	} else {
		e.logger.Debugf("%s %s at %s: %s", formatutil.Yellow("likely false positive"), kind, e.pos,
			issue.Message)
	}
	return true
}
