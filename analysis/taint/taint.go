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

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/internal/graphutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AnalysisResult contains the result of the taint analysis of a program
type AnalysisResult struct {
	// Issues are the issues found, in the order they have been reported
	Issues []*Issue

	// Suppressed is the number of issues dropped because of an ignore directive
	Suppressed int

	// Dropped is the number of issues dropped once the maximum number of issues was reached
	Dropped int

	// Signatures maps the name of every function analyzed to its signature
	Signatures map[string]lattice.Signature

	// Dependencies is the dependency graph at the end of the analysis
	Dependencies *DependencyGraph

	// Errors contains the errors that stopped the analysis
	Errors []error
}

// Filter returns the issues of the result, without the likely false positives unless includeLikelyFalsePositives
// is set
func (r AnalysisResult) Filter(includeLikelyFalsePositives bool) []*Issue {
	if includeLikelyFalsePositives {
		return r.Issues
	}
	var res []*Issue
	for _, issue := range r.Issues {
		if !issue.IsLikelyFalsePositive() {
			res = append(res, issue)
		}
	}
	return res
}

// SignatureNames returns the names of the functions in the signatures of the result, sorted
func (r AnalysisResult) SignatureNames() []string {
	names := maps.Keys(r.Signatures)
	slices.Sort(names)
	return names
}

// Analyze runs the taint analysis on the program. The functions are analyzed callees first, in the reverse
// topological order of the strongly connected components of the call graph. Closures are analyzed where they are
// declared.
//
// The analysis itself never fails: constructs it does not understand get an unknown taint. An error is returned
// only when an internal invariant is violated and the configuration sets strict-invariants.
func Analyze(logger *config.LogGroup, cfg *config.Config, program *ir.Program,
	collaborators ...Collaborator) (AnalysisResult, error) {
	return NewEngine(logger, cfg, program, collaborators...).Run()
}

// Run analyzes every function of the program of the engine, see Analyze
func (e *Engine) Run() (res AnalysisResult, err error) {
	program := e.program
	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(invariantViolation)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("analysis stopped at %s: %w", e.pos, v)
			res = e.result()
			res.Errors = append(res.Errors, err)
		}
	}()

	cg := graphutil.NewCallGraph(program)
	if e.logger.Level() >= config.DebugLevel {
		for _, cycle := range graphutil.FindAllElementaryCycles(cg) {
			names := make([]string, len(cycle))
			for i, id := range cycle {
				names[i] = program.Func(id).String()
			}
			e.logger.Debugf("recursive functions: %v", names)
		}
	}

	for _, scc := range cg.BottomUpOrder() {
		for _, id := range scc {
			fn := program.Func(id)
			if fn == nil || fn.IsClosure() || e.IsSummarized(id) {
				continue
			}
			e.analyzeTop(fn)
		}
	}
	// closures never declared in analyzed code
	for _, fn := range program.Functions {
		if fn.Body != nil && !e.IsSummarized(fn.ID) {
			e.analyzeTop(fn)
		}
	}
	e.logger.Infof("analyzed %d functions, %d issues (%d suppressed)", len(e.funcs), len(e.issues.issues),
		e.issues.suppressed)
	return e.result(), nil
}

func (e *Engine) result() AnalysisResult {
	res := AnalysisResult{
		Issues:       e.issues.issues,
		Suppressed:   e.issues.suppressed,
		Dropped:      e.issues.dropped,
		Signatures:   make(map[string]lattice.Signature, len(e.funcs)),
		Dependencies: e.graph,
	}
	for id, fs := range e.funcs {
		fn := e.program.Func(id)
		if fn == nil || !fs.hasSignature {
			continue
		}
		res.Signatures[fn.String()] = fs.signature.Clone()
	}
	return res
}
