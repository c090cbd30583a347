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
	"embed"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

//go:embed testdata
var testfsys embed.FS

const testConfig = `
options:
  log-level: 1
signatures:
  - method: externalInput
    overall: yes
  - method: sqlInput
    overall: sql
  - method: sink
    overall: none
    params:
      0: html-exec
  - method: query
    overall: none
    params:
      0: sql-numkey-exec
  - method: register
    overall: none
external-inputs:
  - _GET
`

func loadTestConfig(t *testing.T) *config.Config {
	cfg, err := config.Parse([]byte(testConfig))
	if err != nil {
		t.Fatalf("could not parse test config: %v", err)
	}
	return cfg
}

// input returns a call to the source of the test config
func input() *ir.Node {
	return ir.CallName("externalInput").WithType(ir.TypeString)
}

func sink(x *ir.Node) *ir.Node {
	return ir.CallName("sink", x)
}

// stmt returns an expression statement at line of the file a.src
func stmt(line int, x *ir.Node) *ir.Node {
	return ir.ExprStmt(x).At("a.src", line)
}

// runEngine analyzes the program of b and fails the test if the analysis returns an error
func runEngine(t *testing.T, cfg *config.Config, b *ir.Builder, collaborators ...Collaborator) (*Engine,
	AnalysisResult) {
	prog, err := b.Program()
	if err != nil {
		t.Fatalf("invalid program: %v", err)
	}
	e := NewEngine(config.NewDiscardLogGroup(), cfg, prog, collaborators...)
	res, err := e.Run()
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return e, res
}

// issueLines returns the lines of the issues reported
func issueLines(issues []*Issue) []int {
	var lines []int
	for _, issue := range issues {
		lines = append(lines, issue.Pos.Line)
	}
	return lines
}

// collaboratorFuncs implements Collaborator with optional functions
type collaboratorFuncs struct {
	seed   func(e *Engine, fn *ir.Function)
	call   func(e *Engine, call *ir.Node, callee *ir.Function, args []lattice.Taint)
	assign func(e *Engine, assign *ir.Node)
	ret    func(e *Engine, fn *ir.Function, ret *ir.Node, t lattice.Taint)
}

func (c collaboratorFuncs) SeedParameters(e *Engine, fn *ir.Function) {
	if c.seed != nil {
		c.seed(e, fn)
	}
}

func (c collaboratorFuncs) CallVisited(e *Engine, call *ir.Node, callee *ir.Function, args []lattice.Taint) {
	if c.call != nil {
		c.call(e, call, callee, args)
	}
}

func (c collaboratorFuncs) AssignVisited(e *Engine, assign *ir.Node) {
	if c.assign != nil {
		c.assign(e, assign)
	}
}

func (c collaboratorFuncs) ReturnVisited(e *Engine, fn *ir.Function, ret *ir.Node, t lattice.Taint) {
	if c.ret != nil {
		c.ret(e, fn, ret, t)
	}
}
