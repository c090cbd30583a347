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

package graphutil_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/internal/funcutil"
	"github.com/awslabs/ar-go-taintcheck/internal/graphutil"
	"github.com/google/go-cmp/cmp"
	"github.com/yourbasic/graph"
)

// buildProgram returns a program with functions named by the keys of calls, where each function calls the
// functions listed in calls
func buildProgram(t *testing.T, names []string, calls map[string][]string) (*ir.Program, map[string]*ir.Function) {
	b := ir.NewBuilder()
	funcs := map[string]*ir.Function{}
	for _, name := range names {
		funcs[name] = b.Function(name, 0)
	}
	for _, name := range names {
		var stmts []*ir.Node
		for _, callee := range calls[name] {
			stmts = append(stmts, ir.ExprStmt(ir.Call(funcs[callee])))
		}
		funcs[name].Body = ir.Block(stmts...)
	}
	p, err := b.Program()
	if err != nil {
		t.Fatalf("could not build program: %v", err)
	}
	return p, funcs
}

func TestFindAllElementaryCycles(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	p, _ := buildProgram(t, names, map[string][]string{
		"a": {"b"},
		"b": {"a", "c"},
		"c": {"d", "c"},
		"d": {"b"},
		"e": {"a"},
	})
	cg := graphutil.NewCallGraph(p)
	stats := graph.Check(cg)
	if stats.Size != 7 || stats.Loops != 1 {
		t.Errorf("unexpected stats: size %d, loops %d", stats.Size, stats.Loops)
	}

	cycles := graphutil.FindAllElementaryCycles(cg)
	results := make([]string, len(cycles))
	for i, cycle := range cycles {
		results[i] = strings.Join(funcutil.Map(cycle, func(id ir.FuncID) string { return p.Func(id).Name.Name }),
			"")
	}
	sort.Strings(results)
	expected := []string{"aba", "bcdb", "cc"}
	if diff := cmp.Diff(expected, results); diff != "" {
		t.Errorf("unexpected cycles (-want +got):\n%s", diff)
	}
}

func TestBottomUpOrder(t *testing.T) {
	names := []string{"main", "handler", "render", "escape", "loop1", "loop2"}
	p, funcs := buildProgram(t, names, map[string][]string{
		"main":    {"handler", "loop1"},
		"handler": {"render", "escape"},
		"render":  {"escape"},
		"loop1":   {"loop2"},
		"loop2":   {"loop1", "escape"},
	})
	cg := graphutil.NewCallGraph(p)
	order := cg.BottomUpOrder()
	position := map[ir.FuncID]int{}
	for i, scc := range order {
		for _, id := range scc {
			position[id] = i
		}
	}
	for caller, callees := range map[string][]string{
		"main": {"handler", "loop1"}, "handler": {"render", "escape"}, "render": {"escape"}, "loop2": {"escape"},
	} {
		for _, callee := range callees {
			if position[funcs[callee].ID] >= position[funcs[caller].ID] {
				t.Errorf("%s should be ordered before its caller %s", callee, caller)
			}
		}
	}
	if position[funcs["loop1"].ID] != position[funcs["loop2"].ID] {
		t.Errorf("loop1 and loop2 should be in the same component")
	}
	if len(order) != 5 {
		t.Errorf("expected 5 components, got %d", len(order))
	}
	if cg.HasSelfLoop(funcs["loop1"].ID) {
		t.Errorf("loop1 does not call itself")
	}
}
