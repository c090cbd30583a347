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
	"errors"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/google/go-cmp/cmp"
)

func TestSourceToSink(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	x := b.Local(mainFn, "x", ir.TypeString)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x), input())),
		stmt(2, sink(ir.Var(x))),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	if len(res.Issues) != 1 {
		t.Fatalf("expected one issue, got %v", res.Issues)
	}
	issue := res.Issues[0]
	if issue.Kind != "xss" || issue.Category != CategoryUnsafe {
		t.Errorf("unexpected issue %s", issue)
	}
	if issue.Pos.String() != "a.src:2" {
		t.Errorf("issue should be at a.src:2, got %s", issue.Pos)
	}
	if !strings.Contains(issue.Provenance, "a.src:1") {
		t.Errorf("provenance %q should contain the source line", issue.Provenance)
	}
	if !strings.HasPrefix(issue.Message, "calling sink with a tainted argument #0") {
		t.Errorf("unexpected message %q", issue.Message)
	}
	if issue.Function != "main" {
		t.Errorf("issue should be in main, got %q", issue.Function)
	}
}

func TestOverrideClearsTaint(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	x := b.Local(mainFn, "x", ir.TypeString)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x), input())),
		stmt(2, ir.Assign(ir.Var(x), ir.Str("safe"))),
		stmt(3, sink(ir.Var(x))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if len(res.Issues) != 0 {
		t.Errorf("expected no issue, got %v", res.Issues)
	}
	if e.TaintOf(x.ID) != lattice.NoTaint {
		t.Errorf("x should not be tainted, got %s", e.TaintOf(x.ID))
	}
}

func TestArrayKeys(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	a := b.Local(mainFn, "a", ir.TypeArray)
	c := b.Local(mainFn, "c", ir.TypeArray)
	w := b.Local(mainFn, "w", ir.TypeArray)
	v := b.Local(mainFn, "v", ir.TypeArray)
	u := b.Local(mainFn, "u", ir.TypeArray)
	sqlInput := func() *ir.Node { return ir.CallName("sqlInput").WithType(ir.TypeString) }
	query := func(x *ir.Node) *ir.Node { return ir.CallName("query", x) }
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(a), ir.Array(ir.Elem(ir.Str("k"), input())))),
		stmt(2, ir.Assign(ir.Var(c), ir.Array(ir.Elem(nil, input())))),
		stmt(3, query(ir.Var(a))),
		stmt(4, query(ir.Var(c))),
		stmt(5, ir.Assign(ir.Index(ir.Var(w), ir.Int(1)), sqlInput())),
		stmt(6, ir.Assign(ir.Index(ir.Var(v), ir.Str("k")), sqlInput())),
		stmt(7, ir.Assign(ir.Index(ir.Var(u), sqlInput()), ir.Str("foo"))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)

	if ta := e.TaintOf(a.ID); !ta.HasYes() || ta.Has(lattice.SQLNumkeyTaint) {
		t.Errorf("string key: expected yes without sql-numkey, got %s", ta)
	}
	if tc := e.TaintOf(c.ID); !tc.Has(lattice.SQLNumkeyTaint) {
		t.Errorf("implicit key: expected sql-numkey, got %s", tc)
	}
	if !e.TaintOf(w.ID).Has(lattice.SQLNumkeyTaint) {
		t.Errorf("integer index: expected sql-numkey, got %s", e.TaintOf(w.ID))
	}
	if tv := e.TaintOf(v.ID); !tv.Has(lattice.SQLTaint) || tv.Has(lattice.SQLNumkeyTaint) {
		t.Errorf("string index: expected sql without sql-numkey, got %s", tv)
	}
	if !e.TaintOf(u.ID).Has(lattice.SQLNumkeyTaint) {
		t.Errorf("tainted index: expected sql-numkey, got %s", e.TaintOf(u.ID))
	}
	if diff := cmp.Diff([]int{4}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
	if len(res.Issues) == 1 && res.Issues[0].Kind != "sql-injection" {
		t.Errorf("expected sql-injection, got %s", res.Issues[0].Kind)
	}
}

func TestForwardFloodReachesCalleeState(t *testing.T) {
	b := ir.NewBuilder()
	store := b.Function("store", 0)
	p := b.Param(store, "p", ir.TypeString, false)
	y := b.Local(store, "y", ir.TypeString)
	store.Body = ir.Block(stmt(10, ir.Assign(ir.Var(y), ir.Var(p))))
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(stmt(1, ir.Call(store, input())))

	e, res := runEngine(t, loadTestConfig(t), b)
	if len(res.Issues) != 0 {
		t.Errorf("expected no issue, got %v", res.Issues)
	}
	sig, ok := res.Signatures["store"]
	if !ok {
		t.Fatalf("store should have a signature")
	}
	if !sig.Equal(lattice.NewSignature(lattice.NoTaint)) {
		t.Errorf("expected signature none, got %s", sig)
	}
	if !e.TaintOf(y.ID).HasYes() {
		t.Errorf("y should hold the tainted argument, got %s", e.TaintOf(y.ID))
	}
	if diff := cmp.Diff([]ir.SymbolID{p.ID, y.ID}, e.Graph().Forward(store.ID, 0)); diff != "" {
		t.Errorf("unexpected forward links (-want +got):\n%s", diff)
	}
}

func TestByRefParameter(t *testing.T) {
	b := ir.NewBuilder()
	set := b.Function("set", 0)
	p := b.Param(set, "p", ir.TypeString, true)
	set.Body = ir.Block(stmt(10, ir.Assign(ir.Var(p), input())))
	mainFn := b.Function("main", 0)
	x := b.Local(mainFn, "x", ir.TypeString)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x), ir.Str("safe"))),
		stmt(2, ir.Call(set, ir.Var(x))),
		stmt(3, sink(ir.Var(x))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if !e.TaintOf(x.ID).HasYes() {
		t.Errorf("x should be tainted by set, got %s", e.TaintOf(x.ID))
	}
	if diff := cmp.Diff([]int{3}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
	if len(res.Issues) == 1 && !strings.Contains(res.Issues[0].Provenance, "a.src:10") {
		t.Errorf("provenance %q should contain the write in set", res.Issues[0].Provenance)
	}
}

func TestByRefParameterCallSites(t *testing.T) {
	b := ir.NewBuilder()
	suffix := b.Function("suffix", 0)
	p := b.Param(suffix, "p", ir.TypeString, true)
	suffix.Body = ir.Block(stmt(20, ir.Assign(ir.Var(p), ir.Concat(ir.Var(p), ir.Str("!")))))
	mainFn := b.Function("main", 0)
	a := b.Local(mainFn, "a", ir.TypeString)
	c := b.Local(mainFn, "c", ir.TypeString)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(a), input())),
		stmt(2, ir.Call(suffix, ir.Var(a))),
		stmt(3, ir.Assign(ir.Var(c), ir.Str("safe"))),
		stmt(4, ir.Call(suffix, ir.Var(c))),
		stmt(5, sink(ir.Var(c))),
		stmt(6, ir.Assign(ir.Var(c), ir.Str("reset"))),
		stmt(7, sink(ir.Var(a))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if e.Store().aliased(a.ID, c.ID) {
		t.Errorf("variables passed at different call sites should not share a cell")
	}
	if !e.TaintOf(a.ID).HasYes() {
		t.Errorf("a should keep its taint, got %s", e.TaintOf(a.ID))
	}
	if got := e.TaintOf(c.ID); got.HasYes() || got.Has(lattice.PreserveTaint) {
		t.Errorf("c should hold neither input nor the parameter's preserve taint, got %s", got)
	}
	if diff := cmp.Diff([]int{7}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestReanalyzeOnRegistration(t *testing.T) {
	b := ir.NewBuilder()
	cb := b.Function("cb", ir.TypeString)
	p := b.Param(cb, "p", ir.TypeString, false)
	cb.Body = ir.Block(ir.Return(ir.Concat(ir.Var(p), input())).At("a.src", 20))
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		stmt(1, ir.Call(cb, ir.Str("a"))),
		stmt(2, ir.CallName("register", ir.FuncValue(cb))),
	)

	var seen []lattice.Taint
	collab := collaboratorFuncs{
		seed: func(e *Engine, fn *ir.Function) {
			if fn.ID != cb.ID {
				return
			}
			if sig, ok := e.Signature(cb.ID); ok {
				seen = append(seen, sig.Overall)
			}
		},
		call: func(e *Engine, call *ir.Node, _ *ir.Function, _ []lattice.Taint) {
			if call.Callee.Name == "register" {
				e.Reanalyze(cb.ID)
			}
		},
	}
	e, _ := runEngine(t, loadTestConfig(t), b, collab)

	if diff := cmp.Diff([]lattice.Taint{lattice.UnknownTaint}, seen); diff != "" {
		t.Errorf("re-analysis should start from an unknown result (-want +got):\n%s", diff)
	}
	sig, ok := e.Signature(cb.ID)
	if !ok {
		t.Fatalf("cb should have a signature")
	}
	if sig.Overall != lattice.YesTaint {
		t.Errorf("expected overall yes after re-analysis, got %s", sig.Overall)
	}
	if pt, _ := sig.Param(0); !pt.Has(lattice.PreserveTaint) {
		t.Errorf("parameter 0 should preserve, got %s", pt)
	}
	if diff := cmp.Diff([]ParamRef{{Func: cb.ID, Index: 0}}, e.Graph().Backward(p.ID)); diff != "" {
		t.Errorf("links of p should be kept (-want +got):\n%s", diff)
	}
}

func TestBranchMerge(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	x := b.Local(mainFn, "x", ir.TypeString)
	c := b.Local(mainFn, "c", ir.TypeBool)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x), ir.Str("safe"))),
		ir.If(ir.Arm(ir.Var(c), ir.Block(stmt(2, ir.Assign(ir.Var(x), input()))))),
		stmt(3, sink(ir.Var(x))),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	if diff := cmp.Diff([]int{3}, issueLines(res.Issues)); diff != "" {
		t.Errorf("a write in a branch should not override (-want +got):\n%s", diff)
	}
}

func TestBranchWritesThroughSameName(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	x1 := b.Local(mainFn, "x", ir.TypeString)
	x2 := b.Local(mainFn, "x", ir.TypeString)
	c := b.Local(mainFn, "c", ir.TypeBool)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x1), ir.Str("safe"))),
		ir.If(ir.Arm(ir.Var(c), stmt(2, ir.Assign(ir.Var(x2), input())))),
		stmt(3, sink(ir.Var(x1))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if !e.Store().aliased(x1.ID, x2.ID) {
		t.Errorf("the bindings named x should be aliased")
	}
	if diff := cmp.Diff([]int{3}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestGlobal(t *testing.T) {
	b := ir.NewBuilder()
	g := b.Global("g", ir.TypeString)
	f := b.Function("f", 0)
	l := b.Local(f, "g", ir.TypeString)
	f.Body = ir.Block(
		ir.Global(l, g).At("a.src", 9),
		stmt(10, ir.Assign(ir.Var(l), input())),
	)
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		stmt(1, ir.Call(f)),
		stmt(2, sink(ir.Var(g))),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if !e.TaintOf(g.ID).HasYes() {
		t.Errorf("g should be tainted through its local binding, got %s", e.TaintOf(g.ID))
	}
	if diff := cmp.Diff([]int{2}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestClosure(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	c := b.Closure(mainFn, "main$1", 0)
	p := b.Param(c, "p", ir.TypeString, false)
	c.Body = ir.Block(ir.Echo(ir.Var(p)).At("a.src", 11))
	mainFn.Body = ir.Block(
		stmt(1, ir.Closure(c)),
		stmt(2, ir.Call(c, input())),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	sig, ok := res.Signatures["main$1"]
	if !ok {
		t.Fatalf("the closure should have been analyzed")
	}
	if want := lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.HTMLExecTaint); !sig.Equal(want) {
		t.Errorf("expected %s, got %s", want, sig)
	}
	if diff := cmp.Diff([]int{2}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestSinkForwarding(t *testing.T) {
	b := ir.NewBuilder()
	show := b.Function("show", 0)
	p := b.Param(show, "p", ir.TypeString, false)
	y := b.Local(show, "y", ir.TypeString)
	show.Body = ir.Block(
		stmt(10, ir.Assign(ir.Var(y), ir.Var(p))),
		ir.Echo(ir.Var(y)).At("a.src", 11),
	)
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(stmt(1, ir.Call(show, input())))

	_, res := runEngine(t, loadTestConfig(t), b)
	want := lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.HTMLExecTaint)
	if sig := res.Signatures["show"]; !sig.Equal(want) {
		t.Errorf("expected %s, got %s", want, sig)
	}
	if diff := cmp.Diff([]int{1}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestBuiltinSignatures(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	x := b.Local(mainFn, "x", ir.TypeString)
	db := b.Local(mainFn, "db", ir.TypeObject)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(x), ir.CallName("html.EscapeString", input()))),
		stmt(2, sink(ir.Var(x))),
		stmt(3, ir.CallName("(*database/sql.DB).Query", ir.Var(db),
			ir.Concat(ir.Str("SELECT * FROM t WHERE id = "), input()))),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	if diff := cmp.Diff([]int{3}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
	if len(res.Issues) == 1 && res.Issues[0].Kind != "sql-injection" {
		t.Errorf("expected sql-injection, got %s", res.Issues[0].Kind)
	}
}

func TestShellAndEval(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		ir.Shell(ir.Concat(ir.Str("ls "), input())).At("a.src", 1),
		ir.Eval(input()).At("a.src", 2),
		ir.Eval(ir.Str("1 + 1")).At("a.src", 3),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	var kinds []string
	for _, issue := range res.Issues {
		kinds = append(kinds, issue.Kind)
	}
	if diff := cmp.Diff([]string{"shell-injection", "code-injection"}, kinds); diff != "" {
		t.Errorf("unexpected issue kinds (-want +got):\n%s", diff)
	}
}

func TestExternalInputVariable(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		stmt(1, sink(ir.Index(ir.Unresolved("_GET"), ir.Str("q")))),
		stmt(2, sink(ir.Unresolved("notAnInput"))),
	)
	_, res := runEngine(t, loadTestConfig(t), b)
	if len(res.Issues) != 2 {
		t.Fatalf("expected two issues, got %v", res.Issues)
	}
	if res.Issues[0].Category != CategoryUnsafe {
		t.Errorf("_GET is an external input, got %s", res.Issues[0].Category)
	}
	if res.Issues[1].Category != CategoryLikelyFalsePositive {
		t.Errorf("an unresolved name is unknown, got %s", res.Issues[1].Category)
	}
}

func TestUnknownNodeIsLikelyFalsePositive(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(ir.Echo(ir.Unknown("goto")).At("a.src", 1))
	_, res := runEngine(t, loadTestConfig(t), b)
	if len(res.Filter(true)) != 1 {
		t.Fatalf("expected one issue, got %v", res.Issues)
	}
	if !res.Issues[0].IsLikelyFalsePositive() {
		t.Errorf("issue should be a likely false positive")
	}
	if len(res.Filter(false)) != 0 {
		t.Errorf("likely false positives should be filtered")
	}
}

func TestRecursion(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function("f", ir.TypeString)
	p := b.Param(f, "p", ir.TypeString, false)
	g := b.Function("g", ir.TypeString)
	h := b.Function("h", ir.TypeString)
	q := b.Param(g, "q", ir.TypeString, false)
	r := b.Param(h, "r", ir.TypeString, false)
	f.Body = ir.Return(ir.Call(f, ir.Var(p)))
	g.Body = ir.Return(ir.Call(h, ir.Var(q)))
	h.Body = ir.Return(ir.Concat(ir.Call(g, ir.Var(r)), input()))

	_, res := runEngine(t, loadTestConfig(t), b)
	if sig := res.Signatures["f"]; !sig.Overall.Has(lattice.UnknownTaint) {
		t.Errorf("a self recursive call has an unknown result, got %s", sig)
	}
	for _, name := range []string{"g", "h"} {
		if sig, ok := res.Signatures[name]; !ok || !sig.Overall.HasYes() {
			t.Errorf("%s should return tainted data, got %s", name, sig)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	build := func() (*ir.Program, *ir.Function, *ir.Function) {
		b := ir.NewBuilder()
		leaf := b.Function("leaf", ir.TypeString)
		leaf.Body = ir.Return(input())
		mid := b.Function("mid", ir.TypeString)
		mid.Body = ir.Return(ir.Call(leaf))
		mainFn := b.Function("main", 0)
		mainFn.Body = ir.Block(stmt(1, ir.Call(mid)))
		prog, err := b.Program()
		if err != nil {
			t.Fatalf("invalid program: %v", err)
		}
		return prog, mainFn, mid
	}

	cfg := loadTestConfig(t)
	cfg.MaxDepth = 1
	prog, mainFn, mid := build()
	e := NewEngine(config.NewDiscardLogGroup(), cfg, prog)
	e.analyzeTop(mainFn)
	if sig, ok := e.Signature(mid.ID); !ok || sig.Overall != lattice.UnknownTaint {
		t.Errorf("calls past the maximum depth should be unknown, got %s", sig)
	}

	cfg = loadTestConfig(t)
	prog, mainFn, mid = build()
	e = NewEngine(config.NewDiscardLogGroup(), cfg, prog)
	e.analyzeTop(mainFn)
	if sig, ok := e.Signature(mid.ID); !ok || sig.Overall != lattice.YesTaint {
		t.Errorf("without depth limit mid returns yes, got %s", sig)
	}
}

func TestStrictInvariants(t *testing.T) {
	build := func() *ir.Builder {
		b := ir.NewBuilder()
		mainFn := b.Function("main", 0)
		mainFn.Body = ir.Block(stmt(1, sink(input())))
		return b
	}
	badSeed := collaboratorFuncs{
		seed: func(e *Engine, fn *ir.Function) { e.SetParameterTaint(fn, 3, lattice.YesTaint) },
	}

	cfg := loadTestConfig(t)
	_, res := runEngine(t, cfg, build(), badSeed)
	if len(res.Issues) != 1 {
		t.Errorf("the analysis should go on after a violation, got %v", res.Issues)
	}

	cfg = loadTestConfig(t)
	cfg.StrictInvariants = true
	prog, err := build().Program()
	if err != nil {
		t.Fatalf("invalid program: %v", err)
	}
	res, err = Analyze(config.NewDiscardLogGroup(), cfg, prog, badSeed)
	if err == nil {
		t.Fatalf("expected an error with strict invariants")
	}
	var v invariantViolation
	if !errors.As(err, &v) {
		t.Errorf("expected an invariant violation, got %v", err)
	}
	if len(res.Errors) != 1 {
		t.Errorf("the error should be part of the result")
	}
}

func TestSuppression(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		stmt(1, sink(input())),
		stmt(2, sink(input())),
	)
	b.Suppress(ir.Pos{File: "a.src", Line: 2})
	_, res := runEngine(t, loadTestConfig(t), b)
	if diff := cmp.Diff([]int{1}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
	if res.Suppressed != 1 {
		t.Errorf("expected one suppressed issue, got %d", res.Suppressed)
	}
}

func TestMaxIssuesAndDuplicates(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	mainFn.Body = ir.Block(
		stmt(1, ir.Concat(sink(input()), sink(input()))),
		stmt(2, sink(input())),
		stmt(3, sink(input())),
	)
	cfg := loadTestConfig(t)
	cfg.MaxIssues = 2
	_, res := runEngine(t, cfg, b)
	if diff := cmp.Diff([]int{1, 2}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
	if res.Dropped != 1 {
		t.Errorf("expected one dropped issue, got %d", res.Dropped)
	}
}

func TestForeach(t *testing.T) {
	b := ir.NewBuilder()
	mainFn := b.Function("main", 0)
	rows := b.Local(mainFn, "rows", ir.TypeArray)
	k := b.Local(mainFn, "k", ir.TypeString)
	v := b.Local(mainFn, "v", ir.TypeString)
	mainFn.Body = ir.Block(
		stmt(1, ir.Assign(ir.Var(rows), ir.Array(ir.Elem(ir.Str("a"), input())))),
		ir.Foreach(ir.Var(rows), ir.Var(k), ir.Var(v), ir.Block(stmt(3, sink(ir.Var(v))))).At("a.src", 2),
	)
	e, res := runEngine(t, loadTestConfig(t), b)
	if !e.TaintOf(k.ID).HasYes() || !e.TaintOf(v.ID).HasYes() {
		t.Errorf("loop bindings should hold the taint of the collection")
	}
	if diff := cmp.Diff([]int{3}, issueLines(res.Issues)); diff != "" {
		t.Errorf("unexpected issue lines (-want +got):\n%s", diff)
	}
}

func TestDecodedProgram(t *testing.T) {
	b, err := testfsys.ReadFile("testdata/page.yaml")
	if err != nil {
		t.Fatalf("could not read testdata: %v", err)
	}
	prog, err := ir.Decode(b)
	if err != nil {
		t.Fatalf("could not decode program: %v", err)
	}
	res, err := Analyze(config.NewDiscardLogGroup(), loadTestConfig(t), prog)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if diff := cmp.Diff([]string{"main", "render", "show"}, res.SignatureNames()); diff != "" {
		t.Errorf("unexpected signatures (-want +got):\n%s", diff)
	}
	want := lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.HTMLExecTaint)
	if sig := res.Signatures["show"]; !sig.Equal(want) {
		t.Errorf("expected show to be %s, got %s", want, sig)
	}
	if len(res.Issues) != 1 || res.Issues[0].Pos.String() != "page.src:3" {
		t.Errorf("expected one issue at page.src:3, got %v", res.Issues)
	}
}
