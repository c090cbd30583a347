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
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/google/go-cmp/cmp"
)

func TestLinks(t *testing.T) {
	g := NewDependencyGraph()
	g.Link(1, 1, 0)
	g.Link(1, 1, 0)
	g.Link(2, 1, 0)
	g.Link(1, 2, 1)
	if g.NumLinks() != 3 {
		t.Errorf("expected 3 links, got %d", g.NumLinks())
	}
	if diff := cmp.Diff([]ParamRef{{1, 0}, {2, 1}}, g.Backward(1)); diff != "" {
		t.Errorf("unexpected backward links (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ir.SymbolID{1, 2}, g.Forward(1, 0)); diff != "" {
		t.Errorf("unexpected forward links (-want +got):\n%s", diff)
	}
	if g.HasLinks(3) || g.Backward(3) != nil {
		t.Errorf("symbol 3 has no link")
	}
}

func TestMergeDependencies(t *testing.T) {
	g := NewDependencyGraph()
	g.Link(1, 1, 0)
	g.Link(2, 1, 1)
	g.mergeDependencies(3, 1)
	g.mergeDependencies(3, 2)
	g.mergeDependencies(3, 3)
	if diff := cmp.Diff([]ParamRef{{1, 0}, {1, 1}}, g.Backward(3)); diff != "" {
		t.Errorf("unexpected backward links (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ir.SymbolID{1, 3}, g.Forward(1, 0)); diff != "" {
		t.Errorf("unexpected forward links (-want +got):\n%s", diff)
	}
}

func TestShareBackward(t *testing.T) {
	g := NewDependencyGraph()
	g.Link(1, 1, 0)
	g.Link(2, 2, 0)
	g.shareBackward(1, 2)
	want := []ParamRef{{1, 0}, {2, 0}}
	for _, sym := range []ir.SymbolID{1, 2} {
		if diff := cmp.Diff(want, g.Backward(sym)); diff != "" {
			t.Errorf("symbol %d: unexpected backward links (-want +got):\n%s", sym, diff)
		}
	}
	// links added to one of the symbols are seen by the other
	g.Link(2, 3, 0)
	if len(g.Backward(1)) != 3 {
		t.Errorf("expected 3 links, got %v", g.Backward(1))
	}
	g.shareBackward(3, 1)
	if len(g.Backward(3)) != 3 {
		t.Errorf("expected 3 links, got %v", g.Backward(3))
	}
}

func TestInvalidLink(t *testing.T) {
	g := NewDependencyGraph()
	g.Link(1, 0, 0)
	g.Link(1, 1, -1)
	if g.NumLinks() != 0 {
		t.Errorf("invalid links should be skipped")
	}

	prog, err := ir.NewBuilder().Program()
	if err != nil {
		t.Fatalf("invalid program: %v", err)
	}
	cfg := config.NewDefault()
	cfg.StrictInvariants = true
	e := NewEngine(config.NewDiscardLogGroup(), cfg, prog)
	defer func() {
		if _, ok := recover().(invariantViolation); !ok {
			t.Errorf("expected an invariant violation")
		}
	}()
	e.Graph().Link(1, 0, 0)
}

func TestFloods(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function("f", 0)
	p := b.Param(f, "p", ir.TypeString, false)
	y := b.Local(f, "y", ir.TypeString)
	prog, err := b.Program()
	if err != nil {
		t.Fatalf("invalid program: %v", err)
	}
	e := NewEngine(config.NewDiscardLogGroup(), config.NewDefault(), prog)
	e.Graph().Link(p.ID, f.ID, 0)
	e.Graph().Link(y.ID, f.ID, 0)
	e.store.set(p.ID, lattice.NoTaint, true)
	e.store.set(y.ID, lattice.NoTaint, true)

	e.floodExecBackward(y.ID, lattice.SQLExecTaint|lattice.HTMLTaint)
	sig, ok := e.Signature(f.ID)
	if !ok {
		t.Fatalf("f should have a signature")
	}
	if want := lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.SQLExecTaint); !sig.Equal(want) {
		t.Errorf("expected %s, got %s", want, sig)
	}
	if !e.TaintOf(y.ID).Has(lattice.SQLExecTaint) {
		t.Errorf("y should be marked, got %s", e.TaintOf(y.ID))
	}

	e.floodYesForward(f.ID, 0, lattice.HTMLTaint|lattice.UnknownTaint)
	for _, sym := range []ir.SymbolID{p.ID, y.ID} {
		if got := e.TaintOf(sym); !got.Has(lattice.HTMLTaint) || got.Has(lattice.UnknownTaint) {
			t.Errorf("symbol %d: expected html only from the flood, got %s", sym, got)
		}
	}
}

func TestExport(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function("f", 0)
	p := b.Param(f, "p", ir.TypeString, false)
	y := b.Local(f, "y", ir.TypeString)
	prog, err := b.Program()
	if err != nil {
		t.Fatalf("invalid program: %v", err)
	}
	g := NewDependencyGraph()
	g.Link(p.ID, f.ID, 0)
	g.Link(y.ID, f.ID, 0)
	out := g.Export(prog)
	if out.Nodes().Len() != 3 {
		t.Errorf("expected 3 nodes, got %d", out.Nodes().Len())
	}
	if out.Edges().Len() != 2 {
		t.Errorf("expected 2 edges, got %d", out.Edges().Len())
	}
	n, ok := out.Node(int64(y.ID)).(DepNode)
	if !ok || n.Label != y.String() {
		t.Errorf("unexpected node for y: %v", out.Node(int64(y.ID)))
	}
}
