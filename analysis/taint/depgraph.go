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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/simple"
)

type linkID int

type linkSetID int

// ParamRef identifies the parameter at Index of function Func
type ParamRef struct {
	Func  ir.FuncID
	Index int
}

type link struct {
	sym   ir.SymbolID
	param ParamRef
}

// linkSet is the set of back links of one or more symbols. Sets of aliased symbols are merged with a union-find.
type linkSet struct {
	parent linkSetID
	links  map[linkID]bool
}

// DependencyGraph links symbols to the function parameters whose value they may hold. The forward direction
// (parameter to symbols) propagates taint passed to a function to the state it modifies; the backward direction
// (symbol to parameters) marks as sinks the parameters whose value reaches a sink.
//
// Links are stored in an arena and referenced by id from both directions.
type DependencyGraph struct {
	links   []link
	index   map[link]linkID
	forward map[ParamRef][]linkID
	sets    []linkSet
	setOf   map[ir.SymbolID]linkSetID
	// assert is called on internal invariants
	assert func(cond bool, format string, args ...any) bool
}

// NewDependencyGraph returns an empty graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		links:   []link{{}},
		index:   map[link]linkID{},
		forward: map[ParamRef][]linkID{},
		sets:    []linkSet{{}},
		setOf:   map[ir.SymbolID]linkSetID{},
		assert:  func(cond bool, _ string, _ ...any) bool { return cond },
	}
}

func (g *DependencyGraph) findSet(s linkSetID) linkSetID {
	for g.sets[s].parent != s {
		g.sets[s].parent = g.sets[g.sets[s].parent].parent
		s = g.sets[s].parent
	}
	return s
}

func (g *DependencyGraph) backSet(sym ir.SymbolID, create bool) *linkSet {
	id, ok := g.setOf[sym]
	if !ok {
		if !create {
			return nil
		}
		id = linkSetID(len(g.sets))
		g.sets = append(g.sets, linkSet{parent: id, links: map[linkID]bool{}})
		g.setOf[sym] = id
	}
	return &g.sets[g.findSet(id)]
}

// Link records that sym may hold the value of parameter index of fn
func (g *DependencyGraph) Link(sym ir.SymbolID, fn ir.FuncID, index int) {
	if !g.assert(index >= 0 && fn != 0, "invalid link of symbol %d to parameter %d of function %d", sym, index,
		fn) {
		return
	}
	l := link{sym: sym, param: ParamRef{Func: fn, Index: index}}
	id, ok := g.index[l]
	if !ok {
		id = linkID(len(g.links))
		g.links = append(g.links, l)
		g.index[l] = id
		g.forward[l.param] = append(g.forward[l.param], id)
	}
	g.backSet(sym, true).links[id] = true
}

// Backward returns the parameters linked to sym, sorted
func (g *DependencyGraph) Backward(sym ir.SymbolID) []ParamRef {
	set := g.backSet(sym, false)
	if set == nil {
		return nil
	}
	seen := map[ParamRef]bool{}
	for id := range set.links {
		if !g.assert(id > 0 && int(id) < len(g.links), "unknown link %d in back links of symbol %d", id, sym) {
			continue
		}
		seen[g.links[id].param] = true
	}
	res := maps.Keys(seen)
	slices.SortFunc(res, func(a, b ParamRef) bool {
		return a.Func < b.Func || (a.Func == b.Func && a.Index < b.Index)
	})
	return res
}

// Forward returns the symbols linked to parameter index of fn, sorted
func (g *DependencyGraph) Forward(fn ir.FuncID, index int) []ir.SymbolID {
	var res []ir.SymbolID
	for _, id := range g.forward[ParamRef{Func: fn, Index: index}] {
		if !g.assert(id > 0 && int(id) < len(g.links), "unknown link %d in forward links of %d:%d", id, fn,
			index) {
			continue
		}
		if !slices.Contains(res, g.links[id].sym) {
			res = append(res, g.links[id].sym)
		}
	}
	slices.Sort(res)
	return res
}

// HasLinks returns true when sym is linked to some parameter
func (g *DependencyGraph) HasLinks(sym ir.SymbolID) bool {
	set := g.backSet(sym, false)
	return set != nil && len(set.links) > 0
}

// NumLinks returns the number of links recorded
func (g *DependencyGraph) NumLinks() int {
	return len(g.links) - 1
}

// mergeDependencies is called when target receives the value of source: every parameter source is linked to is
// linked to target as well.
func (g *DependencyGraph) mergeDependencies(target, source ir.SymbolID) {
	if target == source {
		return
	}
	for _, p := range g.Backward(source) {
		g.Link(target, p.Func, p.Index)
	}
}

// shareBackward makes a and b share the same set of back links
func (g *DependencyGraph) shareBackward(a, b ir.SymbolID) {
	g.backSet(a, true)
	g.backSet(b, true)
	ia, ib := g.findSet(g.setOf[a]), g.findSet(g.setOf[b])
	if ia == ib {
		return
	}
	for id := range g.sets[ib].links {
		g.sets[ia].links[id] = true
	}
	g.sets[ib].parent = ia
	g.sets[ib].links = nil
}

// floodExecBackward is called when the value of sym is used at a sink: the parameters linked to sym are marked with
// exec, and so is sym.
func (e *Engine) floodExecBackward(sym ir.SymbolID, exec lattice.Taint) {
	exec &= lattice.ExecTaint
	if exec == lattice.NoTaint {
		return
	}
	byFunc := map[ir.FuncID]lattice.Signature{}
	for _, p := range e.graph.Backward(sym) {
		if !e.assertf(e.program.Func(p.Func) != nil, "symbol %d linked to undefined function %d", sym, p.Func) {
			continue
		}
		sig, ok := byFunc[p.Func]
		if !ok {
			sig = lattice.NewSignature(lattice.NoTaint)
		}
		byFunc[p.Func] = sig.WithParam(p.Index, exec)
	}
	funcs := maps.Keys(byFunc)
	slices.Sort(funcs)
	for _, fn := range funcs {
		e.logger.Tracef("%s: parameters %s of %s marked by %s", e.pos, byFunc[fn], e.program.Func(fn), e.symbolName(sym))
		e.setFuncTaint(fn, byFunc[fn], false)
	}
	e.setTaint(sym, lattice.Merge(e.getTaint(sym), exec), false)
}

// floodYesForward is called when a value carrying yes is passed as argument index of fn: every symbol that may
// hold the value of the parameter is tainted with yes.
func (e *Engine) floodYesForward(fn ir.FuncID, index int, yes lattice.Taint) {
	yes &= lattice.YesTaint
	if yes == lattice.NoTaint {
		return
	}
	for _, sym := range e.graph.Forward(fn, index) {
		e.setTaint(sym, lattice.Merge(e.getTaint(sym), yes), false)
	}
}

// DepNode is a node of the exported dependency graph
type DepNode struct {
	id    int64
	Label string
}

// ID implements graph.Node
func (n DepNode) ID() int64 { return n.id }

// DOTID names the node in dot output
func (n DepNode) DOTID() string { return fmt.Sprintf("n%d", n.id) }

// Attributes labels the node in dot output
func (n DepNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: n.Label}}
}

// Export returns the graph as a directed graph where there is an edge from every function parameter to the symbols
// linked to it. Symbol nodes have the id of the symbol.
func (g *DependencyGraph) Export(p *ir.Program) *simple.DirectedGraph {
	out := simple.NewDirectedGraph()
	var next int64
	for _, s := range p.Symbols {
		if int64(s.ID) > next {
			next = int64(s.ID)
		}
	}
	paramNodes := map[ParamRef]graph.Node{}
	symNode := func(sym ir.SymbolID) graph.Node {
		if n := out.Node(int64(sym)); n != nil {
			return n
		}
		label := fmt.Sprintf("#%d", sym)
		if s := p.Symbol(sym); s != nil {
			label = s.String()
		}
		n := DepNode{id: int64(sym), Label: label}
		out.AddNode(n)
		return n
	}
	params := maps.Keys(g.forward)
	slices.SortFunc(params, func(a, b ParamRef) bool {
		return a.Func < b.Func || (a.Func == b.Func && a.Index < b.Index)
	})
	for _, param := range params {
		pn, ok := paramNodes[param]
		if !ok {
			next++
			label := fmt.Sprintf("%d[%d]", param.Func, param.Index)
			if f := p.Func(param.Func); f != nil {
				label = fmt.Sprintf("%s[%d]", f.Name, param.Index)
			}
			pn = DepNode{id: next, Label: label}
			out.AddNode(pn)
			paramNodes[param] = pn
		}
		for _, sym := range g.Forward(param.Func, param.Index) {
			sn := symNode(sym)
			out.SetEdge(simple.Edge{F: pn, T: sn})
		}
	}
	return out
}
