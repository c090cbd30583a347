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

package graphutil

import (
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CallGraph is the graph of direct calls between the functions of a program, where closures are callees of the
// function declaring them. It implements the methods to satisfy yourbasic's graph.Iterator, over node indices, and
// Gonum's graph.Directed, over node ids that are the function ids.
type CallGraph struct {
	// Keys are the function ids, sorted. Node index v is the function Keys[v].
	Keys []ir.FuncID

	index map[ir.FuncID]int

	// Edges is an adjacency matrix over node indices: Edges[x][y] means that Keys[x] calls Keys[y]
	Edges map[int]map[int]bool
}

// NewCallGraph builds the call graph of the program
func NewCallGraph(p *ir.Program) *CallGraph {
	c := &CallGraph{
		Keys:  make([]ir.FuncID, 0, len(p.Functions)),
		index: make(map[ir.FuncID]int, len(p.Functions)),
		Edges: make(map[int]map[int]bool, len(p.Functions)),
	}
	for _, f := range p.Functions {
		c.Keys = append(c.Keys, f.ID)
	}
	slices.Sort(c.Keys)
	for i, id := range c.Keys {
		c.index[id] = i
	}
	for _, f := range p.Functions {
		out := map[int]bool{}
		for _, callee := range p.Callees(f) {
			if j, ok := c.index[callee]; ok {
				out[j] = true
			}
		}
		c.Edges[c.index[f.ID]] = out
	}
	return c
}

// Order implements the order of the graph.Iterator interface for the CallGraph
func (c *CallGraph) Order() int {
	return len(c.Keys)
}

// Visit implements the Visit method of the graph.Iterator interface. Successors are visited in increasing order.
func (c *CallGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range sortedKeys(c.Edges[v]) {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// HasSelfLoop returns true when the function calls itself directly
func (c *CallGraph) HasSelfLoop(id ir.FuncID) bool {
	v, ok := c.index[id]
	return ok && c.Edges[v][v]
}

// Node implements graph.Graph
func (c *CallGraph) Node(id int64) graph.Node {
	if _, ok := c.index[ir.FuncID(id)]; !ok {
		return nil
	}
	return simple.Node(id)
}

// Nodes implements graph.Graph. Nodes are returned in increasing id order.
func (c *CallGraph) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(c.Keys))
	for i, id := range c.Keys {
		nodes[i] = simple.Node(id)
	}
	return iterator.NewOrderedNodes(nodes)
}

// From implements graph.Graph. Self loops are omitted.
func (c *CallGraph) From(id int64) graph.Nodes {
	v, ok := c.index[ir.FuncID(id)]
	if !ok {
		return iterator.NewOrderedNodes(nil)
	}
	var nodes []graph.Node
	for _, w := range sortedKeys(c.Edges[v]) {
		if w != v {
			nodes = append(nodes, simple.Node(c.Keys[w]))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

// To implements graph.Directed. Self loops are omitted.
func (c *CallGraph) To(id int64) graph.Nodes {
	v, ok := c.index[ir.FuncID(id)]
	if !ok {
		return iterator.NewOrderedNodes(nil)
	}
	var nodes []graph.Node
	for u := range c.Keys {
		if u != v && c.Edges[u][v] {
			nodes = append(nodes, simple.Node(c.Keys[u]))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween implements graph.Graph
func (c *CallGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.HasEdgeFromTo(xid, yid) || c.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo implements graph.Directed
func (c *CallGraph) HasEdgeFromTo(uid, vid int64) bool {
	u, ok1 := c.index[ir.FuncID(uid)]
	v, ok2 := c.index[ir.FuncID(vid)]
	return ok1 && ok2 && u != v && c.Edges[u][v]
}

// Edge implements graph.Graph
func (c *CallGraph) Edge(uid, vid int64) graph.Edge {
	if !c.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

// BottomUpOrder returns the strongly connected components of the call graph such that callees appear before
// their callers. Functions inside a component are sorted by id.
func (c *CallGraph) BottomUpOrder() [][]ir.FuncID {
	sccs := topo.TarjanSCC(c)
	res := make([][]ir.FuncID, 0, len(sccs))
	for _, scc := range sccs {
		ids := make([]ir.FuncID, len(scc))
		for i, n := range scc {
			ids[i] = ir.FuncID(n.ID())
		}
		slices.Sort(ids)
		res = append(res, ids)
	}
	return res
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
