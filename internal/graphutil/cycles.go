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
	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds all elementary cycles in the call graph. Each cycle starts and ends with the same
// function.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
func FindAllElementaryCycles(cg *CallGraph) [][]ir.FuncID {
	s := &state{
		blocked: map[int]bool{},
		blist:   map[int]map[int]bool{},
		stack:   []int{},
		cycles:  [][]int{},
	}
	start := 0
	for start < cg.Order() {
		sub := subgraph{cg, start, nil}
		components := graph.StrongComponents(sub)
		least := -1
		var leastComponent []int
		for _, component := range components {
			if !sub.includes(component[0]) || !hasCycle(cg, component) {
				continue
			}
			m := component[0]
			for _, v := range component {
				if v < m {
					m = v
				}
			}
			if least < 0 || m < least {
				least = m
				leastComponent = component
			}
		}
		if least < 0 {
			break
		}
		members := make(map[int]bool, len(leastComponent))
		for _, v := range leastComponent {
			members[v] = true
		}
		s.stack = []int{}
		s.blocked = map[int]bool{}
		s.blist = map[int]map[int]bool{}
		s.circuit(least, least, subgraph{cg, least, members})
		start = least + 1
	}
	res := make([][]ir.FuncID, len(s.cycles))
	for i, cycle := range s.cycles {
		res[i] = make([]ir.FuncID, len(cycle))
		for j, v := range cycle {
			res[i][j] = cg.Keys[v]
		}
	}
	return res
}

func hasCycle(cg *CallGraph, component []int) bool {
	return len(component) >= 2 || (len(component) == 1 && cg.Edges[component[0]][component[0]])
}

// subgraph is the subgraph of the call graph induced by the nodes with index at least min, and in members when
// members is not nil
type subgraph struct {
	g       *CallGraph
	min     int
	members map[int]bool
}

func (s subgraph) includes(v int) bool {
	return v >= s.min && (s.members == nil || s.members[v])
}

func (s subgraph) Order() int {
	return s.g.Order()
}

func (s subgraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if !s.includes(v) {
		return false
	}
	return s.g.Visit(v, func(w int, c int64) bool {
		if !s.includes(w) {
			return false
		}
		return do(w, c)
	})
}

type state struct {
	blocked map[int]bool
	blist   map[int]map[int]bool
	stack   []int
	cycles  [][]int
}

func (s *state) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int, i int, g subgraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	g.Visit(v, func(w int, _ int64) bool {
		if w == i {
			stackCopy := make([]int, len(s.stack))
			copy(stackCopy, s.stack)
			stackCopy = append(stackCopy, w)
			s.cycles = append(s.cycles, stackCopy)
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, i, g) {
				f = true
			}
		}
		return false
	})

	if f {
		s.unblock(v)
	} else {
		g.Visit(v, func(w int, _ int64) bool {
			m := s.blist[w]
			if m != nil {
				s.blist[w][v] = true
			} else {
				s.blist[w] = map[int]bool{v: true}
			}
			return false
		})
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
