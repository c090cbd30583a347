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
	"strings"
	"unicode/utf8"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// cellID indexes the cells of a Store. Aliased cells are merged with a union-find, the cell holding the value of a
// symbol is always obtained through find.
type cellID int

type cell struct {
	parent     cellID
	taint      lattice.Taint
	set        bool
	provenance string
}

type symbolState struct {
	cell cellID
	// outer is true when the binding has been declared global in the function
	outer bool
}

// Store holds the taint of the symbols of the program. Symbols point to cells: two aliased symbols share their cell
// and observe the same taint.
type Store struct {
	cells   []cell
	symbols map[ir.SymbolID]*symbolState
}

// NewStore returns an empty store
func NewStore() *Store {
	// cell 0 is never used, so that the zero cellID is invalid
	return &Store{cells: []cell{{}}, symbols: map[ir.SymbolID]*symbolState{}}
}

func (s *Store) state(sym ir.SymbolID) *symbolState {
	st, ok := s.symbols[sym]
	if !ok {
		st = &symbolState{cell: s.newCell()}
		s.symbols[sym] = st
	}
	return st
}

func (s *Store) newCell() cellID {
	id := cellID(len(s.cells))
	s.cells = append(s.cells, cell{parent: id})
	return id
}

func (s *Store) find(c cellID) cellID {
	for s.cells[c].parent != c {
		s.cells[c].parent = s.cells[s.cells[c].parent].parent
		c = s.cells[c].parent
	}
	return c
}

func (s *Store) cellOf(sym ir.SymbolID) *cell {
	c := s.find(s.state(sym).cell)
	return &s.cells[c]
}

// Lookup returns the taint stored for sym, and false if no taint has been written yet
func (s *Store) Lookup(sym ir.SymbolID) (lattice.Taint, bool) {
	if _, ok := s.symbols[sym]; !ok {
		return lattice.NoTaint, false
	}
	c := s.cellOf(sym)
	return c.taint, c.set
}

// Provenance returns the locations that caused the taint of sym
func (s *Store) Provenance(sym ir.SymbolID) string {
	if _, ok := s.symbols[sym]; !ok {
		return ""
	}
	return s.cellOf(sym).provenance
}

func (s *Store) set(sym ir.SymbolID, t lattice.Taint, override bool) {
	c := s.cellOf(sym)
	if override || !c.set {
		c.taint = t
	} else {
		c.taint = lattice.Merge(c.taint, t)
	}
	c.set = true
}

func (s *Store) addProvenance(sym ir.SymbolID, provenance string) {
	c := s.cellOf(sym)
	c.provenance = appendProvenance(c.provenance, provenance)
}

// alias makes a and b share one cell, holding the merge of both values
func (s *Store) alias(a, b ir.SymbolID) {
	ca, cb := s.find(s.state(a).cell), s.find(s.state(b).cell)
	if ca == cb {
		return
	}
	from := s.cells[cb]
	s.cells[cb].parent = ca
	into := &s.cells[ca]
	into.taint = lattice.Merge(into.taint, from.taint)
	into.set = into.set || from.set
	into.provenance = appendProvenance(into.provenance, from.provenance)
}

func (s *Store) aliased(a, b ir.SymbolID) bool {
	return s.find(s.state(a).cell) == s.find(s.state(b).cell)
}

func (s *Store) markOuter(sym ir.SymbolID) {
	s.state(sym).outer = true
}

const (
	provenanceSep = "; "
	truncated     = "..."
)

// appendProvenance adds the tags of src that are not in dst at the end of dst. The result is cut after
// config.MaxProvenanceLength characters.
func appendProvenance(dst, src string) string {
	if src == "" || strings.HasSuffix(dst, truncated) {
		return dst
	}
	tags := map[string]bool{}
	for _, tag := range strings.Split(dst, provenanceSep) {
		tags[tag] = true
	}
	for _, tag := range strings.Split(strings.TrimSuffix(src, truncated), provenanceSep) {
		if tag == "" || tags[tag] {
			continue
		}
		tags[tag] = true
		if dst == "" {
			dst = tag
		} else {
			dst = dst + provenanceSep + tag
		}
		if len(dst) > config.MaxProvenanceLength {
			cut := config.MaxProvenanceLength
			for cut > 0 && !utf8.RuneStart(dst[cut]) {
				cut--
			}
			return dst[:cut] + truncated
		}
	}
	return dst
}

// defaultTaint is the taint of a value of type t that has not been written yet
func defaultTaint(t ir.TypeSet) lattice.Taint {
	if t.IsSafe() {
		return lattice.NoTaint
	}
	return lattice.UnknownTaint
}

// getTaint returns the taint of sym, derived from its type if nothing has been written yet
func (e *Engine) getTaint(sym ir.SymbolID) lattice.Taint {
	if t, ok := e.store.Lookup(sym); ok {
		return t
	}
	s := e.program.Symbol(sym)
	if s == nil {
		return lattice.UnknownTaint
	}
	return defaultTaint(s.Type)
}

// isOuter returns true when sym is not a variable of the function being analyzed
func (e *Engine) isOuter(sym ir.SymbolID) bool {
	s := e.program.Symbol(sym)
	if s == nil {
		return true
	}
	if s.Kind == ir.SymGlobal || s.Kind == ir.SymField {
		return true
	}
	if st, ok := e.store.symbols[sym]; ok && st.outer {
		return true
	}
	fr := e.frame()
	return fr != nil && s.Owner != 0 && s.Owner != fr.fn.ID
}

// setTaint writes t into sym. The write replaces the current taint only when override is true and the code
// writing is known to run: writes in a branch, in a script scope or to a variable outside the function only add
// taint. A write in a branch is also merged into the binding with the same name of the enclosing function scope.
func (e *Engine) setTaint(sym ir.SymbolID, t lattice.Taint, override bool) {
	sc := e.scope()
	outer := e.isOuter(sym)
	if sc == nil || sc.branch || sc.script || outer {
		override = false
	}
	if sc != nil && sc.branch && !outer {
		e.writeThrough(sc, sym, t)
	}
	e.store.set(sym, t, override)
	if t.Intersects(lattice.YesExecTaint) {
		e.store.addProvenance(sym, e.tag())
	}
}

func (e *Engine) writeThrough(sc *scope, sym ir.SymbolID, t lattice.Taint) {
	s := e.program.Symbol(sym)
	if s == nil {
		return
	}
	fs := sc.enclosingNonBranch()
	other, ok := fs.lookup(s.Name)
	if !ok {
		e.logger.Tracef("%s: %s does not exist outside branch", e.pos, s.Name)
		return
	}
	if other == sym {
		return
	}
	e.store.set(other, t, false)
	e.store.alias(sym, other)
	e.graph.shareBackward(sym, other)
}
