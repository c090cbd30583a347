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
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// target is the evaluated left-hand side of an assignment
type target struct {
	syms  []ir.SymbolID
	taint lattice.Taint
	// index is the taint of the index expression of an index target
	index lattice.Taint
}

func (e *Engine) evalTarget(n *ir.Node) target {
	switch n.Kind {
	case ir.KindVar:
		if n.Sym == 0 {
			return target{taint: e.evalVar(n)}
		}
		e.bindSymbol(n.Sym)
		return target{syms: []ir.SymbolID{n.Sym}, taint: e.getTaint(n.Sym)}
	case ir.KindField:
		e.eval(n.X)
		if n.Sym == 0 {
			e.logger.Debugf("%s: cannot assign unresolved field %s", e.pos, n.Name)
			return target{taint: lattice.UnknownTaint}
		}
		return target{syms: []ir.SymbolID{n.Sym}, taint: e.getTaint(n.Sym)}
	case ir.KindIndex:
		base := e.eval(n.X)
		index := e.eval(n.Y)
		return target{syms: e.contributors(n.X), taint: base, index: index}
	case ir.KindConcat, ir.KindArray:
		// destructuring: every element receives the whole value
		var res target
		for _, x := range n.List {
			if x.Kind == ir.KindElem {
				x = x.X
			}
			t := e.evalTarget(x)
			res.syms = append(res.syms, t.syms...)
			res.taint |= t.taint
		}
		return res
	}
	e.logger.Debugf("%s: unsupported assignment target %s", e.pos, n)
	return target{taint: e.eval(n)}
}

// evalAssign evaluates lhs = rhs and lhs op= rhs. The assignment replaces the taint of a variable, and is merged
// into the taint of a field or of the array an element is written to.
func (e *Engine) evalAssign(n *ir.Node) lattice.Taint {
	lhs := e.evalTarget(n.X)
	rhs := e.eval(n.Y)
	if n.Op != "" {
		rhs = lattice.Merge(rhs, lhs.taint)
	}
	if n.X.Kind == ir.KindIndex {
		rhs = numkey(rhs, n.X.Y, lhs.index, n.Y)
	}

	e.maybeEmitIssue(lhs.taint, rhs, n.Y,
		"assigning a tainted value to a variable that later does something unsafe with it")

	override := n.X.Kind != ir.KindIndex && n.X.Kind != ir.KindField
	sources := e.contributors(n.Y)
	for _, sym := range lhs.syms {
		e.setTaint(sym, rhs, override)
		for _, src := range sources {
			e.mergeDependencies(sym, src)
		}
	}
	for _, c := range e.collaborators {
		c.AssignVisited(e, n)
	}
	return rhs
}

// numkey applies the numeric key rule to a value of taint rhs stored in an array at index: a string carrying SQL
// taint stored at an implicit or integer key, or any value stored at a key carrying SQL taint, is marked with
// SQLNumkeyTaint. A value already marked is an array of such strings, and storing it as an element is safe.
func numkey(rhs lattice.Taint, index *ir.Node, indexTaint lattice.Taint, value *ir.Node) lattice.Taint {
	if rhs.Has(lattice.SQLNumkeyTaint) {
		rhs &^= lattice.SQLNumkeyTaint
	} else if rhs.Intersects(lattice.SQLTaint) && isImplicitOrIntKey(index) && !isArray(value) {
		rhs |= lattice.SQLNumkeyTaint
	}
	if indexTaint.Intersects(lattice.SQLTaint) {
		rhs |= lattice.SQLNumkeyTaint
	}
	return rhs
}

// evalReturn attributes the taint of the returned value to the parameters of the current function and stores it
// in the function signature.
func (e *Engine) evalReturn(n *ir.Node) lattice.Taint {
	fr := e.frame()
	t := e.eval(n.X)
	if fr == nil {
		e.logger.Debugf("%s: return outside of a function", e.pos)
		return lattice.UnknownTaint
	}
	if n.X == nil {
		return lattice.InapplicableTaint
	}
	if fr.fn.Script {
		e.logger.Debugf("%s: return in top-level code of %s", e.pos, fr.fn)
		return lattice.InapplicableTaint
	}
	sig := e.matchTaintToParam(n.X, t, fr.fn)
	replace := fr.reanalysis && !fr.returned
	fr.returned = true
	e.setFuncTaint(fr.fn.ID, sig, replace)
	if sig.Overall.Intersects(lattice.YesExecTaint) {
		fs := e.funcState(fr.fn.ID)
		fs.provenance = appendProvenance(fs.provenance, e.provenance(n.X))
	}
	for _, c := range e.collaborators {
		c.ReturnVisited(e, fr.fn, n, t)
	}
	return lattice.InapplicableTaint
}

// evalSink evaluates a construct using its operand in a way that is unsafe for the content exec stands for. When
// the use looks safe, the symbols contributing to the operand are marked, so that the functions they are linked to
// learn that their parameters reach the sink.
func (e *Engine) evalSink(n *ir.Node, exec lattice.Taint, message string, result lattice.Taint) lattice.Taint {
	t := e.eval(n.X)
	e.maybeEmitIssue(exec, t, n.X, message)
	if n.X != nil && lattice.IsSafeAssignment(exec, t) {
		for _, sym := range e.contributors(n.X) {
			e.logger.Tracef("%s: %s reaches a %s sink", e.pos, e.symbolName(sym), lattice.Kind(exec))
			e.floodExecBackward(sym, exec)
		}
	}
	return result
}

// evalControl evaluates conditionals and loops. Conditions are evaluated in the current scope, the code that may
// not run is evaluated in branch scopes.
func (e *Engine) evalControl(n *ir.Node) {
	switch n.Kind {
	case ir.KindIf:
		for _, arm := range n.List {
			e.evalControl(arm)
		}
	case ir.KindArm:
		e.eval(n.Cond)
		e.inBranch(func() { e.eval(n.Body) })
	case ir.KindWhile:
		e.eval(n.Cond)
		e.inBranch(func() { e.eval(n.Body) })
	case ir.KindFor:
		e.eval(n.Init)
		e.eval(n.Cond)
		e.inBranch(func() {
			e.eval(n.Body)
			e.eval(n.Post)
		})
	case ir.KindSwitch:
		e.eval(n.X)
		for _, c := range n.List {
			e.evalControl(c)
		}
	case ir.KindCase:
		for _, v := range n.List {
			e.eval(v)
		}
		e.inBranch(func() { e.eval(n.Body) })
	case ir.KindForeach:
		e.initForeach(n)
		e.inBranch(func() { e.eval(n.Body) })
	}
}

// evalGlobal binds a local variable to a global one: both observe the same taint from now on
func (e *Engine) evalGlobal(n *ir.Node) {
	if n.Sym == 0 || n.X == nil || n.X.Sym == 0 {
		e.logger.Debugf("%s: unresolved global declaration %s", e.pos, n.Name)
		return
	}
	global := n.X.Sym
	if _, ok := e.store.Lookup(global); !ok {
		e.store.set(global, lattice.NoTaint, true)
	}
	if _, ok := e.store.Lookup(n.Sym); ok {
		e.logger.Debugf("%s: %s already has a taint at its global declaration", e.pos, e.symbolName(n.Sym))
	}
	e.store.alias(global, n.Sym)
	e.store.markOuter(n.Sym)
	e.bindSymbol(n.Sym)
}
