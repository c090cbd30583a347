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

// safeBinaryOps are the operators whose result cannot carry string content
var safeBinaryOps = map[string]bool{
	"==": true, "!=": true, "===": true, "!==": true, "<": true, "<=": true, ">": true, ">=": true, "<=>": true,
	"-": true, "*": true, "/": true, "%": true, "**": true,
	"&&": true, "||": true, "xor": true,
}

// taintPreservingUnaryOps are the unary operators whose result is not a boolean or a number
var taintPreservingUnaryOps = map[string]bool{"~": true, "^": true, "@": true}

// eval computes the taint of n, updating the store and the dependency graph. Statements return
// InapplicableTaint.
func (e *Engine) eval(n *ir.Node) lattice.Taint {
	if n == nil {
		return lattice.NoTaint
	}
	if n.Pos.IsValid() {
		saved := e.pos
		e.pos = n.Pos
		defer func() { e.pos = saved }()
	}

	switch n.Kind {
	case ir.KindLit, ir.KindConst, ir.KindFuncValue, ir.KindIsset:
		return lattice.NoTaint
	case ir.KindVar:
		return e.evalVar(n)
	case ir.KindField:
		e.eval(n.X)
		if n.Sym == 0 {
			e.logger.Debugf("%s: unresolved field %s", e.pos, n.Name)
			return lattice.UnknownTaint
		}
		return e.getTaint(n.Sym)
	case ir.KindIndex:
		t := e.eval(n.X)
		e.eval(n.Y)
		return t
	case ir.KindAssign:
		return e.evalAssign(n)
	case ir.KindBinary:
		x, y := e.eval(n.X), e.eval(n.Y)
		if safeBinaryOps[n.Op] {
			return lattice.NoTaint
		}
		return lattice.Merge(x, y)
	case ir.KindUnary:
		t := e.eval(n.X)
		if taintPreservingUnaryOps[n.Op] {
			return t
		}
		return lattice.NoTaint
	case ir.KindCast:
		t := e.eval(n.X)
		if n.Type == 0 || n.Type&(ir.TypeString|ir.TypeArray|ir.TypeObject|ir.TypeMixed) != 0 {
			return t
		}
		return lattice.NoTaint
	case ir.KindArray:
		return e.evalArray(n)
	case ir.KindElem:
		return lattice.Merge(e.eval(n.X), e.eval(n.Key))
	case ir.KindConcat:
		t := lattice.NoTaint
		for _, x := range n.List {
			t = lattice.Merge(t, e.eval(x))
		}
		return t
	case ir.KindTernary:
		return e.evalTernary(n)
	case ir.KindCall:
		return e.evalCall(n)
	case ir.KindClosure:
		e.evalClosure(n)
		return lattice.NoTaint
	case ir.KindReturn:
		return e.evalReturn(n)
	case ir.KindEcho:
		return e.evalSink(n, lattice.HTMLExecTaint, "echoing expression that was not html escaped",
			lattice.NoTaint)
	case ir.KindEval:
		return e.evalSink(n, lattice.MiscExecTaint, "argument to eval or include is user controlled",
			lattice.NoTaint)
	case ir.KindShell:
		return e.evalSink(n, lattice.ShellExecTaint, "shell command contains user controlled argument",
			lattice.YesTaint)
	case ir.KindBlock:
		for _, s := range n.List {
			e.eval(s)
		}
		return lattice.InapplicableTaint
	case ir.KindExpr:
		e.eval(n.X)
		return lattice.InapplicableTaint
	case ir.KindIf, ir.KindWhile, ir.KindFor, ir.KindSwitch, ir.KindForeach, ir.KindArm, ir.KindCase:
		e.evalControl(n)
		return lattice.InapplicableTaint
	case ir.KindGlobal:
		e.evalGlobal(n)
		return lattice.InapplicableTaint
	}
	e.logger.Debugf("%s: unsupported construct %s", e.pos, n)
	return lattice.UnknownTaint
}

func (e *Engine) evalVar(n *ir.Node) lattice.Taint {
	if n.Sym == 0 {
		if n.Name != "" && e.config.IsExternalInput(n.Name) {
			return lattice.YesTaint
		}
		e.logger.Debugf("%s: variable %q is not in scope", e.pos, n.Name)
		return lattice.UnknownTaint
	}
	e.bindSymbol(n.Sym)
	return e.getTaint(n.Sym)
}

func (e *Engine) evalTernary(n *ir.Node) lattice.Taint {
	cond := e.eval(n.Cond)
	t := cond
	if n.X != nil {
		e.inBranch(func() { t = e.eval(n.X) })
	}
	f := lattice.NoTaint
	e.inBranch(func() { f = e.eval(n.Y) })
	return lattice.Merge(t, f)
}

// evalArray computes the taint of an array literal. A string carrying SQL taint stored at an implicit or integer
// key is marked with SQLNumkeyTaint, unless it is itself an element of an array stored at a string key.
func (e *Engine) evalArray(n *ir.Node) lattice.Taint {
	t := lattice.NoTaint
	for _, elem := range n.List {
		if elem.Kind != ir.KindElem {
			t = lattice.Merge(t, e.eval(elem))
			continue
		}
		value := e.eval(elem.X)
		key := e.eval(elem.Key)
		child := lattice.Merge(value, key)
		if value.Has(lattice.SQLNumkeyTaint) {
			child &^= lattice.SQLNumkeyTaint
		}
		if key.Intersects(lattice.SQLTaint) ||
			(isImplicitOrIntKey(elem.Key) && value.Intersects(lattice.SQLTaint) && isString(elem.X)) {
			child |= lattice.SQLNumkeyTaint
		}
		if elem.Sym != 0 {
			e.setTaint(elem.Sym, value, false)
			for _, src := range e.contributors(elem.X) {
				e.mergeDependencies(elem.Sym, src)
			}
		}
		t = lattice.Merge(t, child)
	}
	return t
}

// evalClosure analyzes a closure at its declaration, unless it has already been summarized
func (e *Engine) evalClosure(n *ir.Node) {
	fn := e.program.Func(n.Func)
	if fn == nil || e.IsSummarized(fn.ID) || e.inProgress[fn.ID] {
		return
	}
	e.analyze(fn, false, lattice.NoTaint)
}

func isImplicitOrIntKey(key *ir.Node) bool {
	return key == nil || key.Type.IsInt()
}

func isString(n *ir.Node) bool {
	return n != nil && n.Type.IsString()
}

func isArray(n *ir.Node) bool {
	return n != nil && (n.Kind == ir.KindArray || n.Type.IsArray())
}
