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

// contributors returns the symbols whose taint flows into the value of n. Only variables and fields are returned:
// the result of a call is not attributed to the symbols of its arguments.
func (e *Engine) contributors(n *ir.Node) []ir.SymbolID {
	var res []ir.SymbolID
	seen := map[ir.SymbolID]bool{}
	var visit func(n *ir.Node)
	visit = func(n *ir.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case ir.KindVar, ir.KindField:
			if n.Sym != 0 && !seen[n.Sym] {
				seen[n.Sym] = true
				res = append(res, n.Sym)
			}
		case ir.KindConcat, ir.KindArray:
			for _, x := range n.List {
				visit(x)
			}
		case ir.KindElem:
			visit(n.Key)
			visit(n.X)
		case ir.KindCast, ir.KindUnary, ir.KindIndex, ir.KindAssign:
			visit(n.X)
		case ir.KindBinary:
			visit(n.X)
			visit(n.Y)
		case ir.KindTernary:
			if n.X == nil {
				visit(n.Cond)
			} else {
				visit(n.X)
			}
			visit(n.Y)
		}
	}
	visit(n)
	return res
}

// provenance returns the provenance of the taint of n: the tags of the symbols contributing to it or, when they
// have none, the tags of every symbol and function referenced by n.
func (e *Engine) provenance(n *ir.Node) string {
	p := ""
	for _, sym := range e.contributors(n) {
		p = appendProvenance(p, e.store.Provenance(sym))
	}
	if p != "" {
		return p
	}
	ir.Inspect(n, func(x *ir.Node) bool {
		switch x.Kind {
		case ir.KindClosure:
			return false
		case ir.KindVar, ir.KindField:
			if x.Sym != 0 {
				p = appendProvenance(p, e.store.Provenance(x.Sym))
			}
		case ir.KindCall:
			if fs, ok := e.funcs[x.Func]; ok {
				p = appendProvenance(p, fs.provenance)
			}
		}
		return true
	})
	return p
}

// matchTaintToParam attributes the taint t of the expression n returned by fn to the parameters of fn. The taint
// of a contributing symbol linked to a parameter of fn is attributed to that parameter; the taint that cannot be
// attributed is the overall taint of the signature.
func (e *Engine) matchTaintToParam(n *ir.Node, t lattice.Taint, fn *ir.Function) lattice.Signature {
	sig := lattice.NewSignature(lattice.NoTaint)
	if n == nil {
		sig.Overall = t
		return sig
	}
	remaining := t
	other := lattice.NoTaint
	for _, sym := range e.contributors(n) {
		c := e.getTaint(sym)
		refs := e.graph.Backward(sym)
		if len(refs) == 0 {
			e.logger.Tracef("%s: %s is not linked to a parameter", e.pos, e.symbolName(sym))
			other |= c
			remaining &^= c
			continue
		}
		for _, ref := range refs {
			remaining &^= c
			if ref.Func == fn.ID {
				cur, _ := sig.Param(ref.Index)
				sig = sig.WithParam(ref.Index, cur|c)
			} else {
				other |= c
			}
		}
	}
	sig.Overall = (other | remaining) & t
	return sig
}
