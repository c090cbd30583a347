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

// initParams sets the taint of the parameters of fn before its body is evaluated. A parameter of a safe type is
// not tainted. Other parameters preserve the taint of the arguments and are linked to fn, so that facts learned at
// call sites flow to the symbols depending on them.
func (e *Engine) initParams(fn *ir.Function) {
	for i, p := range fn.Params {
		e.bindSymbol(p.Sym)
		s := e.program.Symbol(p.Sym)
		if s != nil && s.Type.IsSafe() {
			e.store.set(p.Sym, lattice.NoTaint, true)
			continue
		}
		e.store.set(p.Sym, lattice.PreserveTaint, true)
		e.graph.Link(p.Sym, fn.ID, i)
		if s != nil && e.config.IsSourceType(s.TypeName) {
			e.logger.Tracef("%s: parameter %s of %s has source type %s", fn.Pos, s.Name, fn, s.TypeName)
			e.store.set(p.Sym, lattice.YesTaint, true)
			e.store.addProvenance(p.Sym, posOr(s.Pos, fn.Pos).String())
		}
	}
	for _, c := range e.collaborators {
		c.SeedParameters(e, fn)
	}
}

// initForeach assigns the taint of the collection of a foreach loop to the key and value bindings, before the
// body of the loop is evaluated.
func (e *Engine) initForeach(n *ir.Node) {
	t := e.eval(n.X)
	sources := e.contributors(n.X)
	for _, binding := range []*ir.Node{n.Y, n.Key} {
		if binding == nil {
			continue
		}
		if binding.Kind != ir.KindVar || binding.Sym == 0 {
			e.logger.Debugf("%s: unsupported foreach binding %s", e.pos, binding)
			continue
		}
		e.bindSymbol(binding.Sym)
		e.setTaint(binding.Sym, t, true)
		for _, src := range sources {
			e.mergeDependencies(binding.Sym, src)
		}
	}
}

// mergeDependencies records that the value of source flows into target
func (e *Engine) mergeDependencies(target, source ir.SymbolID) {
	if target == source {
		return
	}
	if e.getTaint(source).Intersects(lattice.YesExecTaint) {
		e.store.addProvenance(target, e.store.Provenance(source))
	}
	e.graph.mergeDependencies(target, source)
}

func posOr(p, q ir.Pos) ir.Pos {
	if p.IsValid() {
		return p
	}
	return q
}
