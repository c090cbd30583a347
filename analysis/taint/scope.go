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

import "github.com/awslabs/ar-go-taintcheck/analysis/ir"

// scope is a lexical scope of the function being analyzed. The root scope of a function is a function scope, or a
// script scope for top-level code. Conditionally executed code runs in branch scopes chained to their parent.
type scope struct {
	parent   *scope
	branch   bool
	script   bool
	bindings map[string]ir.SymbolID
}

func newFunctionScope(script bool) *scope {
	return &scope{script: script, bindings: map[string]ir.SymbolID{}}
}

func (s *scope) newBranch() *scope {
	return &scope{parent: s, branch: true, script: s.script, bindings: map[string]ir.SymbolID{}}
}

func (s *scope) bind(name string, sym ir.SymbolID) {
	if name != "" {
		s.bindings[name] = sym
	}
}

func (s *scope) lookup(name string) (ir.SymbolID, bool) {
	sym, ok := s.bindings[name]
	return sym, ok
}

func (s *scope) enclosingNonBranch() *scope {
	cur := s
	for cur.branch && cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// bindSymbol records that the variable sym is referenced in the current scope. Globals and fields are not bound.
func (e *Engine) bindSymbol(sym ir.SymbolID) {
	sc := e.scope()
	s := e.program.Symbol(sym)
	if sc == nil || s == nil || s.Kind == ir.SymGlobal || s.Kind == ir.SymField {
		return
	}
	sc.bind(s.Name, sym)
}

// inBranch runs f in a new branch scope
func (e *Engine) inBranch(f func()) {
	fr := e.frame()
	if fr == nil {
		f()
		return
	}
	parent := fr.scope
	fr.scope = parent.newBranch()
	defer func() { fr.scope = parent }()
	f()
}
