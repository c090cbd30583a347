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

package ir

// Builder allocates symbols and functions with fresh identifiers
type Builder struct {
	prog     *Program
	nextSym  SymbolID
	nextFunc FuncID
}

// NewBuilder returns a builder for an empty program
func NewBuilder() *Builder {
	return &Builder{prog: &Program{}}
}

// Global declares a global variable
func (b *Builder) Global(name string, t TypeSet) *Symbol {
	return b.Symbol(name, SymGlobal, t, 0)
}

// Field declares an object field
func (b *Builder) Field(name string, t TypeSet) *Symbol {
	return b.Symbol(name, SymField, t, 0)
}

// Local declares a local variable of f
func (b *Builder) Local(f *Function, name string, t TypeSet) *Symbol {
	return b.Symbol(name, SymLocal, t, f.ID)
}

// Symbol declares a symbol
func (b *Builder) Symbol(name string, kind SymbolKind, t TypeSet, owner FuncID) *Symbol {
	b.nextSym++
	s := &Symbol{ID: b.nextSym, Name: name, Kind: kind, Type: t, Owner: owner}
	b.prog.Symbols = append(b.prog.Symbols, s)
	return s
}

// Function declares a function. The name is parsed with ParseQualifiedName.
func (b *Builder) Function(name string, returns TypeSet) *Function {
	b.nextFunc++
	f := &Function{ID: b.nextFunc, Name: ParseQualifiedName(name), Returns: returns}
	b.prog.Functions = append(b.prog.Functions, f)
	return f
}

// Closure declares a closure inside parent
func (b *Builder) Closure(parent *Function, name string, returns TypeSet) *Function {
	f := b.Function(name, returns)
	f.Parent = parent.ID
	return f
}

// Param adds a parameter to f
func (b *Builder) Param(f *Function, name string, t TypeSet, byRef bool) *Symbol {
	s := b.Symbol(name, SymParam, t, f.ID)
	f.Params = append(f.Params, Param{Sym: s.ID, ByRef: byRef})
	return s
}

// Suppress adds a suppressed position
func (b *Builder) Suppress(pos Pos) {
	b.prog.Suppressions = append(b.prog.Suppressions, pos)
}

// Program finalizes and returns the program built
func (b *Builder) Program() (*Program, error) {
	if err := b.prog.Finalize(); err != nil {
		return nil, err
	}
	return b.prog, nil
}
