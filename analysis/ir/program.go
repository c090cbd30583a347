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

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Program is a whole program: its functions and the symbols they reference
type Program struct {
	Functions []*Function `yaml:"functions"`
	Symbols   []*Symbol   `yaml:"symbols"`
	// Suppressions lists lines where issues must not be reported
	Suppressions []Pos `yaml:"suppressions,omitempty"`

	funcs      map[FuncID]*Function
	syms       map[SymbolID]*Symbol
	byName     map[string]FuncID
	suppressed map[Pos]bool
	finalized  bool
}

// Finalize builds the indexes of the program and checks that every reference is defined. Calls that only name
// their callee are resolved to the program function with that name, if any.
func (p *Program) Finalize() error {
	p.funcs = make(map[FuncID]*Function, len(p.Functions))
	p.syms = make(map[SymbolID]*Symbol, len(p.Symbols))
	p.byName = make(map[string]FuncID, len(p.Functions))
	p.suppressed = make(map[Pos]bool, len(p.Suppressions))
	var errs []error

	p.Symbols = dropNil(p.Symbols, func(i int) {
		errs = append(errs, fmt.Errorf("symbol %d is null", i))
	})
	p.Functions = dropNil(p.Functions, func(i int) {
		errs = append(errs, fmt.Errorf("function %d is null", i))
	})
	for _, s := range p.Symbols {
		if s.ID <= 0 {
			errs = append(errs, fmt.Errorf("symbol %q has invalid id %d", s.Name, s.ID))
			continue
		}
		if _, dup := p.syms[s.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate symbol id %d", s.ID))
		}
		if s.Kind == "" {
			s.Kind = SymLocal
		}
		p.syms[s.ID] = s
	}
	for _, f := range p.Functions {
		if f.ID <= 0 {
			errs = append(errs, fmt.Errorf("function %s has invalid id %d", f.Name, f.ID))
			continue
		}
		if _, dup := p.funcs[f.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate function id %d", f.ID))
		}
		p.funcs[f.ID] = f
		if _, ok := p.byName[f.Name.String()]; !ok {
			p.byName[f.Name.String()] = f.ID
		}
	}
	for _, pos := range p.Suppressions {
		p.suppressed[Pos{File: pos.File, Line: pos.Line}] = true
	}

	for _, f := range p.Functions {
		for i, param := range f.Params {
			if _, ok := p.syms[param.Sym]; !ok {
				errs = append(errs, fmt.Errorf("function %s: parameter %d has undefined symbol %d", f.Name, i,
					param.Sym))
			}
		}
		if f.Parent != 0 {
			if _, ok := p.funcs[f.Parent]; !ok {
				errs = append(errs, fmt.Errorf("function %s: undefined parent %d", f.Name, f.Parent))
			}
		}
		f.hasReturn = false
		Inspect(f.Body, func(n *Node) bool {
			errs = append(errs, p.checkNode(f, n)...)
			if n.Kind == KindClosure {
				return false
			}
			if n.Kind == KindReturn && n.X != nil {
				f.hasReturn = true
			}
			if n.Kind == KindCall && n.Func == 0 && !n.Callee.IsZero() {
				n.Func = p.byName[n.Callee.String()]
			}
			return true
		})
	}
	p.finalized = len(errs) == 0
	return errors.Join(errs...)
}

// dropNil returns the non-nil elements of a, calling onNil with the index of each nil element
func dropNil[T any](a []*T, onNil func(int)) []*T {
	out := a[:0]
	for i, x := range a {
		if x == nil {
			onNil(i)
			continue
		}
		out = append(out, x)
	}
	return out
}

func (p *Program) checkNode(f *Function, n *Node) []error {
	var errs []error
	for i, c := range n.List {
		if c == nil {
			errs = append(errs, fmt.Errorf("%s: element %d of %s in %s is null", n.Pos, i, n.Kind, f.Name))
		}
	}
	if n.Sym != 0 {
		if _, ok := p.syms[n.Sym]; !ok {
			errs = append(errs, fmt.Errorf("%s: %s in %s references undefined symbol %d", n.Pos, n.Kind, f.Name,
				n.Sym))
		}
	}
	if n.Func != 0 {
		if _, ok := p.funcs[n.Func]; !ok {
			errs = append(errs, fmt.Errorf("%s: %s in %s references undefined function %d", n.Pos, n.Kind, f.Name,
				n.Func))
		}
	}
	return errs
}

// Func returns the function with id, or nil
func (p *Program) Func(id FuncID) *Function {
	return p.funcs[id]
}

// Symbol returns the symbol with id, or nil
func (p *Program) Symbol(id SymbolID) *Symbol {
	return p.syms[id]
}

// FuncByName returns the function whose qualified name is name
func (p *Program) FuncByName(name string) (*Function, bool) {
	id, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	return p.funcs[id], true
}

// IsSuppressed returns true when issues at pos must not be reported
func (p *Program) IsSuppressed(pos Pos) bool {
	return p.suppressed[Pos{File: pos.File, Line: pos.Line}]
}

// Callees returns the functions of the program called directly from f, including calls from the closures declared
// in f, sorted by id.
func (p *Program) Callees(f *Function) []FuncID {
	seen := map[FuncID]bool{}
	var res []FuncID
	Inspect(f.Body, func(n *Node) bool {
		if (n.Kind == KindCall || n.Kind == KindClosure) && n.Func != 0 && !seen[n.Func] {
			seen[n.Func] = true
			res = append(res, n.Func)
		}
		return true
	})
	slices.Sort(res)
	return res
}

// Decode reads a program in yaml (or json) format and finalizes it
func Decode(b []byte) (*Program, error) {
	p := &Program{}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("could not decode program: %w", err)
	}
	if err := p.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	return p, nil
}

// Load reads a program from a file, see Decode
func Load(filename string) (*Program, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file: %w", err)
	}
	return Decode(b)
}
