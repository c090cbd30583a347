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

// Package lang translates type-checked Go packages to the program representation of the ir package.
//
// Functions and methods become ir functions (the receiver is parameter 0), function literals become closures, and
// the initializers of the package variables become a script function named "<package>.init$vars". Statements and
// expressions are lowered to the node kinds of the ir package; constructs that have no taint semantics are
// dropped and the others are lowered to an unknown node.
package lang

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
)

type sourcePackage struct {
	pkg   *types.Package
	info  *types.Info
	files []*ast.File
}

// Lowerer translates a set of packages to a program. Packages are added with AddPackage, and the program is built
// by Program once all packages have been added, so that calls between packages are resolved.
type Lowerer struct {
	fset   *token.FileSet
	logger *config.LogGroup
	b      *ir.Builder

	pkgs    []*sourcePackage
	lowered map[string]bool

	funcs map[*types.Func]*ir.Function
	decls map[*ir.Function]*ast.FuncDecl
	syms  map[types.Object]*ir.Symbol
	// fields of the struct types of the program. All the values of a type share the field symbols.
	fields map[*types.Var]*ir.Symbol
}

// NewLowerer returns a lowerer for packages parsed with fset
func NewLowerer(fset *token.FileSet, logger *config.LogGroup) *Lowerer {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	return &Lowerer{
		fset:    fset,
		logger:  logger,
		b:       ir.NewBuilder(),
		lowered: map[string]bool{},
		funcs:   map[*types.Func]*ir.Function{},
		decls:   map[*ir.Function]*ast.FuncDecl{},
		syms:    map[types.Object]*ir.Symbol{},
		fields:  map[*types.Var]*ir.Symbol{},
	}
}

// AddPackage adds a type-checked package to the program
func (l *Lowerer) AddPackage(pkg *types.Package, info *types.Info, files []*ast.File) {
	if l.lowered[pkg.Path()] {
		return
	}
	l.lowered[pkg.Path()] = true
	l.pkgs = append(l.pkgs, &sourcePackage{pkg: pkg, info: info, files: files})
}

// Program lowers the packages added and returns the program
func (l *Lowerer) Program() (*ir.Program, error) {
	for _, p := range l.pkgs {
		l.declare(p)
	}
	for _, p := range l.pkgs {
		if err := l.lowerPackage(p); err != nil {
			return nil, err
		}
	}
	return l.b.Program()
}

func (l *Lowerer) pos(p token.Pos) ir.Pos {
	if !p.IsValid() {
		return ir.Pos{}
	}
	position := l.fset.Position(p)
	return ir.Pos{File: position.Filename, Line: position.Line, Col: position.Column}
}

// declare creates the functions and the global variables of p
func (l *Lowerer) declare(p *sourcePackage) {
	for _, f := range p.files {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				obj, ok := p.info.Defs[d.Name].(*types.Func)
				if !ok {
					continue
				}
				fn := l.b.Function(obj.FullName(), returnsOf(obj.Type().(*types.Signature)))
				fn.Pos = l.pos(d.Pos())
				l.funcs[obj] = fn
				l.decls[fn] = d
			case *ast.GenDecl:
				if d.Tok != token.VAR {
					continue
				}
				for _, spec := range d.Specs {
					for _, name := range spec.(*ast.ValueSpec).Names {
						v, ok := p.info.Defs[name].(*types.Var)
						if !ok || name.Name == "_" {
							continue
						}
						s := l.b.Global(p.pkg.Path()+"."+name.Name, TypeSet(v.Type()))
						s.TypeName = typeName(v.Type())
						s.Pos = l.pos(name.Pos())
						l.syms[v] = s
					}
				}
			}
		}
	}
}

func (l *Lowerer) lowerPackage(p *sourcePackage) error {
	for _, f := range p.files {
		for _, decl := range f.Decls {
			d, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			obj, ok := p.info.Defs[d.Name].(*types.Func)
			if !ok {
				continue
			}
			l.lowerFunc(p, l.funcs[obj], d)
		}
	}
	l.lowerVarInits(p)

	directives, err := FindDirectives(l.fset, p.files)
	if err != nil {
		return fmt.Errorf("package %s: %w", p.pkg.Path(), err)
	}
	for pos, d := range directives {
		if d.Kind == DirectiveIgnore {
			l.b.Suppress(ir.Pos{File: pos.Filename, Line: pos.Line})
		}
	}
	return nil
}

func (l *Lowerer) lowerFunc(p *sourcePackage, fn *ir.Function, d *ast.FuncDecl) {
	fl := l.newFuncLowerer(p, fn)
	fl.params(d.Recv, d.Type.Params, d.Type.Results)
	if d.Body == nil {
		return
	}
	body := fl.block(d.Body)
	body.List = append(fl.prologue, body.List...)
	fn.Body = body
}

// lowerVarInits creates the script function initializing the package variables of p
func (l *Lowerer) lowerVarInits(p *sourcePackage) {
	if len(p.info.InitOrder) == 0 {
		return
	}
	fn := l.b.Function(p.pkg.Path()+".init$vars", ir.TypeVoid)
	fn.Script = true
	fl := l.newFuncLowerer(p, fn)
	var stmts []*ir.Node
	for _, init := range p.info.InitOrder {
		var targets []*ir.Node
		for _, v := range init.Lhs {
			if s, ok := l.syms[v]; ok {
				targets = append(targets, ir.Var(s))
			}
		}
		value := fl.expr(init.Rhs)
		stmts = append(stmts, fl.at(fl.assign(targets, value), init.Rhs.Pos()))
	}
	fn.Body = ir.Block(stmts...)
}

// funcLowerer lowers the body of one function
type funcLowerer struct {
	*Lowerer
	pkg *sourcePackage
	fn  *ir.Function

	// names counts the locals declared with each name, shadowing locals are renamed
	names    map[string]int
	closures int
	// results are the named results of the function
	results []*ir.Symbol
	// prologue holds the statements run before the body
	prologue []*ir.Node
}

func (l *Lowerer) newFuncLowerer(p *sourcePackage, fn *ir.Function) *funcLowerer {
	return &funcLowerer{Lowerer: l, pkg: p, fn: fn, names: map[string]int{}}
}

func (fl *funcLowerer) at(n *ir.Node, p token.Pos) *ir.Node {
	if n != nil && !n.Pos.IsValid() {
		n.Pos = fl.pos(p)
	}
	return n
}

// localName returns name, or a fresh name when a local with the same name has already been declared in the
// function
func (fl *funcLowerer) localName(name string) string {
	n := fl.names[name]
	fl.names[name]++
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n)
}

// declareLocal creates the symbol of a local variable of the function
func (fl *funcLowerer) declareLocal(v *types.Var) *ir.Symbol {
	s := fl.b.Local(fl.fn, fl.localName(v.Name()), TypeSet(v.Type()))
	s.TypeName = typeName(v.Type())
	s.Pos = fl.pos(v.Pos())
	fl.syms[v] = s
	return s
}

// symbolOf returns the symbol of variable v, declaring it when v is a local seen for the first time. The result is
// nil for variables of packages that are not lowered.
func (fl *funcLowerer) symbolOf(v *types.Var) *ir.Symbol {
	if s, ok := fl.syms[v]; ok {
		return s
	}
	if v.Pkg() != nil && v.Parent() == v.Pkg().Scope() {
		return nil
	}
	return fl.declareLocal(v)
}

// field returns the symbol of field v of a struct of type recv, or nil when the struct is not declared in the
// program
func (fl *funcLowerer) field(v *types.Var, recv types.Type) *ir.Symbol {
	v = v.Origin()
	if v.Pkg() == nil || !fl.lowered[v.Pkg().Path()] {
		return nil
	}
	if s, ok := fl.fields[v]; ok {
		return s
	}
	owner := typeName(deref(recv))
	if named, ok := deref(recv).(*types.Named); ok {
		owner = typeName(named.Origin())
	}
	s := fl.b.Field(owner+"."+v.Name(), TypeSet(v.Type()))
	s.TypeName = typeName(v.Type())
	s.Pos = fl.pos(v.Pos())
	fl.fields[v] = s
	return s
}

// params declares the parameters of the function: the receiver first, then the parameters. Named results are
// locals initialized to their zero value.
func (fl *funcLowerer) params(recv, params, results *ast.FieldList) {
	for _, list := range []*ast.FieldList{recv, params} {
		if list == nil {
			continue
		}
		for _, field := range list.List {
			t := fl.pkg.info.TypeOf(field.Type)
			if len(field.Names) == 0 {
				s := fl.b.Param(fl.fn, fl.localName("_"), TypeSet(t), isByRef(t))
				s.TypeName = typeName(t)
				continue
			}
			for _, name := range field.Names {
				obj := fl.pkg.info.Defs[name]
				if obj != nil {
					t = obj.Type()
				}
				s := fl.b.Param(fl.fn, fl.localName(name.Name), TypeSet(t), isByRef(t))
				s.TypeName = typeName(t)
				s.Pos = fl.pos(name.Pos())
				if obj != nil {
					fl.syms[obj] = s
				}
			}
		}
	}
	if results == nil {
		return
	}
	for _, field := range results.List {
		for _, name := range field.Names {
			v, ok := fl.pkg.info.Defs[name].(*types.Var)
			if !ok {
				continue
			}
			s := fl.declareLocal(v)
			fl.results = append(fl.results, s)
			fl.prologue = append(fl.prologue, fl.at(ir.Assign(ir.Var(s), zero(v.Type())), name.Pos()))
		}
	}
}

// closure declares the closure of function literal lit and lowers its body
func (fl *funcLowerer) closure(lit *ast.FuncLit) *ir.Function {
	fl.closures++
	sig, _ := fl.pkg.info.TypeOf(lit).(*types.Signature)
	returns := ir.TypeSet(0)
	if sig != nil {
		returns = returnsOf(sig)
	}
	c := fl.b.Closure(fl.fn, fmt.Sprintf("%s$%d", fl.fn.Name, fl.closures), returns)
	c.Pos = fl.pos(lit.Pos())
	child := fl.newFuncLowerer(fl.pkg, c)
	child.params(nil, lit.Type.Params, lit.Type.Results)
	body := child.block(lit.Body)
	body.List = append(child.prologue, body.List...)
	c.Body = body
	return c
}

// zero returns a literal of the zero value of type t
func zero(t types.Type) *ir.Node {
	ts := TypeSet(t)
	switch {
	case ts == ir.TypeString:
		return ir.Str("")
	case ts.IsSafe():
		return ir.Lit(ts, "0")
	}
	return ir.Lit(ir.TypeNull, "nil")
}
