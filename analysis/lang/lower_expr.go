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

package lang

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"golang.org/x/tools/go/ast/astutil"
)

func (fl *funcLowerer) exprs(list []ast.Expr) []*ir.Node {
	res := make([]*ir.Node, 0, len(list))
	for _, e := range list {
		res = append(res, fl.expr(e))
	}
	return res
}

// expr lowers expression e. The static type of the node is the type of e when the lowering does not set one.
func (fl *funcLowerer) expr(e ast.Expr) *ir.Node {
	if e == nil {
		return nil
	}
	n := fl.lowerExpr(e)
	if n.Type == 0 {
		if t := fl.pkg.info.TypeOf(e); t != nil {
			n.Type = TypeSet(t)
		}
	}
	return fl.at(n, e.Pos())
}

func (fl *funcLowerer) lowerExpr(e ast.Expr) *ir.Node {
	if tv, ok := fl.pkg.info.Types[e]; ok && tv.IsType() {
		return ir.Lit(ir.TypeNull, "type")
	}
	switch e := e.(type) {
	case *ast.BasicLit:
		return basicLit(e)
	case *ast.Ident:
		return fl.ident(e)
	case *ast.ParenExpr:
		return fl.expr(e.X)
	case *ast.SelectorExpr:
		return fl.selector(e)
	case *ast.CallExpr:
		return fl.call(e)
	case *ast.CompositeLit:
		return fl.composite(e)
	case *ast.IndexExpr:
		if fl.isInstance(e.X) {
			return fl.expr(e.X)
		}
		return ir.Index(fl.expr(e.X), fl.expr(e.Index))
	case *ast.IndexListExpr:
		return fl.expr(e.X)
	case *ast.SliceExpr:
		return ir.Index(fl.expr(e.X), nil)
	case *ast.StarExpr:
		return fl.expr(e.X)
	case *ast.UnaryExpr:
		switch e.Op {
		case token.AND:
			return fl.expr(e.X)
		case token.ARROW:
			return ir.Index(fl.expr(e.X), nil)
		}
		return ir.Unary(e.Op.String(), fl.expr(e.X))
	case *ast.BinaryExpr:
		x, y := fl.expr(e.X), fl.expr(e.Y)
		if e.Op == token.ADD && TypeSet(fl.pkg.info.TypeOf(e)).IsString() {
			return ir.Concat(x, y)
		}
		return ir.Binary(e.Op.String(), x, y)
	case *ast.TypeAssertExpr:
		return ir.Cast(TypeSet(fl.pkg.info.TypeOf(e)), fl.expr(e.X))
	case *ast.FuncLit:
		return ir.Closure(fl.closure(e))
	}
	fl.logger.Debugf("%s: unsupported expression %T", fl.fset.Position(e.Pos()), e)
	return ir.Unknown(fmt.Sprintf("%T", e))
}

func basicLit(e *ast.BasicLit) *ir.Node {
	switch e.Kind {
	case token.STRING:
		s, err := strconv.Unquote(e.Value)
		if err != nil {
			s = e.Value
		}
		return ir.Str(s)
	case token.INT, token.CHAR:
		return ir.Lit(ir.TypeInt, e.Value)
	}
	return ir.Lit(ir.TypeFloat, e.Value)
}

// ident lowers a reference to a named entity. Package variables of packages that are not lowered are unresolved
// bindings named "<package path>.<name>", which is how external inputs like os.Args are recognized.
func (fl *funcLowerer) ident(id *ast.Ident) *ir.Node {
	obj := fl.pkg.info.ObjectOf(id)
	switch obj := obj.(type) {
	case nil:
		if id.Name == "_" {
			return ir.Lit(ir.TypeNull, "nil")
		}
		return ir.Unresolved(id.Name)
	case *types.Var:
		if s := fl.symbolOf(obj); s != nil {
			return ir.Var(s)
		}
		name := obj.Name()
		if obj.Pkg() != nil {
			name = obj.Pkg().Path() + "." + name
		}
		return ir.Unresolved(name)
	case *types.Const:
		return ir.Const(obj.Name())
	case *types.Nil:
		return ir.Lit(ir.TypeNull, "nil")
	case *types.Func:
		return fl.funcValue(obj)
	}
	return ir.Lit(ir.TypeNull, obj.Name())
}

// funcValue returns a reference to function f. Functions that are not part of the program are only named.
func (fl *funcLowerer) funcValue(f *types.Func) *ir.Node {
	if fn, ok := fl.funcs[f.Origin()]; ok {
		return ir.FuncValue(fn)
	}
	return &ir.Node{Kind: ir.KindFuncValue, Callee: ir.ParseQualifiedName(f.FullName()), Type: ir.TypeCallable}
}

func (fl *funcLowerer) selector(e *ast.SelectorExpr) *ir.Node {
	sel, ok := fl.pkg.info.Selections[e]
	if !ok {
		// qualified identifier
		return fl.ident(e.Sel)
	}
	switch sel.Kind() {
	case types.FieldVal:
		return fl.fieldPath(fl.expr(e.X), sel)
	case types.MethodVal:
		fl.expr(e.X)
		return fl.funcValue(sel.Obj().(*types.Func))
	}
	return fl.funcValue(sel.Obj().(*types.Func))
}

// fieldPath lowers the selection of a field, including the fields of embedded structs selected implicitly. Fields
// of structs that are not declared in the program become index expressions on the struct.
func (fl *funcLowerer) fieldPath(x *ir.Node, sel *types.Selection) *ir.Node {
	t := sel.Recv()
	for _, i := range sel.Index() {
		st, ok := deref(t).Underlying().(*types.Struct)
		if !ok {
			return ir.Index(x, nil)
		}
		f := st.Field(i)
		if s := fl.field(f, t); s != nil {
			x = ir.FieldOf(x, s)
		} else {
			x = ir.Index(x, nil)
		}
		x.Type = TypeSet(f.Type())
		t = f.Type()
	}
	return x
}

// isInstance returns true when e names an instantiated generic function
func (fl *funcLowerer) isInstance(e ast.Expr) bool {
	switch e := astutil.Unparen(e).(type) {
	case *ast.Ident:
		_, ok := fl.pkg.info.Instances[e]
		return ok
	case *ast.SelectorExpr:
		_, ok := fl.pkg.info.Instances[e.Sel]
		return ok
	}
	return false
}

// call lowers a call. The receiver of a method call is argument 0. The extra arguments of a variadic call are
// packed in a single argument, like the slice the callee receives.
func (fl *funcLowerer) call(e *ast.CallExpr) *ir.Node {
	fun := astutil.Unparen(e.Fun)
	tv := fl.pkg.info.Types[fun]
	if tv.IsType() {
		if len(e.Args) != 1 {
			return ir.Unknown("conversion")
		}
		return ir.Cast(TypeSet(tv.Type), fl.expr(e.Args[0]))
	}
	switch f := fun.(type) {
	case *ast.IndexExpr:
		if fl.isInstance(f.X) {
			fun = astutil.Unparen(f.X)
		}
	case *ast.IndexListExpr:
		fun = astutil.Unparen(f.X)
	}

	var recv *ir.Node
	var callee *types.Func
	interfaceCall := false
	switch f := fun.(type) {
	case *ast.Ident:
		if b, ok := fl.pkg.info.Uses[f].(*types.Builtin); ok {
			return ir.CallName(b.Name(), fl.args(e, tv.Type)...)
		}
		callee, _ = fl.pkg.info.Uses[f].(*types.Func)
	case *ast.SelectorExpr:
		if sel, ok := fl.pkg.info.Selections[f]; ok {
			callee, _ = sel.Obj().(*types.Func)
			if sel.Kind() == types.MethodVal {
				recv = fl.expr(f.X)
				interfaceCall = types.IsInterface(sel.Recv())
			}
		} else {
			callee, _ = fl.pkg.info.Uses[f.Sel].(*types.Func)
		}
	case *ast.FuncLit:
		c := fl.closure(f)
		return ir.Call(c, fl.args(e, tv.Type)...)
	}

	args := fl.args(e, tv.Type)
	if recv != nil {
		args = append([]*ir.Node{recv}, args...)
	}

	var n *ir.Node
	switch {
	case callee == nil:
		n = &ir.Node{Kind: ir.KindCall, CallKind: ir.CallFunction, List: args}
	case interfaceCall:
		n = ir.CallName(callee.FullName(), args...)
	default:
		if fn, ok := fl.funcs[callee.Origin()]; ok {
			n = ir.Call(fn, args...)
		} else {
			n = ir.CallName(callee.FullName(), args...)
		}
	}
	if recv != nil {
		n.CallKind = ir.CallMethod
	}
	return n
}

// args lowers the explicit arguments of call e to a function of type t
func (fl *funcLowerer) args(e *ast.CallExpr, t types.Type) []*ir.Node {
	args := fl.exprs(e.Args)
	sig, ok := t.(*types.Signature)
	if !ok || !sig.Variadic() || e.Ellipsis.IsValid() {
		return args
	}
	fixed := sig.Params().Len() - 1
	if fixed < 0 || len(args) <= fixed {
		return args
	}
	return append(args[:fixed:fixed], ir.Concat(args[fixed:]...))
}

func (fl *funcLowerer) composite(e *ast.CompositeLit) *ir.Node {
	t := fl.pkg.info.TypeOf(e)
	if t == nil {
		return ir.Unknown("composite literal")
	}
	var elems []*ir.Node
	switch u := deref(t).Underlying().(type) {
	case *types.Struct:
		for i, elt := range e.Elts {
			var f *types.Var
			value := elt
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				value = kv.Value
				if id, ok := kv.Key.(*ast.Ident); ok {
					f = fieldNamed(u, id.Name)
				}
			} else if i < u.NumFields() {
				f = u.Field(i)
			}
			if f == nil {
				elems = append(elems, ir.Elem(nil, fl.expr(value)))
				continue
			}
			elem := fl.at(ir.Elem(ir.Str(f.Name()), fl.expr(value)), elt.Pos())
			if s := fl.field(f, deref(t)); s != nil {
				elem.Sym = s.ID
			}
			elems = append(elems, elem)
		}
	default:
		for _, elt := range e.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				elems = append(elems, fl.at(ir.Elem(fl.expr(kv.Key), fl.expr(kv.Value)), elt.Pos()))
			} else {
				elems = append(elems, fl.at(ir.Elem(nil, fl.expr(elt)), elt.Pos()))
			}
		}
	}
	return ir.Array(elems...).WithType(TypeSet(t))
}

func fieldNamed(st *types.Struct, name string) *types.Var {
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == name {
			return st.Field(i)
		}
	}
	return nil
}
