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
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
)

func (fl *funcLowerer) block(b *ast.BlockStmt) *ir.Node {
	if b == nil {
		return ir.Block()
	}
	return ir.Block(fl.stmts(b.List)...)
}

func (fl *funcLowerer) stmts(list []ast.Stmt) []*ir.Node {
	var res []*ir.Node
	for _, s := range list {
		if n := fl.stmt(s); n != nil {
			res = append(res, n)
		}
	}
	return res
}

// stmt lowers s; the result is nil for statements without effect on taint
func (fl *funcLowerer) stmt(s ast.Stmt) *ir.Node {
	if s == nil {
		return nil
	}
	return fl.at(fl.lowerStmt(s), s.Pos())
}

func (fl *funcLowerer) lowerStmt(s ast.Stmt) *ir.Node {
	switch s := s.(type) {
	case *ast.ExprStmt:
		return ir.ExprStmt(fl.expr(s.X))
	case *ast.AssignStmt:
		return fl.assignStmt(s)
	case *ast.IncDecStmt:
		op := "+"
		if s.Tok == token.DEC {
			op = "-"
		}
		return ir.ExprStmt(ir.OpAssign(op, fl.target(s.X), ir.Lit(ir.TypeInt, "1")))
	case *ast.DeclStmt:
		return fl.declStmt(s)
	case *ast.BlockStmt:
		return fl.block(s)
	case *ast.IfStmt:
		return fl.withInit(s.Init, fl.ifStmt(s))
	case *ast.ForStmt:
		return ir.For(fl.stmt(s.Init), fl.expr(s.Cond), fl.stmt(s.Post), fl.block(s.Body))
	case *ast.RangeStmt:
		return fl.rangeStmt(s)
	case *ast.SwitchStmt:
		var cases []*ir.Node
		for _, c := range s.Body.List {
			clause := c.(*ast.CaseClause)
			cases = append(cases, fl.at(ir.Case(fl.exprs(clause.List), ir.Block(fl.stmts(clause.Body)...)),
				clause.Pos()))
		}
		var tag *ir.Node
		if s.Tag != nil {
			tag = fl.expr(s.Tag)
		}
		return fl.withInit(s.Init, ir.Switch(tag, cases...))
	case *ast.TypeSwitchStmt:
		return fl.withInit(s.Init, fl.typeSwitch(s))
	case *ast.SelectStmt:
		var cases []*ir.Node
		for _, c := range s.Body.List {
			clause := c.(*ast.CommClause)
			body := fl.stmts(clause.Body)
			if comm := fl.stmt(clause.Comm); comm != nil {
				body = append([]*ir.Node{comm}, body...)
			}
			cases = append(cases, fl.at(ir.Case(nil, ir.Block(body...)), clause.Pos()))
		}
		return ir.Switch(nil, cases...)
	case *ast.SendStmt:
		return ir.ExprStmt(ir.Assign(ir.Index(fl.expr(s.Chan), nil), fl.expr(s.Value)))
	case *ast.ReturnStmt:
		return fl.returnStmt(s)
	case *ast.GoStmt:
		return ir.ExprStmt(fl.expr(s.Call))
	case *ast.DeferStmt:
		return ir.ExprStmt(fl.expr(s.Call))
	case *ast.LabeledStmt:
		return fl.stmt(s.Stmt)
	case *ast.BranchStmt, *ast.EmptyStmt:
		return nil
	}
	fl.logger.Debugf("%s: unsupported statement %T", fl.fset.Position(s.Pos()), s)
	return ir.ExprStmt(ir.Unknown(strings.TrimPrefix(fmt.Sprintf("%T", s), "*ast.")))
}

func (fl *funcLowerer) withInit(init ast.Stmt, n *ir.Node) *ir.Node {
	if init == nil {
		return n
	}
	return ir.Block(fl.stmt(init), n)
}

func (fl *funcLowerer) ifStmt(s *ast.IfStmt) *ir.Node {
	arms := []*ir.Node{ir.Arm(fl.expr(s.Cond), fl.block(s.Body))}
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		arms = append(arms, ir.Arm(nil, fl.block(e)))
	case *ast.IfStmt:
		arms = append(arms, ir.Arm(nil, fl.stmt(e)))
	}
	return ir.If(arms...)
}

func (fl *funcLowerer) assignStmt(s *ast.AssignStmt) *ir.Node {
	switch s.Tok {
	case token.ASSIGN, token.DEFINE:
	default:
		op := strings.TrimSuffix(s.Tok.String(), "=")
		return ir.ExprStmt(ir.OpAssign(op, fl.target(s.Lhs[0]), fl.expr(s.Rhs[0])))
	}
	if len(s.Lhs) == len(s.Rhs) {
		var res []*ir.Node
		for i := range s.Lhs {
			res = append(res, fl.at(fl.assign(fl.targets(s.Lhs[i:i+1]), fl.expr(s.Rhs[i])), s.Pos()))
		}
		if len(res) == 1 {
			return res[0]
		}
		return ir.Block(res...)
	}
	return fl.assign(fl.targets(s.Lhs), fl.expr(s.Rhs[0]))
}

// assign returns the statement assigning value to the targets. Several targets destructure the value, and the
// value is only evaluated when there is no target.
func (fl *funcLowerer) assign(targets []*ir.Node, value *ir.Node) *ir.Node {
	switch len(targets) {
	case 0:
		return ir.ExprStmt(value)
	case 1:
		return ir.ExprStmt(ir.Assign(targets[0], value))
	}
	return ir.ExprStmt(ir.Assign(ir.Concat(targets...), value))
}

func (fl *funcLowerer) targets(exprs []ast.Expr) []*ir.Node {
	var res []*ir.Node
	for _, e := range exprs {
		if t := fl.target(e); t != nil {
			res = append(res, t)
		}
	}
	return res
}

// target lowers the left-hand side of an assignment. The result is nil for the blank identifier.
func (fl *funcLowerer) target(e ast.Expr) *ir.Node {
	switch e := e.(type) {
	case *ast.Ident:
		if e.Name == "_" {
			return nil
		}
		return fl.expr(e)
	case *ast.StarExpr:
		return fl.target(e.X)
	case *ast.ParenExpr:
		return fl.target(e.X)
	}
	return fl.expr(e)
}

func (fl *funcLowerer) declStmt(s *ast.DeclStmt) *ir.Node {
	d, ok := s.Decl.(*ast.GenDecl)
	if !ok || d.Tok != token.VAR {
		return nil
	}
	var res []*ir.Node
	for _, spec := range d.Specs {
		vs := spec.(*ast.ValueSpec)
		switch {
		case len(vs.Values) == 0:
			for _, name := range vs.Names {
				if t := fl.target(name); t != nil {
					res = append(res, fl.at(ir.ExprStmt(ir.Assign(t, zero(fl.pkg.info.TypeOf(name)))), name.Pos()))
				}
			}
		case len(vs.Values) == len(vs.Names):
			for i, name := range vs.Names {
				res = append(res, fl.at(fl.assign(fl.targets([]ast.Expr{name}), fl.expr(vs.Values[i])), name.Pos()))
			}
		default:
			names := make([]ast.Expr, len(vs.Names))
			for i, name := range vs.Names {
				names[i] = name
			}
			res = append(res, fl.at(fl.assign(fl.targets(names), fl.expr(vs.Values[0])), vs.Pos()))
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return ir.Block(res...)
}

// rangeStmt lowers a range loop. Integer keys are dropped: they never carry taint.
func (fl *funcLowerer) rangeStmt(s *ast.RangeStmt) *ir.Node {
	x := fl.expr(s.X)
	var key, value ast.Expr
	switch t := fl.pkg.info.TypeOf(s.X); t.Underlying().(type) {
	case *types.Map:
		key, value = s.Key, s.Value
	case *types.Chan:
		value = s.Key
	case *types.Basic:
		// strings range over runes, and integers over integers
	default:
		value = s.Value
	}
	var k, v *ir.Node
	if key != nil {
		k = fl.target(key)
	}
	if value != nil {
		v = fl.target(value)
	}
	return ir.Foreach(x, k, v, fl.block(s.Body))
}

// typeSwitch lowers a type switch to a switch where each clause assigns the value switched on to the variable of
// the clause
func (fl *funcLowerer) typeSwitch(s *ast.TypeSwitchStmt) *ir.Node {
	var assert *ast.TypeAssertExpr
	switch a := s.Assign.(type) {
	case *ast.AssignStmt:
		assert, _ = a.Rhs[0].(*ast.TypeAssertExpr)
	case *ast.ExprStmt:
		assert, _ = a.X.(*ast.TypeAssertExpr)
	}
	if assert == nil {
		return ir.ExprStmt(ir.Unknown("type switch"))
	}
	tag := fl.expr(assert.X)
	var cases []*ir.Node
	for _, c := range s.Body.List {
		clause := c.(*ast.CaseClause)
		var body []*ir.Node
		if v, ok := fl.pkg.info.Implicits[clause].(*types.Var); ok {
			sym := fl.declareLocal(v)
			body = append(body, fl.at(ir.ExprStmt(ir.Assign(ir.Var(sym), ir.Cast(TypeSet(v.Type()),
				fl.expr(assert.X)))), clause.Pos()))
		}
		body = append(body, fl.stmts(clause.Body)...)
		cases = append(cases, fl.at(ir.Case(nil, ir.Block(body...)), clause.Pos()))
	}
	return ir.Switch(tag, cases...)
}

func (fl *funcLowerer) returnStmt(s *ast.ReturnStmt) *ir.Node {
	switch {
	case len(s.Results) == 0 && len(fl.results) == 0:
		return ir.Return(nil)
	case len(s.Results) == 0:
		vars := make([]*ir.Node, len(fl.results))
		for i, r := range fl.results {
			vars[i] = ir.Var(r)
		}
		if len(vars) == 1 {
			return ir.Return(vars[0])
		}
		return ir.Return(ir.Concat(vars...))
	case len(s.Results) == 1:
		return ir.Return(fl.expr(s.Results[0]))
	}
	return ir.Return(ir.Concat(fl.exprs(s.Results)...))
}
