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

import "fmt"

// Kind is the kind of a node. The fields of a Node used by each kind are listed next to the constant.
type Kind string

const (
	KindLit       Kind = "lit"       // Type, Value
	KindConst     Kind = "const"     // Name
	KindVar       Kind = "var"       // Sym, or Name for a binding the host could not resolve
	KindField     Kind = "field"     // Sym, X (object, optional)
	KindIndex     Kind = "index"     // X (base), Y (index, nil when absent)
	KindAssign    Kind = "assign"    // X (target), Y (value), Op (operator of compound assignments)
	KindBinary    Kind = "binary"    // Op, X, Y
	KindUnary     Kind = "unary"     // Op, X
	KindCast      Kind = "cast"      // Type (target type), X
	KindArray     Kind = "array"     // List of KindElem
	KindElem      Kind = "elem"      // Key (nil for an implicit key), X (value), Sym (field initialized, optional)
	KindConcat    Kind = "concat"    // List: interpolated strings, tuples
	KindTernary   Kind = "ternary"   // Cond, X (nil for the short form), Y
	KindCall      Kind = "call"      // Func or Callee, CallKind, List (arguments)
	KindFuncValue Kind = "funcvalue" // Func: a reference to a function used as a value
	KindClosure   Kind = "closure"   // Func: declaration of a closure, evaluated in place
	KindReturn    Kind = "return"    // X (optional)
	KindEcho      Kind = "echo"      // X: emitted as markup
	KindEval      Kind = "eval"      // X: evaluated as code or included
	KindShell     Kind = "shell"     // X: run by a shell
	KindForeach   Kind = "foreach"   // X (collection), Key (key binding), Y (value binding), Body
	KindIf        Kind = "if"        // List of KindArm
	KindArm       Kind = "arm"       // Cond (nil for else), Body
	KindWhile     Kind = "while"     // Cond, Body
	KindFor       Kind = "for"       // Init, Cond, Post, Body
	KindSwitch    Kind = "switch"    // X (tag, optional), List of KindCase
	KindCase      Kind = "case"      // List (values), Body
	KindBlock     Kind = "block"     // List
	KindExpr      Kind = "expr"      // X
	KindGlobal    Kind = "global"    // Sym (local binding), X (KindVar of the global)
	KindIsset     Kind = "isset"     // X
	KindUnknown   Kind = "unknown"   // Name: description of the construct
)

// CallKind distinguishes the syntactic forms of calls. All forms are evaluated the same way.
type CallKind string

const (
	CallFunction CallKind = "function"
	CallMethod   CallKind = "method"
	CallStatic   CallKind = "static"
	CallNew      CallKind = "new"
)

// Node is a node of the syntax tree
type Node struct {
	Kind Kind    `yaml:"kind"`
	Pos  Pos     `yaml:"pos,omitempty"`
	Type TypeSet `yaml:"type,omitempty"`

	Sym      SymbolID      `yaml:"sym,omitempty"`
	Func     FuncID        `yaml:"func,omitempty"`
	Callee   QualifiedName `yaml:"callee,omitempty"`
	CallKind CallKind      `yaml:"call-kind,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Value    string        `yaml:"value,omitempty"`
	Op       string        `yaml:"op,omitempty"`

	Init *Node   `yaml:"init,omitempty"`
	Cond *Node   `yaml:"cond,omitempty"`
	Key  *Node   `yaml:"key,omitempty"`
	X    *Node   `yaml:"x,omitempty"`
	Y    *Node   `yaml:"y,omitempty"`
	Post *Node   `yaml:"post,omitempty"`
	List []*Node `yaml:"list,omitempty"`
	Body *Node   `yaml:"body,omitempty"`
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindVar, KindConst, KindUnknown:
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Name, n.Pos)
	case KindCall:
		return fmt.Sprintf("call(%s)@%s", n.Callee, n.Pos)
	case KindBinary, KindUnary:
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Op, n.Pos)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Pos)
}

// At sets the position of the node and returns it
func (n *Node) At(file string, line int) *Node {
	n.Pos = Pos{File: file, Line: line}
	return n
}

// WithType sets the static type of the node and returns it
func (n *Node) WithType(t TypeSet) *Node {
	n.Type = t
	return n
}

// Inspect traverses the tree rooted at n in depth-first order. If f returns false, the children of the node are not
// visited.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range []*Node{n.Init, n.Cond, n.Key, n.X, n.Y, n.Post} {
		Inspect(c, f)
	}
	for _, c := range n.List {
		Inspect(c, f)
	}
	Inspect(n.Body, f)
}

// Constructors, used by frontends and tests.

// Lit returns a literal of type t
func Lit(t TypeSet, value string) *Node {
	return &Node{Kind: KindLit, Type: t, Value: value}
}

// Str returns a string literal
func Str(value string) *Node {
	return Lit(TypeString, value)
}

// Int returns an integer literal
func Int(value int) *Node {
	return Lit(TypeInt, fmt.Sprintf("%d", value))
}

// Const returns a reference to a named constant
func Const(name string) *Node {
	return &Node{Kind: KindConst, Name: name}
}

// Var returns a reference to the variable s
func Var(s *Symbol) *Node {
	return &Node{Kind: KindVar, Sym: s.ID, Name: s.Name, Type: s.Type}
}

// Unresolved returns a reference to a variable binding the host could not resolve
func Unresolved(name string) *Node {
	return &Node{Kind: KindVar, Name: name}
}

// FieldOf returns a reference to field s of object x
func FieldOf(x *Node, s *Symbol) *Node {
	return &Node{Kind: KindField, Sym: s.ID, Name: s.Name, Type: s.Type, X: x}
}

// Index returns base[index]; index may be nil
func Index(base, index *Node) *Node {
	return &Node{Kind: KindIndex, X: base, Y: index}
}

// Assign returns target = value
func Assign(target, value *Node) *Node {
	return &Node{Kind: KindAssign, X: target, Y: value}
}

// OpAssign returns target op= value
func OpAssign(op string, target, value *Node) *Node {
	return &Node{Kind: KindAssign, Op: op, X: target, Y: value}
}

// Binary returns x op y
func Binary(op string, x, y *Node) *Node {
	return &Node{Kind: KindBinary, Op: op, X: x, Y: y}
}

// Unary returns op x
func Unary(op string, x *Node) *Node {
	return &Node{Kind: KindUnary, Op: op, X: x}
}

// Cast returns x converted to type t
func Cast(t TypeSet, x *Node) *Node {
	return &Node{Kind: KindCast, Type: t, X: x}
}

// Array returns an array literal with the elements provided
func Array(elems ...*Node) *Node {
	return &Node{Kind: KindArray, Type: TypeArray, List: elems}
}

// Elem returns an array element; key may be nil
func Elem(key, value *Node) *Node {
	return &Node{Kind: KindElem, Key: key, X: value}
}

// Concat returns the concatenation of parts
func Concat(parts ...*Node) *Node {
	return &Node{Kind: KindConcat, Type: TypeString, List: parts}
}

// Ternary returns cond ? x : y; x may be nil
func Ternary(cond, x, y *Node) *Node {
	return &Node{Kind: KindTernary, Cond: cond, X: x, Y: y}
}

// Call returns a call to f
func Call(f *Function, args ...*Node) *Node {
	return &Node{Kind: KindCall, CallKind: CallFunction, Func: f.ID, Callee: f.Name, Type: f.Returns, List: args}
}

// CallName returns a call to a callable identified only by name
func CallName(name string, args ...*Node) *Node {
	return &Node{Kind: KindCall, CallKind: CallFunction, Callee: ParseQualifiedName(name), List: args}
}

// FuncValue returns a reference to f used as a value
func FuncValue(f *Function) *Node {
	return &Node{Kind: KindFuncValue, Func: f.ID, Callee: f.Name, Type: TypeCallable}
}

// Closure returns the declaration of closure f
func Closure(f *Function) *Node {
	return &Node{Kind: KindClosure, Func: f.ID, Callee: f.Name, Type: TypeCallable}
}

// Return returns a return statement; x may be nil
func Return(x *Node) *Node {
	return &Node{Kind: KindReturn, X: x}
}

// Echo returns a statement emitting x as markup
func Echo(x *Node) *Node {
	return &Node{Kind: KindEcho, X: x}
}

// Eval returns an expression evaluating x as code
func Eval(x *Node) *Node {
	return &Node{Kind: KindEval, X: x}
}

// Shell returns an expression running x in a shell
func Shell(x *Node) *Node {
	return &Node{Kind: KindShell, Type: TypeString, X: x}
}

// Foreach returns a loop over collection; key may be nil
func Foreach(collection, key, value, body *Node) *Node {
	return &Node{Kind: KindForeach, X: collection, Key: key, Y: value, Body: body}
}

// If returns a conditional with the arms provided
func If(arms ...*Node) *Node {
	return &Node{Kind: KindIf, List: arms}
}

// Arm returns an arm of a conditional; cond is nil for the else arm
func Arm(cond, body *Node) *Node {
	return &Node{Kind: KindArm, Cond: cond, Body: body}
}

// While returns a loop
func While(cond, body *Node) *Node {
	return &Node{Kind: KindWhile, Cond: cond, Body: body}
}

// For returns a loop with an init and a post statement, both optional
func For(init, cond, post, body *Node) *Node {
	return &Node{Kind: KindFor, Init: init, Cond: cond, Post: post, Body: body}
}

// Switch returns a switch on tag, which may be nil
func Switch(tag *Node, cases ...*Node) *Node {
	return &Node{Kind: KindSwitch, X: tag, List: cases}
}

// Case returns a case of a switch; values is empty for the default case
func Case(values []*Node, body *Node) *Node {
	return &Node{Kind: KindCase, List: values, Body: body}
}

// Block returns a sequence of statements
func Block(stmts ...*Node) *Node {
	return &Node{Kind: KindBlock, List: stmts}
}

// ExprStmt returns an expression statement
func ExprStmt(x *Node) *Node {
	return &Node{Kind: KindExpr, X: x}
}

// Global returns a statement binding the local variable to the global one
func Global(local, global *Symbol) *Node {
	return &Node{Kind: KindGlobal, Sym: local.ID, Name: local.Name, X: Var(global)}
}

// Unknown returns a node for a construct the frontend does not translate
func Unknown(desc string) *Node {
	return &Node{Kind: KindUnknown, Name: desc}
}
