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

package hooks

import (
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
)

// resolve returns the function of the program n evaluates to, when n is a callable the collaborator understands:
//   - a function value or a closure declaration,
//   - a string literal naming a function ("render", "Hooks::run"),
//   - an array literal [receiver, "method"] where the receiver is a class name or an object,
//   - a variable assigned one of the above.
func (c *Collaborator) resolve(e *taint.Engine, n *ir.Node) (ir.FuncID, bool) {
	if n == nil {
		return 0, false
	}
	p := e.Program()
	switch n.Kind {
	case ir.KindFuncValue, ir.KindClosure:
		return n.Func, n.Func != 0
	case ir.KindLit:
		if !n.Type.IsString() {
			return 0, false
		}
		return byName(p, n.Value)
	case ir.KindArray:
		return c.resolveMethod(e, n)
	case ir.KindVar:
		fn, ok := c.bindings[n.Sym]
		return fn, ok
	case ir.KindCast:
		return c.resolve(e, n.X)
	}
	return 0, false
}

func (c *Collaborator) resolveMethod(e *taint.Engine, arr *ir.Node) (ir.FuncID, bool) {
	if len(arr.List) != 2 {
		return 0, false
	}
	recv, method := elemValue(arr.List[0]), elemValue(arr.List[1])
	if recv == nil || method == nil || method.Kind != ir.KindLit {
		return 0, false
	}
	var typeName string
	switch recv.Kind {
	case ir.KindLit:
		typeName = recv.Value
	case ir.KindVar, ir.KindField:
		if s := e.Program().Symbol(recv.Sym); s != nil {
			typeName = s.TypeName
		}
	}
	if typeName == "" {
		return 0, false
	}
	for _, name := range methodNames(typeName, method.Value) {
		if fn, ok := byName(e.Program(), name); ok {
			return fn, true
		}
	}
	return 0, false
}

// methodNames returns the names method of type typeName may have in a program
func methodNames(typeName, method string) []string {
	typeName = strings.TrimLeft(typeName, "*")
	names := []string{typeName + "::" + method}
	if strings.Contains(typeName, ".") {
		names = append(names, "("+typeName+")."+method, "(*"+typeName+")."+method)
	}
	return names
}

func byName(p *ir.Program, name string) (ir.FuncID, bool) {
	fn, ok := p.FuncByName(name)
	if !ok {
		return 0, false
	}
	return fn.ID, true
}

func elemValue(n *ir.Node) *ir.Node {
	if n != nil && n.Kind == ir.KindElem {
		return n.X
	}
	return n
}
