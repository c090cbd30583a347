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

// Package ir defines the program representation consumed by the taint engine: a syntax tree with stable node
// kinds, where every variable, field and function reference has already been resolved to a symbol or function
// identity, and every expression carries its declared static type.
//
// Programs are produced by a frontend (see the lang package for Go) or decoded from a yaml/json file with
// [Decode]. A program must be finalized with [Program.Finalize] before it is analyzed.
package ir

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SymbolID identifies a symbol. The zero value means "no symbol".
type SymbolID int

// FuncID identifies a function. The zero value means "no function".
type FuncID int

// SymbolKind is the kind of value a symbol names
type SymbolKind string

const (
	// SymLocal is a variable local to a function
	SymLocal SymbolKind = "local"
	// SymParam is a function parameter
	SymParam SymbolKind = "param"
	// SymGlobal is a variable shared by all functions
	SymGlobal SymbolKind = "global"
	// SymField is an object field. All objects of the same type share the field symbol.
	SymField SymbolKind = "field"
)

// Pos is a source location
type Pos struct {
	File string `yaml:"file" json:"file"`
	Line int    `yaml:"line" json:"line"`
	Col  int    `yaml:"col,omitempty" json:"col,omitempty"`
}

// IsValid returns true when the position has a line
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// UnmarshalYAML accepts either a mapping or a "file:line[:col]" scalar
func (p *Pos) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parts := strings.Split(value.Value, ":")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: position %q should be file:line", value.Line, value.Value)
		}
		line, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("line %d: invalid line in position %q", value.Line, value.Value)
		}
		p.File, p.Line = parts[0], line
		if len(parts) > 2 {
			p.Col, _ = strconv.Atoi(parts[2])
		}
		return nil
	}
	type plain Pos
	return value.Decode((*plain)(p))
}

// Symbol is a variable, parameter, global or field
type Symbol struct {
	ID   SymbolID   `yaml:"id"`
	Name string     `yaml:"name"`
	Kind SymbolKind `yaml:"kind"`
	// Type is the declared static type, used to derive a default taint
	Type TypeSet `yaml:"type,omitempty"`
	// TypeName is the declared type name, e.g. "*net/http.Request"
	TypeName string `yaml:"type-name,omitempty"`
	// Owner is the function declaring the symbol, zero for globals and fields
	Owner FuncID `yaml:"owner,omitempty"`
	Pos   Pos    `yaml:"pos,omitempty"`
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s#%d", s.Name, s.ID)
}

// Param is a parameter of a function
type Param struct {
	Sym SymbolID `yaml:"sym"`
	// ByRef is true when the callee can rebind the caller's variable through this parameter
	ByRef bool `yaml:"by-ref,omitempty"`
}

// Function is a function, method or closure
type Function struct {
	ID      FuncID        `yaml:"id"`
	Name    QualifiedName `yaml:"name"`
	Params  []Param       `yaml:"params,omitempty"`
	Returns TypeSet       `yaml:"returns,omitempty"`
	// Body is nil for functions declared without a body
	Body *Node `yaml:"body,omitempty"`
	// Parent is the function a closure is declared in
	Parent FuncID `yaml:"parent,omitempty"`
	// Script is true for top-level code, which does not run in a function scope
	Script bool `yaml:"script,omitempty"`
	Pos    Pos  `yaml:"pos,omitempty"`

	hasReturn bool
}

func (f *Function) String() string {
	return f.Name.String()
}

// HasReturn returns true when the body of the function has a return statement with a value. Returns of nested
// closures do not count.
func (f *Function) HasReturn() bool {
	return f.hasReturn
}

// IsClosure returns true when the function is declared inside another function
func (f *Function) IsClosure() bool {
	return f.Parent != 0
}

// QualifiedName is the name of a callable. Go callables use the package path, script-like hosts use the receiver
// (class) name only.
type QualifiedName struct {
	Package  string `yaml:"package,omitempty" json:"package,omitempty"`
	Receiver string `yaml:"receiver,omitempty" json:"receiver,omitempty"`
	Name     string `yaml:"name" json:"name"`
	// Pointer is true for methods with a pointer receiver
	Pointer bool `yaml:"pointer,omitempty" json:"pointer,omitempty"`
}

// IsZero returns true when the name is empty
func (q QualifiedName) IsZero() bool {
	return q.Name == ""
}

// String returns the name in the format of the signature tables: "pkg.F", "(*pkg.T).M", "T::M" or "F"
func (q QualifiedName) String() string {
	if q.Package == "" {
		if q.Receiver == "" {
			return q.Name
		}
		return q.Receiver + "::" + q.Name
	}
	if q.Receiver == "" {
		return q.Package + "." + q.Name
	}
	star := ""
	if q.Pointer {
		star = "*"
	}
	return "(" + star + q.Package + "." + q.Receiver + ")." + q.Name
}

// ParseQualifiedName is the inverse of QualifiedName.String
func ParseQualifiedName(s string) QualifiedName {
	if strings.HasPrefix(s, "(") {
		end := strings.Index(s, ")")
		if end > 0 && end+2 <= len(s) {
			recv := s[1:end]
			q := QualifiedName{Name: strings.TrimPrefix(s[end+1:], ".")}
			if strings.HasPrefix(recv, "*") {
				q.Pointer = true
				recv = recv[1:]
			}
			if i := strings.LastIndex(recv, "."); i >= 0 {
				q.Package, q.Receiver = recv[:i], recv[i+1:]
			} else {
				q.Receiver = recv
			}
			return q
		}
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return QualifiedName{Receiver: s[:i], Name: s[i+2:]}
	}
	slash := strings.LastIndex(s, "/")
	if i := strings.LastIndex(s, "."); i > slash {
		return QualifiedName{Package: s[:i], Name: s[i+1:]}
	}
	return QualifiedName{Name: s}
}

// UnmarshalYAML accepts a mapping or the string format
func (q *QualifiedName) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*q = ParseQualifiedName(value.Value)
		return nil
	}
	type plain QualifiedName
	return value.Decode((*plain)(q))
}
