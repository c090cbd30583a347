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
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// DirectiveKind represents the kind of directive.
type DirectiveKind string

const (
	// DirectiveIgnore represents a directive for Argot to ignore a particular line.
	DirectiveIgnore DirectiveKind = "ignore"
)

// Directive represents an instruction to Argot in the source code being analyzed.
// It is a comment in the form: `//argot:x`, where x is a valid DirectiveKind.
type Directive struct {
	Kind    DirectiveKind
	Comment string
}

// DirectivePos represents the position of a directive within a program.
type DirectivePos struct {
	Filename string
	Line     int
}

// Directives represents a map of directive position to directive. A directive is recorded at every line of the
// statement it decorates.
type Directives map[DirectivePos]Directive

// NewDirective returns the directive for the comment text c and true if c is a valid directive comment.
func NewDirective(c string) (Directive, bool) {
	_, after, found := strings.Cut(c, "argot:")
	if !found {
		return Directive{}, false
	}

	switch k := DirectiveKind(strings.TrimSpace(after)); k {
	case DirectiveIgnore:
		return Directive{Kind: k, Comment: c}, true
	default:
		return Directive{}, false
	}
}

// FindDirectives returns the directives of the files. A directive written on the line before a statement or at the
// end of its line applies to the statement. For compound statements (if, for, switch, ...) only the first line is
// covered.
func FindDirectives(fset *token.FileSet, files []*ast.File) (Directives, error) {
	res := make(Directives)
	for _, f := range files {
		dec := decorator.NewDecorator(fset)
		df, err := dec.DecorateFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decorate %s: %v", fset.Position(f.Pos()).Filename, err)
		}
		dst.Inspect(df, func(n dst.Node) bool {
			if n == nil {
				return false
			}
			if _, ok := n.(dst.Stmt); !ok {
				return true
			}
			decs := n.Decorations()
			for _, c := range append(append([]string{}, decs.Start...), decs.End...) {
				d, ok := NewDirective(c)
				if !ok {
					continue
				}
				an, ok := dec.Ast.Nodes[n]
				if !ok {
					continue
				}
				start, end := fset.Position(an.Pos()), fset.Position(an.End())
				if isCompound(n) {
					end = start
				}
				for line := start.Line; line <= end.Line; line++ {
					res[DirectivePos{Filename: start.Filename, Line: line}] = d
				}
			}
			return true
		})
	}
	return res, nil
}

func isCompound(n dst.Node) bool {
	switch n.(type) {
	case *dst.BlockStmt, *dst.IfStmt, *dst.ForStmt, *dst.RangeStmt, *dst.SwitchStmt, *dst.TypeSwitchStmt,
		*dst.SelectStmt, *dst.CaseClause, *dst.CommClause, *dst.LabeledStmt:
		return true
	}
	return false
}
