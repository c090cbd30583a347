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

// Package summaries contains the taint signatures of the callables that are not analyzed: the functions of the Go
// standard library and builtins, and the signatures declared in the configuration.
package summaries

import (
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	. "github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// Preserve is the signature of functions whose result carries the taint of all their arguments
var Preserve = NewSignature(PreserveTaint)

// NoPropagation is the signature of functions whose result is never tainted, e.g. parsers of numbers
var NoPropagation = NewSignature(NoTaint)

// Source is the signature of functions returning external input
var Source = NewSignature(YesTaint)

// escaper returns the signature of a function returning its first argument with the content of category removed
func escaper(category Taint) Signature {
	return NewSignature(NoTaint).WithParam(0, YesTaint&^category)
}

// sink returns the signature of a function that must not receive content in the parameters listed. The result of
// the function does not depend on its arguments.
func sink(exec Taint, params ...int) Signature {
	s := NewSignature(NoTaint)
	for _, i := range params {
		s = s.WithParam(i, exec)
	}
	return s
}

// Table resolves the signatures of the callables of a program: configured signatures first, then the builtin
// signatures.
type Table struct {
	config *config.Config
}

// NewTable returns a table using the signatures of cfg, which may be nil
func NewTable(cfg *config.Config) *Table {
	return &Table{config: cfg}
}

// Lookup returns the signature declared for the callable named q, and true when there is one
func (t *Table) Lookup(q ir.QualifiedName) (Signature, bool) {
	if t.config != nil {
		if s, ok := t.config.SignatureOf(q.Package, q.Receiver, q.Name); ok {
			return s, true
		}
	}
	return SignatureOf(q)
}

// SignatureOf returns the builtin signature of the callable named q
func SignatureOf(q ir.QualifiedName) (Signature, bool) {
	if q.Package == "" && q.Receiver == "" {
		s, ok := builtins[q.Name]
		return s, ok
	}
	if pkg, ok := stdPackages[q.Package]; ok {
		s, ok := pkg[q.String()]
		return s, ok
	}
	return Signature{}, false
}

// IsStdPackageName returns true if name is a package of the standard library. Standard library functions without a
// signature preserve taint.
func IsStdPackageName(name string) bool {
	if _, ok := stdPackages[name]; ok {
		return true
	}
	first := strings.Split(name, "/")[0]
	return name != "" && !strings.Contains(first, ".")
}
