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

package summaries

import (
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

func TestSignatureOf(t *testing.T) {
	tests := []struct {
		name  string
		found bool
		want  lattice.Signature
	}{
		{"os.Getenv", true, Source},
		{"(*database/sql.DB).Query", true, lattice.NewSignature(lattice.NoTaint).WithParam(1, lattice.SQLExecTaint)},
		{"html.EscapeString", true,
			lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.YesTaint&^lattice.HTMLTaint)},
		{"append", true, Preserve},
		{"strings.Clone", false, lattice.Signature{}},
		{"example.com/x.F", false, lattice.Signature{}},
	}
	for _, test := range tests {
		got, ok := SignatureOf(ir.ParseQualifiedName(test.name))
		if ok != test.found {
			t.Errorf("SignatureOf(%s) found = %v, want %v", test.name, ok, test.found)
			continue
		}
		if ok && !got.Equal(test.want) {
			t.Errorf("SignatureOf(%s) = %s, want %s", test.name, got, test.want)
		}
	}
}

func TestSignatureTablesAreKeyedByPackage(t *testing.T) {
	for pkg, table := range stdPackages {
		for name := range table {
			q := ir.ParseQualifiedName(name)
			if q.Package != pkg && stdPackages[q.Package] == nil {
				t.Errorf("%s is in the table of %s but names package %s", name, pkg, q.Package)
			}
			if _, ok := SignatureOf(q); !ok {
				t.Errorf("%s cannot be looked up", name)
			}
		}
	}
}

func TestIsStdPackageName(t *testing.T) {
	for _, name := range []string{"fmt", "net/http", "crypto/tls", "os/exec"} {
		if !IsStdPackageName(name) {
			t.Errorf("%s should be a standard library package", name)
		}
	}
	for _, name := range []string{"", "github.com/google/uuid", "gopkg.in/yaml.v3"} {
		if IsStdPackageName(name) {
			t.Errorf("%s should not be a standard library package", name)
		}
	}
}

func TestTableConfigFirst(t *testing.T) {
	cfg, err := config.Parse([]byte(`
signatures:
  - package: os
    method: Getenv
    overall: none
`))
	if err != nil {
		t.Fatalf("could not parse config: %v", err)
	}
	table := NewTable(cfg)
	s, ok := table.Lookup(ir.QualifiedName{Package: "os", Name: "Getenv"})
	if !ok || s.Overall != lattice.NoTaint {
		t.Errorf("configured signature should override the builtin one, got %s", s)
	}
	s, ok = table.Lookup(ir.QualifiedName{Package: "os", Name: "LookupEnv"})
	if !ok || s.Overall != lattice.YesTaint {
		t.Errorf("builtin signature expected, got %s", s)
	}
	if _, ok := NewTable(nil).Lookup(ir.QualifiedName{Name: "render"}); ok {
		t.Errorf("render has no signature")
	}
}
