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

package lattice

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// a representative set of values: every single flag, the groups, and a few mixed values
func sampleTaints() []Taint {
	res := []Taint{NoTaint, YesTaint, ExecTaint, YesExecTaint, PreserveTaint | UnknownTaint,
		HTMLTaint | SQLExecTaint, UnknownTaint | ShellExecTaint, SQLNumkeyTaint | PreserveTaint}
	for _, fn := range flagNames {
		res = append(res, fn.flag)
	}
	return res
}

func TestMergeAlgebra(t *testing.T) {
	ts := sampleTaints()
	for _, a := range ts {
		if Merge(a, NoTaint) != a {
			t.Errorf("NoTaint is not an identity for %s", a)
		}
		if Merge(a, a) != a {
			t.Errorf("merge is not idempotent on %s", a)
		}
		for _, b := range ts {
			if Merge(a, b) != Merge(b, a) {
				t.Errorf("merge is not commutative on %s, %s", a, b)
			}
			for _, c := range ts {
				if Merge(Merge(a, b), c) != Merge(a, Merge(b, c)) {
					t.Errorf("merge is not associative on %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestExecYesRoundTrip(t *testing.T) {
	for _, x := range sampleTaints() {
		y := x & YesTaint
		if got := ExecToYes(YesToExec(y)); got != y {
			t.Errorf("ExecToYes(YesToExec(%s)) = %s", y, got)
		}
	}
	if YesToExec(HTMLTaint) != HTMLExecTaint || YesToExec(SQLNumkeyTaint) != SQLNumkeyExecTaint {
		t.Errorf("exec flag must be the yes flag shifted by one")
	}
	if YesToExec(PreserveTaint|UnknownTaint) != NoTaint {
		t.Errorf("special values have no exec equivalent")
	}
}

func TestIsSafeAssignment(t *testing.T) {
	ts := sampleTaints()
	for _, lhs := range ts {
		for _, rhs := range ts {
			expectUnsafe := YesToExec(rhs)&lhs != 0 || (lhs&ExecTaint != 0 && rhs&UnknownTaint != 0)
			if IsSafeAssignment(lhs, rhs) == expectUnsafe {
				t.Errorf("IsSafeAssignment(%s, %s) = %v", lhs, rhs, !expectUnsafe)
			}
		}
	}
	if IsSafeAssignment(HTMLExecTaint, SQLTaint) != true {
		t.Errorf("sql content is safe in an html sink")
	}
	if IsSafeAssignment(HTMLExecTaint, HTMLTaint) != false {
		t.Errorf("html content is unsafe in an html sink")
	}
	if IsSafeAssignment(NoTaint, UnknownTaint) != true {
		t.Errorf("unknown content is safe in a position that is not a sink")
	}
}

func TestIsLikelyFalsePositive(t *testing.T) {
	tests := []struct {
		t    Taint
		want bool
	}{
		{UnknownTaint, true},
		{UnknownTaint | PreserveTaint, true},
		{UnknownTaint | HTMLTaint, false},
		{HTMLTaint, false},
		{NoTaint, false},
	}
	for _, test := range tests {
		if got := IsLikelyFalsePositive(test.t); got != test.want {
			t.Errorf("IsLikelyFalsePositive(%s) = %v, want %v", test.t, got, test.want)
		}
	}
}

func TestParseAndString(t *testing.T) {
	for _, x := range sampleTaints() {
		y, err := Parse(x.String())
		if err != nil {
			t.Fatalf("could not parse %q: %v", x.String(), err)
		}
		if x != y {
			t.Errorf("Parse(%q) = %s", x.String(), y)
		}
	}
	if _, err := Parse("html|bogus"); err == nil {
		t.Errorf("expected an error on unknown flag name")
	}
	if MustParse("0x6") != HTMLTaint|HTMLExecTaint {
		t.Errorf("integers should be accepted")
	}
}

func TestUnmarshalYAML(t *testing.T) {
	var v struct {
		A Taint `yaml:"a"`
		B Taint `yaml:"b"`
		C Taint `yaml:"c"`
	}
	src := "a: yes\nb: [sql-exec, html-exec]\nc: shell|preserve\n"
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.A != YesTaint || v.B != SQLExecTaint|HTMLExecTaint || v.C != ShellTaint|PreserveTaint {
		t.Errorf("unexpected values %s %s %s", v.A, v.B, v.C)
	}
	if err := yaml.Unmarshal([]byte("a: {x: 1}\n"), &v); err == nil {
		t.Errorf("expected an error on a mapping")
	}
}

func TestKind(t *testing.T) {
	if Kind(SQLNumkeyExecTaint) != "sql-injection" || Kind(HTMLExecTaint) != "xss" || Kind(NoTaint) != "" {
		t.Errorf("unexpected kinds")
	}
}

func TestSignature(t *testing.T) {
	s := NewSignature(NoTaint).WithParam(1, SQLExecTaint)
	if p, ok := s.Param(1); !ok || p != SQLExecTaint {
		t.Errorf("param 1 should be sql-exec")
	}
	if _, ok := s.Param(0); ok {
		t.Errorf("param 0 should be undeclared")
	}
	m := s.Merge(NewSignature(PreserveTaint).WithParam(1, HTMLExecTaint))
	if m.Overall != PreserveTaint || m.Params[1] != SQLExecTaint|HTMLExecTaint {
		t.Errorf("unexpected merge %s", m)
	}
	if s.Params[1] != SQLExecTaint {
		t.Errorf("merge must not mutate its receiver")
	}
	if m.String() != "{overall: preserve, 1: html-exec|sql-exec}" {
		t.Errorf("unexpected string %q", m.String())
	}
}
