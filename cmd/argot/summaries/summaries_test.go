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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
)

func TestWrite(t *testing.T) {
	results := []analysis.TaintResult{
		{Name: "a.yaml", Result: taint.AnalysisResult{Signatures: map[string]lattice.Signature{
			"show": lattice.NewSignature(lattice.NoTaint).WithParam(0, lattice.HTMLExecTaint),
		}}},
		{Name: "b.yaml", Result: taint.AnalysisResult{Signatures: map[string]lattice.Signature{
			"id": lattice.NewSignature(lattice.PreserveTaint),
		}}},
	}
	var b bytes.Buffer
	if err := write(&b, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := b.String()
	for _, s := range []string{"# a.yaml\nshow: ", "# b.yaml\nid: {overall: preserve}"} {
		if !strings.Contains(out, s) {
			t.Errorf("output should contain %q:\n%s", s, out)
		}
	}

	b.Reset()
	if err := write(&b, []analysis.TaintResult{{Name: "c.yaml", Err: errors.New("invariant violation")}}); err == nil {
		t.Errorf("expected the error of the analysis")
	}
	if strings.Contains(b.String(), "#") {
		t.Errorf("a single program should not have a header")
	}
}
