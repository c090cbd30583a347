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

package taint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
)

func TestNewFlags(t *testing.T) {
	flags, err := NewFlags("check", []string{"-format", "sarif", "-exclude", "vendor/", "-exclude", "gen/",
		"-dump-deps", "deps", "-j", "4", "./..."})
	if err != nil {
		t.Fatalf("could not parse flags: %v", err)
	}
	if !flags.FailOnIssues || flags.Format != "sarif" || flags.Routines != 4 || flags.dumpDeps != "deps" {
		t.Errorf("unexpected flags %+v", flags)
	}
	if len(flags.Exclude) != 2 || flags.Exclude[1] != "gen/" {
		t.Errorf("unexpected excluded paths %v", flags.Exclude)
	}
	if args := flags.FlagSet.Args(); len(args) != 1 || args[0] != "./..." {
		t.Errorf("unexpected args %v", args)
	}
	flags, err = NewFlags("taint", []string{"main.go"})
	if err != nil {
		t.Fatalf("could not parse flags: %v", err)
	}
	if flags.FailOnIssues {
		t.Errorf("taint should not fail on issues")
	}
}

func TestDumpDependencies(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function("render", ir.TypeString)
	p := b.Param(f, "page", ir.TypeString, false)
	f.Body = ir.Return(ir.Var(p))
	prog, err := b.Program()
	if err != nil {
		t.Fatalf("could not build program: %v", err)
	}
	res, err := taint.Analyze(config.NewDiscardLogGroup(), config.NewDefault(), prog)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	dir := t.TempDir()
	programs := []analysis.LoadedProgram{{Name: "render", Program: prog}}
	results := []analysis.TaintResult{{Name: "render", Result: res}}
	if err := dumpDependencies(dir, programs, results); err != nil {
		t.Fatalf("could not dump dependencies: %v", err)
	}
	b2, err := os.ReadFile(filepath.Join(dir, "deps-0.dot"))
	if err != nil {
		t.Fatalf("dependency graph not written: %v", err)
	}
	out := string(b2)
	if !strings.HasPrefix(out, "strict digraph deps0 {") && !strings.HasPrefix(out, "digraph deps0 {") {
		t.Errorf("unexpected dot output:\n%s", out)
	}
	if !strings.Contains(out, "render[0]") {
		t.Errorf("parameter node missing from dot output:\n%s", out)
	}
}
