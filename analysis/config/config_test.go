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

package config

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/google/go-cmp/cmp"
)

//go:embed testdata
var testfsys embed.FS

func checkEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := compileRegexes(cid2)
	if !cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", cid1, cid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := compileRegexes(cid2)
	if cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", cid1, cid2)
	}
}

func TestCodeIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Method: "b"}
	checkEqualOnNonEmptyFields(t, cid1, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Receiver: "b", Method: "i", Type: "c"}
	cid2 := CodeIdentifier{Package: "de", Receiver: "234jbn", Method: "ef", Type: "23kjb"}
	cidEmpty := CodeIdentifier{}
	checkEqualOnNonEmptyFields(t, cid1, cidEmpty)
	checkEqualOnNonEmptyFields(t, cid2, cidEmpty)
}

func TestCodeIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Receiver: "b"}
	cid2 := CodeIdentifier{Package: "a"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkNotEqualOnNonEmptyFields(t, cid2, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	cid1 := CodeIdentifier{Package: "example.com/app/web", Method: "Sanitize"}
	checkEqualOnNonEmptyFields(t, cid1, CodeIdentifier{Package: "example.com/.*"})
	checkEqualOnNonEmptyFields(t, cid1, CodeIdentifier{Method: "San(itize|e)"})
	// regexes must match the whole name
	checkNotEqualOnNonEmptyFields(t, cid1, CodeIdentifier{Method: "Sanit"})
	checkNotEqualOnNonEmptyFields(t, cid1, CodeIdentifier{Package: "app"})
}

func TestCodeIdentifier_invalidRegexIsLiteral(t *testing.T) {
	cid := compileRegexes(CodeIdentifier{Method: "f("})
	if cid.computedRegexs != nil {
		t.Fatalf("f( should not compile")
	}
	if !cid.Matches("", "", "f(") || cid.Matches("", "", "f") {
		t.Errorf("invalid regexes should be compared literally")
	}
}

func TestCodeIdentifier_MatchesType(t *testing.T) {
	cid := compileRegexes(CodeIdentifier{Package: "net/http", Type: "Request"})
	for _, name := range []string{"*net/http.Request", "net/http.Request"} {
		if !cid.MatchesType(name) {
			t.Errorf("%s should match %v", name, cid)
		}
	}
	for _, name := range []string{"net/url.Request", "net/http.ResponseWriter", "Request"} {
		if cid.MatchesType(name) {
			t.Errorf("%s should not match %v", name, cid)
		}
	}
}

func loadTestConfig(t *testing.T, name string) (*Config, error) {
	b, err := testfsys.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("could not read testdata: %v", err)
	}
	return Parse(b)
}

func TestParse(t *testing.T) {
	cfg, err := loadTestConfig(t, "config.yaml")
	if err != nil {
		t.Fatalf("could not parse config: %v", err)
	}
	wantOptions := Options{
		ReportFormat:               "sarif",
		ReportLikelyFalsePositives: false,
		PkgFilter:                  "example.com/app/(api|web)",
		MaxDepth:                   3,
		MaxIssues:                  10,
		LogLevel:                   int(DebugLevel),
	}
	if diff := cmp.Diff(wantOptions, cfg.Options); diff != "" {
		t.Errorf("unexpected options (-want +got):\n%s", diff)
	}
	if !cfg.Verbose() {
		t.Errorf("log level 4 is verbose")
	}
	if diff := cmp.Diff([]string{"os.Args", "os.Stdin"}, cfg.ExternalInputs); diff != "" {
		t.Errorf("unexpected external inputs (-want +got):\n%s", diff)
	}
	if !cfg.IsExternalInput("os.Stdin") || cfg.IsExternalInput("os.Stdout") {
		t.Errorf("unexpected external inputs")
	}
	if !cfg.IsSourceType("*net/http.Request") || cfg.IsSourceType("") {
		t.Errorf("unexpected source types")
	}
	if !cfg.MatchPkgFilter("example.com/app/web") || cfg.MatchPkgFilter("example.com/app/db") {
		t.Errorf("unexpected package filter")
	}
	if !cfg.ExceedsMaxDepth(4) || cfg.ExceedsMaxDepth(3) {
		t.Errorf("unexpected max depth")
	}

	r := cfg.Hooks.Registrars[0]
	if r.CallbackArg != 1 || r.ReturnSink != lattice.HTMLExecTaint || len(r.TaintedParams) != 1 {
		t.Errorf("unexpected registrar %+v", r)
	}
	d := cfg.Hooks.Dispatchers[0]
	if !d.ArgsRest || d.ArgsArg != 1 || !d.Callee.Matches("", "Router", "Serve") {
		t.Errorf("unexpected dispatcher %+v", d)
	}
}

func TestSignatureOf(t *testing.T) {
	cfg, err := loadTestConfig(t, "config.yaml")
	if err != nil {
		t.Fatalf("could not parse config: %v", err)
	}
	sig, ok := cfg.SignatureOf("example.com/app/db", "Database", "query")
	if !ok {
		t.Fatalf("query should have a signature")
	}
	want := lattice.NewSignature(lattice.NoTaint).WithParam(1, lattice.SQLExecTaint)
	if !sig.Equal(want) {
		t.Errorf("expected %s, got %s", want, sig)
	}
	if _, ok := cfg.SignatureOf("example.com/app/web", "", "SanitizeHTML"); !ok {
		t.Errorf("SanitizeHTML should match the regex signature")
	}
	if _, ok := cfg.SignatureOf("example.com/lib", "", "SanitizeHTML"); ok {
		t.Errorf("SanitizeHTML of another package should not have a signature")
	}
	if sig, ok := cfg.SignatureOf("any", "", "escape"); !ok || sig.Overall != lattice.NoTaint {
		t.Errorf("escape should have the signature declared as a list")
	}
}

func TestParseErrors(t *testing.T) {
	_, err := loadTestConfig(t, "bad-format.yaml")
	if err == nil || !strings.Contains(err.Error(), "unsupported report format \"html\"") {
		t.Errorf("expected a report format error, got %v", err)
	}
	_, err = loadTestConfig(t, "bad-taint.yaml")
	if err == nil || !strings.Contains(err.Error(), "could not unmarshal config file") {
		t.Errorf("expected an unmarshal error, got %v", err)
	}
}

func TestNewDefault(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("could not parse empty config: %v", err)
	}
	if diff := cmp.Diff(NewDefault().Options, cfg.Options); diff != "" {
		t.Errorf("empty config should have default options (-want +got):\n%s", diff)
	}
	if !cfg.IsExternalInput("os.Args") {
		t.Errorf("os.Args is an external input by default")
	}
	if cfg.ExceedsMaxDepth(1000) {
		t.Errorf("max depth is ignored by default")
	}
	if !cfg.MatchPkgFilter("anything") {
		t.Errorf("no package filter matches everything")
	}
}

func TestLoadReportsDir(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(filename, []byte("options:\n  report-summaries: true\n"), 0600); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	SetGlobalConfig(filename)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if filepath.Dir(cfg.ReportsDir) != dir {
		t.Errorf("reports directory %q should be created next to the config file", cfg.ReportsDir)
	}
	if _, err := os.Stat(cfg.ReportsDir); err != nil {
		t.Errorf("reports directory should exist: %v", err)
	}
	if cfg.RelPath("sub/x.go") != filepath.Join(dir, "sub/x.go") {
		t.Errorf("unexpected relative path %q", cfg.RelPath("sub/x.go"))
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestLogGroup(t *testing.T) {
	var b strings.Builder
	l := NewLogGroupLevel(WarnLevel)
	l.SetAllOutput(&b)
	l.Infof("hidden")
	l.Warnf("shown %d", 1)
	if strings.Contains(b.String(), "hidden") || !strings.Contains(b.String(), "[WARN] ") {
		t.Errorf("unexpected log output %q", b.String())
	}
	cfg := NewDefault()
	cfg.SilenceWarn = true
	if NewLogGroup(cfg).Level() != InfoLevel {
		t.Errorf("default level should be info")
	}
}
