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

// Package analysistest loads the test programs of the analyses and reads the expectations written as annotations in
// their comments.
package analysistest

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-taintcheck/analysis"
	"github.com/awslabs/ar-go-taintcheck/analysis/config"
)

// LoadTest loads the program in the directory dir, looking for a main.go and a config.yaml. If additional files
// are specified as extraFiles, the program will be loaded using those files too. A missing config.yaml means the
// default config.
func LoadTest(t *testing.T, dir string, extraFiles []string) (analysis.LoadedProgram, *config.Config) {
	t.Helper()
	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		config.SetGlobalConfig(configFile)
		cfg, err = config.LoadGlobal()
		if err != nil {
			t.Fatalf("error loading global config: %v", err)
		}
	}
	files := []string{filepath.Join(dir, "./main.go")}
	for _, extraFile := range extraFiles {
		files = append(files, filepath.Join(dir, extraFile))
	}

	program, err := analysis.LoadProgram(cfg, config.NewLogGroup(cfg), nil, "", files)
	if err != nil {
		t.Fatalf("error loading packages: %v", err)
	}
	return program, cfg
}

// Match annotations of the form "@Source(id1, id2, id3)"
var SourceRegex = regexp.MustCompile(`//.*@Source\(((?:\s*\w\s*,?)+)\)`)
var SinkRegex = regexp.MustCompile(`//.*@Sink\(((?:\s*\w\s*,?)+)\)`)

// Match annotations of the form "@Issue(xss)" or "@Issue(sql-injection, xss)"
var IssueRegex = regexp.MustCompile(`//.*@Issue\(((?:\s*[\w-]+\s*,?)+)\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// Annotations are the expectations written in the comments of a test program
type Annotations struct {
	// SourceToSink maps the positions of sinks to all the source positions that reach that sink
	SourceToSink map[LPos]map[LPos]bool
	// Issues maps the positions where issues are expected to their kinds
	Issues map[LPos][]string
}

// GetAnnotations analyzes the Go files in dir and looks for comments @Source(id), @Sink(id) and @Issue(kind).
// Filenames are absolute.
func GetAnnotations(dir string) (Annotations, error) {
	res := Annotations{SourceToSink: map[LPos]map[LPos]bool{}, Issues: map[LPos][]string{}}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return res, err
	}
	fset := token.NewFileSet() // positions are relative to fset
	var comments []token.Position
	var texts []string

	err = filepath.Walk(dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return err
		}
		for _, c := range f.Comments {
			for _, c1 := range c.List {
				comments = append(comments, fset.Position(c1.Pos()))
				texts = append(texts, c1.Text)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	// Get all the source positions with their identifiers
	sourceIds := map[string]token.Position{}
	for i, text := range texts {
		for _, ident := range matchIdents(SourceRegex, text) {
			sourceIds[ident] = comments[i]
		}
	}

	for i, text := range texts {
		pos := RemoveColumn(comments[i])
		for _, ident := range matchIdents(SinkRegex, text) {
			if sourcePos, ok := sourceIds[ident]; ok {
				if _, ok := res.SourceToSink[pos]; !ok {
					res.SourceToSink[pos] = make(map[LPos]bool)
				}
				res.SourceToSink[pos][RemoveColumn(sourcePos)] = true
			}
		}
		res.Issues[pos] = append(res.Issues[pos], matchIdents(IssueRegex, text)...)
		if len(res.Issues[pos]) == 0 {
			delete(res.Issues, pos)
		}
	}
	return res, nil
}

func matchIdents(r *regexp.Regexp, text string) []string {
	a := r.FindStringSubmatch(text)
	if len(a) <= 1 {
		return nil
	}
	var res []string
	for _, ident := range strings.Split(a[1], ",") {
		res = append(res, strings.TrimSpace(ident))
	}
	return res
}

// RemoveColumn drops the column of the position
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: pos.Filename}
}
