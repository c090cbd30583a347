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

package report

import (
	_ "embed" // use go embed to import template
	"fmt"
	"io"
	"text/template"

	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
	"github.com/awslabs/ar-go-taintcheck/internal/formatutil"
)

//go:embed template.txt
var templateContent string

func writeText(w io.Writer, data *Report, enableColor bool) error {
	t, err := template.
		New("argot").
		Funcs(textFuncMap(enableColor)).
		Parse(templateContent)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

func textFuncMap(enableColor bool) template.FuncMap {
	danger, warning, notice := fmt.Sprint, fmt.Sprint, fmt.Sprint
	if enableColor {
		danger, warning, notice = formatutil.Red, formatutil.Yellow, formatutil.Bold
	}
	return template.FuncMap{
		"danger": danger,
		"notice": notice,
		// messages and names come from the analyzed source
		"sanitize": formatutil.Sanitize,
		"level": func(issue *taint.Issue) string {
			if issue.IsLikelyFalsePositive() {
				return warning("[likely false positive]")
			}
			return danger("[issue]")
		},
	}
}
