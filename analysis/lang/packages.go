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

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/summaries"
	"github.com/awslabs/ar-go-taintcheck/internal/analysisutil"
	"golang.org/x/tools/go/packages"
)

// Lower translates the packages and their dependencies to a program. The packages of the standard library and the
// dependencies that do not match the package filter of cfg are not translated: calls to their functions are
// evaluated with signatures.
func Lower(pkgs []*packages.Package, cfg *config.Config, logger *config.LogGroup) (*ir.Program, error) {
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages to translate")
	}
	l := NewLowerer(pkgs[0].Fset, logger)
	roots := map[*packages.Package]bool{}
	for _, p := range pkgs {
		roots[p] = true
	}
	analysisutil.VisitPackages(pkgs, func(p *packages.Package) bool {
		if p.Types == nil || p.TypesInfo == nil {
			return false
		}
		if !roots[p] {
			// the standard library only imports itself
			if p.Module == nil && summaries.IsStdPackageName(p.PkgPath) {
				return false
			}
			if cfg != nil && !cfg.MatchPkgFilter(p.PkgPath) {
				l.logger.Debugf("skipping package %s", p.PkgPath)
				return true
			}
		}
		l.AddPackage(p.Types, p.TypesInfo, p.Syntax)
		return true
	})
	return l.Program()
}
