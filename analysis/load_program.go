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

package analysis

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lang"
	"golang.org/x/tools/go/packages"
)

// PkgLoadMode is the default loading mode in the analyses. We load all possible information.
const PkgLoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes |
	packages.NeedModule

// LoadedProgram represents a loaded program.
type LoadedProgram struct {
	// Name identifies the program in logs and reports
	Name string
	// Program is the program analyzed
	Program *ir.Program
	// Packages is a list of the initial packages of the program, nil for programs read from a file
	Packages []*packages.Package
}

// IsProgramFile returns true when filename is a file containing a serialized program
func IsProgramFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadPrograms loads the programs designated by args. When all the args are program files, each file is a separate
// program. Otherwise, the args are package patterns loaded as one Go program, see LoadProgram.
func LoadPrograms(cfg *config.Config, logger *config.LogGroup, pkgConfig *packages.Config, platform string,
	args []string) ([]LoadedProgram, error) {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	if len(args) > 0 && allProgramFiles(args) {
		res := make([]LoadedProgram, 0, len(args))
		for _, filename := range args {
			p, err := ir.Load(filename)
			if err != nil {
				return nil, err
			}
			logger.Debugf("loaded %s: %d functions, %d symbols", filename, len(p.Functions), len(p.Symbols))
			res = append(res, LoadedProgram{Name: filename, Program: p})
		}
		return res, nil
	}
	p, err := LoadProgram(cfg, logger, pkgConfig, platform, args)
	if err != nil {
		return nil, err
	}
	return []LoadedProgram{p}, nil
}

func allProgramFiles(args []string) bool {
	for _, arg := range args {
		if !IsProgramFile(arg) {
			return false
		}
	}
	return true
}

// LoadProgram loads a Go program on platform "platform" using the args, and translates it.
// To understand how to specify the args, look at the documentation of packages.Load.
func LoadProgram(cfg *config.Config, logger *config.LogGroup, pkgConfig *packages.Config, platform string,
	args []string) (LoadedProgram, error) {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	if pkgConfig == nil {
		pkgConfig = &packages.Config{
			Mode:  PkgLoadMode,
			Tests: false,
			Fset:  token.NewFileSet(),
		}
	}

	if platform != "" {
		pkgConfig.Env = append(os.Environ(), fmt.Sprintf("GOOS=%s", platform))
	}

	// load, parse and type check the given packages
	initialPackages, err := packages.Load(pkgConfig, args...)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("failed to load packages: %v", err)
	}

	if len(initialPackages) == 0 {
		return LoadedProgram{}, fmt.Errorf("no packages")
	}

	if packages.PrintErrors(initialPackages) > 0 {
		return LoadedProgram{}, fmt.Errorf("errors found, exiting")
	}

	program, err := lang.Lower(initialPackages, cfg, logger)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("failed to translate packages: %w", err)
	}
	logger.Debugf("translated %d functions, %d symbols", len(program.Functions), len(program.Symbols))

	return LoadedProgram{Name: strings.Join(args, " "), Program: program, Packages: initialPackages}, nil
}
