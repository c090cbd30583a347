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
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the signatures of callables, the external inputs, the hooks recognized and the options of the
// analysis.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// Signatures lists taint signatures of callables. They take precedence over the builtin signatures and over
	// the signatures computed for functions of the program.
	Signatures []SignatureSpec `yaml:"signatures"`

	// ExternalInputs lists names of variable bindings that hold external input (e.g. "os.Args"). A reference to an
	// unresolved binding with one of these names is a source.
	ExternalInputs []string `yaml:"external-inputs"`

	// SourceTypes identifies types whose values are external input. Parameters declared with one of these types
	// start with taint "yes".
	SourceTypes []CodeIdentifier `yaml:"source-types"`

	// Hooks describes the hook registration and dispatch callables of the framework analyzed
	Hooks HooksSpec `yaml:"hooks"`
}

// SignatureSpec is a taint signature for the callables matching the code identifier
type SignatureSpec struct {
	CodeIdentifier `yaml:",inline"`
	Overall        lattice.Taint         `yaml:"overall"`
	Params         map[int]lattice.Taint `yaml:"params"`
}

// Signature returns the signature declared by the spec
func (s SignatureSpec) Signature() lattice.Signature {
	sig := lattice.NewSignature(s.Overall)
	for i, t := range s.Params {
		sig = sig.WithParam(i, t)
	}
	return sig
}

// HooksSpec lists the callables that register and run hooks
type HooksSpec struct {
	Registrars  []HookRegistrar  `yaml:"registrars"`
	Dispatchers []HookDispatcher `yaml:"dispatchers"`
}

// HookRegistrar identifies a callable that registers a callback for a hook
type HookRegistrar struct {
	Callee CodeIdentifier `yaml:"callee"`
	// Hook is the name of the hook registered. When empty, the name is the string literal at HookArg.
	Hook    string `yaml:"hook"`
	HookArg int    `yaml:"hook-arg"`
	// CallbackArg is the argument holding the callback
	CallbackArg int `yaml:"callback-arg"`
	// TaintedParams are the parameters of the callback that receive external input
	TaintedParams []int `yaml:"tainted-params"`
	// ReturnSink is the exec taint of the value returned by the callback, e.g. html-exec when the framework emits
	// the result as markup
	ReturnSink lattice.Taint `yaml:"return-sink"`
}

// HookDispatcher identifies a callable that runs all the callbacks registered for a hook
type HookDispatcher struct {
	Callee  CodeIdentifier `yaml:"callee"`
	Hook    string         `yaml:"hook"`
	HookArg int            `yaml:"hook-arg"`
	// ArgsArg is the argument holding the array literal of the arguments passed to each callback. When ArgsRest is
	// true, the callbacks receive all the arguments starting at ArgsArg instead.
	ArgsArg  int  `yaml:"args-arg"`
	ArgsRest bool `yaml:"args-rest"`
}

// Options are the options of the analysis and of the reports
type Options struct {
	// ReportsDir is the directory where the reports will be stored. If the yaml config file does not specify a
	// ReportsDir but sets ReportSummaries, then a new directory will be created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportFormat is one of text, json, yaml, sarif
	ReportFormat string `yaml:"report-format"`

	// ReportSummaries can be set to true, in which case the signatures of all functions will be reported in a file
	// named summaries-*.out in the reports directory
	ReportSummaries bool `yaml:"report-summaries"`

	// ReportLikelyFalsePositives controls whether issues caused only by unknown taint are reported
	ReportLikelyFalsePositives bool `yaml:"report-likely-false-positives"`

	// PkgFilter is a filter for the Go frontend to translate only the packages that match
	PkgFilter string `yaml:"pkg-filter"`

	// MaxDepth sets a limit for the number of nested callee analyses started while analyzing a call.
	// If MaxDepth is <= 0, then it is ignored.
	MaxDepth int `yaml:"max-depth"`

	// MaxIssues sets a limit for the number of issues reported. If MaxIssues <= 0, it is ignored.
	MaxIssues int `yaml:"max-issues"`

	// StrictInvariants makes internal invariant violations fatal. Otherwise they are logged and the offending
	// update is skipped.
	StrictInvariants bool `yaml:"strict-invariants"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:     "",
		Signatures:     nil,
		ExternalInputs: []string{"os.Args"},
		SourceTypes:    nil,
		Options: Options{
			ReportsDir:                 "",
			ReportFormat:               "text",
			ReportSummaries:            false,
			ReportLikelyFalsePositives: true,
			PkgFilter:                  "",
			MaxDepth:                   DefaultSafeMaxDepth,
			MaxIssues:                  0,
			StrictInvariants:           false,
			LogLevel:                   int(InfoLevel),
			SilenceWarn:                false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.sourceFile = filename

	if cfg.ReportSummaries {
		err = setReportsDir(cfg, filename)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse reads a configuration from its yaml contents
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "text"
	}
	if !funcutil.Contains(ReportFormats, cfg.ReportFormat) {
		return nil, fmt.Errorf("unsupported report format %q, expected one of %s", cfg.ReportFormat,
			strings.Join(ReportFormats, ", "))
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	cfg.SourceTypes = funcutil.Map(cfg.SourceTypes, compileRegexes)
	for i := range cfg.Signatures {
		cfg.Signatures[i].CodeIdentifier = compileRegexes(cfg.Signatures[i].CodeIdentifier)
	}
	for i := range cfg.Hooks.Registrars {
		cfg.Hooks.Registrars[i].Callee = compileRegexes(cfg.Hooks.Registrars[i].Callee)
	}
	for i := range cfg.Hooks.Dispatchers {
		cfg.Hooks.Dispatchers[i].Callee = compileRegexes(cfg.Hooks.Dispatchers[i].Callee)
	}
	return cfg, nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// Below are functions used to query the configuration on specific facts

// SignatureOf returns the signature declared for the callable, when one of the signature specs matches it. The
// last matching spec wins.
func (c Config) SignatureOf(pkg, receiver, method string) (lattice.Signature, bool) {
	for i := len(c.Signatures) - 1; i >= 0; i-- {
		if c.Signatures[i].Matches(pkg, receiver, method) {
			return c.Signatures[i].Signature(), true
		}
	}
	return lattice.Signature{}, false
}

// IsExternalInput returns true if name is the name of a binding holding external input
func (c Config) IsExternalInput(name string) bool {
	return funcutil.Contains(c.ExternalInputs, name)
}

// IsSourceType returns true if typeName matches a source type of the config
func (c Config) IsSourceType(typeName string) bool {
	if typeName == "" {
		return false
	}
	return ExistsCid(c.SourceTypes, func(cid CodeIdentifier) bool { return cid.MatchesType(typeName) })
}

// Verbose returns true if the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxDepth returns true if the input exceeds the maximum depth parameter of the configuration.
// (this implements the logic for using maximum depth; if the configuration setting is < 0, then this returns false)
func (c Config) ExceedsMaxDepth(d int) bool {
	return !(c.MaxDepth <= 0) && d > c.MaxDepth
}
