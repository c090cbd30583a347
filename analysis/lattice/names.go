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
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type flagName struct {
	flag Taint
	name string
}

// single flags, in bit order
var flagNames = []flagName{
	{InapplicableTaint, "inapplicable"},
	{HTMLTaint, "html"},
	{HTMLExecTaint, "html-exec"},
	{SQLTaint, "sql"},
	{SQLExecTaint, "sql-exec"},
	{ShellTaint, "shell"},
	{ShellExecTaint, "shell-exec"},
	{SerializeTaint, "serialize"},
	{SerializeExecTaint, "serialize-exec"},
	{Custom1Taint, "custom1"},
	{Custom1ExecTaint, "custom1-exec"},
	{Custom2Taint, "custom2"},
	{Custom2ExecTaint, "custom2-exec"},
	{MiscTaint, "misc"},
	{MiscExecTaint, "misc-exec"},
	{SQLNumkeyTaint, "sql-numkey"},
	{SQLNumkeyExecTaint, "sql-numkey-exec"},
	{PreserveTaint, "preserve"},
	{UnknownTaint, "unknown"},
}

// aliases for flag groups, accepted by Parse but never produced by String
var groupNames = map[string]Taint{
	"none":     NoTaint,
	"yes":      YesTaint,
	"exec":     ExecTaint,
	"yes-exec": YesExecTaint,
}

// String returns the names of the flags in t joined by "|". Groups are abbreviated when complete.
func (t Taint) String() string {
	if t == NoTaint {
		return "none"
	}
	var parts []string
	rest := t
	if rest&YesTaint == YesTaint {
		parts = append(parts, "yes")
		rest &^= YesTaint
	}
	if rest&ExecTaint == ExecTaint {
		parts = append(parts, "exec")
		rest &^= ExecTaint
	}
	for _, fn := range flagNames {
		if rest&fn.flag != 0 {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Parse parses a taint written as flag names joined by "|" (e.g. "sql-exec|html-exec"), or as an integer
func Parse(s string) (Taint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoTaint, nil
	}
	if n, err := strconv.ParseUint(s, 0, 32); err == nil {
		return Taint(n), nil
	}
	var t Taint
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		if g, ok := groupNames[name]; ok {
			t |= g
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				t |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return NoTaint, fmt.Errorf("unknown taint flag %q", name)
		}
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Use only on constant strings.
func MustParse(s string) Taint {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// UnmarshalYAML accepts a scalar (see Parse) or a sequence of scalars that are merged together
func (t *Taint) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		x, err := Parse(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*t = x
	case yaml.SequenceNode:
		var acc Taint
		for _, item := range value.Content {
			var x Taint
			if err := x.UnmarshalYAML(item); err != nil {
				return err
			}
			acc |= x
		}
		*t = acc
	default:
		return fmt.Errorf("line %d: taint must be a name or a list of names", value.Line)
	}
	return nil
}

// MarshalYAML writes the taint as its name
func (t Taint) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// MarshalText writes the taint as its name, which is used by the json reports
func (t Taint) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the taint name
func (t *Taint) UnmarshalText(b []byte) error {
	x, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = x
	return nil
}

// Kind names the class of vulnerability a set of exec flags stands for. The result is empty when exec has no exec
// flag.
func Kind(exec Taint) string {
	switch {
	case exec&(SQLExecTaint|SQLNumkeyExecTaint) != 0:
		return "sql-injection"
	case exec&ShellExecTaint != 0:
		return "shell-injection"
	case exec&HTMLExecTaint != 0:
		return "xss"
	case exec&SerializeExecTaint != 0:
		return "serialize-injection"
	case exec&MiscExecTaint != 0:
		return "code-injection"
	case exec&Custom1ExecTaint != 0:
		return "custom1"
	case exec&Custom2ExecTaint != 0:
		return "custom2"
	}
	return ""
}
