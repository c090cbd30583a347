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

package ir

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeSet is the declared static type of an expression or symbol, as a union of type kinds. The empty set means
// the type is not known.
type TypeSet uint16

const (
	TypeInt TypeSet = 1 << iota
	TypeFloat
	TypeBool
	TypeNull
	TypeVoid
	TypeString
	TypeArray
	TypeObject
	TypeCallable
	TypeMixed
)

// safeTypes are the types whose values cannot carry attacker-controlled content
const safeTypes = TypeInt | TypeFloat | TypeBool | TypeNull | TypeVoid

var typeNames = []struct {
	t    TypeSet
	name string
}{
	{TypeInt, "int"},
	{TypeFloat, "float"},
	{TypeBool, "bool"},
	{TypeNull, "null"},
	{TypeVoid, "void"},
	{TypeString, "string"},
	{TypeArray, "array"},
	{TypeObject, "object"},
	{TypeCallable, "callable"},
	{TypeMixed, "mixed"},
}

// IsSafe returns true when the type is known and contains only numeric, boolean or null-like types
func (t TypeSet) IsSafe() bool {
	return t != 0 && t&^safeTypes == 0
}

// IsString returns true when the type may be a string
func (t TypeSet) IsString() bool {
	return t&(TypeString|TypeMixed) != 0
}

// IsInt returns true when the type is exactly an integer
func (t TypeSet) IsInt() bool {
	return t == TypeInt
}

// IsArray returns true when the type may be an array
func (t TypeSet) IsArray() bool {
	return t&TypeArray != 0
}

func (t TypeSet) String() string {
	if t == 0 {
		return "unknown"
	}
	var names []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseTypeSet parses a "|"-separated list of type names
func ParseTypeSet(s string) (TypeSet, error) {
	var t TypeSet
	if s == "" || s == "unknown" {
		return t, nil
	}
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		found := false
		for _, tn := range typeNames {
			if tn.name == part {
				t |= tn.t
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown type %q", part)
		}
	}
	return t, nil
}

// UnmarshalYAML accepts "int|string" or [int, string]
func (t *TypeSet) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		x, err := ParseTypeSet(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*t = x
		return nil
	case yaml.SequenceNode:
		var acc TypeSet
		for _, item := range value.Content {
			var x TypeSet
			if err := x.UnmarshalYAML(item); err != nil {
				return err
			}
			acc |= x
		}
		*t = acc
		return nil
	}
	return fmt.Errorf("line %d: invalid type", value.Line)
}

// MarshalYAML writes the type as its name
func (t TypeSet) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
