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
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Signature is the taint summary of a function.
//
// Params[i] is the taint of the i-th parameter: its yes flags are the content that flows from the parameter to the
// result, its exec flags the content that must not be passed in that parameter. Overall is the taint of the result
// that does not depend on a specific parameter. An Overall with PreserveTaint means that arguments for which Params
// has no entry flow to the result unchanged.
type Signature struct {
	Overall Taint         `yaml:"overall" json:"overall"`
	Params  map[int]Taint `yaml:"params,omitempty" json:"params,omitempty"`
}

// NewSignature returns a signature with only an overall taint
func NewSignature(overall Taint) Signature {
	return Signature{Overall: overall}
}

// Param returns the taint of parameter i, and whether the signature declares one
func (s Signature) Param(i int) (Taint, bool) {
	if s.Params == nil {
		return NoTaint, false
	}
	t, ok := s.Params[i]
	return t, ok
}

// WithParam returns a copy of s where parameter i has taint t
func (s Signature) WithParam(i int, t Taint) Signature {
	c := s.Clone()
	if c.Params == nil {
		c.Params = map[int]Taint{}
	}
	c.Params[i] = t
	return c
}

// Clone returns a deep copy of s
func (s Signature) Clone() Signature {
	c := Signature{Overall: s.Overall}
	if s.Params != nil {
		c.Params = maps.Clone(s.Params)
	}
	return c
}

// Merge returns the per-parameter merge of s and other
func (s Signature) Merge(other Signature) Signature {
	c := s.Clone()
	c.Overall |= other.Overall
	for i, t := range other.Params {
		if c.Params == nil {
			c.Params = map[int]Taint{}
		}
		c.Params[i] |= t
	}
	return c
}

// AllTaint returns the merge of the overall taint and all parameter taints
func (s Signature) AllTaint() Taint {
	t := s.Overall
	for _, p := range s.Params {
		t |= p
	}
	return t
}

// Equal returns true when both signatures declare the same taints
func (s Signature) Equal(other Signature) bool {
	return s.Overall == other.Overall && maps.Equal(s.Params, other.Params)
}

func (s Signature) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "{overall: %s", s.Overall)
	keys := maps.Keys(s.Params)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ", %d: %s", k, s.Params[k])
	}
	b.WriteString("}")
	return b.String()
}
