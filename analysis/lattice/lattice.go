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

// Package lattice implements the taint domain: a bit set where every category of dangerous content has a "yes" bit
// (the value may carry that content) immediately followed by an "exec" bit (using a value in this position is unsafe
// for that content). Converting between the two families is a single shift.
package lattice

// Taint is a set of taint flags. The zero value is NoTaint.
type Taint uint32

const (
	// NoTaint is the identity of Merge
	NoTaint Taint = 0
	// InapplicableTaint marks constructs (statements) that do not have a taint value
	InapplicableTaint Taint = 1 << 0

	HTMLTaint     Taint = 1 << 1
	HTMLExecTaint Taint = 1 << 2

	SQLTaint     Taint = 1 << 3
	SQLExecTaint Taint = 1 << 4

	ShellTaint     Taint = 1 << 5
	ShellExecTaint Taint = 1 << 6

	SerializeTaint     Taint = 1 << 7
	SerializeExecTaint Taint = 1 << 8

	Custom1Taint     Taint = 1 << 9
	Custom1ExecTaint Taint = 1 << 10

	Custom2Taint     Taint = 1 << 11
	Custom2ExecTaint Taint = 1 << 12

	// MiscTaint is content that must not reach code evaluation or file inclusion
	MiscTaint     Taint = 1 << 13
	MiscExecTaint Taint = 1 << 14

	// SQLNumkeyTaint marks SQL-tainted strings stored at a numeric (or implicit) key of a query-fragment array
	SQLNumkeyTaint     Taint = 1 << 15
	SQLNumkeyExecTaint Taint = 1 << 16

	// PreserveTaint means the taint of the value is the taint of the function inputs
	PreserveTaint Taint = 1 << 17
	// UnknownTaint means there is no information about the value
	UnknownTaint Taint = 1 << 18

	// YesTaint is what external input carries: every category at once
	YesTaint = HTMLTaint | SQLTaint | ShellTaint | SerializeTaint | Custom1Taint | Custom2Taint | MiscTaint |
		SQLNumkeyTaint
	// ExecTaint is the set of all exec flags
	ExecTaint = YesTaint << 1
	// YesExecTaint is the set of all yes and exec flags
	YesExecTaint = YesTaint | ExecTaint
)

// Merge returns the least upper bound of a and b
func Merge(a, b Taint) Taint {
	return a | b
}

// YesToExec converts the yes flags of t into the corresponding exec flags. Other flags are dropped.
func YesToExec(t Taint) Taint {
	return (t & YesTaint) << 1
}

// ExecToYes converts the exec flags of t into the corresponding yes flags. Other flags are dropped.
func ExecToYes(t Taint) Taint {
	return (t & ExecTaint) >> 1
}

// IsSafeAssignment returns true when a value of taint rhs can be used in a position requiring lhs: rhs carries no
// content lhs says is unsafe, and rhs is not unknown when lhs is a sink of any kind.
func IsSafeAssignment(lhs, rhs Taint) bool {
	if YesToExec(rhs)&lhs != 0 {
		return false
	}
	return !(lhs&ExecTaint != 0 && rhs&UnknownTaint != 0)
}

// IsLikelyFalsePositive returns true when t is unknown without carrying any actual dangerous content
func IsLikelyFalsePositive(t Taint) bool {
	return t&UnknownTaint != 0 && t&YesTaint == 0
}

// HasYes returns true when t carries some dangerous content
func (t Taint) HasYes() bool {
	return t&YesTaint != 0
}

// HasExec returns true when t has some exec flag
func (t Taint) HasExec() bool {
	return t&ExecTaint != 0
}

// Has returns true when t has all the flags in f
func (t Taint) Has(f Taint) bool {
	return t&f == f
}

// Intersects returns true when t and f share a flag
func (t Taint) Intersects(f Taint) bool {
	return t&f != 0
}

// IsSafeType returns true when the taint is NoTaint or Inapplicable
func (t Taint) IsSafeType() bool {
	return t&^InapplicableTaint == NoTaint
}
