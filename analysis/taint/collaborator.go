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

package taint

import (
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// A Collaborator recognizes framework specific idioms (e.g. callbacks registered to hooks) and translates them
// into facts the engine understands. The engine notifies every collaborator as it evaluates functions.
type Collaborator interface {
	// SeedParameters is called after the parameters of fn have been initialized, before its body is evaluated.
	SeedParameters(e *Engine, fn *ir.Function)

	// CallVisited is called after a call has been evaluated. callee is nil when the callee is not a function of
	// the program. args holds the taint of each argument.
	CallVisited(e *Engine, call *ir.Node, callee *ir.Function, args []lattice.Taint)

	// AssignVisited is called after an assignment has been evaluated
	AssignVisited(e *Engine, assign *ir.Node)

	// ReturnVisited is called after a return statement of fn returning a value of taint t has been evaluated
	ReturnVisited(e *Engine, fn *ir.Function, ret *ir.Node, t lattice.Taint)
}
