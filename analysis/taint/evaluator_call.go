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
	"fmt"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
)

// evalCall evaluates a call. The signature of the callee decides which content of each argument flows to the
// result, and which content must not be passed in each parameter.
func (e *Engine) evalCall(n *ir.Node) lattice.Taint {
	return e.evalCallWith(n, nil)
}

func (e *Engine) evalCallWith(n *ir.Node, known map[int]lattice.Taint) lattice.Taint {
	args := make([]lattice.Taint, len(n.List))
	for i, arg := range n.List {
		if t, ok := known[i]; ok {
			args[i] = t
			continue
		}
		args[i] = e.eval(arg)
	}
	callee := e.program.Func(n.Func)
	sig := e.calleeSignature(n, callee)
	name := n.Callee.String()
	if callee != nil {
		name = callee.String()
	}

	combined := lattice.NoTaint
	for i, arg := range n.List {
		param, declared := sig.Param(i)
		eff := effectiveTaint(sig, param, declared, args[i])
		if declared {
			e.maybeEmitIssue(param, eff, arg, fmt.Sprintf("calling %s with a tainted argument #%d", name, i))
		}
		if callee != nil && args[i].HasYes() {
			e.floodYesForward(callee.ID, i, args[i])
		}
		if param.HasExec() {
			for _, sym := range e.contributors(arg) {
				e.floodExecBackward(sym, param&lattice.ExecTaint)
			}
		}
		if callee != nil && i < len(callee.Params) && callee.Params[i].ByRef {
			e.passByRef(arg, callee.ID, i)
		}
		combined = lattice.Merge(combined, eff)
	}

	for _, c := range e.collaborators {
		c.CallVisited(e, n, callee, args)
	}
	return (sig.Overall &^ (lattice.PreserveTaint | lattice.ExecTaint)) | (combined &^ lattice.ExecTaint)
}

// effectiveTaint returns the taint of an argument of taint arg passed to a parameter of taint param
func effectiveTaint(sig lattice.Signature, param lattice.Taint, declared bool, arg lattice.Taint) lattice.Taint {
	if !declared {
		if sig.Overall.Intersects(lattice.PreserveTaint | lattice.UnknownTaint) {
			return arg
		}
		return lattice.NoTaint
	}
	if param.Has(lattice.PreserveTaint) {
		return arg
	}
	eff := arg & (param | lattice.ExecToYes(param))
	if param.HasExec() {
		eff |= arg & lattice.UnknownTaint
	}
	return eff
}

// passByRef copies the taint the callee left in its by-reference parameter index back into the variable passed
// as argument. Only the result of the callee's body flows back: variables passed at other call sites are not
// affected.
func (e *Engine) passByRef(arg *ir.Node, callee ir.FuncID, index int) {
	if arg.Kind != ir.KindVar || arg.Sym == 0 {
		e.logger.Tracef("%s: by-reference argument %s is not a variable", e.pos, arg)
		return
	}
	res, ok := e.funcState(callee).byRef[index]
	if !ok {
		return
	}
	t := res.taint &^ (lattice.PreserveTaint | lattice.ExecTaint)
	e.setTaint(arg.Sym, t, false)
	if t.Intersects(lattice.YesExecTaint) {
		e.store.addProvenance(arg.Sym, res.provenance)
	}
}

// calleeSignature returns the signature of the function called by n. callee is the function of the program
// called, or nil.
func (e *Engine) calleeSignature(n *ir.Node, callee *ir.Function) lattice.Signature {
	if !n.Callee.IsZero() {
		if sig, ok := e.table.Lookup(n.Callee); ok {
			return sig
		}
	}
	if callee == nil {
		if n.Callee.IsZero() {
			e.logger.Debugf("%s: unresolved callee", e.pos)
			return lattice.NewSignature(lattice.UnknownTaint)
		}
		e.logger.Tracef("%s: no signature for %s, assuming it preserves taint", e.pos, n.Callee)
		return lattice.NewSignature(lattice.PreserveTaint)
	}
	if fs, ok := e.funcs[callee.ID]; ok && fs.summarized {
		return fs.signature.Clone()
	}
	if callee.Body == nil {
		return lattice.NewSignature(defaultTaint(callee.Returns))
	}
	if e.inProgress[callee.ID] {
		e.logger.Debugf("%s: recursive call to %s", e.pos, callee)
		return lattice.NewSignature(lattice.UnknownTaint)
	}
	if e.config.ExceedsMaxDepth(len(e.frames)) {
		e.logger.Debugf("%s: not analyzing %s, maximum depth %d reached", e.pos, callee, e.config.MaxDepth)
		return lattice.NewSignature(lattice.UnknownTaint)
	}
	e.analyze(callee, false, lattice.NoTaint)
	if sig, ok := e.Signature(callee.ID); ok {
		return sig
	}
	return lattice.NewSignature(lattice.UnknownTaint)
}
