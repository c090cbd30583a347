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

// Package hooks implements a taint.Collaborator for frameworks where callbacks are registered for named hooks and
// later run by a dispatcher. The registration and dispatch callables are declared in the hooks section of the
// configuration.
//
// A callback registered for a hook is re-analyzed the first time it is registered: the parameters the
// registrar declares tainted receive external input, and the value the callback returns is checked against the
// return sink of the registrar. A dispatch is evaluated as a call to every callback registered for the hook.
package hooks

import (
	"fmt"

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/analysis/taint"
)

// special is a hook registration that changes how its callback is analyzed
type special struct {
	hook      string
	registrar *config.HookRegistrar
}

// pendingRegistration is a registration whose callback is a variable that did not hold a known callable yet
type pendingRegistration struct {
	hook      string
	registrar *config.HookRegistrar
}

// Collaborator tracks the callbacks registered for each hook
type Collaborator struct {
	config *config.Config

	// subscribers lists the callbacks of each hook, in registration order
	subscribers map[string][]ir.FuncID

	// registered is the set of callbacks registered at least once
	registered map[ir.FuncID]bool

	specials map[ir.FuncID][]special

	// bindings maps variables to the callable they were last assigned
	bindings map[ir.SymbolID]ir.FuncID

	pending map[ir.SymbolID][]pendingRegistration
}

// NewCollaborator returns a collaborator for the hooks declared in cfg
func NewCollaborator(cfg *config.Config) *Collaborator {
	return &Collaborator{
		config:      cfg,
		subscribers: map[string][]ir.FuncID{},
		registered:  map[ir.FuncID]bool{},
		specials:    map[ir.FuncID][]special{},
		bindings:    map[ir.SymbolID]ir.FuncID{},
		pending:     map[ir.SymbolID][]pendingRegistration{},
	}
}

// Subscribers returns the callbacks registered for hook
func (c *Collaborator) Subscribers(hook string) []ir.FuncID {
	return c.subscribers[hook]
}

// SeedParameters taints the parameters of fn that receive external input as a callback of a special hook
func (c *Collaborator) SeedParameters(e *taint.Engine, fn *ir.Function) {
	for _, s := range c.specials[fn.ID] {
		for _, i := range s.registrar.TaintedParams {
			if i < 0 || i >= len(fn.Params) {
				e.Logger().Debugf("%s: hook %s taints parameter %d, %s has %d parameters", fn.Pos, s.hook, i, fn,
					len(fn.Params))
				continue
			}
			e.SetParameterTaint(fn, i, lattice.YesTaint)
		}
	}
}

// CallVisited handles the calls to registrars and dispatchers
func (c *Collaborator) CallVisited(e *taint.Engine, call *ir.Node, callee *ir.Function, args []lattice.Taint) {
	name := call.Callee
	if name.IsZero() && callee != nil {
		name = callee.Name
	}
	if name.IsZero() {
		return
	}
	for i := range c.config.Hooks.Registrars {
		r := &c.config.Hooks.Registrars[i]
		if r.Callee.Matches(name.Package, name.Receiver, name.Name) {
			c.register(e, call, r)
		}
	}
	for i := range c.config.Hooks.Dispatchers {
		d := &c.config.Hooks.Dispatchers[i]
		if d.Callee.Matches(name.Package, name.Receiver, name.Name) {
			c.dispatch(e, call, d, args)
		}
	}
}

// AssignVisited records the callables assigned to variables, and completes the pending registrations of the
// variable assigned
func (c *Collaborator) AssignVisited(e *taint.Engine, assign *ir.Node) {
	if assign.X == nil || assign.X.Kind != ir.KindVar || assign.X.Sym == 0 {
		return
	}
	sym := assign.X.Sym
	fn, ok := c.resolve(e, assign.Y)
	if !ok {
		delete(c.bindings, sym)
		return
	}
	c.bindings[sym] = fn
	pending := c.pending[sym]
	delete(c.pending, sym)
	for _, p := range pending {
		e.Logger().Debugf("%s: resolved pending registration of %s for hook %s", assign.Pos, e.Program().Func(fn),
			p.hook)
		c.subscribe(e, p.hook, fn, p.registrar)
	}
}

// ReturnVisited checks the values returned by callbacks of hooks with a return sink
func (c *Collaborator) ReturnVisited(e *taint.Engine, fn *ir.Function, ret *ir.Node, t lattice.Taint) {
	for _, s := range c.specials[fn.ID] {
		if s.registrar.ReturnSink&lattice.ExecTaint == lattice.NoTaint {
			continue
		}
		e.MaybeEmitIssue(s.registrar.ReturnSink, t, ret.X,
			fmt.Sprintf("callback of hook %s returns a value that is not escaped", s.hook))
	}
}

func (c *Collaborator) register(e *taint.Engine, call *ir.Node, r *config.HookRegistrar) {
	hook, ok := hookName(call, r.Hook, r.HookArg)
	if !ok {
		e.Logger().Debugf("%s: could not determine the hook registered by %s", call.Pos, call.Callee)
		return
	}
	if r.CallbackArg < 0 || r.CallbackArg >= len(call.List) {
		e.Logger().Debugf("%s: %s has no callback argument %d", call.Pos, call.Callee, r.CallbackArg)
		return
	}
	cb := call.List[r.CallbackArg]
	fn, ok := c.resolve(e, cb)
	if ok {
		c.subscribe(e, hook, fn, r)
		return
	}
	if cb.Kind == ir.KindVar && cb.Sym != 0 {
		e.Logger().Debugf("%s: registration for hook %s pending on %s", call.Pos, hook,
			e.Program().Symbol(cb.Sym))
		c.pending[cb.Sym] = append(c.pending[cb.Sym], pendingRegistration{hook: hook, registrar: r})
		return
	}
	e.Logger().Debugf("%s: unresolved callback %s for hook %s", call.Pos, cb, hook)
}

// subscribe adds fn to the subscribers of hook. The first registration of fn triggers its re-analysis.
func (c *Collaborator) subscribe(e *taint.Engine, hook string, fn ir.FuncID, r *config.HookRegistrar) {
	known := false
	for _, id := range c.subscribers[hook] {
		if id == fn {
			known = true
			break
		}
	}
	if !known {
		c.subscribers[hook] = append(c.subscribers[hook], fn)
	}
	if len(r.TaintedParams) > 0 || r.ReturnSink != lattice.NoTaint {
		isNew := true
		for _, s := range c.specials[fn] {
			if s.hook == hook && s.registrar == r {
				isNew = false
			}
		}
		if isNew {
			c.specials[fn] = append(c.specials[fn], special{hook: hook, registrar: r})
		}
	}
	if c.registered[fn] {
		return
	}
	c.registered[fn] = true
	e.Logger().Debugf("%s registered for hook %s", e.Program().Func(fn), hook)
	e.Reanalyze(fn)
}

func (c *Collaborator) dispatch(e *taint.Engine, call *ir.Node, d *config.HookDispatcher, taints []lattice.Taint) {
	hook, ok := hookName(call, d.Hook, d.HookArg)
	if !ok {
		e.Logger().Debugf("%s: could not determine the hook run by %s", call.Pos, call.Callee)
		return
	}
	args, known, ok := dispatchArgs(call, d, taints)
	if !ok {
		e.Logger().Debugf("%s: unsupported arguments of hook %s", call.Pos, hook)
		return
	}
	for _, id := range c.subscribers[hook] {
		fn := e.Program().Func(id)
		if fn == nil {
			continue
		}
		e.Logger().Tracef("%s: dispatching hook %s to %s", call.Pos, hook, fn)
		e.EvalCall(ir.Call(fn, args...), known)
	}
}

// hookName returns the fixed name when it is set, otherwise the string literal at argument i of call
func hookName(call *ir.Node, fixed string, i int) (string, bool) {
	if fixed != "" {
		return fixed, true
	}
	if i < 0 || i >= len(call.List) {
		return "", false
	}
	arg := call.List[i]
	if arg.Kind != ir.KindLit || !arg.Type.IsString() {
		return "", false
	}
	return arg.Value, true
}

// dispatchArgs returns the arguments passed to each callback of a dispatch, and the taint of the arguments that
// must not be evaluated again. taints are the taints of the arguments of call.
func dispatchArgs(call *ir.Node, d *config.HookDispatcher, taints []lattice.Taint) ([]*ir.Node, map[int]lattice.Taint,
	bool) {
	if d.ArgsArg < 0 {
		return nil, nil, true
	}
	if d.ArgsRest {
		if d.ArgsArg > len(call.List) {
			return nil, nil, false
		}
		known := map[int]lattice.Taint{}
		for i := d.ArgsArg; i < len(call.List) && i < len(taints); i++ {
			known[i-d.ArgsArg] = taints[i]
		}
		return call.List[d.ArgsArg:], known, true
	}
	if d.ArgsArg >= len(call.List) {
		// no arguments passed
		return nil, nil, true
	}
	arr := call.List[d.ArgsArg]
	if arr.Kind != ir.KindArray {
		return nil, nil, false
	}
	args := make([]*ir.Node, 0, len(arr.List))
	known := map[int]lattice.Taint{}
	for _, elem := range arr.List {
		x := elem
		if elem.Kind == ir.KindElem {
			x = elem.X
		}
		// elements that are not plain reads are approximated by the taint of the whole array
		if !isPlainRead(x) && d.ArgsArg < len(taints) {
			known[len(args)] = taints[d.ArgsArg] &^ lattice.SQLNumkeyTaint
		}
		args = append(args, x)
	}
	return args, known, true
}

// isPlainRead returns true when evaluating x has no effect other than reading a value
func isPlainRead(x *ir.Node) bool {
	if x == nil {
		return true
	}
	switch x.Kind {
	case ir.KindLit, ir.KindConst, ir.KindVar, ir.KindFuncValue:
		return true
	case ir.KindField:
		return isPlainRead(x.X)
	}
	return false
}
