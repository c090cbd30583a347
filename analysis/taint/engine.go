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

	"github.com/awslabs/ar-go-taintcheck/analysis/config"
	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"github.com/awslabs/ar-go-taintcheck/analysis/summaries"
)

// maxAnalyses bounds the number of times a single function is analyzed
const maxAnalyses = 16

// funcState is the state of the analysis of a function
type funcState struct {
	signature lattice.Signature
	// hasSignature is false until some taint has been stored in the signature
	hasSignature bool
	// summarized is true when the signature has been computed by a complete analysis of the function
	summarized bool
	provenance string
	analyses   int
	// byRef holds the taint left in each by-reference parameter when the body was last evaluated
	byRef map[int]paramResult
}

type paramResult struct {
	taint      lattice.Taint
	provenance string
}

// frame is the state of the analysis of one function body
type frame struct {
	fn    *ir.Function
	scope *scope
	// reanalysis is true when the function had been summarized before, in which case the first return replaces
	// the overall taint of the signature
	reanalysis bool
	returned   bool
	previous   lattice.Taint
}

// invariantViolation is the value of the panics raised by assertf when invariants are strict
type invariantViolation struct {
	msg string
}

func (v invariantViolation) Error() string {
	return "invariant violation: " + v.msg
}

// Engine holds the state of a taint analysis of a program. All the functions of the program share the store of
// symbol taints and the dependency graph.
type Engine struct {
	logger        *config.LogGroup
	config        *config.Config
	program       *ir.Program
	table         *summaries.Table
	store         *Store
	graph         *DependencyGraph
	funcs         map[ir.FuncID]*funcState
	inProgress    map[ir.FuncID]bool
	frames        []*frame
	pending       []ir.FuncID
	collaborators []Collaborator
	issues        *issueSet
	// pos is the position of the node being evaluated
	pos ir.Pos
}

// NewEngine returns an engine ready to analyze program. The program must be finalized.
func NewEngine(logger *config.LogGroup, cfg *config.Config, program *ir.Program,
	collaborators ...Collaborator) *Engine {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	e := &Engine{
		logger:        logger,
		config:        cfg,
		program:       program,
		table:         summaries.NewTable(cfg),
		store:         NewStore(),
		graph:         NewDependencyGraph(),
		funcs:         map[ir.FuncID]*funcState{},
		inProgress:    map[ir.FuncID]bool{},
		collaborators: collaborators,
		issues:        newIssueSet(cfg.MaxIssues),
	}
	e.graph.assert = e.assertf
	return e
}

// Program returns the program analyzed
func (e *Engine) Program() *ir.Program { return e.program }

// Logger returns the logger of the analysis
func (e *Engine) Logger() *config.LogGroup { return e.logger }

// Config returns the configuration of the analysis
func (e *Engine) Config() *config.Config { return e.config }

// Store returns the taint of symbols
func (e *Engine) Store() *Store { return e.store }

// Graph returns the dependency graph
func (e *Engine) Graph() *DependencyGraph { return e.graph }

func (e *Engine) frame() *frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

func (e *Engine) scope() *scope {
	if fr := e.frame(); fr != nil {
		return fr.scope
	}
	return nil
}

// CurrentFunction returns the function being analyzed, or nil
func (e *Engine) CurrentFunction() *ir.Function {
	if fr := e.frame(); fr != nil {
		return fr.fn
	}
	return nil
}

// tag is the provenance tag of the current position
func (e *Engine) tag() string {
	if !e.pos.IsValid() {
		return ""
	}
	return e.pos.String()
}

func (e *Engine) funcState(id ir.FuncID) *funcState {
	fs, ok := e.funcs[id]
	if !ok {
		fs = &funcState{}
		e.funcs[id] = fs
	}
	return fs
}

// Signature returns the signature computed for the function, and false if the function has not been analyzed
func (e *Engine) Signature(id ir.FuncID) (lattice.Signature, bool) {
	fs, ok := e.funcs[id]
	if !ok || !fs.hasSignature {
		return lattice.Signature{}, false
	}
	return fs.signature.Clone(), true
}

// IsSummarized returns true when the analysis of the function has completed at least once and the function is not
// being re-analyzed
func (e *Engine) IsSummarized(id ir.FuncID) bool {
	fs, ok := e.funcs[id]
	return ok && fs.summarized
}

// TaintOf returns the current taint of the symbol
func (e *Engine) TaintOf(sym ir.SymbolID) lattice.Taint {
	return e.getTaint(sym)
}

// SetParameterTaint overrides the taint of parameter i of fn. Collaborators use it to seed parameters of callbacks
// receiving external input.
func (e *Engine) SetParameterTaint(fn *ir.Function, i int, t lattice.Taint) {
	if !e.assertf(i >= 0 && i < len(fn.Params), "parameter %d of %s does not exist", i, fn) {
		return
	}
	e.store.set(fn.Params[i].Sym, t, true)
	if t.Intersects(lattice.YesExecTaint) {
		e.store.addProvenance(fn.Params[i].Sym, fn.Pos.String())
	}
}

// setFuncTaint merges sig into the signature of the function. When replaceOverall is true, the overall taint is
// replaced instead.
func (e *Engine) setFuncTaint(id ir.FuncID, sig lattice.Signature, replaceOverall bool) {
	fs := e.funcState(id)
	cur := fs.signature
	if !fs.hasSignature {
		cur = lattice.NewSignature(lattice.NoTaint)
	}
	next := cur.Merge(sig)
	if replaceOverall {
		next.Overall = sig.Overall
	}
	fs.signature = next
	fs.hasSignature = true
	if sig.AllTaint().Intersects(lattice.YesExecTaint) {
		fs.provenance = appendProvenance(fs.provenance, e.tag())
	}
}

// assertf checks an internal invariant. A violation panics when the configuration has strict invariants, otherwise
// it is logged and the caller skips the offending update.
func (e *Engine) assertf(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if e.config.StrictInvariants {
		panic(invariantViolation{msg: msg})
	}
	e.logger.Warnf("invariant violation at %s: %s", e.pos, msg)
	return false
}

// analyze runs the analysis of fn: parameters are initialized, then the body is evaluated.
func (e *Engine) analyze(fn *ir.Function, reanalysis bool, previous lattice.Taint) {
	if e.inProgress[fn.ID] {
		e.logger.Debugf("%s is already being analyzed", fn)
		return
	}
	fs := e.funcState(fn.ID)
	if fs.analyses >= maxAnalyses {
		e.logger.Warnf("%s analyzed %d times, skipping further analyses", fn, fs.analyses)
		fs.summarized = true
		return
	}
	fs.analyses++
	e.inProgress[fn.ID] = true
	fr := &frame{fn: fn, scope: newFunctionScope(fn.Script), reanalysis: reanalysis, previous: previous}
	savedPos := e.pos
	e.frames = append(e.frames, fr)
	defer func() {
		e.frames = e.frames[:len(e.frames)-1]
		e.pos = savedPos
		delete(e.inProgress, fn.ID)
	}()

	e.logger.Tracef("analyzing %s (pass %d)", fn, fs.analyses)
	e.pos = fn.Pos
	e.initParams(fn)
	if fn.Body != nil {
		e.eval(fn.Body)
	}
	e.recordByRef(fn, fs)
	e.finish(fr)
	fs.summarized = true
}

func (e *Engine) recordByRef(fn *ir.Function, fs *funcState) {
	for i, p := range fn.Params {
		if !p.ByRef {
			continue
		}
		if fs.byRef == nil {
			fs.byRef = map[int]paramResult{}
		}
		t, _ := e.store.Lookup(p.Sym)
		fs.byRef[i] = paramResult{taint: t, provenance: e.store.Provenance(p.Sym)}
	}
}

// finish completes the signature of the function of fr once its body has been evaluated
func (e *Engine) finish(fr *frame) {
	fs := e.funcState(fr.fn.ID)
	switch {
	case !fs.hasSignature && !fr.fn.HasReturn():
		// the function has no return and does nothing unsafe with its parameters
		e.setFuncTaint(fr.fn.ID, lattice.NewSignature(lattice.NoTaint), false)
	case !fs.hasSignature:
		e.setFuncTaint(fr.fn.ID, lattice.NewSignature(defaultTaint(fr.fn.Returns)), false)
	case fr.reanalysis && !fr.returned:
		fs.signature.Overall = (fs.signature.Overall &^ lattice.UnknownTaint) | fr.previous
	}
}

// analyzeTop analyzes fn from the top level, then runs the re-analyses requested meanwhile
func (e *Engine) analyzeTop(fn *ir.Function) {
	e.analyze(fn, false, lattice.NoTaint)
	e.runPending()
}

func (e *Engine) runPending() {
	for len(e.frames) == 0 && len(e.pending) > 0 {
		id := e.pending[0]
		e.pending = e.pending[1:]
		e.Reanalyze(id)
	}
}

// Reanalyze runs the analysis of the function again, because some fact about it has been discovered after its
// analysis. The overall taint of the function is unknown until the re-analysis reaches a return; the taint of its
// parameters and the links of the dependency graph are kept. A function being analyzed is re-analyzed once the
// current top-level analysis completes.
func (e *Engine) Reanalyze(id ir.FuncID) {
	fn := e.program.Func(id)
	if fn == nil || fn.Body == nil {
		return
	}
	if e.inProgress[id] {
		for _, p := range e.pending {
			if p == id {
				return
			}
		}
		e.logger.Debugf("%s: re-analysis of %s queued", e.pos, fn)
		e.pending = append(e.pending, id)
		return
	}
	fs := e.funcState(id)
	if fs.analyses >= maxAnalyses {
		e.logger.Warnf("%s analyzed %d times, not re-analyzing", fn, fs.analyses)
		return
	}
	if !fs.summarized {
		e.analyze(fn, false, lattice.NoTaint)
	} else {
		previous := e.invalidate(id)
		e.logger.Debugf("%s: re-analyzing %s", e.pos, fn)
		e.analyze(fn, true, previous)
	}
	e.runPending()
}

// invalidate marks the overall taint of the function unknown and returns the previous one
func (e *Engine) invalidate(id ir.FuncID) lattice.Taint {
	fs := e.funcState(id)
	previous := fs.signature.Overall
	fs.signature.Overall = lattice.UnknownTaint
	fs.hasSignature = true
	fs.summarized = false
	return previous
}

// EvalCall evaluates a call synthesized by a collaborator, in the function being analyzed. known holds the taint
// of the arguments that have already been evaluated by the caller; they are not evaluated again.
func (e *Engine) EvalCall(call *ir.Node, known map[int]lattice.Taint) lattice.Taint {
	if call == nil || call.Kind != ir.KindCall {
		return e.eval(call)
	}
	return e.evalCallWith(call, known)
}

func (e *Engine) symbolName(sym ir.SymbolID) string {
	if s := e.program.Symbol(sym); s != nil {
		return s.String()
	}
	return fmt.Sprintf("#%d", sym)
}
