// Copyright The Sieve Authors. All Rights Reserved.
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
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/internal/funcutil"
)

// marksOf returns the marks a value carries at the current point: the marks
// of the variable it names, plus one mark per source range the value is read
// inside.
func (state *engineState) marksOf(v ir.Value) MarkSet {
	marks := MarkSet{}
	if name := v.Name(); name != "" {
		funcutil.Union(map[Mark]bool(marks), map[Mark]bool(state.cur[name]))
	}
	funcutil.Union(map[Mark]bool(marks), map[Mark]bool(state.inst.sourceMarksAt(v.Range())))
	return marks
}

// DoAssign handles x := e: the marks of x after the assignment are the union
// of the marks of e's operands, unless a sanitizer range covers the
// assignment, in which case x is cleansed. Sanitization is location-based:
// it strips the taint produced at this assignment, it does not retroactively
// clear other variables — except for by-side-effect sanitizers, which also
// cleanse the variables they were given.
func (state *engineState) DoAssign(a *ir.Assign) {
	marks := MarkSet{}
	for _, op := range a.RHS {
		funcutil.Union(map[Mark]bool(marks), map[Mark]bool(state.marksOf(op)))
	}
	funcutil.Union(map[Mark]bool(marks), map[Mark]bool(state.inst.sourceMarksAt(a.Span)))

	if san, ok := state.inst.sanitizerAt(a.Span); ok {
		marks = MarkSet{}
		if san.BySideEffect {
			state.cleanseOperands(a.RHS)
		}
	}
	state.cur[a.LHS.Ident] = marks
	state.checkSink(a.Span, a.RHS)
}

// DoCall handles res := f(args...). With a signature for f, taint flows from
// argument positions to the result and to output parameters exactly as the
// summary says; without one, the result is conservatively tainted by every
// tainted argument. A call inside a source range taints its result (and its
// arguments, when the source-taints-args option is set); a call inside a
// sanitizer range produces a cleansed result regardless.
func (state *engineState) DoCall(c *ir.Call) {
	argMarks := funcutil.Map(c.Args, state.marksOf)

	var resMarks MarkSet
	sig, summarized := state.signatureFor(c.Callee)
	if summarized {
		resMarks = MarkSet{}
		for i, marks := range argMarks {
			if sig.TaintedReturn.Has(i) {
				funcutil.Union(map[Mark]bool(resMarks), map[Mark]bool(marks))
			}
		}
		// flows into output parameters
		for _, out := range funcutil.SortedKeys(sig.TaintedOutputs) {
			if out >= len(c.Args) {
				continue
			}
			outVar, isVar := c.Args[out].(*ir.Var)
			if !isVar {
				continue
			}
			for i, marks := range argMarks {
				if sig.TaintedOutputs[out].Has(i) {
					if _, ok := state.cur[outVar.Ident]; !ok {
						state.cur[outVar.Ident] = MarkSet{}
					}
					funcutil.Union(map[Mark]bool(state.cur[outVar.Ident]), map[Mark]bool(marks))
				}
			}
		}
	} else {
		resMarks = MarkSet{}
		for _, marks := range argMarks {
			funcutil.Union(map[Mark]bool(resMarks), map[Mark]bool(marks))
		}
	}

	if srcMarks := state.inst.sourceMarksAt(c.Span); len(srcMarks) > 0 {
		funcutil.Union(map[Mark]bool(resMarks), map[Mark]bool(srcMarks))
		if state.inst.Config.SourceTaintsArgs {
			for _, arg := range c.Args {
				if v, ok := arg.(*ir.Var); ok {
					if _, ok := state.cur[v.Ident]; !ok {
						state.cur[v.Ident] = MarkSet{}
					}
					funcutil.Union(map[Mark]bool(state.cur[v.Ident]), map[Mark]bool(srcMarks))
				}
			}
		}
	}

	if san, ok := state.inst.sanitizerAt(c.Span); ok {
		resMarks = MarkSet{}
		if san.BySideEffect {
			state.cleanseOperands(c.Args)
		}
	}

	if c.Result != nil {
		state.cur[c.Result.Ident] = resMarks
	}
	state.checkSink(c.Span, c.Args)
}

// DoReturn records the marks flowing out of the function under RetKey, where
// signature inference picks them up. A return site can also be a sink.
func (state *engineState) DoReturn(r *ir.Return) {
	marks := MarkSet{}
	for _, op := range r.Results {
		funcutil.Union(map[Mark]bool(marks), map[Mark]bool(state.marksOf(op)))
	}
	state.cur[RetKey] = marks
	state.checkSink(r.Span, r.Results)
}

func (state *engineState) signatureFor(callee string) (*Signature, bool) {
	if state.provider == nil || callee == "" {
		return nil, false
	}
	return state.provider.Infer(callee)
}

func (state *engineState) cleanseOperands(vals []ir.Value) {
	for _, op := range vals {
		if v, ok := op.(*ir.Var); ok {
			state.cur[v.Ident] = MarkSet{}
		}
	}
}

// checkSink emits a finding for every (source mark, sink) pair among the
// values feeding a sink location. Reporting happens during iteration, so a
// single fixpoint traversal both computes the mapping and emits findings;
// each distinct (source, sink, label) combination is reported at most once
// per function analysis.
func (state *engineState) checkSink(span ir.Range, vals []ir.Value) {
	sinks := state.inst.sinksAt(span)
	if len(sinks) == 0 {
		return
	}
	for _, sink := range sinks {
		for _, v := range vals {
			for _, mark := range state.marksOf(v).Sorted() {
				if !state.sinkAccepts(sink, mark.Label) {
					continue
				}
				key := findingKey{label: mark.Label, source: mark.Source, sink: sink.Range}
				if state.reported[key] {
					continue
				}
				state.reported[key] = true
				f := Finding{
					RuleID:   state.inst.Rule.ID,
					Label:    mark.Label,
					Source:   mark.Source,
					Sink:     sink.Range,
					Function: state.functionName(),
				}
				state.findings = append(state.findings, f)
				state.inst.emit(f)
			}
		}
	}
}

func (state *engineState) sinkAccepts(sink SinkMatch, l Label) bool {
	return len(sink.RequiredLabels) == 0 || funcutil.Contains(sink.RequiredLabels, l)
}
