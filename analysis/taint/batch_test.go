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
	"errors"
	"testing"

	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

// flowTarget returns a one-function target with a direct input-to-exec flow
// and the matcher resolving the standard rule against it.
func flowTarget() (*ir.Target, mapBuilder, *staticMatcher) {
	srcRange := at(1, 104, 111)
	sinkRange := at(2, 200, 207)
	fn := &ir.FuncDef{Name: "f", Span: at(1, 90, 310)}
	g := singleBlockGraph(fn,
		&ir.Call{Result: varAt("x", 1, 100, 101), Callee: "input", Span: srcRange},
		&ir.Call{Callee: "exec", Args: []ir.Value{varAt("x", 2, 205, 206)}, Span: sinkRange},
		&ir.Return{Span: at(3, 300, 301)},
	)
	target := &ir.Target{Filename: testFile, Language: "ce", Funcs: []*ir.FuncDef{fn}}
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"src-input": matchAt(srcRange),
		"sink-exec": matchAt(sinkRange),
	}}
	return target, mapBuilder{"f": g}, m
}

// A rule whose pattern fails to compile reports its error and leaves the
// other rules of the batch untouched.
func TestBatchRuleIsolation(t *testing.T) {
	target, build, m := flowTarget()
	m.bad = map[string]bool{"broken": true}
	bad := &Rule{
		ID:      "bad-rule",
		Sources: []SourceSpec{{Pattern: pattern.Pattern{ID: "broken", Expr: "(("}}},
	}
	good := execRule(false)

	results := RunRules(testLogger(), testConfig(), target, []*Rule{bad, good},
		m, build, nil, nil, nil)
	if len(results) != 2 {
		t.Fatalf("expected one result per rule, got %d", len(results))
	}

	badRes, goodRes := results[0], results[1]
	if len(badRes.Errors) != 1 || len(badRes.Findings) != 0 {
		t.Errorf("bad rule: want one error and no findings, got %+v", badRes)
	}
	var perr *PatternError
	if !errors.As(badRes.Errors[0], &perr) || perr.RuleID != "bad-rule" {
		t.Errorf("error not attributed to the bad rule: %v", badRes.Errors)
	}
	if len(goodRes.Errors) != 0 || len(goodRes.Findings) != 1 {
		t.Errorf("good rule: want one finding and no errors, got %+v", goodRes)
	}
}

func TestBatchSharesFormulaCache(t *testing.T) {
	target, build, m := flowTarget()
	counting := pattern.NewCountingMatcher(m)
	// the same rule object twice: the second run must be served from cache
	rule := execRule(false)
	results := RunRules(testLogger(), testConfig(), target, []*Rule{rule, rule},
		counting, build, nil, nil, nil)
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if counting.CallsFor("src-input") != 1 || counting.CallsFor("sink-exec") != 1 {
		t.Errorf("patterns matched more than once: src=%d sink=%d",
			counting.CallsFor("src-input"), counting.CallsFor("sink-exec"))
	}
}

func TestBatchMaxAlarms(t *testing.T) {
	srcRange := at(1, 104, 111)
	sink1 := at(2, 200, 207)
	sink2 := at(3, 300, 307)
	fn := &ir.FuncDef{Name: "f", Span: at(1, 90, 410)}
	g := singleBlockGraph(fn,
		&ir.Call{Result: varAt("x", 1, 100, 101), Callee: "input", Span: srcRange},
		&ir.Call{Callee: "exec", Args: []ir.Value{varAt("x", 2, 205, 206)}, Span: sink1},
		&ir.Call{Callee: "exec", Args: []ir.Value{varAt("x", 3, 305, 306)}, Span: sink2},
		&ir.Return{Span: at(4, 400, 401)},
	)
	target := &ir.Target{Filename: testFile, Language: "ce", Funcs: []*ir.FuncDef{fn}}
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"src-input": matchAt(srcRange),
		"sink-exec": matchAt(sink1, sink2),
	}}

	cfg := testConfig()
	cfg.MaxAlarms = 1
	cfg.SilenceWarn = true
	results := RunRules(testLogger(), cfg, target, []*Rule{execRule(false)},
		m, mapBuilder{"f": g}, nil, nil, nil)
	if got := len(results[0].Findings); got != 1 {
		t.Errorf("max-alarms cap not applied: %d findings", got)
	}
}

func TestBatchLanguageFilter(t *testing.T) {
	target, build, m := flowTarget()
	rule := execRule(false)
	rule.Languages = []string{"other"}

	results := RunRules(testLogger(), testConfig(), target, []*Rule{rule},
		m, build, nil, nil, nil)
	res := results[0]
	if len(res.Findings) != 0 || len(res.Errors) != 0 || res.Debug != nil {
		t.Errorf("rule for another language must be skipped entirely: %+v", res)
	}
}

func TestBatchInstrumentAndStreaming(t *testing.T) {
	target, build, m := flowTarget()
	var wrapped []string
	instrument := func(ruleID string, run func()) {
		wrapped = append(wrapped, ruleID)
		run()
	}
	var streamed []Finding
	results := RunRules(testLogger(), testConfig(), target, []*Rule{execRule(false)},
		m, build, nil, func(f Finding) { streamed = append(streamed, f) }, instrument)

	if len(wrapped) != 1 || wrapped[0] != "user-input-to-exec" {
		t.Errorf("instrument not called once per rule: %v", wrapped)
	}
	if len(streamed) != 1 || len(results[0].Findings) != 1 {
		t.Fatalf("streamed %d findings, collected %d", len(streamed), len(results[0].Findings))
	}
	if streamed[0] != results[0].Findings[0] {
		t.Errorf("streamed finding differs from the collected one")
	}
	if results[0].Duration <= 0 {
		t.Errorf("duration not recorded")
	}
}

// A function whose graph cannot be built is skipped with an error; the other
// functions of the target still run.
func TestBatchFunctionIsolation(t *testing.T) {
	target, build, m := flowTarget()
	brokenFn := &ir.FuncDef{Name: "broken", Span: at(9, 900, 950)}
	target.Funcs = append([]*ir.FuncDef{brokenFn}, target.Funcs...)

	results := RunRules(testLogger(), testConfig(), target, []*Rule{execRule(false)},
		m, build, nil, nil, nil)
	res := results[0]
	if len(res.Errors) != 1 {
		t.Errorf("expected one build error for the broken function, got %v", res.Errors)
	}
	if len(res.Findings) != 1 {
		t.Errorf("healthy function should still be analyzed, got %v", res.Findings)
	}
}
