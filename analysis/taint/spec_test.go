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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sievetools/sieve/analysis/pattern"
)

// Zero matches in every category resolves cleanly to an empty spec.
func TestResolveZeroMatches(t *testing.T) {
	m := &staticMatcher{matches: map[string][]pattern.Match{}}
	spec, expl, err := resolveSpec(execRule(true), emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Sources) != 0 || len(spec.Sanitizers) != 0 || len(spec.Sinks) != 0 {
		t.Errorf("empty target resolved to non-empty spec: %+v", spec)
	}
	if len(expl) != 0 {
		t.Errorf("unexpected explanations: %v", expl)
	}
}

func TestResolveExplanations(t *testing.T) {
	srcRange := at(1, 100, 107)
	sinkRange := at(2, 200, 207)
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"src-input": {{Range: srcRange, Bindings: map[string]string{"$X": "x"}}},
		"sink-exec": matchAt(sinkRange),
	}}
	_, expl, err := resolveSpec(execRule(false), emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Explanation{
		{RuleID: "user-input-to-exec", Kind: SourceKind, PatternID: "src-input",
			Range: srcRange, Bindings: map[string]string{"$X": "x"}},
		{RuleID: "user-input-to-exec", Kind: SinkKind, PatternID: "sink-exec",
			Range: sinkRange},
	}
	if diff := cmp.Diff(want, expl); diff != "" {
		t.Errorf("explanations mismatch (-want +got):\n%s", diff)
	}
}

// Sub-patterns of one rule often match nested ranges of the same call; only
// the widest match of a category survives.
func TestDedupeCoveredMatches(t *testing.T) {
	outer := at(1, 100, 120)
	inner := at(1, 104, 112)
	rule := &Rule{
		ID: "nested",
		Sources: []SourceSpec{
			{Pattern: pattern.Pattern{ID: "wide", Expr: "outer(...)"}, Label: "net"},
			{Pattern: pattern.Pattern{ID: "narrow", Expr: "inner(...)"}, Label: "net"},
		},
	}
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"wide":   matchAt(outer),
		"narrow": matchAt(inner),
	}}
	spec, _, err := resolveSpec(rule, emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Sources) != 1 || spec.Sources[0].Range != outer {
		t.Errorf("expected the covered match to be dropped, got %+v", spec.Sources)
	}
}

// A covered match with a different label is a distinct source and stays.
func TestDedupeKeepsDistinctLabels(t *testing.T) {
	outer := at(1, 100, 120)
	inner := at(1, 104, 112)
	rule := &Rule{
		ID: "nested",
		Sources: []SourceSpec{
			{Pattern: pattern.Pattern{ID: "wide", Expr: "outer(...)"}, Label: "net"},
			{Pattern: pattern.Pattern{ID: "narrow", Expr: "inner(...)"}, Label: "file"},
		},
	}
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"wide":   matchAt(outer),
		"narrow": matchAt(inner),
	}}
	spec, _, err := resolveSpec(rule, emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Sources) != 2 {
		t.Errorf("expected both labels to survive, got %+v", spec.Sources)
	}
}

func TestDedupeSinksByRequiredLabels(t *testing.T) {
	outer := at(1, 100, 120)
	inner := at(1, 104, 112)
	rule := &Rule{
		ID: "sinks",
		Sinks: []SinkSpec{
			{Pattern: pattern.Pattern{ID: "any", Expr: "exec(...)"}},
			{Pattern: pattern.Pattern{ID: "picky", Expr: "exec($X)"}, RequiredLabels: []Label{"net"}},
		},
	}
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"any":   matchAt(outer),
		"picky": matchAt(inner),
	}}
	spec, _, err := resolveSpec(rule, emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// different label requirements: neither is redundant
	if len(spec.Sinks) != 2 {
		t.Errorf("expected both sinks to survive, got %+v", spec.Sinks)
	}
}

func TestLabelsDefaultToPatternID(t *testing.T) {
	srcRange := at(1, 100, 107)
	m := &staticMatcher{matches: map[string][]pattern.Match{
		"src-input": matchAt(srcRange),
		"sink-exec": nil,
	}}
	spec, _, err := resolveSpec(execRule(false), emptyTarget(), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]Label{"src-input"}, spec.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	debug := spec.Debug()
	if len(debug.Sources) != 1 || debug.Sources[0] != srcRange {
		t.Errorf("debug record misses the source range: %+v", debug)
	}
}
