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
	"strings"
	"testing"

	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

func TestCacheResolveOnce(t *testing.T) {
	rule := execRule(false)
	m := pattern.NewCountingMatcher(&staticMatcher{matches: map[string][]pattern.Match{
		"src-input": matchAt(at(1, 100, 107)),
		"sink-exec": matchAt(at(2, 200, 207)),
	}})
	target := emptyTarget()
	cache := NewFormulaCache([]*Rule{rule})

	first, _, err := cache.Resolve(rule, target, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := cache.Resolve(rule, target, m)
	if err != nil {
		t.Fatalf("unexpected error on cached resolve: %v", err)
	}
	if first != second {
		t.Errorf("cached resolve returned a different spec")
	}
	if m.CallsFor("src-input") != 1 || m.CallsFor("sink-exec") != 1 {
		t.Errorf("matcher re-ran for a cached rule: %d source calls, %d sink calls",
			m.CallsFor("src-input"), m.CallsFor("sink-exec"))
	}
	if computed, hits := cache.Stats(); computed != 1 || hits != 1 {
		t.Errorf("stats = (%d computed, %d hits), want (1, 1)", computed, hits)
	}
}

func TestCacheMemoizesErrors(t *testing.T) {
	rule := execRule(false)
	m := pattern.NewCountingMatcher(&staticMatcher{
		bad: map[string]bool{"src-input": true},
	})
	cache := NewFormulaCache([]*Rule{rule})
	target := emptyTarget()

	_, _, err1 := cache.Resolve(rule, target, m)
	_, _, err2 := cache.Resolve(rule, target, m)
	var perr *PatternError
	if !errors.As(err1, &perr) {
		t.Fatalf("expected a pattern error, got %v", err1)
	}
	if perr.RuleID != rule.ID || perr.PatternID != "src-input" {
		t.Errorf("error not scoped to the failing pattern: %v", perr)
	}
	if err2 != err1 {
		t.Errorf("second resolve did not return the memoized error")
	}
	if m.CallsFor("src-input") != 1 {
		t.Errorf("matcher re-ran a known-bad pattern %d times", m.CallsFor("src-input"))
	}
}

// One malformed rule does not poison the cache for other rules.
func TestCacheRuleIsolation(t *testing.T) {
	good := execRule(false)
	bad := &Rule{
		ID:      "bad-rule",
		Sources: []SourceSpec{{Pattern: pattern.Pattern{ID: "broken", Expr: "(("}}},
	}
	m := &staticMatcher{
		matches: map[string][]pattern.Match{
			"src-input": matchAt(at(1, 100, 107)),
			"sink-exec": matchAt(at(2, 200, 207)),
		},
		bad: map[string]bool{"broken": true},
	}
	cache := NewFormulaCache([]*Rule{good, bad})
	target := emptyTarget()

	if _, _, err := cache.Resolve(bad, target, m); err == nil {
		t.Fatal("expected the malformed rule to fail")
	}
	spec, _, err := cache.Resolve(good, target, m)
	if err != nil {
		t.Fatalf("healthy rule failed after a bad one: %v", err)
	}
	if len(spec.Sources) != 1 || len(spec.Sinks) != 1 {
		t.Errorf("healthy rule resolved incompletely: %+v", spec)
	}
}

func TestCacheRejectsSecondTarget(t *testing.T) {
	rule := execRule(false)
	m := &staticMatcher{matches: map[string][]pattern.Match{}}
	cache := NewFormulaCache([]*Rule{rule})

	if _, _, err := cache.Resolve(rule, emptyTarget(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := &ir.Target{Filename: "other.ce", Language: "ce"}
	_, _, err := cache.Resolve(rule, other, m)
	if err == nil || !strings.Contains(err.Error(), "other.ce") {
		t.Errorf("expected a cross-target misuse error naming the target, got %v", err)
	}
}
