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

// Package pattern defines the contract between the analyses and the pattern
// matching engine. The engine itself lives outside this module; the analyses
// only call Match and consume ranges and metavariable bindings.
package pattern

import (
	"github.com/sievetools/sieve/analysis/ir"
)

// Pattern is one declarative code pattern from a rule. Expr is opaque to the
// analyses; only the matcher interprets it.
type Pattern struct {
	ID   string
	Expr string
}

// Match is one occurrence of a pattern in a target: the matched source range
// and the bound metavariables.
type Match struct {
	Range    ir.Range
	Bindings map[string]string
}

// Matcher locates every occurrence of a pattern in a target. A Matcher must
// be deterministic: the same (pattern, target) pair yields the same matches.
// Errors are reserved for malformed patterns; a pattern that matches nothing
// returns an empty slice and a nil error.
type Matcher interface {
	Match(p Pattern, t *ir.Target) ([]Match, error)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(p Pattern, t *ir.Target) ([]Match, error)

// Match calls f.
func (f MatcherFunc) Match(p Pattern, t *ir.Target) ([]Match, error) { return f(p, t) }

// CountingMatcher wraps a Matcher and counts invocations, total and per
// pattern ID. The formula cache uses the counts in its profiling data, and
// tests use them to verify memoization.
type CountingMatcher struct {
	Wrapped Matcher

	total  int
	perPat map[string]int
}

// NewCountingMatcher wraps m.
func NewCountingMatcher(m Matcher) *CountingMatcher {
	return &CountingMatcher{Wrapped: m, perPat: map[string]int{}}
}

// Match forwards to the wrapped matcher, counting the call.
func (c *CountingMatcher) Match(p Pattern, t *ir.Target) ([]Match, error) {
	c.total++
	c.perPat[p.ID]++
	return c.Wrapped.Match(p, t)
}

// Calls returns the total number of Match invocations.
func (c *CountingMatcher) Calls() int { return c.total }

// CallsFor returns the number of Match invocations for one pattern ID.
func (c *CountingMatcher) CallsFor(patternID string) int { return c.perPat[patternID] }
