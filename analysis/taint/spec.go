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
	"fmt"
	"sort"

	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
	"github.com/sievetools/sieve/internal/funcutil"
)

// SpecKind distinguishes the three pattern categories of a rule.
type SpecKind int

const (
	SourceKind SpecKind = iota
	SanitizerKind
	SinkKind
)

func (k SpecKind) String() string {
	switch k {
	case SourceKind:
		return "source"
	case SanitizerKind:
		return "sanitizer"
	case SinkKind:
		return "sink"
	default:
		return "?"
	}
}

// SourceMatch is one occurrence of a source pattern in the target.
type SourceMatch struct {
	Range    ir.Range
	Label    Label
	Bindings map[string]string
}

// SanitizerMatch is one occurrence of a sanitizer pattern in the target.
type SanitizerMatch struct {
	Range        ir.Range
	BySideEffect bool
}

// SinkMatch is one occurrence of a sink pattern in the target.
type SinkMatch struct {
	Range          ir.Range
	RequiredLabels []Label
}

// ResolvedSpec holds every concrete range a rule's patterns matched in one
// target. Ranges are file-global: the same resolved spec serves every
// function of the target.
type ResolvedSpec struct {
	RuleID     string
	Sources    []SourceMatch
	Sanitizers []SanitizerMatch
	Sinks      []SinkMatch
}

// Labels returns the distinct labels among the resolved sources.
func (s *ResolvedSpec) Labels() []Label {
	set := map[Label]bool{}
	for _, src := range s.Sources {
		set[src.Label] = true
	}
	return funcutil.SortedKeys(set)
}

// Debug returns the diagnostics record for the resolved spec: the plain
// range lists tooling consumes to visualize why a rule matched.
func (s *ResolvedSpec) Debug() *DebugTaint {
	return &DebugTaint{
		RuleID:     s.RuleID,
		Sources:    funcutil.Map(s.Sources, func(m SourceMatch) ir.Range { return m.Range }),
		Sanitizers: funcutil.Map(s.Sanitizers, func(m SanitizerMatch) ir.Range { return m.Range }),
		Sinks:      funcutil.Map(s.Sinks, func(m SinkMatch) ir.Range { return m.Range }),
	}
}

// DebugTaint is the resolved source/sanitizer/sink ranges of one rule against
// one target, for diagnostics consumers.
type DebugTaint struct {
	RuleID     string
	Sources    []ir.Range
	Sanitizers []ir.Range
	Sinks      []ir.Range
}

// Explanation records why one range matched: which rule, category and
// pattern produced it, with the metavariable bindings.
type Explanation struct {
	RuleID    string
	Kind      SpecKind
	PatternID string
	Range     ir.Range
	Bindings  map[string]string
}

func (e Explanation) String() string {
	return fmt.Sprintf("rule %s: %s pattern %s matched %s", e.RuleID, e.Kind, e.PatternID, e.Range)
}

// resolveSpec matches every pattern of the rule against the target. Zero
// matches in any category is a valid outcome; only a matcher failure on a
// malformed pattern is an error, scoped to the rule.
func resolveSpec(rule *Rule, target *ir.Target, m pattern.Matcher) (*ResolvedSpec, []Explanation, error) {
	spec := &ResolvedSpec{RuleID: rule.ID}
	var explanations []Explanation

	for _, src := range rule.Sources {
		matches, err := m.Match(src.Pattern, target)
		if err != nil {
			return nil, nil, &PatternError{RuleID: rule.ID, PatternID: src.Pattern.ID, Err: err}
		}
		for _, match := range matches {
			spec.Sources = append(spec.Sources, SourceMatch{
				Range:    match.Range,
				Label:    src.label(),
				Bindings: match.Bindings,
			})
			explanations = append(explanations, Explanation{
				RuleID: rule.ID, Kind: SourceKind, PatternID: src.Pattern.ID,
				Range: match.Range, Bindings: match.Bindings,
			})
		}
	}
	for _, san := range rule.Sanitizers {
		matches, err := m.Match(san.Pattern, target)
		if err != nil {
			return nil, nil, &PatternError{RuleID: rule.ID, PatternID: san.Pattern.ID, Err: err}
		}
		for _, match := range matches {
			spec.Sanitizers = append(spec.Sanitizers, SanitizerMatch{
				Range:        match.Range,
				BySideEffect: san.BySideEffect,
			})
			explanations = append(explanations, Explanation{
				RuleID: rule.ID, Kind: SanitizerKind, PatternID: san.Pattern.ID,
				Range: match.Range, Bindings: match.Bindings,
			})
		}
	}
	for _, sink := range rule.Sinks {
		matches, err := m.Match(sink.Pattern, target)
		if err != nil {
			return nil, nil, &PatternError{RuleID: rule.ID, PatternID: sink.Pattern.ID, Err: err}
		}
		for _, match := range matches {
			spec.Sinks = append(spec.Sinks, SinkMatch{
				Range:          match.Range,
				RequiredLabels: sink.RequiredLabels,
			})
			explanations = append(explanations, Explanation{
				RuleID: rule.ID, Kind: SinkKind, PatternID: sink.Pattern.ID,
				Range: match.Range, Bindings: match.Bindings,
			})
		}
	}

	dedupeSpec(spec)
	return spec, explanations, nil
}

// dedupeSpec removes redundant matches produced by overlapping sub-patterns
// of one rule: exact duplicates, and ranges strictly covered by another match
// of the same category (same label for sources).
func dedupeSpec(spec *ResolvedSpec) {
	spec.Sources = dedupe(spec.Sources,
		func(m SourceMatch) ir.Range { return m.Range },
		func(a, b SourceMatch) bool { return a.Label == b.Label })
	spec.Sanitizers = dedupe(spec.Sanitizers,
		func(m SanitizerMatch) ir.Range { return m.Range },
		func(a, b SanitizerMatch) bool { return a.BySideEffect == b.BySideEffect })
	spec.Sinks = dedupe(spec.Sinks,
		func(m SinkMatch) ir.Range { return m.Range },
		func(a, b SinkMatch) bool { return sameLabels(a.RequiredLabels, b.RequiredLabels) })
}

func sameLabels(a, b []Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func dedupe[T any](matches []T, rng func(T) ir.Range, same func(T, T) bool) []T {
	// Widest ranges first so covered duplicates are dropped in one pass.
	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := rng(matches[i]), rng(matches[j])
		if ri.Start.Offset != rj.Start.Offset {
			return ri.Start.Offset < rj.Start.Offset
		}
		return ri.End.Offset > rj.End.Offset
	})
	var kept []T
	for _, m := range matches {
		redundant := false
		for _, k := range kept {
			if same(k, m) && rng(k).Covers(rng(m)) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, m)
		}
	}
	return kept
}
