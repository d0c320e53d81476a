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
	"github.com/sievetools/sieve/analysis/pattern"
	"github.com/sievetools/sieve/internal/funcutil"
)

// SourceSpec is one source pattern of a rule. Values matched by the pattern
// are considered attacker-controlled and carry the source's label.
type SourceSpec struct {
	Pattern pattern.Pattern

	// Label overrides the label attached to matched values. Empty means the
	// pattern ID is used.
	Label Label
}

func (s SourceSpec) label() Label {
	if s.Label != "" {
		return s.Label
	}
	return Label(s.Pattern.ID)
}

// SanitizerSpec is one sanitizer pattern of a rule. A location matched by the
// pattern produces a cleansed value regardless of its input's taint.
type SanitizerSpec struct {
	Pattern pattern.Pattern

	// BySideEffect makes the sanitizer also cleanse the variables passed to
	// it, not only the value it produces.
	BySideEffect bool
}

// SinkSpec is one sink pattern of a rule. Arguments reaching a matched
// location must not carry taint.
type SinkSpec struct {
	Pattern pattern.Pattern

	// RequiredLabels restricts the sink to specific source labels. Empty
	// means any label triggers a finding.
	RequiredLabels []Label
}

// Rule is one taint rule: at least one source pattern, zero or more
// sanitizer patterns, at least one sink pattern. Rules are read-only
// configuration, validated upstream, owned by the caller and shared across
// the whole run.
type Rule struct {
	ID        string
	Languages []string

	Sources    []SourceSpec
	Sanitizers []SanitizerSpec
	Sinks      []SinkSpec
}

// AppliesTo reports whether the rule covers the given language. A rule
// without a language list covers everything.
func (r *Rule) AppliesTo(language string) bool {
	return len(r.Languages) == 0 || funcutil.Contains(r.Languages, language)
}
