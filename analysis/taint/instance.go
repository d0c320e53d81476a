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
	"github.com/sievetools/sieve/analysis/config"
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

// FindingFunc consumes findings as the engine discovers them.
type FindingFunc func(Finding)

// Instance is the analysis configuration for one (rule, target) pair: the
// rule, its resolved ranges, the run options and the findings callback. An
// instance is immutable and serves every function of its target; ranges are
// file-global, so rebuilding per function is unnecessary.
type Instance struct {
	Rule   *Rule
	Target *ir.Target
	Spec   *ResolvedSpec
	Config *config.Config

	callback FindingFunc
}

// BuildInstance resolves the rule's patterns against the target through the
// formula cache and bundles the result into an instance. It fails only when
// the matcher rejects a malformed pattern; empty match sets are valid and
// produce an instance that yields no findings.
func BuildInstance(cache *FormulaCache, cfg *config.Config, target *ir.Target, rule *Rule,
	m pattern.Matcher, cb FindingFunc) (*Instance, *DebugTaint, []Explanation, error) {
	spec, explanations, err := cache.Resolve(rule, target, m)
	if err != nil {
		return nil, nil, nil, err
	}
	inst := &Instance{
		Rule:     rule,
		Target:   target,
		Spec:     spec,
		Config:   cfg,
		callback: cb,
	}
	return inst, spec.Debug(), explanations, nil
}

func (i *Instance) emit(f Finding) {
	if i.callback != nil {
		i.callback(f)
	}
}

// sanitizerAt returns the sanitizer match covering the range, if any.
func (i *Instance) sanitizerAt(r ir.Range) (SanitizerMatch, bool) {
	for _, san := range i.Spec.Sanitizers {
		if san.Range.Covers(r) {
			return san, true
		}
	}
	return SanitizerMatch{}, false
}

// sourceMarksAt returns one mark per source match covering the range.
func (i *Instance) sourceMarksAt(r ir.Range) MarkSet {
	var marks MarkSet
	for _, src := range i.Spec.Sources {
		if src.Range.Covers(r) {
			if marks == nil {
				marks = MarkSet{}
			}
			marks[Mark{Label: src.Label, Source: src.Range}] = true
		}
	}
	return marks
}

// sinksAt returns the sink matches the instruction range reaches: the sink
// range contains the instruction, or the instruction span contains the whole
// sink range.
func (i *Instance) sinksAt(r ir.Range) []SinkMatch {
	var sinks []SinkMatch
	for _, sink := range i.Spec.Sinks {
		if sink.Range.Covers(r) || r.Covers(sink.Range) {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}
