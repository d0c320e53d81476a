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
	"time"

	"github.com/sievetools/sieve/analysis/config"
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

// RuleResult aggregates the outcome of one rule against one target:
// findings, the errors attributed to the rule or to single functions, the
// resolved ranges for diagnostics, and profiling data. A rule that failed to
// compile its patterns yields zero findings plus the error, never a crash of
// the batch.
type RuleResult struct {
	RuleID       string
	Findings     []Finding
	Errors       []error
	Debug        *DebugTaint
	Explanations []Explanation
	Duration     time.Duration
}

// InferFunc computes function taint signatures for one (rule, target) pair
// before the rule's functions are analyzed. InferSignatures is the built-in
// implementation; a nil InferFunc leaves every call to the conservative
// handling.
type InferFunc func(cfg *config.Config, inst *Instance, target *ir.Target, build ir.Builder,
	deadline time.Time) (*SignatureStore, []error)

// Instrument wraps the execution of one rule, e.g. with profiling
// instrumentation. It must call run exactly once.
type Instrument func(ruleID string, run func())

// RunRules analyzes every rule against every function of one target. All
// rules share a single formula cache for the target, so each rule's patterns
// are matched at most once no matter how many rules run. Failures are
// isolated per rule, and inside a rule per function: a malformed pattern or
// a diverging fixpoint shows up in that rule's result and the batch moves
// on.
//
// onFinding, infer and instrument may be nil. Findings are streamed to
// onFinding as they are discovered and also collected in the results.
func RunRules(logger *config.LogGroup, cfg *config.Config, target *ir.Target, rules []*Rule,
	m pattern.Matcher, build ir.Builder, infer InferFunc, onFinding FindingFunc,
	instrument Instrument) []RuleResult {

	cache := NewFormulaCache(rules)
	results := make([]RuleResult, 0, len(rules))

	for _, rule := range rules {
		res := RuleResult{RuleID: rule.ID}
		if !rule.AppliesTo(target.Language) {
			logger.Debugf("rule %s does not apply to %s, skipping", rule.ID, target.Language)
			results = append(results, res)
			continue
		}
		run := func() {
			start := time.Now()
			defer func() { res.Duration = time.Since(start) }()
			runRule(logger, cfg, cache, target, rule, m, build, infer, onFinding, &res)
		}
		if instrument != nil {
			instrument(rule.ID, run)
		} else {
			run()
		}
		results = append(results, res)
	}
	return results
}

func runRule(logger *config.LogGroup, cfg *config.Config, cache *FormulaCache, target *ir.Target,
	rule *Rule, m pattern.Matcher, build ir.Builder, infer InferFunc, onFinding FindingFunc,
	res *RuleResult) {

	capped := false
	cb := func(f Finding) {
		if cfg.MaxAlarms > 0 && len(res.Findings) >= cfg.MaxAlarms {
			if !capped && !cfg.SilenceWarn {
				logger.Warnf("rule %s reached the maximum of %d findings, dropping the rest",
					rule.ID, cfg.MaxAlarms)
			}
			capped = true
			return
		}
		res.Findings = append(res.Findings, f)
		ReportTaintFlow(logger, f)
		if onFinding != nil {
			onFinding(f)
		}
	}

	inst, debug, explanations, err := BuildInstance(cache, cfg, target, rule, m, cb)
	if err != nil {
		logger.Errorf("rule %s: %v", rule.ID, err)
		res.Errors = append(res.Errors, err)
		return
	}
	res.Debug = debug
	res.Explanations = explanations
	ReportDebugTaint(logger, debug, explanations)

	var deadline time.Time
	if budget := cfg.RuleBudget(); budget > 0 {
		deadline = time.Now().Add(budget)
	}

	var provider SignatureProvider
	if infer != nil && !cfg.SkipInterprocedural {
		store, errs := infer(cfg, inst, target, build, deadline)
		res.Errors = append(res.Errors, errs...)
		if store != nil && store.Len() > 0 {
			provider = store
		}
	}

	for _, fn := range target.Funcs {
		g, err := build.Build(fn)
		if err != nil {
			res.Errors = append(res.Errors, err)
			logger.Warnf("rule %s: could not build a graph for %s: %v", rule.ID, fn.Name, err)
			continue
		}
		_, _, err = AnalyzeWithDeadline(inst, g, nil, provider, deadline)
		if err != nil {
			res.Errors = append(res.Errors, err)
			logger.Warnf("rule %s: %v", rule.ID, err)
			continue
		}
	}
	logger.Debugf("rule %s: %d findings over %d functions", rule.ID, len(res.Findings), len(target.Funcs))
}
