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
	"io"
	"sort"
	"testing"

	"github.com/sievetools/sieve/analysis/config"
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

const testFile = "main.ce"

// staticMatcher is a deterministic stand-in for the external pattern
// matching engine: it maps pattern IDs to fixed match lists. Patterns listed
// in bad fail with an error, like a malformed pattern would.
type staticMatcher struct {
	matches map[string][]pattern.Match
	bad     map[string]bool
}

func (s *staticMatcher) Match(p pattern.Pattern, _ *ir.Target) ([]pattern.Match, error) {
	if s.bad[p.ID] {
		return nil, fmt.Errorf("cannot compile pattern %q", p.Expr)
	}
	return s.matches[p.ID], nil
}

func matchAt(ranges ...ir.Range) []pattern.Match {
	var ms []pattern.Match
	for _, r := range ranges {
		ms = append(ms, pattern.Match{Range: r})
	}
	return ms
}

func testConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.ErrLevel)
	return cfg
}

func testLogger() *config.LogGroup {
	logger := config.NewLogGroup(testConfig())
	logger.SetAllOutput(io.Discard)
	return logger
}

// at returns a range in the test file.
func at(line, start, end int) ir.Range {
	return ir.At(testFile, line, start, end)
}

// varAt returns a variable occurrence.
func varAt(name string, line, start, end int) *ir.Var {
	return &ir.Var{Ident: name, Span: at(line, start, end)}
}

// buildInstance resolves the rule with a fresh cache and collects findings
// in the returned slice.
func buildInstance(t *testing.T, rule *Rule, target *ir.Target, m pattern.Matcher) (*Instance, *[]Finding) {
	t.Helper()
	var findings []Finding
	cache := NewFormulaCache([]*Rule{rule})
	inst, _, _, err := BuildInstance(cache, testConfig(), target, rule, m,
		func(f Finding) { findings = append(findings, f) })
	if err != nil {
		t.Fatalf("could not build instance: %v", err)
	}
	return inst, &findings
}

// sortFindings orders findings for comparison.
func sortFindings(fs []Finding) []Finding {
	sorted := append([]Finding{}, fs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Label != sorted[j].Label {
			return sorted[i].Label < sorted[j].Label
		}
		if sorted[i].Source.Start.Offset != sorted[j].Source.Start.Offset {
			return sorted[i].Source.Start.Offset < sorted[j].Source.Start.Offset
		}
		return sorted[i].Sink.Start.Offset < sorted[j].Sink.Start.Offset
	})
	return sorted
}

// singleBlockGraph wraps instructions in a one-block graph for fn.
func singleBlockGraph(fn *ir.FuncDef, instrs ...ir.Instruction) *ir.Graph {
	g := ir.NewGraph(fn, 1)
	g.Blocks[0].Instrs = instrs
	return g
}

func emptyTarget() *ir.Target {
	return &ir.Target{Filename: testFile, Language: "ce"}
}
