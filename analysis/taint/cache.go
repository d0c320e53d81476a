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

	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/analysis/pattern"
)

type formulaEntry struct {
	spec *ResolvedSpec
	expl []Explanation
	err  error
}

// FormulaCache memoizes, per target, the resolved source/sanitizer/sink
// ranges of each rule, so that many rules analyzed against the same file
// share the expensive pattern matching work. Entries are written once and
// never evicted or invalidated; the cache's lifetime is exactly one target's
// analysis across all rules. A cache must never be reused for a different
// target, and is not safe for concurrent use.
type FormulaCache struct {
	target  *ir.Target
	entries map[string]*formulaEntry

	computed int
	hits     int
}

// NewFormulaCache returns an empty cache sized for the given rule set.
func NewFormulaCache(rules []*Rule) *FormulaCache {
	return &FormulaCache{entries: make(map[string]*formulaEntry, len(rules))}
}

// Resolve returns the resolved spec for the rule against the target,
// computing it through the matcher at most once per rule for the lifetime of
// the cache. Matcher failures are memoized too: retrying a malformed rule
// does not re-run the matcher.
func (c *FormulaCache) Resolve(rule *Rule, target *ir.Target, m pattern.Matcher) (*ResolvedSpec, []Explanation, error) {
	if c.target == nil {
		c.target = target
	} else if c.target != target {
		return nil, nil, fmt.Errorf("formula cache bound to target %q used with target %q",
			c.target.Filename, target.Filename)
	}
	if entry, ok := c.entries[rule.ID]; ok {
		c.hits++
		return entry.spec, entry.expl, entry.err
	}
	spec, expl, err := resolveSpec(rule, target, m)
	c.entries[rule.ID] = &formulaEntry{spec: spec, expl: expl, err: err}
	c.computed++
	return spec, expl, err
}

// Stats returns how many specs were computed and how many resolutions were
// served from memory.
func (c *FormulaCache) Stats() (computed int, hits int) {
	return c.computed, c.hits
}
