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
	"sort"

	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/internal/funcutil"
)

// Label identifies the source a tainted value originates from. A value can
// carry marks with several distinct labels when multiple sources reach it.
type Label string

// Mark ties a label to the concrete source occurrence that introduced it, so
// findings can point at the originating range and not just the source spec.
type Mark struct {
	Label  Label
	Source ir.Range
}

// MarkSet is a set of marks, ordered by subset inclusion and joined by union.
type MarkSet map[Mark]bool

// Copy returns an independent copy of the set.
func (s MarkSet) Copy() MarkSet {
	c := make(MarkSet, len(s))
	for m, ok := range s {
		if ok {
			c[m] = true
		}
	}
	return c
}

// Equal reports whether s and o contain the same marks.
func (s MarkSet) Equal(o MarkSet) bool {
	if len(s) != len(o) {
		return false
	}
	for m := range s {
		if !o[m] {
			return false
		}
	}
	return true
}

// Sorted returns the marks in a deterministic order.
func (s MarkSet) Sorted() []Mark {
	marks := make([]Mark, 0, len(s))
	for m := range s {
		marks = append(marks, m)
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Label != marks[j].Label {
			return marks[i].Label < marks[j].Label
		}
		return marks[i].Source.Start.Offset < marks[j].Source.Start.Offset
	})
	return marks
}

// Env is the per-program-point taint environment: for each tracked variable,
// the set of marks that may hold for it.
type Env map[string]MarkSet

// Copy returns an independent copy of the environment.
func (e Env) Copy() Env {
	c := make(Env, len(e))
	for name, marks := range e {
		c[name] = marks.Copy()
	}
	return c
}

// Equal reports whether the two environments associate the same marks to the
// same variables. Empty mark sets and absent variables are equivalent.
func (e Env) Equal(o Env) bool {
	for name, marks := range e {
		if !marks.Equal(o[name]) {
			return false
		}
	}
	for name, marks := range o {
		if _, ok := e[name]; !ok && len(marks) > 0 {
			return false
		}
	}
	return true
}

// Join unions other into e. This is the lattice join at control-flow merge
// points: sound over-approximation of "may be tainted on some path".
// @mutates e
func (e Env) Join(other Env) {
	for name, marks := range other {
		if _, ok := e[name]; !ok {
			e[name] = MarkSet{}
		}
		funcutil.Union(map[Mark]bool(e[name]), map[Mark]bool(marks))
	}
}
