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

import "github.com/sievetools/sieve/analysis/ir"

// entryEnv builds the taint environment at a function's entry: a parameter
// starts pre-tainted when its declaration falls inside a source range, or
// when its default-value expression overlaps one (the default may contain a
// source call). The caller-supplied global environment, e.g. ambient taint
// from an enclosing scope, is unioned in additively: it can only add marks,
// never replace them.
func entryEnv(inst *Instance, fn *ir.FuncDef, global Env) Env {
	env := Env{}
	for _, p := range fn.Params {
		marks := inst.sourceMarksAt(p.Span)
		if p.Default.IsValid() {
			for _, src := range inst.Spec.Sources {
				if src.Range.Overlaps(p.Default) {
					if marks == nil {
						marks = MarkSet{}
					}
					marks[Mark{Label: src.Label, Source: src.Range}] = true
				}
			}
		}
		if len(marks) > 0 {
			env[p.Name] = marks
		}
	}
	env.Join(global)
	return env
}
