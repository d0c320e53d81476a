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

package ir

// NewGraph returns a graph for fn with n fresh empty blocks. Blocks[0] is the
// entry. Mostly useful to builders and tests; front ends usually construct
// blocks as they lower the syntax tree.
func NewGraph(fn *FuncDef, n int) *Graph {
	g := &Graph{Fn: fn}
	for i := 0; i < n; i++ {
		g.Blocks = append(g.Blocks, &Block{Index: i})
	}
	if n > 0 {
		g.Entry = g.Blocks[0]
	}
	return g
}

// At returns a range within file spanning the given byte offsets, on line
// ln. Column information is derived from the offsets, which is exact for
// single-line test inputs.
func At(file string, ln, startOff, endOff int) Range {
	return Range{
		Start: Position{Filename: file, Offset: startOff, Line: ln, Column: startOff + 1},
		End:   Position{Filename: file, Offset: endOff, Line: ln, Column: endOff + 1},
	}
}
