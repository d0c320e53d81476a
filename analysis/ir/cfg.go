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

import "fmt"

// Block is a basic block: a straight-line sequence of instructions with
// control transfers only at the end. Edges to exceptional/error handlers are
// ordinary Succs entries.
type Block struct {
	Index  int
	Instrs []Instruction
	Preds  []*Block
	Succs  []*Block
}

// Graph is the control-flow graph of one function. Entry is the unique entry
// block. A Graph is built fresh per function and owned by a single analysis
// invocation; it is never shared.
type Graph struct {
	Fn     *FuncDef
	Blocks []*Block
	Entry  *Block
}

// AddEdge records a control transfer from b to succ, updating both sides.
func (g *Graph) AddEdge(b *Block, succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// ValidateGraph checks the structural invariants a builder must guarantee.
// A malformed graph is a collaborator defect; the caller reports it for the
// one function concerned and moves on.
func ValidateGraph(g *Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}
	if g.Entry == nil {
		return fmt.Errorf("graph for %q has no entry block", graphName(g))
	}
	inGraph := map[*Block]bool{}
	for _, b := range g.Blocks {
		inGraph[b] = true
	}
	if !inGraph[g.Entry] {
		return fmt.Errorf("entry block of %q is not in the block list", graphName(g))
	}
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if !inGraph[s] {
				return fmt.Errorf("block %d of %q has a dangling successor", b.Index, graphName(g))
			}
		}
		for _, p := range b.Preds {
			if !inGraph[p] {
				return fmt.Errorf("block %d of %q has a dangling predecessor", b.Index, graphName(g))
			}
		}
	}
	return nil
}

func graphName(g *Graph) string {
	if g.Fn != nil {
		return g.Fn.Name
	}
	return "?"
}

// HasPathTo returns true if there is a control-flow path from b1 to b2. Use
// mem to amortize cost across queries. If mem is nil the algorithm runs
// without memoization and no map is allocated.
func HasPathTo(b1 *Block, b2 *Block, mem map[*Block]map[*Block]bool) bool {
	if mem != nil {
		if _, ok := mem[b1]; !ok {
			mem[b1] = map[*Block]bool{}
		}
		if val, ok := mem[b1][b2]; ok {
			return val
		}
	}
	vis := map[*Block]bool{}
	que := []*Block{b1}
	for len(que) > 0 {
		cur := que[0]
		que = que[1:]
		if cur == b2 {
			if mem != nil {
				mem[b1][b2] = true
			}
			return true
		}
		vis[cur] = true
		for _, nb := range cur.Succs {
			if !vis[nb] {
				que = append(que, nb)
			}
		}
	}
	if mem != nil {
		mem[b1][b2] = false
	}
	return false
}
