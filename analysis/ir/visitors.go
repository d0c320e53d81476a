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

import (
	"github.com/sievetools/sieve/internal/funcutil"
)

// IterativeAnalysis is an iterative analysis that extends an InstrOp with
// hooks executed around every instruction and every block, and a function
// queried once a block has been visited to check whether the analysis
// information has changed.
type IterativeAnalysis interface {
	InstrOp

	// Pre is executed before an instruction is visited
	Pre(instruction Instruction)

	// Post is executed after an instruction is visited
	Post(instruction Instruction)

	// NewBlock is called when the driver enters a block. Returning a non-nil
	// error aborts the traversal; the driver returns that error unchanged.
	NewBlock(block *Block) error

	// ChangedOnEndBlock returns a boolean signaling the information has
	// changed while visiting the last block.
	ChangedOnEndBlock() bool
}

// RunForwardIterative visits the blocks of the graph until a fixpoint is
// reached. After each block whose visit changed the analysis information,
// every block reachable from it is queued again. The analysis must be
// monotone for the traversal to terminate; callers enforce a hard iteration
// ceiling through the NewBlock error as a backstop.
func RunForwardIterative(op IterativeAnalysis, g *Graph) error {
	if g.Entry == nil {
		return nil
	}
	// memoize paths between blocks across fixpoint passes
	pathMem := map[*Block]map[*Block]bool{}
	worklist := []*Block{g.Entry}
	for len(worklist) > 0 {
		block := worklist[0]
		worklist = worklist[1:]
		if err := op.NewBlock(block); err != nil {
			return err
		}
		for _, instr := range block.Instrs {
			op.Pre(instr)
			InstrSwitch(op, instr)
			op.Post(instr)
		}
		if len(block.Instrs) == 0 {
			// an instruction-less block never reports a change; its
			// successors must still be reached
			for _, succ := range block.Succs {
				if !funcutil.Contains(worklist, succ) {
					worklist = append(worklist, succ)
				}
			}
		}
		if op.ChangedOnEndBlock() {
			for _, nextBlock := range g.Blocks {
				if HasPathTo(block, nextBlock, pathMem) {
					if !funcutil.Contains(worklist, nextBlock) {
						worklist = append(worklist, nextBlock)
					}
				}
			}
		}
	}
	return nil
}
