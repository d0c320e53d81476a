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

	"github.com/sievetools/sieve/analysis/ir"
)

// RetKey is the environment key the engine tracks a function's return value
// under. Signature inference reads it from the flow information at return
// instructions.
const RetKey = "#return"

// FlowInfo is the fixpoint result for one function: for each instruction,
// the taint environment holding after the instruction executes. It is
// returned by value to the caller, who may retain it for debugging without
// affecting later analyses.
type FlowInfo struct {
	MarkedValues map[ir.Instruction]Env
}

// engineState is the per-invocation state of the dataflow fixpoint. It
// implements ir.IterativeAnalysis; one engineState analyzes exactly one
// graph and is then discarded.
type engineState struct {
	inst     *Instance
	graph    *ir.Graph
	flow     *FlowInfo
	provider SignatureProvider

	// instrPrev maps an instruction to the instructions that can
	// immediately precede it, across block boundaries
	instrPrev map[ir.Instruction][]ir.Instruction

	// entryInstrs are the instructions the entry environment seeds: the
	// first instruction of the entry block, or for an instruction-less
	// entry the first instruction of every reachable non-empty block
	entryInstrs map[ir.Instruction]bool
	entryEnv    Env

	// cur is the environment being computed for the current instruction
	cur Env

	changeFlag bool

	// fixpoint backstop and best-effort deadline
	blockVisits int
	maxVisits   int
	deadline    time.Time

	findings []Finding
	reported map[findingKey]bool
}

type findingKey struct {
	label  Label
	source ir.Range
	sink   ir.Range
}

// Analyze runs the taint dataflow fixpoint for the instance over one
// function's graph. The global environment seeds ambient taint in addition
// to parameter sources; it may be nil. The provider, when non-nil, supplies
// function taint signatures at call sites; without it every call is handled
// conservatively, which never loses findings.
//
// Findings are passed to the instance's callback as they are discovered, and
// the full list is also returned with the flow information, so the engine
// stays a pure function of its inputs for callers that prefer the batch
// view.
func Analyze(inst *Instance, g *ir.Graph, global Env, provider SignatureProvider) (*FlowInfo, []Finding, error) {
	var deadline time.Time
	if budget := inst.Config.RuleBudget(); budget > 0 {
		deadline = time.Now().Add(budget)
	}
	return AnalyzeWithDeadline(inst, g, global, provider, deadline)
}

// AnalyzeWithDeadline is Analyze with an explicit deadline. A zero deadline
// disables the budget check.
func AnalyzeWithDeadline(inst *Instance, g *ir.Graph, global Env, provider SignatureProvider,
	deadline time.Time) (*FlowInfo, []Finding, error) {
	if err := ir.ValidateGraph(g); err != nil {
		return nil, nil, err
	}
	flow := &FlowInfo{MarkedValues: map[ir.Instruction]Env{}}
	entryInstrs := firstInstructions(g.Entry, map[*ir.Block]bool{})
	if len(entryInstrs) == 0 {
		// no instruction anywhere, nothing can flow
		return flow, nil, nil
	}

	if inst.Config.SkipInterprocedural {
		provider = nil
	}

	state := &engineState{
		inst:        inst,
		graph:       g,
		flow:        flow,
		provider:    provider,
		instrPrev:   previousInstructions(g),
		entryInstrs: entryInstrs,
		entryEnv:    entryEnv(inst, g.Fn, global),
		maxVisits:   iterationCeiling(inst, g),
		deadline:    deadline,
		reported:    map[findingKey]bool{},
	}
	if err := ir.RunForwardIterative(state, g); err != nil {
		return nil, nil, err
	}
	return flow, state.findings, nil
}

// iterationCeiling bounds the number of block visits: the lattice height is
// at most blocks * labels, anything beyond that times the configured factor
// is a convergence defect.
func iterationCeiling(inst *Instance, g *ir.Graph) int {
	factor := inst.Config.FixpointIterFactor
	if factor <= 0 {
		factor = 1
	}
	labels := len(inst.Spec.Labels()) + 1
	return (len(g.Blocks) + 1) * labels * factor
}

// previousInstructions maps every instruction to its potential predecessors:
// the previous instruction in its block, or for block-leading instructions
// the last instruction of every predecessor block. Empty predecessor blocks
// are skipped through transitively.
func previousInstructions(g *ir.Graph) map[ir.Instruction][]ir.Instruction {
	prev := map[ir.Instruction][]ir.Instruction{}
	for _, block := range g.Blocks {
		var prevInstr ir.Instruction
		for j, instr := range block.Instrs {
			if j == 0 {
				prev[instr] = lastInstructions(block, map[*ir.Block]bool{})
			} else {
				prev[instr] = []ir.Instruction{prevInstr}
			}
			prevInstr = instr
		}
	}
	return prev
}

// firstInstructions returns the first instruction of block, or when block is
// instruction-less the first instruction of every reachable non-empty
// successor. Builders may emit an empty entry block; the function body then
// starts in its successors and must still receive the entry environment.
func firstInstructions(block *ir.Block, seen map[*ir.Block]bool) map[ir.Instruction]bool {
	firsts := map[ir.Instruction]bool{}
	if len(block.Instrs) > 0 {
		firsts[block.Instrs[0]] = true
		return firsts
	}
	seen[block] = true
	for _, succ := range block.Succs {
		if seen[succ] {
			continue
		}
		for instr := range firstInstructions(succ, seen) {
			firsts[instr] = true
		}
	}
	return firsts
}

// lastInstructions returns the last instruction of every predecessor of
// block, looking through empty blocks.
func lastInstructions(block *ir.Block, seen map[*ir.Block]bool) []ir.Instruction {
	var lasts []ir.Instruction
	for _, pred := range block.Preds {
		if seen[pred] {
			continue
		}
		seen[pred] = true
		if n := len(pred.Instrs); n > 0 {
			lasts = append(lasts, pred.Instrs[n-1])
		} else {
			lasts = append(lasts, lastInstructions(pred, seen)...)
		}
	}
	return lasts
}

// NewBlock checks the analysis budget and the convergence backstop before a
// block is visited, and resets the per-block change flag.
func (state *engineState) NewBlock(_ *ir.Block) error {
	if !state.deadline.IsZero() && time.Now().After(state.deadline) {
		return &TimeoutError{RuleID: state.inst.Rule.ID, Function: state.functionName()}
	}
	state.blockVisits++
	if state.blockVisits > state.maxVisits {
		return &FixpointError{
			RuleID:   state.inst.Rule.ID,
			Function: state.functionName(),
			Visits:   state.blockVisits,
		}
	}
	state.changeFlag = false
	return nil
}

// ChangedOnEndBlock reports whether any instruction environment changed
// while visiting the last block.
func (state *engineState) ChangedOnEndBlock() bool {
	return state.changeFlag
}

// Pre computes the input environment of the instruction: the join (union) of
// the environments after all its possible predecessors, plus the entry
// environment for the function's entry instructions. The join is commutative,
// so worklist order cannot change the fixpoint.
func (state *engineState) Pre(ins ir.Instruction) {
	cur := Env{}
	if state.entryInstrs[ins] {
		cur.Join(state.entryEnv)
	}
	for _, pred := range state.instrPrev[ins] {
		cur.Join(state.flow.MarkedValues[pred])
	}
	state.cur = cur
}

// Post commits the computed environment for the instruction, recording
// whether it changed since the previous visit.
func (state *engineState) Post(ins ir.Instruction) {
	if old, ok := state.flow.MarkedValues[ins]; !ok || !state.cur.Equal(old) {
		state.flow.MarkedValues[ins] = state.cur
		state.changeFlag = true
	}
	state.cur = nil
}

func (state *engineState) functionName() string {
	if state.graph.Fn != nil {
		return state.graph.Fn.Name
	}
	return "?"
}
