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
	"strings"
	"time"

	"golang.org/x/tools/container/intsets"

	"github.com/sievetools/sieve/analysis/config"
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/internal/funcutil"
	"github.com/sievetools/sieve/internal/graphutil"
)

// Signature summarizes how taint flows through one function: which parameter
// positions, when tainted, taint the return value, and which taint which
// output parameters. Signatures let the engine handle calls to summarized
// functions precisely instead of falling back to the conservative rule.
type Signature struct {
	// TaintedReturn holds the parameter positions whose taint reaches the
	// function's return value
	TaintedReturn intsets.Sparse

	// TaintedOutputs maps an output parameter position to the set of input
	// positions whose taint reaches it
	TaintedOutputs map[int]*intsets.Sparse
}

func (s *Signature) String() string {
	var parts []string
	if !s.TaintedReturn.IsEmpty() {
		parts = append(parts, fmt.Sprintf("return<-%s", s.TaintedReturn.String()))
	}
	for _, out := range funcutil.SortedKeys(s.TaintedOutputs) {
		parts = append(parts, fmt.Sprintf("arg%d<-%s", out, s.TaintedOutputs[out].String()))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// A SignatureProvider supplies function taint signatures at call sites. It
// is an explicit, optional capability passed down through the batch runner;
// a nil provider degrades the engine to the conservative call handling,
// which preserves soundness and only costs precision.
type SignatureProvider interface {
	// Infer returns the signature for the named function, or false when the
	// function has no summary.
	Infer(callee string) (*Signature, bool)
}

// SignatureStore is a map-backed SignatureProvider, populated by
// InferSignatures and read by the engine during the same single-threaded
// batch. It is never mutated concurrently with reads.
type SignatureStore struct {
	sigs map[string]*Signature
}

// NewSignatureStore returns an empty store.
func NewSignatureStore() *SignatureStore {
	return &SignatureStore{sigs: map[string]*Signature{}}
}

// Infer implements SignatureProvider.
func (st *SignatureStore) Infer(callee string) (*Signature, bool) {
	sig, ok := st.sigs[callee]
	return sig, ok
}

// Add records the signature for a function, replacing any previous one.
func (st *SignatureStore) Add(name string, sig *Signature) {
	st.sigs[name] = sig
}

// Len returns the number of summarized functions.
func (st *SignatureStore) Len() int { return len(st.sigs) }

func paramLabel(i int) Label {
	return Label(fmt.Sprintf("$param:%d", i))
}

// InferSignatures computes a taint signature for every function of the
// target reachable by the instance's rule. Functions are processed
// callees-first over the target's call graph, so that a caller's summary
// benefits from its callees' summaries. Functions involved in recursion
// (non-trivial strongly connected components) are skipped and keep the
// conservative call handling. Per-function failures are collected, not
// fatal: a function that cannot be summarized simply stays unsummarized.
//
// The deadline bounds the whole inference; a zero deadline disables it.
func InferSignatures(cfg *config.Config, inst *Instance, target *ir.Target, build ir.Builder,
	deadline time.Time) (*SignatureStore, []error) {
	store := NewSignatureStore()
	var errs []error

	// Build every function's graph once; the same graphs give us the call
	// edges and the bodies to summarize.
	graphs := map[string]*ir.Graph{}
	var names []string
	for _, fn := range target.Funcs {
		names = append(names, fn.Name)
		g, err := build.Build(fn)
		if err != nil {
			errs = append(errs, fmt.Errorf("building graph for %s: %w", fn.Name, err))
			continue
		}
		if err := ir.ValidateGraph(g); err != nil {
			errs = append(errs, err)
			continue
		}
		graphs[fn.Name] = g
	}

	cg := graphutil.NewCallGraph(names)
	for name, g := range graphs {
		for _, block := range g.Blocks {
			for _, instr := range block.Instrs {
				if call, ok := instr.(*ir.Call); ok {
					cg.AddEdge(name, call.Callee)
				}
			}
		}
	}

	components, err := graphutil.BottomUpComponents(cg)
	if err != nil {
		// A defect in the component computation; no summaries at all is
		// still sound.
		return store, append(errs, err)
	}

	for _, comp := range components {
		if !comp.Trivial {
			continue
		}
		name := cg.Names[comp.Members[0]]
		g, ok := graphs[name]
		if !ok {
			continue
		}
		sig, err := inferOne(inst, g, store, deadline)
		if err != nil {
			errs = append(errs, fmt.Errorf("summarizing %s: %w", name, err))
			continue
		}
		store.Add(name, sig)
	}
	return store, errs
}

// inferOne derives a function's signature by running the dataflow with one
// synthetic mark per parameter and observing which marks reach the return
// value and the parameters at return sites.
func inferOne(inst *Instance, g *ir.Graph, partial SignatureProvider, deadline time.Time) (*Signature, error) {
	// Synthetic instance: the rule's sanitizers still apply during
	// inference, but sources and sinks do not.
	synthetic := &Instance{
		Rule:   inst.Rule,
		Target: inst.Target,
		Spec: &ResolvedSpec{
			RuleID:     inst.Spec.RuleID,
			Sanitizers: inst.Spec.Sanitizers,
		},
		Config: inst.Config,
	}

	fn := g.Fn
	global := Env{}
	for i, p := range fn.Params {
		global[p.Name] = MarkSet{Mark{Label: paramLabel(i), Source: p.Span}: true}
	}

	flow, _, err := AnalyzeWithDeadline(synthetic, g, global, partial, deadline)
	if err != nil {
		return nil, err
	}

	sig := &Signature{TaintedOutputs: map[int]*intsets.Sparse{}}
	positions := map[Label]int{}
	for i := range fn.Params {
		positions[paramLabel(i)] = i
	}
	for _, block := range g.Blocks {
		for _, instr := range block.Instrs {
			if _, ok := instr.(*ir.Return); !ok {
				continue
			}
			env := flow.MarkedValues[instr]
			for mark := range env[RetKey] {
				if in, ok := positions[mark.Label]; ok {
					sig.TaintedReturn.Insert(in)
				}
			}
			for out, p := range fn.Params {
				for mark := range env[p.Name] {
					in, ok := positions[mark.Label]
					if !ok || in == out {
						continue
					}
					if sig.TaintedOutputs[out] == nil {
						sig.TaintedOutputs[out] = &intsets.Sparse{}
					}
					sig.TaintedOutputs[out].Insert(in)
				}
			}
		}
	}
	return sig, nil
}
