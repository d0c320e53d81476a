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
	"fmt"
	"strings"

	"github.com/sievetools/sieve/internal/funcutil"
)

// An Instruction is one low-level operation inside a basic block. Control
// transfers are not instructions; they are the edges of the block graph.
type Instruction interface {
	// Range returns the source span the instruction was lowered from
	Range() Range

	// Operands returns the values the instruction reads
	Operands() []Value

	String() string
}

// Assign is x := e, with e flattened to its list of read operands.
type Assign struct {
	LHS  *Var
	RHS  []Value
	Span Range
}

func (a *Assign) Range() Range { return a.Span }

func (a *Assign) Operands() []Value { return a.RHS }

func (a *Assign) String() string {
	return fmt.Sprintf("%s := %s", a.LHS, joinOperands(a.RHS))
}

// Call is res := callee(args...). Result is nil when the call's value is
// discarded. Callee is the name the call resolves to; calls the front end
// could not resolve have an empty Callee and are treated like opaque calls.
type Call struct {
	Result *Var
	Callee string
	Args   []Value
	Span   Range
}

func (c *Call) Range() Range { return c.Span }

func (c *Call) Operands() []Value { return c.Args }

func (c *Call) String() string {
	s := fmt.Sprintf("%s(%s)", c.Callee, joinOperands(c.Args))
	if c.Result != nil {
		s = c.Result.Ident + " := " + s
	}
	return s
}

// Return ends the function, yielding zero or more results.
type Return struct {
	Results []Value
	Span    Range
}

func (r *Return) Range() Range { return r.Span }

func (r *Return) Operands() []Value { return r.Results }

func (r *Return) String() string {
	return "return " + joinOperands(r.Results)
}

func joinOperands(vals []Value) string {
	return strings.Join(funcutil.Map(vals, func(v Value) string { return fmt.Sprint(v) }), ", ")
}

// InstrOp is an operation to run on instructions, with one case per
// instruction kind.
type InstrOp interface {
	DoAssign(*Assign)
	DoCall(*Call)
	DoReturn(*Return)
}

// InstrSwitch dispatches the instruction to the matching method of op.
func InstrSwitch(op InstrOp, i Instruction) {
	switch instr := i.(type) {
	case *Assign:
		op.DoAssign(instr)
	case *Call:
		op.DoCall(instr)
	case *Return:
		op.DoReturn(instr)
	}
}
