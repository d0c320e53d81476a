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

// A Value is an operand of an instruction. Only variables (Var) are tracked
// by the dataflow analyses; constants carry a range so that they can still be
// matched against source patterns.
type Value interface {
	// Name returns the name the value is tracked under. Constants return "".
	Name() string

	// Range returns the source span the value was read from
	Range() Range
}

// Var is a named variable or lvalue. The IL builder guarantees names are
// unique within one function.
type Var struct {
	Ident string
	Span  Range
}

func (v *Var) Name() string { return v.Ident }

func (v *Var) Range() Range { return v.Span }

func (v *Var) String() string { return v.Ident }

// Const is a literal operand. It is never tracked, but its range may fall
// inside a source pattern match.
type Const struct {
	Text string
	Span Range
}

func (c *Const) Name() string { return "" }

func (c *Const) Range() Range { return c.Span }

func (c *Const) String() string { return c.Text }
