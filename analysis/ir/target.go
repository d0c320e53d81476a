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

// Param is one declared parameter of a function, including the range of an
// optional default-value expression.
type Param struct {
	Name string
	Span Range

	// Default is the range of the default-value expression, invalid (zero)
	// when the parameter has none.
	Default Range
}

// FuncDef is the front end's view of a single function: its name, parameter
// list and source span, plus an opaque handle to the language-specific AST
// that the IL builder and the pattern matcher understand.
type FuncDef struct {
	Name   string
	Params []Param
	Span   Range

	// AST is the front-end syntax tree of the body. Opaque to the analyses.
	AST any
}

// Target is one parsed file for one language. It is owned by the caller and
// borrowed read-only by every component during the analysis of that file.
type Target struct {
	Filename string
	Language string
	Funcs    []*FuncDef

	// AST is the front-end syntax tree of the whole file. Opaque to the
	// analyses; the pattern matcher consumes it.
	AST any
}

// Builder converts one function's AST into a control-flow graph. Builders are
// provided by language front ends outside this module.
type Builder interface {
	Build(fn *FuncDef) (*Graph, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(fn *FuncDef) (*Graph, error)

// Build calls f.
func (f BuilderFunc) Build(fn *FuncDef) (*Graph, error) { return f(fn) }
