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

// Package ir defines the language-neutral intermediate representation the
// analyses run on: source ranges, values, low-level instructions, basic
// blocks and per-function control-flow graphs, together with the iterative
// traversal drivers used by the dataflow analyses.
//
// The IR is produced from a language front end by an IL builder. Builders are
// external to this module; package ir only specifies their contract (the
// Builder type) and validates their output (ValidateGraph).
package ir
