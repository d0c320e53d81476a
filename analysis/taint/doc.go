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

// Package taint implements the rule-driven taint-flow analysis.
//
// A rule names source, sanitizer and sink patterns. The resolver matches the
// patterns against one target file (through the external pattern matcher,
// memoized by a per-target formula cache) and the resulting ranges are bundled
// with the rule into an instance. For every function of the target, the
// dataflow engine then runs a monotone fixpoint over the function's
// control-flow graph, propagating sets of taint marks from sources through
// assignments and calls, stripping them at sanitizers, and emitting a finding
// as soon as a marked value reaches a sink. The batch runner drives this
// pipeline for a list of rules over one target, isolating per-rule failures.
package taint
