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

import "fmt"

// PatternError reports that one of a rule's patterns could not be matched
// because the pattern itself is malformed. It is scoped to one rule and never
// aborts the batch.
type PatternError struct {
	RuleID    string
	PatternID string
	Err       error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("rule %s: pattern %s: %v", e.RuleID, e.PatternID, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// TimeoutError reports that the analysis of one (rule, function) pair
// exceeded the configured budget. The pair is abandoned; the batch continues.
type TimeoutError struct {
	RuleID   string
	Function string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rule %s: analysis of %s exceeded its budget", e.RuleID, e.Function)
}

// FixpointError reports that the fixpoint iteration failed to converge within
// the hard iteration ceiling. This is a defect, surfaced as a hard error for
// the rule: truncating silently would produce unsound results.
type FixpointError struct {
	RuleID   string
	Function string
	Visits   int
}

func (e *FixpointError) Error() string {
	return fmt.Sprintf("rule %s: fixpoint on %s did not converge within %d block visits",
		e.RuleID, e.Function, e.Visits)
}
