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

	"github.com/sievetools/sieve/analysis/config"
	"github.com/sievetools/sieve/analysis/ir"
	"github.com/sievetools/sieve/internal/formatutil"
)

// Finding is one discovered taint flow: a value originating at Source
// (labeled Label) reaches Sink without passing through a sanitizer, inside
// Function. Each (source, sink, label) combination is reported at most once
// per function analysis.
type Finding struct {
	RuleID   string
	Label    Label
	Source   ir.Range
	Sink     ir.Range
	Function string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s flows to %s in %s",
		f.RuleID, f.Label, f.Source, f.Sink, f.Function)
}

// ReportTaintFlow logs one finding, coloring the source and sink positions
// when standard output is a terminal.
func ReportTaintFlow(logger *config.LogGroup, f Finding) {
	logger.Infof("%s sink reached at %s", formatutil.Red("✗"), formatutil.Red(f.Sink.String()))
	logger.Infof("  source %s at %s (rule %s, in %s)",
		formatutil.Yellow(string(f.Label)),
		formatutil.Green(f.Source.String()),
		formatutil.Sanitize(f.RuleID),
		formatutil.Sanitize(f.Function))
}

// ReportDebugTaint dumps the resolved ranges of one rule for diagnostics
// consumers that visualize why a rule matched.
func ReportDebugTaint(logger *config.LogGroup, d *DebugTaint, explanations []Explanation) {
	logger.Debugf("%s resolved taint spec for rule %s", formatutil.Bold("::"), formatutil.Sanitize(d.RuleID))
	for _, r := range d.Sources {
		logger.Debugf("  source    %s", r)
	}
	for _, r := range d.Sanitizers {
		logger.Debugf("  sanitizer %s", r)
	}
	for _, r := range d.Sinks {
		logger.Debugf("  sink      %s", r)
	}
	for _, e := range explanations {
		logger.Tracef("  %s", e)
	}
}
