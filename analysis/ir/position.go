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

import "fmt"

// Position is a location in a source file. Offset is the byte offset in the
// file and is authoritative for ordering; Line and Column are carried for
// display only.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Range is a contiguous source span, half-open over byte offsets:
// [Start.Offset, End.Offset). Ranges are immutable once produced.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", r.Start.Filename,
		r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
}

// IsValid reports whether the range spans at least one byte.
func (r Range) IsValid() bool {
	return r.Start.Filename != "" && r.Start.Offset < r.End.Offset
}

// Covers reports whether r fully contains o. A range covers itself.
func (r Range) Covers(o Range) bool {
	return r.Start.Filename == o.Start.Filename &&
		r.Start.Offset <= o.Start.Offset && o.End.Offset <= r.End.Offset
}

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Filename == o.Start.Filename &&
		r.Start.Offset < o.End.Offset && o.Start.Offset < r.End.Offset
}
