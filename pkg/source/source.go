// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"fmt"
	"strings"
)

// 📄 Document is an immutable snapshot of one file's text. Rewrites never
// mutate a Document; they produce a new one via WithText, which bumps the
// version so anything holding offsets into the old snapshot can detect that
// it has been superseded.
type Document struct {
	text    string
	version uint64
}

// 🏭 NewDocument creates a snapshot at version 0
func NewDocument(text string) *Document {
	return &Document{text: text}
}

// Text returns the full snapshot text
func (d *Document) Text() string {
	return d.text
}

// Len returns the snapshot length in bytes
func (d *Document) Len() int {
	return len(d.text)
}

// Version returns the snapshot generation, starting at 0
func (d *Document) Version() uint64 {
	return d.version
}

// 🔄 WithText returns a new snapshot carrying the rewritten text. The
// receiver is left untouched.
func (d *Document) WithText(text string) *Document {
	return &Document{text: text, version: d.version + 1}
}

// Slice returns the bytes covered by span, verbatim
func (d *Document) Slice(span Span) string {
	return d.text[span.Start:span.End]
}

// 📍 Position resolves a byte offset to a 1-based line:column pair for
// human-facing messages. Offsets past the end resolve to the final position.
func (d *Document) Position(offset int) Position {
	if offset > len(d.text) {
		offset = len(d.text)
	}
	line := strings.Count(d.text[:offset], "\n") + 1
	col := offset - strings.LastIndex(d.text[:offset], "\n")
	return Position{Line: line, Column: col}
}

// 📐 Span is a half-open byte range [Start, End) into one snapshot
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span covers no bytes
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the span width in bytes
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two half-open spans share any byte
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Position is a 1-based line and column
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
