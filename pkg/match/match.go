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

package match

import (
	"regexp"

	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/source"
)

// 🔍 Matcher is one compiled pattern. It is immutable and safe for
// concurrent use.
type Matcher struct {
	pattern catalog.Pattern
	re      *regexp.Regexp
}

// Name returns the pattern's catalog name
func (m *Matcher) Name() string {
	return m.pattern.Name
}

// Pattern returns the pattern the matcher was compiled from
func (m *Matcher) Pattern() catalog.Pattern {
	return m.pattern
}

// Expr returns the lowered regular expression, for diagnostics
func (m *Matcher) Expr() string {
	return m.re.String()
}

// 🎯 FindAll returns every non-overlapping occurrence of the pattern in the
// document, leftmost first (Go regexp semantics: at each starting position
// the scan resumes after the previous match, so results are deterministic
// for a given snapshot). Absence of matches is an empty slice, never an
// error. Every returned Match is bound to doc's current snapshot.
func (m *Matcher) FindAll(doc *source.Document) []Match {
	locs := m.re.FindAllStringSubmatchIndex(doc.Text(), -1)
	if len(locs) == 0 {
		return nil
	}

	names := m.re.SubexpNames()
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		captures := make(map[string]source.Span, len(names))
		for gi, name := range names {
			if name == "" {
				continue
			}
			captures[name] = source.Span{Start: loc[2*gi], End: loc[2*gi+1]}
		}
		matches = append(matches, Match{
			doc:      doc,
			pattern:  m.pattern.Name,
			span:     source.Span{Start: loc[0], End: loc[1]},
			captures: captures,
		})
	}
	return matches
}

// 📌 Match is one occurrence of a pattern in one document snapshot. A Match
// is only meaningful against the exact snapshot it was found in; once the
// document is superseded by a rewrite, its offsets are stale.
type Match struct {
	doc      *source.Document
	pattern  string
	span     source.Span
	captures map[string]source.Span
}

// PatternName returns the name of the pattern that produced this match
func (m *Match) PatternName() string {
	return m.pattern
}

// Span returns the matched byte range
func (m *Match) Span() source.Span {
	return m.span
}

// Text returns the matched bytes verbatim
func (m *Match) Text() string {
	return m.doc.Slice(m.span)
}

// Position returns the match's start as a 1-based line:column
func (m *Match) Position() source.Position {
	return m.doc.Position(m.span.Start)
}

// ValidFor reports whether the match was found in exactly this snapshot
func (m *Match) ValidFor(doc *source.Document) bool {
	return m.doc == doc
}

// 🔎 Capture returns the bytes captured under name, byte-for-byte as they
// appear in the source. A capture inside an unmatched optional clause (or
// an unknown name) reads as the empty string; CaptureSpan distinguishes
// the two.
func (m *Match) Capture(name string) string {
	span, ok := m.CaptureSpan(name)
	if !ok {
		return ""
	}
	return m.doc.Slice(span)
}

// CaptureSpan returns the span bound to name. ok is false when the matcher
// never bound the name, or its optional clause was absent at this site.
func (m *Match) CaptureSpan(name string) (source.Span, bool) {
	span, ok := m.captures[name]
	if !ok || span.Start < 0 {
		return source.Span{}, false
	}
	return span, true
}

// HasCapture reports whether the matcher binds name at all. True even when
// the capture sits in an optional clause that was absent at this site —
// that reads as empty, which is different from a name the matcher has
// never heard of.
func (m *Match) HasCapture(name string) bool {
	_, ok := m.captures[name]
	return ok
}

// 📦 Set is a full catalog compiled in order. Built by CompileCatalog.
type Set struct {
	matchers []*Matcher
}

// 🏭 NewSet assembles a Set from individually compiled matchers, in the
// order given. Unlike CompileCatalog it runs no cross-pattern probing, so
// callers building patterns in code keep the responsibility for the
// idempotency contract; a contract-breaking set still terminates under the
// fixpoint cap.
func NewSet(matchers ...*Matcher) *Set {
	return &Set{matchers: matchers}
}

// Matchers returns the compiled patterns in catalog order
func (s *Set) Matchers() []*Matcher {
	return s.matchers
}

// Len returns the number of compiled patterns
func (s *Set) Len() int {
	return len(s.matchers)
}

// Names returns the pattern names in catalog order
func (s *Set) Names() []string {
	names := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		names[i] = m.Name()
	}
	return names
}
