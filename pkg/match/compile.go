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
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/catalog"
)

// atomKind classifies one unit of a lowered match query
type atomKind int

const (
	atomText atomKind = iota // literal text, no whitespace
	atomSpace                // a whitespace run in the query
	atomCapture              // ${name}
	atomClauseOpen           // [[
	atomClauseClose          // ]]
)

type atom struct {
	kind atomKind
	text string // literal chunk, or capture name
}

// 🔧 Compile lowers one pattern's tolerant text query into a matcher.
//
// Lowering rules, in order:
//   - outer whitespace and a trailing '?'/';' run are peeled off the query;
//     a peeled terminator run means the source may carry any terminator run
//     there, including none
//   - a whitespace run matches any whitespace run in the source: required
//     when it separates two word characters, optional otherwise (so a query
//     written with a line break before ".method(" also matches the
//     single-line rendering)
//   - ${name} becomes a named group matching the shortest single-line span
//     that lets the rest of the query match
//   - [[ ... ]] becomes an optional group; when absent, its captures read
//     as empty
//   - everything else is matched verbatim
//
// Compile checks the match side only. Replacement templates are checked by
// catalog validation at load time, or by the rewriter when a pattern built
// in code bypasses it.
func Compile(p catalog.Pattern) (*Matcher, error) {
	if p.Name == "" {
		return nil, &catalog.LoadError{Pattern: "pattern", Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(p.Match) == "" {
		return nil, &catalog.LoadError{Pattern: p.Name, Field: "match", Reason: "is required"}
	}

	body, terminated := peelTerminators(strings.TrimSpace(p.Match))

	atoms, err := tokenizeQuery(p.Name, body)
	if err != nil {
		return nil, err
	}

	expr, err := emitRegexp(p.Name, atoms, terminated)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", p.Name, err)
	}

	// A query that can match zero bytes would match at every offset.
	if re.MatchString("") {
		return nil, &catalog.LoadError{Pattern: p.Name, Field: "match", Reason: "query can match empty text"}
	}

	return &Matcher{pattern: p, re: re}, nil
}

// peelTerminators strips a trailing run of whitespace, '?' and ';' from the
// query. It reports whether any terminator character was stripped.
func peelTerminators(query string) (string, bool) {
	terminated := false
	end := len(query)
	for end > 0 {
		switch query[end-1] {
		case '?', ';':
			terminated = true
			end--
		case ' ', '\t', '\n', '\r':
			end--
		default:
			return query[:end], terminated
		}
	}
	return query[:end], terminated
}

// tokenizeQuery splits the query body into atoms
func tokenizeQuery(name, body string) ([]atom, error) {
	var atoms []atom
	clauses := 0
	inClause := false

	i := 0
	for i < len(body) {
		switch {
		case strings.HasPrefix(body[i:], "${"):
			end := strings.Index(body[i:], "}")
			if end < 0 {
				return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: "unterminated capture reference"}
			}
			capture := body[i+2 : i+end]
			if !captureName.MatchString(capture) {
				return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: fmt.Sprintf("invalid capture reference %q", "${"+capture+"}")}
			}
			atoms = append(atoms, atom{kind: atomCapture, text: capture})
			i += end + 1

		case strings.HasPrefix(body[i:], "[["):
			if inClause {
				return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: "optional clauses cannot nest"}
			}
			if clauses == 1 {
				return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: "at most one optional clause is allowed"}
			}
			inClause = true
			clauses++
			atoms = append(atoms, atom{kind: atomClauseOpen})
			i += 2

		case strings.HasPrefix(body[i:], "]]"):
			if !inClause {
				return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: "optional clause closes before it opens"}
			}
			inClause = false
			atoms = append(atoms, atom{kind: atomClauseClose})
			i += 2

		case isSpaceByte(body[i]):
			j := i
			for j < len(body) && isSpaceByte(body[j]) {
				j++
			}
			atoms = append(atoms, atom{kind: atomSpace})
			i = j

		default:
			j := i
			for j < len(body) && !isSpaceByte(body[j]) &&
				!strings.HasPrefix(body[j:], "${") &&
				!strings.HasPrefix(body[j:], "[[") &&
				!strings.HasPrefix(body[j:], "]]") {
				j++
			}
			atoms = append(atoms, atom{kind: atomText, text: body[i:j]})
			i = j
		}
	}

	if inClause {
		return nil, &catalog.LoadError{Pattern: name, Field: "match", Reason: "optional clause never closes"}
	}

	return atoms, nil
}

// emitRegexp renders the atom stream as a regular expression
func emitRegexp(name string, atoms []atom, terminated bool) (string, error) {
	var sb strings.Builder

	for k, a := range atoms {
		switch a.kind {
		case atomText:
			sb.WriteString(regexp.QuoteMeta(a.text))
		case atomSpace:
			if wordNeighbor(atoms, k-1, lastByte) && wordNeighbor(atoms, k+1, firstByte) {
				sb.WriteString(`\s+`)
			} else {
				sb.WriteString(`\s*`)
			}
		case atomCapture:
			fmt.Fprintf(&sb, `(?P<%s>[^\n]*?)`, a.text)
		case atomClauseOpen:
			sb.WriteString(`(?:`)
		case atomClauseClose:
			sb.WriteString(`)?`)
		}
	}

	// A capture with nothing after it has no right fence: the shortest
	// match would always be empty. The terminator class can serve as the
	// fence, but then at least one terminator character must be present.
	if endsWithCapture(atoms) {
		if !terminated {
			return "", &catalog.LoadError{Pattern: name, Field: "match", Reason: "a capture must be followed by literal text or a terminator"}
		}
		sb.WriteString(`[?;]+`)
	} else if terminated {
		sb.WriteString(`[?;]*`)
	}

	return sb.String(), nil
}

// wordNeighbor reports whether the atom at index k is literal text whose
// byte picked by pick is a word character
func wordNeighbor(atoms []atom, k int, pick func(string) byte) bool {
	if k < 0 || k >= len(atoms) {
		return false
	}
	a := atoms[k]
	if a.kind != atomText || a.text == "" {
		return false
	}
	return isWordByte(pick(a.text))
}

// endsWithCapture reports whether the final matched unit is a capture,
// looking through a closing clause marker
func endsWithCapture(atoms []atom) bool {
	for k := len(atoms) - 1; k >= 0; k-- {
		switch atoms[k].kind {
		case atomClauseClose:
			continue
		case atomCapture:
			return true
		default:
			return false
		}
	}
	return false
}

// captureName matches a valid capture reference name
var captureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func firstByte(s string) byte { return s[0] }
func lastByte(s string) byte  { return s[len(s)-1] }

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
