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

package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/match"
	"github.com/walteh/rewriterc/pkg/source"
)

// compile is a test helper for patterns that must lower cleanly
func compile(t *testing.T, name, query, replace string, captures ...string) *match.Matcher {
	t.Helper()
	m, err := match.Compile(catalog.Pattern{
		Name:     name,
		Match:    query,
		Captures: captures,
		Replace:  replace,
	})
	require.NoError(t, err, "pattern %q should compile", name)
	return m
}

func TestCompileTolerance(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		text    string
		matches bool
	}{
		{
			name:    "exact_text",
			query:   "open_store(dir.as_path())",
			text:    "let s = open_store(dir.as_path());",
			matches: true,
		},
		{
			name:    "whitespace_run_between_words_may_widen",
			query:   "pub async fn",
			text:    "pub   async\n    fn",
			matches: true,
		},
		{
			name:    "whitespace_between_words_may_not_vanish",
			query:   "pub async fn",
			text:    "pubasyncfn",
			matches: false,
		},
		{
			name:    "whitespace_around_punctuation_may_vanish",
			query:   "join( base , name )",
			text:    "join(base,name)",
			matches: true,
		},
		{
			name:    "line_wrap_at_method_chain",
			query:   "base_dir()\n        .expect(\"missing\")",
			text:    `let d = base_dir().expect("missing");`,
			matches: true,
		},
		{
			name:    "single_line_query_matches_wrapped_source",
			query:   "base_dir() .expect(\"missing\")",
			text:    "let d = base_dir()\n        .expect(\"missing\");",
			matches: true,
		},
		{
			name:    "terminator_absent",
			query:   "store.flush()?;",
			text:    "store.flush()",
			matches: true,
		},
		{
			name:    "terminator_semicolon_only",
			query:   "store.flush()?;",
			text:    "store.flush();",
			matches: true,
		},
		{
			name:    "terminator_full_run",
			query:   "store.flush()",
			text:    "store.flush()?;",
			matches: true,
		},
		{
			name:    "regex_metacharacters_are_literal",
			query:   "map_err(|e| e.to_string())?;",
			text:    "map_err(|e| e.to_string())?;",
			matches: true,
		},
		{
			name:    "dot_is_not_a_wildcard",
			query:   "a.b",
			text:    "aXb",
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compile(t, "tolerance", tt.query, "replaced")
			doc := source.NewDocument(tt.text)
			got := m.FindAll(doc)
			if tt.matches {
				assert.NotEmpty(t, got, "query %q should match %q (expr %s)", tt.query, tt.text, m.Expr())
			} else {
				assert.Empty(t, got, "query %q should not match %q (expr %s)", tt.query, tt.text, m.Expr())
			}
		})
	}
}

func TestCompileOptionalClause(t *testing.T) {
	// The space after [[ is load-bearing: it is what lets the clause match
	// a fallible step wrapped onto its own line.
	query := "let dir = base_dir()[[ .map_err(|e| ${log})?]];\nlet path = dir.join(${file});"
	m := compile(t, "fold_lookup", query, "let path = resolve(&app, ${file})?;", "log", "file")

	t.Run("clause_present", func(t *testing.T) {
		doc := source.NewDocument("let dir = base_dir().map_err(|e| log_err(e))?;\nlet path = dir.join(\"app.db\");")
		got := m.FindAll(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "log_err(e)", got[0].Capture("log"))
		assert.Equal(t, `"app.db"`, got[0].Capture("file"))
	})

	t.Run("clause_absent", func(t *testing.T) {
		doc := source.NewDocument("let dir = base_dir();\nlet path = dir.join(\"app.db\");")
		got := m.FindAll(doc)
		require.Len(t, got, 1)

		_, bound := got[0].CaptureSpan("log")
		assert.False(t, bound, "absent clause leaves its capture unbound")
		assert.Equal(t, "", got[0].Capture("log"), "unbound capture reads as empty")
		assert.Equal(t, `"app.db"`, got[0].Capture("file"))
	})

	t.Run("clause_wrapped_across_lines", func(t *testing.T) {
		doc := source.NewDocument("let dir = base_dir()\n    .map_err(|e| log_err(e))?;\nlet path = dir.join(\"app.db\");")
		got := m.FindAll(doc)
		require.Len(t, got, 1, "wrapped rendering should still match (expr %s)", m.Expr())
		assert.Equal(t, "log_err(e)", got[0].Capture("log"))
	})
}

func TestCompileCaptureFence(t *testing.T) {
	t.Run("trailing_capture_without_fence_is_rejected", func(t *testing.T) {
		_, err := match.Compile(catalog.Pattern{
			Name:    "unfenced",
			Match:   "let x = ${val}",
			Replace: "y",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "followed by literal text or a terminator")
	})

	t.Run("terminator_fences_a_trailing_capture", func(t *testing.T) {
		m := compile(t, "fenced", "let x = ${val};", "let x = wrap(${val});", "val")

		doc := source.NewDocument("let x = compute(1, 2);")
		got := m.FindAll(doc)
		require.Len(t, got, 1)
		assert.Equal(t, "compute(1, 2)", got[0].Capture("val"))

		// Without any terminator there is no right fence, so no match.
		assert.Empty(t, m.FindAll(source.NewDocument("let x = compute(1, 2)")))
	})
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name        string
		pattern     catalog.Pattern
		errContains string
	}{
		{
			name:        "missing_name",
			pattern:     catalog.Pattern{Match: "x", Replace: "y"},
			errContains: "name: is required",
		},
		{
			name:        "missing_match",
			pattern:     catalog.Pattern{Name: "p", Replace: "y"},
			errContains: "match: is required",
		},
		{
			name:        "blank_match",
			pattern:     catalog.Pattern{Name: "p", Match: "   ", Replace: "y"},
			errContains: "match: is required",
		},
		{
			name:        "unterminated_capture",
			pattern:     catalog.Pattern{Name: "p", Match: "a${x", Replace: "y"},
			errContains: "unterminated capture reference",
		},
		{
			name:        "invalid_capture_name",
			pattern:     catalog.Pattern{Name: "p", Match: "a${9bad}z", Replace: "y"},
			errContains: "invalid capture reference",
		},
		{
			name:        "nested_clause",
			pattern:     catalog.Pattern{Name: "p", Match: "a[[b[[c]]d]]e", Replace: "y"},
			errContains: "cannot nest",
		},
		{
			name:        "second_clause",
			pattern:     catalog.Pattern{Name: "p", Match: "a[[b]]c[[d]]e", Replace: "y"},
			errContains: "at most one optional clause",
		},
		{
			name:        "unclosed_clause",
			pattern:     catalog.Pattern{Name: "p", Match: "a[[b", Replace: "y"},
			errContains: "never closes",
		},
		{
			name:        "stray_clause_close",
			pattern:     catalog.Pattern{Name: "p", Match: "a]]b", Replace: "y"},
			errContains: "closes before it opens",
		},
		{
			name:        "terminators_only",
			pattern:     catalog.Pattern{Name: "p", Match: "?;", Replace: "y"},
			errContains: "can match empty text",
		},
		{
			name:        "fully_optional_query",
			pattern:     catalog.Pattern{Name: "p", Match: "[[maybe]]", Replace: "y"},
			errContains: "can match empty text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := match.Compile(tt.pattern)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)

			var lerr *catalog.LoadError
			assert.True(t, errors.As(err, &lerr), "compile failures should carry a LoadError")
		})
	}
}
