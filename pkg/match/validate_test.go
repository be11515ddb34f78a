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
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/match"
)

func testCtx() context.Context {
	return zerolog.New(os.Stderr).WithContext(context.Background())
}

func TestCompileCatalog(t *testing.T) {
	tests := []struct {
		name        string
		patterns    []catalog.Pattern
		wantErr     bool
		errContains string
	}{
		{
			name: "well_formed_catalog",
			patterns: []catalog.Pattern{
				{
					// Keyed on the legacy marker it removes, so the
					// rewritten text can never match again.
					Name:     "inject_app_handle",
					Match:    "pub async fn ${fn}(${params}dir: State<'_, StoreDir>)",
					Captures: []string{"fn", "params"},
					Replace:  "pub async fn ${fn}(app: AppHandle, ${params})",
				},
				{
					Name:    "canonicalize_path_lookup",
					Match:   "open_store(dir.as_path())",
					Replace: "open_store(&resolve_dir(&app)?)",
				},
			},
		},
		{
			name: "self_rematching_replacement",
			patterns: []catalog.Pattern{
				{
					// Prepends without removing anything it keys on: each
					// run would stack another app handle.
					Name:     "naive_prepend",
					Match:    "pub async fn ${fn}(${params})",
					Captures: []string{"fn", "params"},
					Replace:  "pub async fn ${fn}(app: AppHandle, ${params})",
				},
			},
			wantErr:     true,
			errContains: "re-matches its own pattern",
		},
		{
			name: "replacement_feeds_earlier_pattern",
			patterns: []catalog.Pattern{
				{
					Name:    "retire_new_api",
					Match:   "new_api()",
					Replace: "newest_api()",
				},
				{
					Name:    "retire_old_api",
					Match:   "old_api()",
					Replace: "new_api()",
				},
			},
			wantErr:     true,
			errContains: `re-matches earlier pattern "retire_new_api"`,
		},
		{
			name: "two_pattern_cycle",
			patterns: []catalog.Pattern{
				{
					Name:    "alpha_to_beta",
					Match:   "alpha()",
					Replace: "beta()",
				},
				{
					Name:    "beta_to_alpha",
					Match:   "beta()",
					Replace: "alpha()",
				},
			},
			wantErr:     true,
			errContains: "replacement cycle",
		},
		{
			name: "forward_chain_is_allowed",
			patterns: []catalog.Pattern{
				{
					Name:    "old_to_mid",
					Match:   "old_api()",
					Replace: "mid_api()",
				},
				{
					Name:    "mid_to_new",
					Match:   "mid_api()",
					Replace: "new_api()",
				},
			},
		},
		{
			name: "structural_validation_still_runs",
			patterns: []catalog.Pattern{
				{
					Name:     "bad_template",
					Match:    "fn ${fn}()",
					Captures: []string{"fn"},
					Replace:  "fn ${handler}()",
				},
			},
			wantErr:     true,
			errContains: `references undeclared capture "handler"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := match.CompileCatalog(testCtx(), &catalog.Catalog{Patterns: tt.patterns})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				var lerr *catalog.LoadError
				assert.True(t, errors.As(err, &lerr), "catalog rejection should carry a LoadError")
				return
			}

			require.NoError(t, err)
			require.Equal(t, len(tt.patterns), set.Len())
			for i, m := range set.Matchers() {
				assert.Equal(t, tt.patterns[i].Name, m.Name(), "catalog order must be preserved")
			}
		})
	}
}

func TestCompileCatalogNames(t *testing.T) {
	set, err := match.CompileCatalog(testCtx(), &catalog.Catalog{
		Patterns: []catalog.Pattern{
			{Name: "first", Match: "one()", Replace: "uno()"},
			{Name: "second", Match: "two()", Replace: "dos()"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, set.Names())
}

func TestNewSetSkipsProbing(t *testing.T) {
	// Sets assembled by hand carry no probe guarantees; the pathological
	// pair below compiles fine and is the coordinator cap's problem.
	a, err := match.Compile(catalog.Pattern{Name: "a", Match: "alpha()", Replace: "beta()"})
	require.NoError(t, err)
	b, err := match.Compile(catalog.Pattern{Name: "b", Match: "beta()", Replace: "alpha()"})
	require.NoError(t, err)

	set := match.NewSet(a, b)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a", "b"}, set.Names())
}
