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
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/catalog"
)

// captureRef matches one ${name} reference in a replacement template
var captureRef = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// 🏭 CompileCatalog validates and compiles a full catalog into a Set.
//
// Beyond per-pattern compilation, it probes the catalog for rules that
// break the idempotency contract: each replacement template, instantiated
// with empty captures, must not match its own pattern, any earlier pattern,
// or form a two-pattern cycle. Such catalogs are rejected here, before any
// file is read. Loops that only appear once a replacement combines with
// specific capture content or surrounding text cannot be seen from the
// templates alone; those surface at run time when a fixpoint pass hits
// its cap.
func CompileCatalog(ctx context.Context, cat *catalog.Catalog) (*Set, error) {
	logger := zerolog.Ctx(ctx)

	if err := cat.Validate(); err != nil {
		return nil, err
	}

	matchers := make([]*Matcher, 0, len(cat.Patterns))
	for _, p := range cat.Patterns {
		m, err := Compile(p)
		if err != nil {
			return nil, errors.Errorf("compiling catalog: %w", err)
		}
		logger.Debug().
			Str("pattern", m.Name()).
			Str("expr", m.Expr()).
			Msg("pattern compiled")
		matchers = append(matchers, m)
	}

	if err := probeReplacements(matchers); err != nil {
		return nil, errors.Errorf("compiling catalog: %w", err)
	}

	return &Set{matchers: matchers}, nil
}

// probeReplacements instantiates every replacement template with empty
// captures and checks it against the compiled matchers
func probeReplacements(matchers []*Matcher) error {
	probes := make([]string, len(matchers))
	for i, m := range matchers {
		probes[i] = captureRef.ReplaceAllString(m.pattern.Replace, "")
	}

	for i, m := range matchers {
		if m.re.MatchString(probes[i]) {
			return &catalog.LoadError{
				Pattern: m.Name(),
				Field:   "replace",
				Reason:  "replacement re-matches its own pattern, so repeated runs would stack rewrites",
			}
		}

		for j := 0; j < i; j++ {
			if matchers[j].re.MatchString(probes[i]) {
				return &catalog.LoadError{
					Pattern: m.Name(),
					Field:   "replace",
					Reason:  fmt.Sprintf("replacement re-matches earlier pattern %q", matchers[j].Name()),
				}
			}
		}

		for j := i + 1; j < len(matchers); j++ {
			if matchers[j].re.MatchString(probes[i]) && m.re.MatchString(probes[j]) {
				return &catalog.LoadError{
					Pattern: m.Name(),
					Field:   "replace",
					Reason:  fmt.Sprintf("replacement cycle with pattern %q", matchers[j].Name()),
				}
			}
		}
	}

	return nil
}
