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

package rewrite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/match"
	"github.com/walteh/rewriterc/pkg/source"
	"gitlab.com/tozd/go/errors"
)

// 📝 TemplateBindingError reports a replacement template that references a
// capture its matcher never binds. The pattern is unusable, but only that
// pattern: a coordinator records the skip and keeps running the rest of
// the catalog.
type TemplateBindingError struct {
	Pattern string // pattern name
	Capture string // the capture reference that failed to bind
}

func (e *TemplateBindingError) Error() string {
	return fmt.Sprintf("rewrite: pattern %q: template references capture %q that the matcher never binds", e.Pattern, e.Capture)
}

// 🔄 Apply runs one compiled pattern over one document snapshot: find every
// match, then substitute them all. The returned document is a new snapshot;
// doc itself is never modified. count is the number of sites rewritten.
//
// Matches are located against the snapshot as it was handed in. Substituted
// text is never rescanned within the same application, so a replacement
// that happens to contain match-shaped text cannot trigger a rewrite of a
// rewrite here. (A fixpoint Coordinator will see it on the next pass.)
func Apply(ctx context.Context, doc *source.Document, m *match.Matcher) (*source.Document, int, error) {
	hits := m.FindAll(doc)
	if len(hits) == 0 {
		return doc, 0, nil
	}

	out, err := Substitute(ctx, doc, m, hits)
	if err != nil {
		return nil, 0, err
	}

	return out, len(hits), nil
}

// 🔧 Substitute splices the replacement text into doc at every match site,
// left to right. All spans must come from a FindAll against this exact
// snapshot; matches taken from a superseded snapshot are refused rather
// than silently misapplied.
func Substitute(ctx context.Context, doc *source.Document, m *match.Matcher, hits []match.Match) (*source.Document, error) {
	logger := zerolog.Ctx(ctx)

	text := doc.Text()

	var sb strings.Builder
	sb.Grow(doc.Len())

	last := 0
	for i := range hits {
		hit := &hits[i]
		if !hit.ValidFor(doc) {
			return nil, errors.Errorf("rewrite: pattern %q: match bound to a superseded document snapshot", m.Name())
		}

		span := hit.Span()
		sb.WriteString(text[last:span.Start])

		expanded, err := expandTemplate(m.Pattern().Replace, hit)
		if err != nil {
			return nil, err
		}
		sb.WriteString(expanded)

		last = span.End
	}
	sb.WriteString(text[last:])

	logger.Debug().
		Str("pattern", m.Name()).
		Int("sites", len(hits)).
		Msg("substituted")

	return doc.WithText(sb.String()), nil
}

// expandTemplate renders the replacement template for one match site.
// ${name} references read the capture's matched text. A capture inside an
// absent optional clause reads as empty. A name the matcher never binds is
// a TemplateBindingError.
func expandTemplate(template string, hit *match.Match) (string, error) {
	var sb strings.Builder
	sb.Grow(len(template))

	rest := template
	for {
		open := strings.Index(rest, "${")
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:open])
		rest = rest[open:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", &TemplateBindingError{Pattern: hit.PatternName(), Capture: rest}
		}

		name := rest[2:end]
		if !hit.HasCapture(name) {
			return "", &TemplateBindingError{Pattern: hit.PatternName(), Capture: name}
		}
		sb.WriteString(hit.Capture(name))

		rest = rest[end+1:]
	}
}
