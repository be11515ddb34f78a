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

package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for catalog parsers
type Parser interface {
	// 📝 Parse decodes a catalog from bytes
	Parse(ctx context.Context, data []byte) (*Catalog, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Pattern is one rewrite rule: a tolerant text query with named captures
// and a replacement template that reinjects them.
//
// The match query is literal text with three tolerances:
//   - whitespace runs match any whitespace run in the source (including
//     line wraps)
//   - a trailing run of '?'/';' matches whatever terminator run the source
//     has, including none
//   - at most one "[[ ... ]]" section marks an optional clause that may be
//     present or absent at the match site
//
// ${name} inside match captures source text (single line, shortest match);
// ${name} inside replace substitutes the captured bytes verbatim. The
// markers "${", "[[" and "]]" are reserved and cannot appear literally.
type Pattern struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Match    string   `json:"match" yaml:"match" toml:"match"`
	Captures []string `json:"captures,omitempty" yaml:"captures,omitempty" toml:"captures"`
	Replace  string   `json:"replace" yaml:"replace" toml:"replace"`
}

// 📚 Catalog is an ordered list of patterns. Order is meaningful: patterns
// apply first-to-last within a pass, and a pattern's replacement must never
// re-match an earlier pattern.
type Catalog struct {
	Patterns []Pattern `json:"patterns" yaml:"patterns" toml:"patterns"`

	location string // file the catalog was loaded from
	checksum string // sha256 of the raw catalog bytes
}

// Location returns the path the catalog was loaded from, if any
func (c *Catalog) Location() string {
	return c.location
}

// Checksum returns the sha256 hex digest of the raw catalog bytes
func (c *Catalog) Checksum() string {
	return c.checksum
}

// ❌ LoadError reports a malformed or contradictory catalog. It is fatal:
// no file is touched when loading fails.
type LoadError struct {
	Pattern string // offending pattern name (or patterns[i] when unnamed)
	Field   string // offending field, when known
	Reason  string
}

func (e *LoadError) Error() string {
	switch {
	case e.Pattern == "":
		return fmt.Sprintf("catalog: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("catalog: pattern %q: %s", e.Pattern, e.Reason)
	default:
		return fmt.Sprintf("catalog: pattern %q: %s: %s", e.Pattern, e.Field, e.Reason)
	}
}

// 🎯 Load loads a catalog from a file. The format is determined by the
// extension (.yaml/.yml, .hcl, .toml, .json); a bare .rewriterc file is
// tried as YAML first, then HCL.
func Load(ctx context.Context, path string) (*Catalog, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading pattern catalog")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading catalog file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var cat *Catalog

	// For .rewriterc files, try both YAML and HCL
	if ext == ".rewriterc" || filepath.Base(path) == ".rewriterc" {
		cat, err = (&YAMLParser{}).Parse(ctx, data)
		if err != nil {
			cat, err = (&HCLParser{}).Parse(ctx, data)
			if err != nil {
				return nil, errors.Errorf("parsing %s as YAML or HCL: %w", path, err)
			}
		}
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("loading catalog: %w", &LoadError{
				Reason: fmt.Sprintf("unsupported catalog format %q", ext),
			})
		}
		cat, err = p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing catalog: %w", err)
		}
	}

	cat.location = path
	sum := sha256.Sum256(data)
	cat.checksum = hex.EncodeToString(sum[:])

	if err := cat.Validate(); err != nil {
		return nil, errors.Errorf("validating catalog: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Int("patterns", len(cat.Patterns)).
		Msg("catalog loaded")

	return cat, nil
}

// captureRef matches one ${name} capture reference
var captureRef = regexp.MustCompile(`\$\{([^}]*)\}`)

// identRef matches a valid capture name
var identRef = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// 🔍 Validate checks the catalog's structure: names, capture declarations,
// template references, and optional-clause markers. Cross-pattern conflicts
// (a replacement re-matching another pattern) need compiled matchers and are
// checked by match.CompileCatalog.
func (c *Catalog) Validate() error {
	if len(c.Patterns) == 0 {
		return &LoadError{Reason: "catalog declares no patterns"}
	}

	seen := make(map[string]bool, len(c.Patterns))
	for i, p := range c.Patterns {
		if p.Name == "" {
			return &LoadError{Pattern: fmt.Sprintf("patterns[%d]", i), Field: "name", Reason: "is required"}
		}
		if seen[p.Name] {
			return &LoadError{Pattern: p.Name, Field: "name", Reason: "duplicates an earlier pattern"}
		}
		seen[p.Name] = true

		if err := p.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// 🔍 Validate checks one pattern's structure. Patterns built in code (not
// loaded from a file) go through the same checks when they are compiled.
func (p *Pattern) Validate() error {
	label := p.Name
	if label == "" {
		return &LoadError{Pattern: "pattern", Field: "name", Reason: "is required"}
	}

	if p.Match == "" {
		return &LoadError{Pattern: label, Field: "match", Reason: "is required"}
	}
	if p.Replace == "" {
		return &LoadError{Pattern: label, Field: "replace", Reason: "is required"}
	}

	if err := p.validateCaptures(label); err != nil {
		return err
	}
	if err := p.validateOptionalClause(label); err != nil {
		return err
	}

	return nil
}

// validateCaptures checks declarations against ${name} references in both
// the match query and the replacement template
func (p *Pattern) validateCaptures(label string) error {
	declared := make(map[string]bool, len(p.Captures))
	for _, name := range p.Captures {
		if !identRef.MatchString(name) {
			return &LoadError{Pattern: label, Field: "captures", Reason: fmt.Sprintf("invalid capture name %q", name)}
		}
		if declared[name] {
			return &LoadError{Pattern: label, Field: "captures", Reason: fmt.Sprintf("capture %q declared twice", name)}
		}
		declared[name] = true
	}

	if err := checkRefs(label, "match", p.Match, declared); err != nil {
		return err
	}
	if err := checkRefs(label, "replace", p.Replace, declared); err != nil {
		return err
	}

	// Every declared capture must be bound by the match query, or the
	// template could never be instantiated deterministically.
	used := make(map[string]bool)
	for _, m := range captureRef.FindAllStringSubmatch(p.Match, -1) {
		used[m[1]] = true
	}
	for _, name := range p.Captures {
		if !used[name] {
			return &LoadError{Pattern: label, Field: "captures", Reason: fmt.Sprintf("capture %q is never bound by match", name)}
		}
	}

	return nil
}

// checkRefs validates every ${...} in text against the declared set
func checkRefs(label, field, text string, declared map[string]bool) error {
	refs := captureRef.FindAllStringSubmatchIndex(text, -1)
	for _, loc := range refs {
		name := text[loc[2]:loc[3]]
		if !identRef.MatchString(name) {
			return &LoadError{Pattern: label, Field: field, Reason: fmt.Sprintf("invalid capture reference %q", "${"+name+"}")}
		}
		if !declared[name] {
			return &LoadError{Pattern: label, Field: field, Reason: fmt.Sprintf("references undeclared capture %q", name)}
		}
	}

	// A "${" that survived reference stripping is unterminated.
	stripped := captureRef.ReplaceAllString(text, "")
	if strings.Contains(stripped, "${") {
		return &LoadError{Pattern: label, Field: field, Reason: "unterminated capture reference"}
	}

	return nil
}

// validateOptionalClause enforces at most one well-formed [[ ... ]] section
// in the match query
func (p *Pattern) validateOptionalClause(label string) error {
	opens := strings.Count(p.Match, "[[")
	closes := strings.Count(p.Match, "]]")

	if opens != closes {
		return &LoadError{Pattern: label, Field: "match", Reason: "unbalanced optional clause markers"}
	}
	if opens > 1 {
		return &LoadError{Pattern: label, Field: "match", Reason: "at most one optional clause is allowed"}
	}
	if opens == 1 && strings.Index(p.Match, "[[") > strings.Index(p.Match, "]]") {
		return &LoadError{Pattern: label, Field: "match", Reason: "optional clause closes before it opens"}
	}

	return nil
}

// 📝 String returns a short description of the pattern
func (p *Pattern) String() string {
	return fmt.Sprintf("%s (%d captures)", p.Name, len(p.Captures))
}
