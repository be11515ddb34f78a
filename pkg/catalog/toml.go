package catalog

import (
	"context"
	"strings"

	"github.com/BurntSushi/toml"
	"gitlab.com/tozd/go/errors"
)

// 🔧 TOMLParser implements the Parser interface for TOML files
type TOMLParser struct{}

func init() {
	Register(&TOMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *TOMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".toml")
}

// 📝 Parse decodes a catalog from TOML bytes. Patterns are [[patterns]]
// array tables. Keys that decode into nothing are rejected, matching the
// strictness of the YAML and JSON parsers.
func (p *TOMLParser) Parse(ctx context.Context, data []byte) (*Catalog, error) {
	var cat Catalog
	meta, err := toml.Decode(string(data), &cat)
	if err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.Errorf("parsing TOML: unknown keys: %s", strings.Join(keys, ", "))
	}

	return &cat, nil
}
