package opts

import (
	"context"
	"sync"

	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/match"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigPath string
	Console    *log.Logger

	mu  sync.Mutex
	cat *catalog.Catalog
	set *match.Set
}

// Catalog loads, validates, and compiles the pattern catalog on first use.
// Later calls reuse the compiled set, so every command in one invocation
// sees the same rules.
func (o *RootOpts) Catalog(ctx context.Context) (*catalog.Catalog, *match.Set, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.set != nil {
		return o.cat, o.set, nil
	}

	cat, err := catalog.Load(ctx, o.ConfigPath)
	if err != nil {
		return nil, nil, errors.Errorf("loading catalog: %w", err)
	}

	set, err := match.CompileCatalog(ctx, cat)
	if err != nil {
		return nil, nil, errors.Errorf("compiling catalog: %w", err)
	}

	o.cat = cat
	o.set = set
	return cat, set, nil
}

// TODO(dr.methodical): 🧪 Add tests for concurrent Catalog calls
// TODO(dr.methodical): 📝 Add examples of option usage
