package migrate

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📋 Batch migrates every path with at most jobs transactions in flight.
// Exactly one Outcome comes back per input path, in input order. Only
// context cancellation aborts the group; per-file failures are data in
// the outcomes, not errors.
func (m *migrator) Batch(ctx context.Context, paths []string, jobs int) ([]Outcome, error) {
	logger := zerolog.Ctx(ctx)

	if jobs < 1 {
		jobs = 1
	}

	logger.Debug().
		Int("files", len(paths)).
		Int("jobs", jobs).
		Msg("starting batch migration")

	m.reporter.StartRun(ctx, len(paths))
	defer m.reporter.FinishRun(ctx)

	outcomes := make([]Outcome, len(paths))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = m.Migrate(gctx, path)
			m.reporter.UpdateProgress(gctx, int(processed.Add(1)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("migrating batch: %w", err)
	}

	return outcomes, nil
}

// 🔍 ResolveFiles expands doublestar globs into a deduplicated, sorted list
// of file paths. Plain paths pass through unexpanded so a missing file still
// surfaces as a per-file failure instead of silently matching nothing.
func ResolveFiles(globs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range globs {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding glob %q: %w", pattern, err)
		}
		for _, f := range matches {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}
