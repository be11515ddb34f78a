package migrate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/match"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"github.com/walteh/rewriterc/pkg/source"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Migrator defines the main interface for applying a catalog to files
type Migrator interface {
	// Migrate runs one file transaction and reports what it did
	Migrate(ctx context.Context, path string) Outcome
	// Check runs the same transaction without committing anything
	Check(ctx context.Context, path string) Outcome
	// Batch migrates many files with bounded parallelism
	Batch(ctx context.Context, paths []string, jobs int) ([]Outcome, error)
}

// 📄 Outcome is the result of one file transaction
type Outcome struct {
	Path          string
	Status        status.Outcome
	Substitutions int
	Passes        int

	// Counts maps pattern name to substitutions applied in this file
	Counts map[string]int

	// Skipped lists patterns disabled mid-run by template binding errors
	Skipped []rewrite.Skip

	// Reason is set when Status is OutcomeRejected
	Reason string

	// Proposed holds text the run produced but did not commit: dry runs,
	// rejected rewrites, and non-converged partials. The file on disk is
	// never this text.
	Proposed string

	// Err is set when Status is OutcomeFailed
	Err error
}

// 🔧 Options contains configuration for the migrator
type Options struct {
	// Set is the compiled pattern set to apply
	Set *match.Set
	// Files performs all disk access
	Files status.FileManager
	// Reporter tracks per-file outcomes and run progress
	Reporter status.StatusReporter
	// Mode selects single-pass or fixpoint coordination
	Mode rewrite.Mode
	// MaxPasses caps fixpoint iteration, 0 means rewrite.DefaultMaxPasses
	MaxPasses int
	// Backup writes a .bak copy of each file before overwriting it
	Backup bool
}

// 🏭 New creates a new migrator with the given options
func New(opts Options) (Migrator, error) {
	if opts.Set == nil {
		return nil, errors.Errorf("pattern set is required")
	}
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("status reporter is required")
	}
	if opts.MaxPasses < 0 {
		return nil, errors.Errorf("max passes must not be negative, got %d", opts.MaxPasses)
	}
	return &migrator{
		set:       opts.Set,
		files:     opts.Files,
		reporter:  opts.Reporter,
		mode:      opts.Mode,
		maxPasses: opts.MaxPasses,
		backup:    opts.Backup,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// 🎮 migrator implements the Migrator interface
type migrator struct {
	set       *match.Set
	files     status.FileManager
	reporter  status.StatusReporter
	mode      rewrite.Mode
	maxPasses int
	backup    bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// pathLock serializes transactions per path. Different paths migrate
// concurrently, but two writers on one path would race the atomic rename.
func (m *migrator) pathLock(path string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[path]
	if !ok {
		l = &sync.Mutex{}
		m.locks[path] = l
	}
	return l
}

// 📋 Migrate runs one file transaction: read and buffer the whole file,
// coordinate passes over it, gate the result on delimiter balance, then
// commit through a temp file and atomic rename. Every failure lands in
// the Outcome; a broken file never aborts the rest of a batch.
func (m *migrator) Migrate(ctx context.Context, path string) Outcome {
	return m.run(ctx, path, true)
}

// 🔍 Check is the dry-run variant of Migrate. It reports what a commit
// would do, leaves the file untouched, and records nothing.
func (m *migrator) Check(ctx context.Context, path string) Outcome {
	return m.run(ctx, path, false)
}

func (m *migrator) run(ctx context.Context, path string, commit bool) Outcome {
	logger := zerolog.Ctx(ctx)

	lock := m.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	out := Outcome{Path: path}

	content, err := m.files.ReadFile(ctx, path)
	if err != nil {
		out.Status = status.OutcomeFailed
		out.Err = errors.Errorf("reading file: %w", err)
		m.track(ctx, commit, out, nil)
		return out
	}

	coord, err := rewrite.New(rewrite.Options{
		Set:       m.set,
		Mode:      m.mode,
		MaxPasses: m.maxPasses,
	})
	if err != nil {
		out.Status = status.OutcomeFailed
		out.Err = errors.Errorf("building coordinator: %w", err)
		m.track(ctx, commit, out, nil)
		return out
	}

	doc := source.NewDocument(string(content))

	res, err := coord.Run(ctx, doc)
	if err != nil {
		var nonconv *rewrite.NonConvergenceError
		if errors.As(err, &nonconv) {
			out.Status = status.OutcomeRejected
			out.Reason = fmt.Sprintf("no fixpoint after %d passes", nonconv.Passes)
			out.Passes = nonconv.Passes
			if nonconv.Partial != nil {
				out.Counts = nonconv.Partial.Counts
				out.Substitutions = nonconv.Partial.Total()
				out.Skipped = nonconv.Partial.Skipped
				if nonconv.Partial.Output != nil {
					out.Proposed = nonconv.Partial.Output.Text()
				}
			}
			m.track(ctx, commit, out, content)
			return out
		}
		out.Status = status.OutcomeFailed
		out.Err = errors.Errorf("coordinating passes: %w", err)
		m.track(ctx, commit, out, nil)
		return out
	}

	out.Passes = res.Passes
	out.Counts = res.Counts
	out.Substitutions = res.Total()
	out.Skipped = res.Skipped

	if !res.Changed() {
		out.Status = status.OutcomeUnchanged
		m.track(ctx, commit, out, content)
		return out
	}

	newText := res.Output.Text()

	if reason := balanceShift(doc.Text(), newText); reason != "" {
		out.Status = status.OutcomeRejected
		out.Reason = reason
		out.Proposed = newText
		m.track(ctx, commit, out, content)
		logger.Warn().
			Str("path", path).
			Str("reason", reason).
			Msg("rewrite rejected")
		return out
	}

	if !commit {
		out.Status = status.OutcomeRewritten
		out.Proposed = newText
		return out
	}

	if m.backup {
		if err := m.files.BackupFile(ctx, path); err != nil {
			out.Status = status.OutcomeFailed
			out.Err = errors.Errorf("backing up file: %w", err)
			m.track(ctx, commit, out, nil)
			return out
		}
	}

	if err := m.files.WriteFileAtomic(ctx, path, []byte(newText)); err != nil {
		out.Status = status.OutcomeFailed
		out.Err = errors.Errorf("writing file: %w", err)
		m.track(ctx, commit, out, nil)
		return out
	}

	out.Status = status.OutcomeRewritten
	m.track(ctx, commit, out, []byte(newText))

	logger.Debug().
		Str("path", path).
		Int("substitutions", out.Substitutions).
		Int("passes", out.Passes).
		Msg("file rewritten")

	return out
}

// track records the outcome with the status reporter. Dry runs record
// nothing; the reporter describes what a run did, not what it would do.
func (m *migrator) track(ctx context.Context, commit bool, out Outcome, content []byte) {
	if !commit {
		return
	}
	info := status.FileInfo{
		Path:          out.Path,
		Outcome:       out.Status,
		Substitutions: out.Substitutions,
		Passes:        out.Passes,
		Reason:        out.Reason,
		Error:         out.Err,
	}
	if content != nil {
		info.Checksum = status.Checksum(content)
	}
	m.reporter.TrackFile(ctx, out.Path, info)
}

// balance is the net open-minus-close count per delimiter kind
type balance struct {
	paren, brace, bracket int
}

func netBalance(text string) balance {
	var b balance
	for _, r := range text {
		switch r {
		case '(':
			b.paren++
		case ')':
			b.paren--
		case '{':
			b.brace++
		case '}':
			b.brace--
		case '[':
			b.bracket++
		case ']':
			b.bracket--
		}
	}
	return b
}

// balanceShift is the plausibility gate: a committed rewrite must not move
// the net delimiter balance of the document. Returns a reason when it does,
// or "" when the text is still plausible.
func balanceShift(before, after string) string {
	old := netBalance(before)
	now := netBalance(after)
	if old == now {
		return ""
	}

	var parts []string
	if now.paren != old.paren {
		parts = append(parts, fmt.Sprintf("() %+d", now.paren-old.paren))
	}
	if now.brace != old.brace {
		parts = append(parts, fmt.Sprintf("{} %+d", now.brace-old.brace))
	}
	if now.bracket != old.bracket {
		parts = append(parts, fmt.Sprintf("[] %+d", now.bracket-old.bracket))
	}
	return "unbalanced delimiters: " + strings.Join(parts, ", ")
}
