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

// 🔄 Mode selects how many times the catalog sweeps a document.
type Mode int

const (
	// ModeSinglePass runs every pattern exactly once, in catalog order.
	ModeSinglePass Mode = iota
	// ModeFixpoint repeats single passes until one makes no substitutions,
	// or the pass cap is hit.
	ModeFixpoint
)

func (m Mode) String() string {
	switch m {
	case ModeSinglePass:
		return "single-pass"
	case ModeFixpoint:
		return "fixpoint"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "single-pass", "singlepass":
		return ModeSinglePass, nil
	case "fixpoint", "fix-point":
		return ModeFixpoint, nil
	default:
		return 0, errors.Errorf("unknown pass mode %q (want single-pass or fixpoint)", s)
	}
}

// 🚦 State is the coordinator's position in its run cycle. StateIdle is
// both the start state and the rest state after a single pass. Fixpoint
// runs end in StateConverged or StateNonConverged.
type State int

const (
	StateIdle State = iota
	StateMatching
	StateSubstituting
	StateConverged
	StateNonConverged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMatching:
		return "matching"
	case StateSubstituting:
		return "substituting"
	case StateConverged:
		return "converged"
	case StateNonConverged:
		return "non-converged"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultMaxPasses caps fixpoint iteration when Options leaves it unset.
const DefaultMaxPasses = 5

// 🔧 Options configures a Coordinator.
type Options struct {
	// Set is the compiled pattern set to run
	Set *match.Set
	// Mode selects single-pass or fixpoint sweeping
	Mode Mode
	// MaxPasses caps fixpoint iteration (0 means DefaultMaxPasses)
	MaxPasses int
}

// 🏭 New creates a coordinator for one document run. A coordinator tracks
// run state and is not safe for concurrent use; make one per document.
func New(opts Options) (*Coordinator, error) {
	if opts.Set == nil {
		return nil, errors.Errorf("pattern set is required")
	}
	if opts.Set.Len() == 0 {
		return nil, errors.Errorf("pattern set is empty")
	}
	if opts.MaxPasses < 0 {
		return nil, errors.Errorf("max passes must not be negative")
	}

	maxPasses := opts.MaxPasses
	if maxPasses == 0 {
		maxPasses = DefaultMaxPasses
	}

	return &Coordinator{
		set:       opts.Set,
		mode:      opts.Mode,
		maxPasses: maxPasses,
		state:     StateIdle,
	}, nil
}

// 🎮 Coordinator drives a pattern set over one document, pass by pass.
type Coordinator struct {
	set       *match.Set
	mode      Mode
	maxPasses int

	state State
	trace []State
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	return c.state
}

// Trace returns every state the coordinator has entered, in order.
func (c *Coordinator) Trace() []State {
	return c.trace
}

func (c *Coordinator) transition(s State) {
	c.state = s
	c.trace = append(c.trace, s)
}

// 📊 Skip records a pattern the coordinator set aside mid-run. The rest of
// the catalog still ran.
type Skip struct {
	Pattern string
	Err     error
}

// 📊 Result is what one coordinator run produced. When no pattern matched
// anywhere, Output is Input's snapshot untouched.
type Result struct {
	Input   *source.Document
	Output  *source.Document
	Counts  map[string]int // substitutions per pattern, summed across passes
	Skipped []Skip
	Passes  int
	State   State
}

// Total returns the number of substitutions across all patterns and passes.
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Changed reports whether the run altered the document's text.
func (r *Result) Changed() bool {
	return r.Output.Text() != r.Input.Text()
}

// ⚠️ NonConvergenceError means a fixpoint run was still making
// substitutions when it hit its pass cap. Partial carries everything the
// run did produce; the caller decides whether to keep or discard it.
type NonConvergenceError struct {
	Passes  int
	Partial *Result
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("rewrite: no fixpoint after %d passes", e.Passes)
}

// 🔄 Run sweeps the document. In single-pass mode every pattern fires once,
// in catalog order, each seeing the text as the previous pattern left it.
// In fixpoint mode the sweep repeats until a full pass makes zero
// substitutions or the pass cap is exceeded.
//
// A pattern whose template fails to bind is skipped for the rest of the
// run and recorded in Result.Skipped; it does not stop the others.
func (c *Coordinator) Run(ctx context.Context, doc *source.Document) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	result := &Result{
		Input:  doc,
		Output: doc,
		Counts: map[string]int{},
	}
	skipped := map[string]bool{}

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		passTotal := 0
		out := result.Output

		for _, m := range c.set.Matchers() {
			if skipped[m.Name()] {
				continue
			}

			c.transition(StateMatching)
			hits := m.FindAll(out)
			if len(hits) == 0 {
				continue
			}

			c.transition(StateSubstituting)
			next, err := Substitute(ctx, out, m, hits)
			if err != nil {
				var bindErr *TemplateBindingError
				if errors.As(err, &bindErr) {
					logger.Warn().
						Str("pattern", m.Name()).
						Str("capture", bindErr.Capture).
						Msg("skipping pattern, template failed to bind")
					result.Skipped = append(result.Skipped, Skip{Pattern: m.Name(), Err: err})
					skipped[m.Name()] = true
					continue
				}
				return nil, err
			}

			out = next
			result.Counts[m.Name()] += len(hits)
			passTotal += len(hits)
		}

		result.Output = out
		result.Passes = pass

		logger.Debug().
			Int("pass", pass).
			Int("substitutions", passTotal).
			Msg("pass complete")

		if c.mode == ModeSinglePass {
			c.transition(StateIdle)
			result.State = StateIdle
			return result, nil
		}

		if passTotal == 0 {
			c.transition(StateConverged)
			result.State = StateConverged
			return result, nil
		}

		if pass >= c.maxPasses {
			c.transition(StateNonConverged)
			result.State = StateNonConverged
			return nil, &NonConvergenceError{Passes: pass, Partial: result}
		}
	}
}
