package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/migrate"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// pendingDiff is one uncommitted rewrite held for rendering
type pendingDiff struct {
	path   string
	before string
	after  string
}

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		mode      string
		maxPasses int
		showDiff  bool
	)

	cmd := &cobra.Command{
		Use:   "check [file|glob ...]",
		Short: "Preview what migrate would rewrite, without writing anything",
		Long: `Check runs the full migration pipeline against each file and discards
the result. It reports, per file, what a real run would do:
1. Which files would be rewritten, and how many sites per pattern
2. Which rewrites the delimiter balance gate would refuse
3. Which files would not converge under the pass cap`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "check").Logger().WithContext(ctx)

			passMode, err := rewrite.ParseMode(mode)
			if err != nil {
				return err
			}

			// Load catalog
			_, set, err := opts.Catalog(ctx)
			if err != nil {
				return err
			}

			// Expand globs
			files, err := migrate.ResolveFiles(args)
			if err != nil {
				return errors.Errorf("resolving files: %w", err)
			}
			if len(files) == 0 {
				pterm.Warning.Println("no files matched the given paths")
				return nil
			}

			// Create migrator
			mgr := status.New(".", zerolog.Ctx(ctx))
			m, err := migrate.New(migrate.Options{
				Set:       set,
				Files:     mgr,
				Reporter:  mgr,
				Mode:      passMode,
				MaxPasses: maxPasses,
			})
			if err != nil {
				return errors.Errorf("creating migrator: %w", err)
			}

			tableData := pterm.TableData{
				{"File", "Outcome", "Substitutions", "Passes", "Detail"},
			}

			var pending, failed int
			var diffs []pendingDiff
			for _, path := range files {
				out := m.Check(ctx, path)

				detail := out.Reason
				switch {
				case out.Err != nil:
					failed++
					detail = out.Err.Error()
				case out.Status == status.OutcomeRewritten:
					pending++
					detail = patternSummary(out.Counts)
				}

				tableData = append(tableData, []string{
					out.Path,
					out.Status.String(),
					strconv.Itoa(out.Substitutions),
					strconv.Itoa(out.Passes),
					detail,
				})

				if showDiff && out.Status == status.OutcomeRewritten {
					before, err := mgr.ReadFile(ctx, path)
					if err != nil {
						return errors.Errorf("re-reading %s for diff: %w", path, err)
					}
					diffs = append(diffs, pendingDiff{path: path, before: string(before), after: out.Proposed})
				}
			}

			if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
				return errors.Errorf("rendering table: %w", err)
			}

			for _, d := range diffs {
				renderDiff(d)
			}

			switch {
			case failed > 0:
				return errors.Errorf("%d of %d files could not be checked", failed, len(files))
			case pending == 0:
				pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println("nothing to migrate; all files are current")
			default:
				pterm.Info.WithPrefix(pterm.Prefix{Text: "📝"}).Printfln("%d of %d files would be rewritten", pending, len(files))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "fixpoint", "pass mode: single-pass or fixpoint")
	cmd.Flags().IntVar(&maxPasses, "max-passes", rewrite.DefaultMaxPasses, "fixpoint pass cap")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "render a diff of each pending rewrite")

	return cmd
}

// renderDiff prints a colorized inline diff of one pending rewrite
func renderDiff(d pendingDiff) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.before, d.after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	pterm.DefaultSection.Println(d.path)
	fmt.Print(dmp.DiffPrettyText(diffs))
}

// patternSummary renders per-pattern counts as "name×n" pairs, sorted by name
func patternSummary(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s×%d", name, counts[name]))
	}
	return strings.Join(parts, ", ")
}

// TODO(dr.methodical): 🧪 Add tests for diff rendering
// TODO(dr.methodical): 📝 Add examples of check usage
