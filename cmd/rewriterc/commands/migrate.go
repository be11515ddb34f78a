package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/migrate"
	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewMigrateCmd creates a new migrate command
func NewMigrateCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		mode      string
		maxPasses int
		backup    bool
		jobs      int
		reportOut string
	)

	cmd := &cobra.Command{
		Use:   "migrate [file|glob ...]",
		Short: "Rewrite cataloged legacy constructs in the given files",
		Long: `Migrate applies the pattern catalog to every file named by the arguments.
It will:
1. Load and compile the catalog, rejecting contradictory rule sets
2. Expand ** globs into a deduplicated file list
3. Rewrite each file's matches, single-pass or to a fixpoint
4. Refuse any rewrite that shifts delimiter balance
5. Commit changed files atomically and report one outcome per file`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "migrate").Logger().WithContext(ctx)

			passMode, err := rewrite.ParseMode(mode)
			if err != nil {
				return err
			}

			// Load catalog
			cat, set, err := opts.Catalog(ctx)
			if err != nil {
				return err
			}

			// Expand globs
			files, err := migrate.ResolveFiles(args)
			if err != nil {
				return errors.Errorf("resolving files: %w", err)
			}
			if len(files) == 0 {
				opts.Console.Warning("no files matched the given paths")
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
				Backup:    backup,
			})
			if err != nil {
				return errors.Errorf("creating migrator: %w", err)
			}

			opts.Console.StartRun(ctx, log.RunOperation{
				Catalog: cat.Location(),
				Mode:    passMode.String(),
				Target:  strings.Join(args, " "),
				Files:   len(files),
			})

			// Run migration
			outcomes, err := m.Batch(ctx, files, jobs)
			if err != nil {
				return errors.Errorf("migrating files: %w", err)
			}

			var rewritten, unchanged, rejected, failed, substitutions int
			for _, out := range outcomes {
				opts.Console.LogFileOutcome(ctx, fileOutcome(out))
				for _, skip := range out.Skipped {
					opts.Console.Warningf("pattern %q skipped in %s: %v", skip.Pattern, out.Path, skip.Err)
				}
				switch out.Status {
				case status.OutcomeRewritten:
					rewritten++
					substitutions += out.Substitutions
				case status.OutcomeUnchanged:
					unchanged++
				case status.OutcomeRejected:
					rejected++
				case status.OutcomeFailed:
					failed++
				}
			}
			opts.Console.EndRun(ctx)

			// Persist report
			if reportOut != "" {
				if err := writeReport(ctx, reportOut, cat, passMode, maxPasses, outcomes); err != nil {
					return errors.Errorf("writing report: %w", err)
				}
				opts.Console.Infof("report written to %s", reportOut)
			}

			if failed > 0 || rejected > 0 {
				return errors.Errorf("%d of %d files did not migrate cleanly (%d rejected, %d failed)",
					rejected+failed, len(outcomes), rejected, failed)
			}

			opts.Console.Successf("%d substitutions across %d files (%d rewritten, %d unchanged)",
				substitutions, len(outcomes), rewritten, unchanged)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "fixpoint", "pass mode: single-pass or fixpoint")
	cmd.Flags().IntVar(&maxPasses, "max-passes", rewrite.DefaultMaxPasses, "fixpoint pass cap")
	cmd.Flags().BoolVar(&backup, "backup", false, "write a .bak copy before overwriting each file")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "max concurrent file transactions")
	cmd.Flags().StringVar(&reportOut, "report", "", "write a JSON run report to this path")

	return cmd
}

// fileOutcome maps one transaction result onto its console line
func fileOutcome(out migrate.Outcome) log.FileOutcome {
	detail := out.Reason
	if out.Err != nil {
		detail = out.Err.Error()
	}
	return log.FileOutcome{
		Path:          out.Path,
		Outcome:       out.Status.String(),
		Substitutions: out.Substitutions,
		Passes:        out.Passes,
		Detail:        detail,
	}
}

// writeReport persists one run's outcomes as a JSON report
func writeReport(ctx context.Context, path string, cat *catalog.Catalog, mode rewrite.Mode, maxPasses int, outcomes []migrate.Outcome) error {
	w, err := report.New(path)
	if err != nil {
		return err
	}

	if maxPasses <= 0 {
		maxPasses = rewrite.DefaultMaxPasses
	}
	w.SetRun(cat.Location(), cat.Checksum(), mode.String(), maxPasses)

	for _, out := range outcomes {
		f := report.FileReport{
			Path:          out.Path,
			Outcome:       out.Status.String(),
			Substitutions: out.Substitutions,
			Passes:        out.Passes,
			Patterns:      out.Counts,
			Reason:        out.Reason,
		}
		if out.Err != nil {
			f.Error = out.Err.Error()
		}
		w.AddFile(f)
	}

	return w.Save(ctx)
}

// TODO(dr.methodical): 🧪 Add tests for exit status on rejected files
// TODO(dr.methodical): 📝 Add examples of migrate usage
