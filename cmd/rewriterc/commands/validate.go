package commands

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/catalog"
	"gitlab.com/tozd/go/errors"
)

// NewValidateCmd creates a new validate command
func NewValidateCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and compile the pattern catalog without touching any file",
		Long: `Validate proves the catalog is usable before a migration run.
It will:
1. Parse the catalog file (YAML, HCL, TOML, or JSON)
2. Check structure: names, captures, templates, clause markers
3. Compile every pattern's tolerant match query
4. Probe replacements for self-matches and rule cycles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cat, set, err := opts.Catalog(ctx)
			if err != nil {
				var lerr *catalog.LoadError
				if errors.As(err, &lerr) {
					pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(lerr.Error())
				}
				return err
			}

			pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Printfln(
				"catalog %s: %d patterns compile cleanly", cat.Location(), set.Len())

			tableData := pterm.TableData{
				{"#", "Pattern", "Captures", "Match query"},
			}
			for i, m := range set.Matchers() {
				p := m.Pattern()
				tableData = append(tableData, []string{
					strconv.Itoa(i + 1),
					p.Name,
					strings.Join(p.Captures, ", "),
					truncateQuery(p.Match, 60),
				})
			}

			if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
				return errors.Errorf("rendering table: %w", err)
			}

			return nil
		},
	}

	return cmd
}

// truncateQuery folds a match query onto one line and caps its width
func truncateQuery(q string, max int) string {
	q = strings.Join(strings.Fields(q), " ")
	r := []rune(q)
	if len(r) <= max {
		return q
	}
	return string(r[:max-1]) + "…"
}

// TODO(dr.methodical): 🧪 Add tests for load error display
// TODO(dr.methodical): 📝 Add examples of validate usage
