package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/pkg/log"
)

func main() {
	// Create console logger
	console := log.New(os.Stdout, zerolog.InfoLevel)

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "A tool for rewriting legacy source constructs from a pattern catalog",
		Long: `rewriterc finds every occurrence of the legacy constructs described in a
pattern catalog and replaces each one with its canonical form, leaving the
rest of each file byte-for-byte untouched. Rewrites are idempotent: running
the same catalog twice changes nothing the second time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Create root options
	o := newRootOpts(console)

	// Flags are parsed by the time PersistentPreRun fires
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
		o.ConfigPath = configFile
	}

	// Add commands
	rootCmd.AddCommand(
		commands.NewMigrateCmd(o),
		commands.NewCheckCmd(o),
		commands.NewValidateCmd(o),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		console.Errorf("%v", err)
		os.Exit(1)
	}
}

// TODO(dr.methodical): 🧪 Add tests for command line parsing
// TODO(dr.methodical): 🧪 Add tests for context cancellation
