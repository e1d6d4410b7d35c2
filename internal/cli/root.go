// Package cli provides the Cobra command structure for linestate.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/linestate/internal/config"
	"github.com/dshills/linestate/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globals are the persistent flags and the configuration they select.
type globals struct {
	debug      bool
	configPath string
	color      string

	cfg *config.Config
}

// NewRootCommand creates the root linestate command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "linestate",
		Short: "Incremental lexical state for line-based tokenizers",
		Long: `linestate keeps the per-line state of a grammar tokenizer in step with an
edited document, re-tokenizing only the lines an edit reaches, and answers
"which token covers this position" queries against that state.

The commands load a file, optionally replay LSP didChange notifications
against it, and report the scopes at a position.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			g.cfg = cfg

			logging.SetLevel(cfg.Log.Level)
			if g.debug {
				logging.SetLevel("debug")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "path to config file (.toml, .yaml)")
	rootCmd.PersistentFlags().StringVar(&g.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newScopeCommand(g))
	rootCmd.AddCommand(newReplayCommand(g))
	rootCmd.AddCommand(newGrammarsCommand(g))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
