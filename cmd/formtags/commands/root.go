// Package commands implements the formtags command line.
package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formtags/pkg/config"
	"github.com/goliatone/go-formtags/pkg/logging"
)

type appState struct {
	configPath string
	verbosity  int
	logFile    bool

	unmatched      string
	precedence     string
	requireMatches bool

	cfg *config.Config
}

// NewRootCmd builds the formtags command tree.
func NewRootCmd() *cobra.Command {
	state := &appState{}

	root := &cobra.Command{
		Use:   "formtags",
		Short: "Render forms through matcher based field templates",
		Long: `formtags renders form fixtures and OpenAPI request bodies through
templates whose {% field %} blocks claim fields by name, wildcard or position.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.WithFile(state.configPath))
			if err != nil {
				return err
			}
			applyMatchingFlags(cmd, state, &cfg.Matching)
			state.cfg = cfg

			verbosity := state.verbosity
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
			logging.Setup(logging.Options{
				Verbosity: verbosity,
				File:      state.logFile || cfg.Log.File,
				Output:    cmd.ErrOrStderr(),
			})
			log.Debug().Str("command", cmd.Name()).Str("config", cfg.Source).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&state.configPath, "config", "c", "", "config file (defaults to $XDG_CONFIG_HOME/formtags/config.yaml)")
	flags.CountVarP(&state.verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	flags.BoolVar(&state.logFile, "log-file", false, "also log to the XDG state directory")
	flags.StringVar(&state.unmatched, "unmatched", "", "policy for fields no spec claims: warn, drop or error")
	flags.StringVar(&state.precedence, "precedence", "", "spec precedence: declaration or rank")
	flags.BoolVar(&state.requireMatches, "require-matches", false, "fail when a required matcher claims no field")

	root.AddCommand(newRenderCmd(state))
	root.AddCommand(newMatchCmd(state))
	root.AddCommand(newServeCmd(state))
	return root
}

func applyMatchingFlags(cmd *cobra.Command, state *appState, matching *config.MatchingConfig) {
	flags := cmd.Flags()
	if flags.Changed("unmatched") {
		matching.Unmatched = state.unmatched
	}
	if flags.Changed("precedence") {
		matching.Precedence = state.precedence
	}
	if flags.Changed("require-matches") {
		matching.RequireMatches = state.requireMatches
	}
}
