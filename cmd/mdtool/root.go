package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"multidict/config"
	"multidict/logging"
)

// cfg is bound to the root command's persistent flags.
var cfg *config.Config

func newRootCommand(programName string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Inspect header blocks with an ordered multi-valued mapping",
		Long:          "mdtool parses header blocks into a case-insensitive ordered multidict, reports its memory footprint and runs the engine's self checks.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
	}
	cfg = config.Bind(cmd.PersistentFlags())
	return cmd
}

func setupLogging(cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	logging.SetGlobalLogger(logging.New(cmd.ErrOrStderr(), cfg.LogFormat, level))
	logging.Debug().
		Str("command", cmd.Name()).
		Int("compactMin", cfg.CompactMin).
		Msg("configured")
	return nil
}
