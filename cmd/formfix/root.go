package main

import (
	"io"

	"github.com/kwanter/formfix/cmd/formfix/commands"
	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree around shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "formfix",
		Short: "Migrate Blade form templates with ordered, verified rewrite rules",
		Long: `formfix applies an ordered set of rewrite rules to a form template,
keeps a one-time backup, verifies the result against a checklist and
writes the migrated file back in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(o.Debug, cmd.ErrOrStderr())
			ctx := logger.WithContext(cmd.Context())
			ctx = log.NewContext(ctx, log.New(o.Stdout, logger))
			cmd.SetContext(ctx)
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewPlanCmd(o),
		commands.NewVerifyCmd(o),
		commands.NewRulesCmd(o),
		newVersionCmd(o),
	)
	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.RulesFile, "rules", "r", "", "rule-set file (.hcl, .yaml, .json, .toml) or builtin name")
	cmd.PersistentFlags().StringVarP(&o.BaseDir, "base-dir", "C", ".", "directory relative paths are resolved against")
	cmd.PersistentFlags().BoolVar(&o.JSON, "json", false, "print reports as JSON")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool, w io.Writer) zerolog.Logger {
	// console lines carry the user facing output, structured logs stay quiet
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
