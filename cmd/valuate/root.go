package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/valuator/pkg/logger"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "valuate",
		Short:         "Estimate the value of a music publishing catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithFormat(cmd.ErrOrStderr(), logger.FormatText); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newEstimateCommand())
	rootCmd.AddCommand(newGenresCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}
