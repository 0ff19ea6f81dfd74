package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "webrunnerctl",
		Short:         "webrunnerctl drives the webrunner execution engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newTaskCmd(flags))
	cmd.AddCommand(newGoalCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
