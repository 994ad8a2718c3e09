package commands

import (
	"github.com/spf13/cobra"

	"github.com/beam-cloud/unpacker/pkg/unpacker"
)

// NewRootCmd returns the unpackctl command tree. Invoked without a
// subcommand it starts the interactive shell.
func NewRootCmd() *cobra.Command {
	root := newCommandTree()
	root.AddCommand(NewShellCmd())
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return RunShell(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return root
}

// newCommandTree builds the archive commands. The shell builds a fresh tree
// for every line so flag values never leak between invocations; it restores
// the global log level itself.
func newCommandTree() *cobra.Command {
	var (
		logLevel string
		verbose  bool
	)

	root := &cobra.Command{
		Use:           "unpackctl",
		Short:         "Create, list and extract flat file archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				return unpacker.SetLogLevel("debug")
			}
			if cmd.Flags().Changed("log-level") {
				return unpacker.SetLogLevel(logLevel)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		NewCreateCmd(),
		NewListCmd(),
		NewFullUnpackCmd(),
		NewUnpackCmd(),
		NewMetricsCmd(),
	)
	return root
}
