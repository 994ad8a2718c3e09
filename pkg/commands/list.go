package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beam-cloud/unpacker/pkg/unpacker"
)

func NewListCmd() *cobra.Command {
	opts := &unpacker.ListOptions{}

	cmd := &cobra.Command{
		Use:     "list_content",
		Aliases: []string{"list", "ls"},
		Short:   "List archive content",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ArchivePath, "path", "p", "", "Archive path")
	cmd.MarkFlagRequired("path")
	return cmd
}

func runList(cmd *cobra.Command, opts *unpacker.ListOptions) error {
	result, err := unpacker.ListArchive(*opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Empty() {
		fmt.Fprintf(out, "Archive %s is empty.\n", opts.ArchivePath)
		return nil
	}

	for _, entry := range result.Entries {
		fmt.Fprintf(out, "%s\t%d bytes\n", entry.Name, entry.Size)
	}
	return nil
}
