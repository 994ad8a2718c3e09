package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beam-cloud/unpacker/pkg/unpacker"
)

func NewCreateCmd() *cobra.Command {
	opts := &unpacker.CreateOptions{}

	cmd := &cobra.Command{
		Use:     "create_archive [sources...]",
		Aliases: []string{"create"},
		Short:   "Create archive with specified files",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sources = append(opts.Sources, args...)
			if len(opts.Sources) == 0 {
				return errors.New("at least one source is required")
			}
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			return runCreate(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Sources, "sources", "s", nil, "Files or directories to archive")
	cmd.Flags().StringVarP(&opts.ArchivePath, "archive", "a", "", "Archive name which is about to be created")
	cmd.MarkFlagRequired("archive")
	return cmd
}

func runCreate(cmd *cobra.Command, opts *unpacker.CreateOptions) error {
	result, err := unpacker.CreateArchive(*opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, entry := range result.Added {
		fmt.Fprintf(out, "Added %s (%d bytes)\n", entry.Name, entry.Size)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "Skipped %s: %v\n", failure.Path, failure.Err)
	}
	fmt.Fprintf(out, "Archive %s has been created successfully (%d file(s), %d bytes).\n",
		opts.ArchivePath, len(result.Added), result.Length)
	return nil
}
