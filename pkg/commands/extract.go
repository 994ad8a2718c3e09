package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beam-cloud/unpacker/pkg/common"
	"github.com/beam-cloud/unpacker/pkg/unpacker"
)

func NewFullUnpackCmd() *cobra.Command {
	opts := &unpacker.ExtractOptions{}

	cmd := &cobra.Command{
		Use:     "full_unpack",
		Aliases: []string{"extract"},
		Short:   "Extract all the files from an archive",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			result, err := unpacker.ExtractArchive(*opts)
			if err != nil {
				return err
			}
			printExtractResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ArchivePath, "path", "p", "", "Archive path")
	cmd.Flags().StringVarP(&opts.OutputPath, "destination", "d", "", "Destination directory")
	cmd.MarkFlagRequired("path")
	cmd.MarkFlagRequired("destination")
	return cmd
}

func NewUnpackCmd() *cobra.Command {
	opts := &unpacker.ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "unpack [files...]",
		Short: "Extract some specified files from an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = append(opts.Files, args...)
			if len(opts.Files) == 0 {
				return errors.New("at least one file name is required")
			}
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			result, err := unpacker.ExtractFiles(*opts)
			if err != nil {
				return err
			}
			for _, name := range result.Missing {
				fmt.Fprintf(cmd.OutOrStdout(), "File %s was not found in the archive.\n", name)
			}
			printExtractResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ArchivePath, "path", "p", "", "Archive path")
	cmd.Flags().StringArrayVarP(&opts.Files, "files", "f", nil, "Names of the files to extract")
	cmd.Flags().StringVarP(&opts.OutputPath, "destination", "d", "", "Destination directory")
	cmd.MarkFlagRequired("path")
	cmd.MarkFlagRequired("destination")
	return cmd
}

func printExtractResult(cmd *cobra.Command, result *common.ExtractResult) {
	out := cmd.OutOrStdout()
	for _, entry := range result.Extracted {
		fmt.Fprintf(out, "Extracted %s (%d bytes)\n", entry.Name, entry.Size)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "Skipped %s: %v\n", failure.Path, failure.Err)
	}
	fmt.Fprintf(out, "%d file(s) extracted to %s.\n", len(result.Extracted), result.OutputPath)
}
