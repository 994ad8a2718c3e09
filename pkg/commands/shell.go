package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shellPrompt = "\nType a command (type 'quit' to quit or 'help' to see available commands): "

func NewShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunShell(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// RunShell reads one command per line from in and dispatches it to the
// command tree until "quit" or end of input. A failing command is reported
// and the loop continues.
func RunShell(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Welcome to unpackctl!")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			fmt.Fprintln(out, "You chose to quit the program. Goodbye!")
			return nil
		case "help", "--help", "-h":
			printShellHelp(out)
			continue
		}

		if err := runShellLine(line, in, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			printShellHelp(out)
		}
	}
}

// runShellLine executes one line against a fresh command tree. -v and
// --log-level only apply to that line.
func runShellLine(line string, in io.Reader, out io.Writer) error {
	level := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(level)

	root := newCommandTree()
	root.SetArgs(strings.Fields(line))
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	return root.Execute()
}

func printShellHelp(out io.Writer) {
	root := newCommandTree()
	root.SetOut(out)
	fmt.Fprint(out, root.UsageString())
	fmt.Fprintln(out, "\nAdditional commands:")
	fmt.Fprintln(out, "  help                Show this help message")
	fmt.Fprintln(out, "  quit                Quit the program")
}
