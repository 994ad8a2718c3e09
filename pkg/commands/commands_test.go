package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beam-cloud/unpacker/pkg/common"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newCommandTree()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func TestArchiveCommands(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "b.txt"), []byte("world!"), 0644))
	archivePath := filepath.Join(t.TempDir(), "cmd.archive")

	out, err := executeCommand(t, "create_archive", "-a", archivePath, "-s", srcDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Added a.txt (5 bytes)")
	assert.Contains(t, out, "has been created successfully (2 file(s), 531 bytes)")

	out, err = executeCommand(t, "ls", "-p", archivePath)
	require.NoError(t, err)
	assert.Equal(t, "a.txt\t5 bytes\nb.txt\t6 bytes\n", out)

	destDir := t.TempDir()
	out, err = executeCommand(t, "unpack", "-p", archivePath, "-d", destDir, "-f", "b.txt", "missing.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "File missing.txt was not found in the archive.")
	assert.Contains(t, out, "1 file(s) extracted to "+destDir)

	_, err = os.Stat(filepath.Join(destDir, "a.txt"))
	assert.True(t, os.IsNotExist(err))

	fullDir := t.TempDir()
	out, err = executeCommand(t, "extract", "-p", archivePath, "-d", fullDir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 file(s) extracted to "+fullDir)

	content, err := os.ReadFile(filepath.Join(fullDir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world!", string(content))
}

func TestListEmptyArchiveCommand(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "empty.archive")
	require.NoError(t, os.WriteFile(archivePath, nil, 0644))

	out, err := executeCommand(t, "list_content", "--path", archivePath)
	require.NoError(t, err)
	assert.Equal(t, "Archive "+archivePath+" is empty.\n", out)
}

func TestCommandErrors(t *testing.T) {
	_, err := executeCommand(t, "list_content", "-p", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrArchiveNotFound)

	_, err = executeCommand(t, "create_archive", "-s", t.TempDir())
	assert.Error(t, err)

	_, err = executeCommand(t, "create_archive", "-a", filepath.Join(t.TempDir(), "x.archive"))
	assert.Error(t, err)

	_, err = executeCommand(t, "unpack", "-p", "x", "-d", t.TempDir())
	assert.Error(t, err)

	_, err = executeCommand(t, "metrics", "--format", "xml")
	assert.Error(t, err)
}

func TestMetricsCommand(t *testing.T) {
	out, err := executeCommand(t, "metrics", "--format", "prometheus")
	require.NoError(t, err)
	assert.Contains(t, out, "unpacker_entries_archived_total ")

	out, err = executeCommand(t, "metrics")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))
}

func TestRunShell(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0644))
	archivePath := filepath.Join(t.TempDir(), "shell.archive")

	input := strings.Join([]string{
		"",
		"help",
		"create -a " + archivePath + " -s " + srcDir,
		"list -p " + archivePath,
		"bogus",
		"quit",
		"list -p " + archivePath,
	}, "\n")

	out := new(bytes.Buffer)
	require.NoError(t, RunShell(strings.NewReader(input), out))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Welcome to unpackctl!"))
	assert.Contains(t, text, "Additional commands:")
	assert.Contains(t, text, "has been created successfully")
	assert.Equal(t, 1, strings.Count(text, "a.txt\t5 bytes"))
	assert.Contains(t, text, "Error: unknown command \"bogus\"")
	assert.True(t, strings.HasSuffix(text, "You chose to quit the program. Goodbye!\n"))
}

func TestRunShellEndOfInput(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, RunShell(strings.NewReader("metrics --format prometheus\n"), out))
	assert.Contains(t, out.String(), "unpacker_")
}

func TestRootWithoutArgsStartsShell(t *testing.T) {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetIn(strings.NewReader("exit\n"))
	root.SetOut(out)
	root.SetArgs([]string{})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunShellRestoresLogLevel(t *testing.T) {
	before := zerolog.GlobalLevel()

	input := "--log-level debug metrics --format prometheus\n-v metrics --format prometheus\nquit\n"
	require.NoError(t, RunShell(strings.NewReader(input), new(bytes.Buffer)))

	assert.Equal(t, before, zerolog.GlobalLevel())
}
