package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beam-cloud/unpacker/pkg/common"
)

func TestValidateEntryPath(t *testing.T) {
	valid := []string{"a.txt", ".hidden", "..dots", "name with spaces", "ünïcødé"}
	for _, name := range valid {
		assert.NoError(t, ValidateEntryPath(name), name)
	}

	invalid := []string{"", ".", "..", "../x", "a/b", "/abs", `a\b`, `..\x`, "nul\x00byte"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateEntryPath(name), common.ErrPathTraversal, name)
	}
}

func TestFileSinkWrite(t *testing.T) {
	dest := t.TempDir()
	sink := newFileSink(dest)

	n, err := sink.write("out.txt", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = sink.write("out.txt", strings.NewReader("new"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	content, err := os.ReadFile(filepath.Join(dest, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileSinkRejectsTraversal(t *testing.T) {
	dest := t.TempDir()
	_, err := newFileSink(dest).write("../x", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrPathTraversal)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
