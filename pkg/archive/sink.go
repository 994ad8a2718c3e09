package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/beam-cloud/unpacker/pkg/common"
)

// ValidateEntryPath rejects archive names that would not resolve to a file
// directly inside the destination directory. Archive contents are untrusted.
func ValidateEntryPath(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) ||
		strings.IndexByte(name, 0) >= 0 ||
		!filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", common.ErrPathTraversal, name)
	}
	return nil
}

// fileSink writes extracted payloads into a single flat directory. Each file
// is written to a temp file first and renamed into place, so an interrupted
// payload never leaves a partial file under the entry's name.
type fileSink struct {
	destDir string
}

func newFileSink(destDir string) *fileSink {
	return &fileSink{destDir: destDir}
}

func (s *fileSink) write(name string, r io.Reader) (int64, error) {
	if err := ValidateEntryPath(name); err != nil {
		return 0, err
	}

	destPath := filepath.Join(s.destDir, name)
	tmpPath := filepath.Join(s.destDir, fmt.Sprintf(".unpacker-%s", uuid.New().String()))

	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return n, err
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("rename to %s: %w", destPath, err)
	}

	return n, nil
}
