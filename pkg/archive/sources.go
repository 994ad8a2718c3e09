package archive

import (
	"fmt"

	"github.com/karrick/godirwalk"
	log "github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/beam-cloud/unpacker/pkg/common"
)

// expandSources resolves the requested sources into the regular files to
// archive, in discovery order. Directories are walked recursively in lexical
// order and flattened; anything that is neither a file nor a directory is
// reported as a failure instead of aborting the build.
func expandSources(sources []string) ([]string, []*common.EntryError) {
	var files []string
	var failures []*common.EntryError

	for _, source := range sources {
		var stat unix.Stat_t
		if err := unix.Stat(source, &stat); err != nil {
			failures = append(failures, &common.EntryError{Path: source, Err: fmt.Errorf("%w: %w", common.ErrInvalidSource, err)})
			continue
		}

		switch stat.Mode & unix.S_IFMT {
		case unix.S_IFREG:
			files = append(files, source)
		case unix.S_IFDIR:
			walked, walkFailures := walkDirectory(source)
			files = append(files, walked...)
			failures = append(failures, walkFailures...)
		default:
			failures = append(failures, &common.EntryError{Path: source, Err: common.ErrInvalidSource})
		}
	}

	return files, failures
}

func walkDirectory(root string) ([]string, []*common.EntryError) {
	var files []string
	var failures []*common.EntryError

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}

			// Symlinks are followed for files only; linked directories are not descended.
			var stat unix.Stat_t
			if err := unix.Stat(path, &stat); err != nil {
				failures = append(failures, &common.EntryError{Path: path, Err: err})
				return nil
			}

			switch stat.Mode & unix.S_IFMT {
			case unix.S_IFREG:
				files = append(files, path)
			case unix.S_IFDIR:
				log.Debug().Str("path", path).Msg("not following directory symlink")
			default:
				log.Debug().Str("path", path).Msg("skipping special file")
				failures = append(failures, &common.EntryError{Path: path, Err: common.ErrInvalidSource})
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			failures = append(failures, &common.EntryError{Path: path, Err: err})
			return godirwalk.SkipNode
		},
		Unsorted: false,
	})
	if err != nil {
		failures = append(failures, &common.EntryError{Path: root, Err: err})
	}

	return files, failures
}
