package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	log "github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"github.com/beam-cloud/unpacker/pkg/common"
	"github.com/beam-cloud/unpacker/pkg/metrics"
)

const writeBufferSize = 512 * 1024

type ArchiverOptions struct {
	Verbose     bool
	Sources     []string
	ArchivePath string
	OutputFile  string
	OutputPath  string
	Names       []string
}

type Archiver struct {
}

func NewArchiver() *Archiver {
	return &Archiver{}
}

// Create writes every regular file reachable from opts.Sources into
// opts.OutputFile. Per-source problems are collected in the result. Any
// failure after a record header has been written is fatal, and the records
// written up to that point are left on disk.
func (a *Archiver) Create(opts ArchiverOptions) (*common.BuildResult, error) {
	start := time.Now()

	lockFilePath := fmt.Sprintf("%s.lock", opts.OutputFile)

	// A pre-existing file at the lock path belongs to someone else.
	_, statErr := os.Stat(lockFilePath)
	ownsLockFile := errors.Is(statErr, fs.ErrNotExist)

	fileLock := flock.New(lockFilePath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring lock: %w", common.ErrArchiveIO, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", common.ErrArchiveLocked, opts.OutputFile)
	}
	defer fileLock.Unlock()
	if ownsLockFile {
		defer os.Remove(lockFilePath)
	}

	outFile, err := os.Create(opts.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}
	defer outFile.Close()

	// Neither the archive nor its lock may be archived into itself.
	var exclude []os.FileInfo
	for _, p := range []string{opts.OutputFile, lockFilePath} {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
		}
		exclude = append(exclude, fi)
	}

	writer := bufio.NewWriterSize(outFile, writeBufferSize)
	defer writer.Flush() // Keep whatever prefix was written on a fatal error

	tw := NewWriter(writer)
	result := &common.BuildResult{
		ID:          uuid.New().String(),
		ArchivePath: opts.OutputFile,
	}

	files, failures := expandSources(opts.Sources)
	for _, failure := range failures {
		a.recordFailure(&result.Failures, "create", failure)
	}

	for _, path := range files {
		if opts.Verbose {
			log.Debug().Msgf("Archiving... %s", path)
		}

		entry, err := a.addFile(tw, path, exclude)
		if err != nil {
			var entryErr *common.EntryError
			if errors.As(err, &entryErr) {
				a.recordFailure(&result.Failures, "create", entryErr)
				continue
			}
			return nil, err
		}

		result.Added = append(result.Added, *entry)
		metrics.RecordArchived(entry.Size)
	}

	if err := tw.Flush(); err != nil {
		return nil, err
	}
	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}
	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}

	result.Length = tw.Length()
	metrics.RecordOperation("create", time.Since(start))
	return result, nil
}

// addFile appends one record. Problems detected before the header is written
// are returned as *common.EntryError; anything else leaves the archive
// misframed and must abort the build.
func (a *Archiver) addFile(tw *Writer, path string, exclude []os.FileInfo) (*common.Entry, error) {
	name := filepath.Base(path)
	if err := ValidateName(name); err != nil {
		return nil, &common.EntryError{Path: path, Err: err}
	}
	if err := ValidateEntryPath(name); err != nil {
		return nil, &common.EntryError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &common.EntryError{Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &common.EntryError{Path: path, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return nil, &common.EntryError{Path: path, Err: common.ErrInvalidSource}
	}
	for _, excluded := range exclude {
		if os.SameFile(fi, excluded) {
			return nil, &common.EntryError{Path: path, Err: fmt.Errorf("%w: source is the archive being written", common.ErrInvalidSource)}
		}
	}

	size := fi.Size()
	if size > common.MaxEntrySize {
		return nil, &common.EntryError{Path: path, Err: fmt.Errorf("%w: %d bytes", common.ErrEntryTooLarge, size)}
	}

	if err := tw.WriteHeader(name, size); err != nil {
		return nil, err
	}

	if _, err := io.CopyN(tw, f, size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s shrank while being archived", common.ErrPayloadIncomplete, path)
		}
		if errors.Is(err, common.ErrArchiveIO) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading %s: %w", common.ErrArchiveIO, path, err)
	}

	return &common.Entry{Name: name, Size: size}, nil
}

// List scans every header in the archive without reading any payload.
func (a *Archiver) List(archivePath string) (*common.ListResult, error) {
	start := time.Now()

	af, err := Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer af.Close()

	result := &common.ListResult{
		ID:          uuid.New().String(),
		ArchivePath: archivePath,
	}

	for {
		entry, err := af.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.recordReadFailure(err)
			return nil, err
		}
		result.Entries = append(result.Entries, *entry)
	}

	metrics.RecordListed(int64(len(result.Entries)))
	metrics.RecordSkipped(af.Skipped())
	metrics.RecordOperation("list", time.Since(start))
	return result, nil
}

// ExtractAll writes every record in the archive to opts.OutputPath.
func (a *Archiver) ExtractAll(opts ArchiverOptions) (*common.ExtractResult, error) {
	start := time.Now()

	result, err := a.extract(opts, func(string) bool { return true })
	if err != nil {
		return nil, err
	}

	metrics.RecordOperation("extract", time.Since(start))
	return result, nil
}

type requestedName struct {
	name  string
	found bool
}

// ExtractSelected writes only the records named in opts.Names. Requested
// names that never appear are reported in the result's Missing list; that is
// not an error. When several records share a requested name each one is
// written in archive order, so the last one wins.
func (a *Archiver) ExtractSelected(opts ArchiverOptions) (*common.ExtractResult, error) {
	start := time.Now()

	requested := btree.New(func(i, j interface{}) bool {
		return i.(*requestedName).name < j.(*requestedName).name
	})
	for _, name := range opts.Names {
		requested.Set(&requestedName{name: name})
	}

	result, err := a.extract(opts, func(name string) bool {
		item := requested.Get(&requestedName{name: name})
		if item == nil {
			return false
		}
		item.(*requestedName).found = true
		return true
	})
	if err != nil {
		return nil, err
	}

	if requested.Len() > 0 {
		requested.Ascend(requested.Min(), func(item interface{}) bool {
			req := item.(*requestedName)
			if !req.found {
				result.Missing = append(result.Missing, req.name)
			}
			return true
		})
	}

	metrics.RecordMissing(int64(len(result.Missing)))
	metrics.RecordOperation("unpack", time.Since(start))
	return result, nil
}

func (a *Archiver) extract(opts ArchiverOptions, want func(name string) bool) (*common.ExtractResult, error) {
	af, err := Open(opts.ArchivePath)
	if err != nil {
		return nil, err
	}
	defer af.Close()

	if err := os.MkdirAll(opts.OutputPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating destination directory: %w", common.ErrArchiveIO, err)
	}

	sink := newFileSink(opts.OutputPath)
	result := &common.ExtractResult{
		ID:          uuid.New().String(),
		ArchivePath: opts.ArchivePath,
		OutputPath:  opts.OutputPath,
	}

	for {
		entry, err := af.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			a.recordReadFailure(err)
			return nil, err
		}

		if !want(entry.Name) {
			continue
		}

		if opts.Verbose {
			log.Debug().Msgf("Extracting... %s", entry.Name)
		}

		n, err := sink.write(entry.Name, af)
		if err != nil {
			if errors.Is(err, common.ErrCorruptArchive) || errors.Is(err, common.ErrArchiveIO) {
				a.recordReadFailure(err)
				return nil, err
			}
			a.recordFailure(&result.Failures, "extract", &common.EntryError{Path: entry.Name, Err: err})
			continue
		}

		result.Extracted = append(result.Extracted, *entry)
		metrics.RecordExtracted(n)
	}

	metrics.RecordSkipped(af.Skipped())
	return result, nil
}

func (a *Archiver) recordFailure(failures *[]*common.EntryError, operation string, failure *common.EntryError) {
	log.Debug().Str("path", failure.Path).Err(failure.Err).Msgf("%s: skipping entry", operation)
	*failures = append(*failures, failure)
	metrics.RecordEntryFailure(operation)
}

func (a *Archiver) recordReadFailure(err error) {
	if errors.Is(err, common.ErrCorruptArchive) {
		metrics.RecordCorruptArchive()
	}
}
