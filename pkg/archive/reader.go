package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/beam-cloud/unpacker/pkg/common"
)

// Reader walks the records of an archive in file order. Next positions the
// reader at the following record, seeking past any payload the caller did not
// consume; Read returns the current record's payload.
type Reader struct {
	r   io.ReadSeeker
	pos int64
	end int64

	cur *common.Entry
	nb  int64 // unread payload bytes of cur
	hdr [common.HeaderLength]byte

	skipped int64
	err     error // sticky, io.EOF once the archive is exhausted
}

func NewReader(r io.ReadSeeker) (*Reader, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}

	return &Reader{r: r, pos: pos, end: end}, nil
}

// Next returns the next entry. It returns io.EOF when the archive ends exactly
// on a record boundary and an error wrapping common.ErrCorruptArchive when it
// ends inside a header or a header declares more payload than remains.
func (tr *Reader) Next() (*common.Entry, error) {
	if tr.err != nil {
		return nil, tr.err
	}

	entry, err := tr.next()
	if err != nil {
		tr.err = err
		tr.cur = nil
		tr.nb = 0
		return nil, err
	}

	tr.cur = entry
	tr.nb = entry.Size
	return entry, nil
}

func (tr *Reader) next() (*common.Entry, error) {
	if tr.nb > 0 {
		if _, err := tr.r.Seek(tr.nb, io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: skipping payload of %q: %w", common.ErrArchiveIO, tr.cur.Name, err)
		}
		tr.pos += tr.nb
		tr.skipped += tr.nb
		tr.nb = 0
	}

	offset := tr.pos
	n, err := io.ReadFull(tr.r, tr.hdr[:])
	tr.pos += int64(n)
	switch {
	case err == io.EOF:
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: short header at offset %d (%d of %d bytes)", common.ErrCorruptArchive, offset, n, common.HeaderLength)
	case err != nil:
		return nil, fmt.Errorf("%w: reading header at offset %d: %w", common.ErrArchiveIO, offset, err)
	}

	entry, err := DecodeHeader(tr.hdr[:])
	if err != nil {
		return nil, err
	}

	if remaining := tr.end - tr.pos; entry.Size > remaining {
		return nil, fmt.Errorf("%w: entry %q at offset %d declares %d bytes but only %d remain",
			common.ErrCorruptArchive, entry.Name, offset, entry.Size, remaining)
	}

	return entry, nil
}

// Read reads from the current entry's payload. It returns io.EOF at the end
// of the payload.
func (tr *Reader) Read(p []byte) (int, error) {
	if tr.err != nil {
		return 0, tr.err
	}
	if tr.nb == 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > tr.nb {
		p = p[:tr.nb]
	}

	n, err := tr.r.Read(p)
	tr.nb -= int64(n)
	tr.pos += int64(n)

	if err == io.EOF {
		if tr.nb > 0 {
			err = io.ErrUnexpectedEOF
		} else {
			err = nil
		}
	}
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			tr.err = fmt.Errorf("%w: payload of %q truncated", common.ErrCorruptArchive, tr.cur.Name)
		} else {
			tr.err = fmt.Errorf("%w: reading payload of %q: %w", common.ErrArchiveIO, tr.cur.Name, err)
		}
		return n, tr.err
	}
	return n, nil
}

// Skipped returns the number of payload bytes passed over by seeking.
func (tr *Reader) Skipped() int64 {
	return tr.skipped
}

// ArchiveFile is an archive opened from disk for a single read pass.
type ArchiveFile struct {
	*Reader
	file *os.File
}

// Open opens the archive at archivePath. A sequence of entries is only
// restartable by opening the archive again.
func Open(archivePath string) (*ArchiveFile, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrArchiveNotFound, archivePath)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrArchiveIO, err)
	}
	if fi.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrArchiveIO, archivePath)
	}

	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &ArchiveFile{Reader: reader, file: file}, nil
}

func (af *ArchiveFile) Close() error {
	return af.file.Close()
}
