package archive

import (
	"fmt"
	"io"

	"github.com/beam-cloud/unpacker/pkg/common"
)

// Writer emits records sequentially. Call WriteHeader, then write exactly
// the declared number of payload bytes before the next WriteHeader.
type Writer struct {
	w       io.Writer
	nb      int64 // payload bytes still owed for the current record
	written int64
	err     error // sticky i/o failure
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader finishes the current record and starts a new one. Name and
// size validation failures leave the writer usable.
func (tw *Writer) WriteHeader(name string, size int64) error {
	if err := tw.Flush(); err != nil {
		return err
	}

	header, err := EncodeHeader(name, size)
	if err != nil {
		return err
	}

	n, err := tw.w.Write(header)
	tw.written += int64(n)
	if err != nil {
		tw.err = fmt.Errorf("%w: writing header for %q: %w", common.ErrArchiveIO, name, err)
		return tw.err
	}

	tw.nb = size
	return nil
}

func (tw *Writer) Write(p []byte) (int, error) {
	if tw.err != nil {
		return 0, tw.err
	}

	overflow := int64(len(p)) > tw.nb
	if overflow {
		p = p[:tw.nb]
	}

	n, err := tw.w.Write(p)
	tw.nb -= int64(n)
	tw.written += int64(n)
	if err != nil {
		tw.err = fmt.Errorf("%w: writing payload: %w", common.ErrArchiveIO, err)
		return n, tw.err
	}
	if overflow {
		return n, common.ErrWriteTooLong
	}
	return n, nil
}

// Flush checks that the current record's payload is complete. It does not
// flush the underlying writer.
func (tw *Writer) Flush() error {
	if tw.err != nil {
		return tw.err
	}
	if tw.nb > 0 {
		return fmt.Errorf("%w: %d bytes missing", common.ErrPayloadIncomplete, tw.nb)
	}
	return nil
}

// Length returns the number of bytes handed to the underlying writer.
func (tw *Writer) Length() int64 {
	return tw.written
}
