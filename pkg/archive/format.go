package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beam-cloud/unpacker/pkg/common"
)

// ValidateName checks that name can be stored in a header without loss.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", common.ErrInvalidName)
	case len(name) > common.HeaderNameLength:
		return fmt.Errorf("%w: %q is %d bytes, limit is %d", common.ErrNameTooLong, name, len(name), common.HeaderNameLength)
	case strings.IndexByte(name, 0) >= 0:
		return fmt.Errorf("%w: %q contains a NUL byte", common.ErrInvalidName, name)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: %q is not valid UTF-8", common.ErrInvalidName, name)
	}
	return nil
}

func EncodeHeader(name string, size int64) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if size < 0 || size > common.MaxEntrySize {
		return nil, fmt.Errorf("%w: %q is %d bytes", common.ErrEntryTooLarge, name, size)
	}

	var header common.Header
	copy(header.Name[:], name)
	header.Size = uint32(size)

	buf := bytes.NewBuffer(make([]byte, 0, common.HeaderLength))
	if err := binary.Write(buf, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeHeader(headerBytes []byte) (*common.Entry, error) {
	if len(headerBytes) != common.HeaderLength {
		return nil, fmt.Errorf("%w: header is %d bytes, want %d", common.ErrCorruptArchive, len(headerBytes), common.HeaderLength)
	}

	header := new(common.Header)
	if err := binary.Read(bytes.NewReader(headerBytes), binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCorruptArchive, err)
	}

	return &common.Entry{
		Name: string(bytes.TrimRight(header.Name[:], "\x00")),
		Size: int64(header.Size),
	}, nil
}
