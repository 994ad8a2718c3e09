package common

import "math"

/*

An archive is a plain concatenation of records, with no magic bytes, index or
trailer:

	Name  [256]byte  UTF-8, left-justified, zero padded
	Size  uint32     little-endian payload length
	Data  [Size]byte

The reader locates each header purely from the previous header's Size.

*/

const (
	HeaderNameLength = 256
	HeaderSizeLength = 4
	HeaderLength     = HeaderNameLength + HeaderSizeLength

	MaxEntrySize = math.MaxUint32
)

type Header struct {
	Name [HeaderNameLength]byte
	Size uint32
}
