package ifd

import (
	"encoding/binary"
	"errors"
	"io"

	binpkg "github.com/robert-malhotra/go-bioformats/internal/binary"
)

// Byte order marks found at the start of every TIFF file.
var (
	LittleEndianMark = []byte{'I', 'I'}
	BigEndianMark    = []byte{'M', 'M'}
)

// Magic numbers following the byte order mark.
const (
	MagicClassic = 42
	MagicBigTIFF = 43
)

// Errors
var (
	ErrNotTIFF            = errors.New("not a TIFF file: byte order mark not found")
	ErrUnsupportedVersion = errors.New("unsupported TIFF variant")
	ErrInvalidDirectory   = errors.New("invalid directory structure")
	ErrMissingTag         = errors.New("required tag missing")
)

// Header contains the file-level information needed to walk directories.
type Header struct {
	ByteOrder binary.ByteOrder
	BigTIFF   bool
	FirstIFD  uint64
}

// ReadHeader parses the TIFF header at offset 0.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	mark := make([]byte, 4)
	if n, err := r.ReadAt(mark, 0); n < len(mark) {
		if err == nil || err == io.EOF {
			return nil, ErrNotTIFF
		}
		return nil, err
	}

	h := &Header{}
	switch {
	case mark[0] == LittleEndianMark[0] && mark[1] == LittleEndianMark[1]:
		h.ByteOrder = binary.LittleEndian
	case mark[0] == BigEndianMark[0] && mark[1] == BigEndianMark[1]:
		h.ByteOrder = binary.BigEndian
	default:
		return nil, ErrNotTIFF
	}

	br := binpkg.NewReader(r, binpkg.Config{ByteOrder: h.ByteOrder}).At(2)
	magic, err := br.ReadUint16()
	if err != nil {
		return nil, err
	}

	switch magic {
	case MagicClassic:
		first, err := br.ReadUint32()
		if err != nil {
			return nil, err
		}
		h.FirstIFD = uint64(first)
	case MagicBigTIFF:
		h.BigTIFF = true
		offsetSize, err := br.ReadUint16()
		if err != nil {
			return nil, err
		}
		reserved, err := br.ReadUint16()
		if err != nil {
			return nil, err
		}
		if offsetSize != 8 || reserved != 0 {
			return nil, ErrUnsupportedVersion
		}
		first, err := br.ReadUint64()
		if err != nil {
			return nil, err
		}
		h.FirstIFD = first
	default:
		return nil, ErrNotTIFF
	}

	return h, nil
}

// ReaderConfig returns the binary reader configuration for this file.
func (h *Header) ReaderConfig() binpkg.Config {
	return binpkg.Config{ByteOrder: h.ByteOrder, BigTIFF: h.BigTIFF}
}

// OffsetSize returns the width of offsets in directories (4 or 8).
func (h *Header) OffsetSize() int {
	return h.ReaderConfig().OffsetSize()
}

// Size returns the number of header bytes.
func (h *Header) Size() int {
	if h.BigTIFF {
		return 16
	}
	return 8
}

// LittleEndian reports whether the file is little-endian.
func (h *Header) LittleEndian() bool {
	return h.ByteOrder == binary.LittleEndian
}
