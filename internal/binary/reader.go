// Package binary reads and writes the fixed-width fields of classic TIFF and
// BigTIFF files.
//
// The two variants differ only in field widths: BigTIFF widens offsets and
// value counts to 8 bytes and directory entry counts from 2 to 8 bytes.
// [Config] carries that choice together with the byte order so callers never
// branch on the variant themselves.
package binary

import (
	"encoding/binary"
	"io"
)

// Config describes the field widths and byte order of one file.
type Config struct {
	ByteOrder binary.ByteOrder
	BigTIFF   bool
}

// DefaultConfig is a little-endian classic TIFF.
func DefaultConfig() Config {
	return Config{ByteOrder: binary.LittleEndian}
}

// OffsetSize is the width of offsets, value counts and inline value fields.
func (c Config) OffsetSize() int {
	if c.BigTIFF {
		return 8
	}
	return 4
}

// EntrySize is the size of one directory entry.
func (c Config) EntrySize() int {
	return 4 + 2*c.OffsetSize()
}

// CountSize is the width of the entry count that opens a directory.
func (c Config) CountSize() int {
	if c.BigTIFF {
		return 8
	}
	return 2
}

// Reader decodes fields from an io.ReaderAt at a private cursor.
type Reader struct {
	r   io.ReaderAt
	cfg Config
	pos int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{r: r, cfg: cfg}
}

// At returns a reader over the same source positioned at offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, cfg: r.cfg, pos: offset}
}

// ReadBytes reads exactly n bytes. A short source yields io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	if read < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.cfg.ByteOrder.Uint16(buf), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.cfg.ByteOrder.Uint32(buf), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.cfg.ByteOrder.Uint64(buf), nil
}

// ReadOffset reads a file offset or an entry value count.
func (r *Reader) ReadOffset() (uint64, error) {
	buf, err := r.ReadBytes(r.cfg.OffsetSize())
	if err != nil {
		return 0, err
	}
	return r.DecodeUint(buf), nil
}

// ReadCount reads the number of entries that opens a directory.
func (r *Reader) ReadCount() (uint64, error) {
	buf, err := r.ReadBytes(r.cfg.CountSize())
	if err != nil {
		return 0, err
	}
	return r.DecodeUint(buf), nil
}

// ReadField reads the inline value field of a directory entry. The result
// holds the value itself or, for larger values, the offset of the value.
func (r *Reader) ReadField() ([]byte, error) {
	return r.ReadBytes(r.cfg.OffsetSize())
}

// DecodeUint decodes an unsigned integer whose width is len(buf).
func (r *Reader) DecodeUint(buf []byte) uint64 {
	return decodeUint(r.cfg.ByteOrder, buf)
}

func decodeUint(order binary.ByteOrder, buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(order.Uint16(buf))
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	}
	var val uint64
	if order == binary.BigEndian {
		for _, b := range buf {
			val = val<<8 | uint64(b)
		}
		return val
	}
	for i := len(buf) - 1; i >= 0; i-- {
		val = val<<8 | uint64(buf[i])
	}
	return val
}

// Config returns the field layout the reader decodes.
func (r *Reader) Config() Config {
	return r.cfg
}

// LittleEndian reports whether the reader decodes little-endian data.
func (r *Reader) LittleEndian() bool {
	return r.cfg.ByteOrder == binary.LittleEndian
}
