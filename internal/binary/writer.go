package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes fields into an io.WriterAt at a private cursor.
type Writer struct {
	w   io.WriterAt
	cfg Config
	pos int64
}

// NewWriter creates a writer positioned at offset 0.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	return &Writer{w: w, cfg: cfg}
}

// At returns a writer over the same destination positioned at offset.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, cfg: w.cfg, pos: offset}
}

func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

func (w *Writer) WriteUint16(v uint16) error {
	return w.writeUint(uint64(v), 2)
}

func (w *Writer) WriteUint32(v uint32) error {
	return w.writeUint(uint64(v), 4)
}

func (w *Writer) WriteUint64(v uint64) error {
	return w.writeUint(v, 8)
}

// WriteOffset writes a file offset or an entry value count.
func (w *Writer) WriteOffset(v uint64) error {
	return w.writeUint(v, w.cfg.OffsetSize())
}

// WriteCount writes the number of entries that opens a directory.
func (w *Writer) WriteCount(n int) error {
	return w.writeUint(uint64(n), w.cfg.CountSize())
}

// WriteField writes an inline value field, zero padded to the offset width.
func (w *Writer) WriteField(payload []byte) error {
	size := w.cfg.OffsetSize()
	if len(payload) > size {
		return fmt.Errorf("inline value of %d bytes exceeds %d", len(payload), size)
	}
	buf := make([]byte, size)
	copy(buf, payload)
	return w.WriteBytes(buf)
}

func (w *Writer) writeUint(v uint64, n int) error {
	buf := make([]byte, n)
	w.EncodeUint(buf, v)
	return w.WriteBytes(buf)
}

// EncodeUint encodes v into buf using len(buf) bytes.
func (w *Writer) EncodeUint(buf []byte, v uint64) {
	order := w.cfg.ByteOrder
	switch len(buf) {
	case 1:
		buf[0] = uint8(v)
	case 2:
		order.PutUint16(buf, uint16(v))
	case 4:
		order.PutUint32(buf, uint32(v))
	case 8:
		order.PutUint64(buf, v)
	default:
		size := len(buf)
		for i := 0; i < size; i++ {
			if order == binary.BigEndian {
				buf[size-1-i] = byte(v >> (8 * i))
			} else {
				buf[i] = byte(v >> (8 * i))
			}
		}
	}
}

// Config returns the field layout the writer encodes.
func (w *Writer) Config() Config {
	return w.cfg
}

// Buffer is a growable in-memory io.WriterAt and io.ReaderAt.
type Buffer struct {
	buf []byte
}

// WriteAt implements io.WriterAt, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(b.buf) {
		grown := make([]byte, end)
		copy(grown, b.buf)
		b.buf = grown
	}
	return copy(b.buf[off:], p), nil
}

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written so far, including gaps.
func (b *Buffer) Len() int {
	return len(b.buf)
}
