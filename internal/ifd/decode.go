package ifd

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	binpkg "github.com/robert-malhotra/go-bioformats/internal/binary"
)

// Limits guarding against corrupt or hostile files.
const (
	MaxDirectories = 1 << 16
	MaxEntries     = 1 << 12
	maxValueBytes  = 1 << 28
)

// File is a decoded tag-directory file.
type File struct {
	Header      *Header
	Directories []*Directory

	reader   *binpkg.Reader
	problems *multierror.Error
}

// Decode reads the header and every directory in the chain.
func Decode(r io.ReaderAt) (*File, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	f := &File{
		Header: h,
		reader: binpkg.NewReader(r, h.ReaderConfig()),
	}

	seen := make(map[uint64]bool)
	next := h.FirstIFD
	for next != 0 {
		if seen[next] {
			return nil, fmt.Errorf("%w: directory chain loops back to offset %d", ErrInvalidDirectory, next)
		}
		if len(f.Directories) >= MaxDirectories {
			return nil, fmt.Errorf("%w: more than %d directories", ErrInvalidDirectory, MaxDirectories)
		}
		seen[next] = true

		d, following, err := f.readDirectory(len(f.Directories), next)
		if err != nil {
			return nil, fmt.Errorf("reading directory %d: %w", len(f.Directories), err)
		}
		f.Directories = append(f.Directories, d)
		next = following
	}

	if len(f.Directories) == 0 {
		return nil, fmt.Errorf("%w: file has no directories", ErrInvalidDirectory)
	}
	return f, nil
}

// Reader returns the binary reader positioned over the file.
func (f *File) Reader() *binpkg.Reader {
	return f.reader
}

// Problems returns the non-fatal entry errors met while decoding, or nil.
func (f *File) Problems() error {
	return f.problems.ErrorOrNil()
}

// readDirectory parses the directory at offset and returns the next offset.
func (f *File) readDirectory(index int, offset uint64) (*Directory, uint64, error) {
	r := f.reader.At(int64(offset))
	count, err := r.ReadCount()
	if err != nil {
		return nil, 0, err
	}
	if count == 0 || count > MaxEntries {
		return nil, 0, fmt.Errorf("%w: %d entries", ErrInvalidDirectory, count)
	}

	d := &Directory{
		Index:        index,
		Offset:       offset,
		entries:      make(map[Tag]*Value, count),
		littleEndian: f.Header.LittleEndian(),
	}

	inline := f.Header.OffsetSize()
	for i := uint64(0); i < count; i++ {
		tag, err := r.ReadUint16()
		if err != nil {
			return nil, 0, err
		}
		typ, err := r.ReadUint16()
		if err != nil {
			return nil, 0, err
		}
		n, err := r.ReadOffset()
		if err != nil {
			return nil, 0, err
		}
		field, err := r.ReadField()
		if err != nil {
			return nil, 0, err
		}

		t := Type(typ)
		size := t.Size()
		if size == 0 {
			f.problems = multierror.Append(f.problems,
				fmt.Errorf("directory %d: %s has unknown type %d", index, Tag(tag), typ))
			continue
		}
		if n > maxValueBytes/uint64(size) {
			f.problems = multierror.Append(f.problems,
				fmt.Errorf("directory %d: %s count %d of %d-byte values is too large", index, Tag(tag), n, size))
			continue
		}
		total := n * uint64(size)

		var raw []byte
		if total <= uint64(inline) {
			raw = field[:total]
		} else {
			at := r.DecodeUint(field)
			raw, err = f.reader.At(int64(at)).ReadBytes(int(total))
			if err != nil {
				f.problems = multierror.Append(f.problems,
					fmt.Errorf("directory %d: reading %s at %d: %w", index, Tag(tag), at, err))
				continue
			}
		}
		d.entries[Tag(tag)] = newValue(t, n, raw, f.Header.ByteOrder)
	}

	next, err := r.ReadOffset()
	if err != nil {
		return nil, 0, err
	}
	return d, next, nil
}
