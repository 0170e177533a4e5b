package bioformats

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

// Option configures a Reader.
type Option func(*readerOptions)

// SameFileFunc reports whether two paths name the same underlying file.
type SameFileFunc func(a, b string) bool

// source is an open file the reader decodes from.
type source interface {
	io.ReaderAt
	io.Closer
}

type readerOptions struct {
	logger    zerolog.Logger
	store     MetadataStore
	sameFile  SameFileFunc
	format    string
	charset   *charmap.Charmap
	cacheSize int
	open      func(path string) (source, error)
}

func defaultReaderOptions() *readerOptions {
	return &readerOptions{
		logger:   zerolog.Nop(),
		sameFile: SameFile,
		charset:  charmap.ISO8859_1,
		open: func(path string) (source, error) {
			return os.Open(path)
		},
	}
}

// WithLogger sets the logger for initialization and plane reads.
func WithLogger(l zerolog.Logger) Option {
	return func(o *readerOptions) {
		o.logger = l
	}
}

// WithMetadataStore sends series metadata to store instead of the
// reader's own in-memory Metadata.
func WithMetadataStore(store MetadataStore) Option {
	return func(o *readerOptions) {
		o.store = store
	}
}

// WithSameFile replaces the predicate deciding whether a path refers to the
// file already open.
func WithSameFile(fn SameFileFunc) Option {
	return func(o *readerOptions) {
		if fn != nil {
			o.sameFile = fn
		}
	}
}

// WithFormat skips detection and reads files as the named format
// ("ome-tiff", "imagej" or "tiff").
func WithFormat(name string) Option {
	return func(o *readerOptions) {
		o.format = name
	}
}

// WithCharset sets the character set of non-UTF-8 descriptions.
func WithCharset(cm *charmap.Charmap) Option {
	return func(o *readerOptions) {
		if cm != nil {
			o.charset = cm
		}
	}
}

// WithPlaneCache keeps up to size bytes of decoded planes in memory.
// The cache belongs to the reader and is cleared when a new file is opened.
func WithPlaneCache(size int) Option {
	return func(o *readerOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// SameFile is the default path equivalence: equal cleaned absolute paths, or
// paths that stat to the same file.
func SameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}
