package bioformats

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/layout"
)

// planeRef locates one physical plane: a directory in one file of the set.
type planeRef struct {
	file int
	dir  int
}

type tiffFile struct {
	path   string
	src    source
	tiff   *ifd.File
	planes map[int]*layout.Plane
}

// fileSet holds every file a reader has open. Each file is opened once.
type fileSet struct {
	open  func(string) (source, error)
	log   zerolog.Logger
	files []*tiffFile
	index map[string]int
}

func newFileSet(open func(string) (source, error), log zerolog.Logger) *fileSet {
	return &fileSet{open: open, log: log, index: make(map[string]int)}
}

// add opens and decodes path unless it is already part of the set.
func (fs *fileSet) add(path string) (int, error) {
	key := filepath.Clean(path)
	if i, ok := fs.index[key]; ok {
		return i, nil
	}

	src, err := fs.open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	tf, err := ifd.Decode(src)
	if err != nil {
		if cerr := src.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
		return 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if problems := tf.Problems(); problems != nil {
		fs.log.Warn().Str("path", path).Err(problems).Msg("skipped malformed directory entries")
	}
	fs.log.Debug().Str("path", path).Int("directories", len(tf.Directories)).
		Bool("bigtiff", tf.Header.BigTIFF).Msg("decoded directories")

	fs.files = append(fs.files, &tiffFile{
		path:   path,
		src:    src,
		tiff:   tf,
		planes: make(map[int]*layout.Plane),
	})
	fs.index[key] = len(fs.files) - 1
	return len(fs.files) - 1, nil
}

func (fs *fileSet) file(i int) *tiffFile {
	return fs.files[i]
}

// directory returns the directory behind ref.
func (fs *fileSet) directory(ref planeRef) (*ifd.Directory, error) {
	if ref.file < 0 || ref.file >= len(fs.files) {
		return nil, fmt.Errorf("%w: file %d", ErrOutOfRange, ref.file)
	}
	dirs := fs.files[ref.file].tiff.Directories
	if ref.dir < 0 || ref.dir >= len(dirs) {
		return nil, fmt.Errorf("%w: directory %d of %d in %s", ErrOutOfRange, ref.dir, len(dirs), fs.files[ref.file].path)
	}
	return dirs[ref.dir], nil
}

// plane returns the sample reader for ref, creating it on first use.
func (fs *fileSet) plane(ref planeRef) (*layout.Plane, error) {
	d, err := fs.directory(ref)
	if err != nil {
		return nil, err
	}
	f := fs.files[ref.file]
	if p, ok := f.planes[ref.dir]; ok {
		return p, nil
	}
	p, err := layout.New(d, f.tiff.Reader())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	f.planes[ref.dir] = p
	return p, nil
}

func (fs *fileSet) paths() []string {
	out := make([]string, len(fs.files))
	for i, f := range fs.files {
		out[i] = f.path
	}
	return out
}

// close releases every file exactly once.
func (fs *fileSet) close() error {
	var result *multierror.Error
	for _, f := range fs.files {
		if err := f.src.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing %s: %w", f.path, err))
		}
	}
	fs.files = nil
	fs.index = make(map[string]int)
	return result.ErrorOrNil()
}
