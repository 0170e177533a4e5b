package bioformats

import (
	"fmt"
	"strconv"

	"github.com/coocood/freecache"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/robert-malhotra/go-bioformats/internal/layout"
	"github.com/robert-malhotra/go-bioformats/internal/pixel"
)

type state int

const (
	stateUnopened state = iota
	stateOpen
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Reader is a session over one file set. Every method taking a path first
// makes sure that path is the one open, initializing it on first use or when
// a different file is named. A Reader is not safe for concurrent use; give
// each goroutine its own.
type Reader struct {
	opts  *readerOptions
	log   zerolog.Logger
	state state

	path   string
	files  *fileSet
	format format
	series []*Series
	store  MetadataStore
	cache  *freecache.Cache
}

// NewReader creates an unopened reader.
func NewReader(opts ...Option) *Reader {
	o := defaultReaderOptions()
	for _, opt := range opts {
		opt(o)
	}
	r := &Reader{opts: o, log: o.logger}
	if o.cacheSize > 0 {
		r.cache = freecache.NewCache(o.cacheSize)
	}
	return r
}

// Open creates a reader and initializes it on path.
func Open(path string, opts ...Option) (*Reader, error) {
	r := NewReader(opts...)
	if err := r.SetID(path); err != nil {
		return nil, err
	}
	return r, nil
}

// SetID opens path unless it is equivalent to the file already open.
func (r *Reader) SetID(path string) error {
	return r.ensure(path)
}

// Path returns the path of the open file, or "" when nothing is open.
func (r *Reader) Path() string {
	if r.state != stateOpen {
		return ""
	}
	return r.path
}

// ensure is the lazy guard run by every public operation.
func (r *Reader) ensure(path string) error {
	switch r.state {
	case stateClosed:
		return ErrClosed
	case stateOpen:
		if r.opts.sameFile(r.path, path) {
			return nil
		}
		r.log.Debug().Str("from", r.path).Str("to", path).Msg("switching files")
		if err := r.release(); err != nil {
			r.log.Warn().Err(err).Str("path", r.path).Msg("closing previous file")
		}
	}
	return r.initialize(path)
}

// initialize decodes path and everything it references. On failure every
// file opened so far is closed and the reader stays unopened.
func (r *Reader) initialize(path string) (err error) {
	log := r.log.With().Str("path", path).Logger()
	files := newFileSet(r.opts.open, log)
	defer func() {
		if err != nil {
			if cerr := files.close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
			log.Debug().Err(err).Msg("initialization failed")
		}
	}()

	log.Debug().Msg("decoding directories")
	primary, err := files.add(path)
	if err != nil {
		return err
	}
	if len(files.file(primary).tiff.Directories) == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoSeries)
	}

	pc := &parseContext{
		path:    path,
		files:   files,
		primary: primary,
		charset: r.opts.charset,
		log:     log,
	}
	f, err := r.chooseFormat(pc)
	if err != nil {
		return err
	}
	log.Debug().Str("format", f.Name()).Msg("discovering planes")

	layouts, err := f.Parse(pc)
	if err != nil {
		return fmt.Errorf("reading %s as %s: %w", path, f.Name(), err)
	}
	if len(layouts) == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoSeries)
	}

	series := make([]*Series, len(layouts))
	for i, l := range layouts {
		s, err := newSeries(l)
		if err != nil {
			return fmt.Errorf("series %d: %w", i, err)
		}
		log.Info().Int("series", i).Str("shape", s.Shape().String()).
			Str("declared", l.declared.String()).Str("sizes", s.model.Sizes().String()).
			Str("order", s.DimensionOrder()).Msg("reconciled dimensions")
		series[i] = s
	}

	store := r.opts.store
	if store == nil {
		store = &Metadata{}
	} else if rs, ok := store.(Resetter); ok {
		rs.Reset()
	}
	if err := populate(store, series); err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Clear()
	}
	r.path = path
	r.files = files
	r.format = f
	r.series = series
	r.store = store
	r.state = stateOpen
	return nil
}

func (r *Reader) chooseFormat(pc *parseContext) (format, error) {
	if r.opts.format != "" {
		return lookupFormat(r.opts.format)
	}
	return detectFormat(pc), nil
}

// populate sends every series' pixels before its descriptive fields.
func populate(store MetadataStore, series []*Series) error {
	for i, s := range series {
		if err := store.SetPixels(i, s.Pixels()); err != nil {
			return fmt.Errorf("storing pixels of series %d: %w", i, err)
		}
		if err := store.SetImage(i, s.Image()); err != nil {
			return fmt.Errorf("storing image of series %d: %w", i, err)
		}
	}
	return nil
}

// release closes the open file set and returns to unopened.
func (r *Reader) release() error {
	var err error
	if r.files != nil {
		err = r.files.close()
	}
	r.files = nil
	r.format = nil
	r.series = nil
	r.store = nil
	r.path = ""
	r.state = stateUnopened
	return err
}

// Close releases every file. Later operations fail with ErrClosed; closing
// again is a no-op.
func (r *Reader) Close() error {
	if r.state == stateClosed {
		return nil
	}
	err := r.release()
	r.state = stateClosed
	if r.cache != nil {
		r.cache.Clear()
	}
	return err
}

// SeriesCount returns the number of series in path.
func (r *Reader) SeriesCount(path string) (int, error) {
	if err := r.ensure(path); err != nil {
		return 0, err
	}
	return len(r.series), nil
}

// Series returns one series of path.
func (r *Reader) Series(path string, series int) (*Series, error) {
	if err := r.ensure(path); err != nil {
		return nil, err
	}
	return r.seriesAt(series)
}

func (r *Reader) seriesAt(series int) (*Series, error) {
	if series < 0 || series >= len(r.series) {
		return nil, fmt.Errorf("%w: series %d of %d", ErrOutOfRange, series, len(r.series))
	}
	return r.series[series], nil
}

// Index returns the linear plane number of (z, c, t) in a series.
func (r *Reader) Index(path string, series, z, c, t int) (int, error) {
	s, err := r.Series(path, series)
	if err != nil {
		return 0, err
	}
	return s.model.Index(z, c, t)
}

// Coords returns the (z, c, t) of a linear plane number in a series.
func (r *Reader) Coords(path string, series, index int) (z, c, t int, err error) {
	s, err := r.Series(path, series)
	if err != nil {
		return 0, 0, 0, err
	}
	return s.model.Coords(index)
}

// Format returns the name of the format path was read as.
func (r *Reader) Format(path string) (string, error) {
	if err := r.ensure(path); err != nil {
		return "", err
	}
	return r.format.Name(), nil
}

// UsedFiles returns every file path contributes planes from, the opened
// file first.
func (r *Reader) UsedFiles(path string) ([]string, error) {
	if err := r.ensure(path); err != nil {
		return nil, err
	}
	return r.files.paths(), nil
}

// Metadata returns the store populated for path.
func (r *Reader) Metadata(path string) (MetadataStore, error) {
	if err := r.ensure(path); err != nil {
		return nil, err
	}
	return r.store, nil
}

// OpenBytes returns the raw bytes of one plane in the stored sample
// arrangement and byte order.
func (r *Reader) OpenBytes(path string, series, index int) ([]byte, error) {
	s, err := r.Series(path, series)
	if err != nil {
		return nil, err
	}
	return r.readPlane(s, series, index)
}

// OpenRegion returns the w x h rectangle at (x, y) of one plane.
func (r *Reader) OpenRegion(path string, series, index, x, y, w, h int) ([]byte, error) {
	s, err := r.Series(path, series)
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || w < 1 || h < 1 || x+w > s.SizeX() || y+h > s.SizeY() {
		return nil, fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d plane",
			ErrOutOfRange, w, h, x, y, s.SizeX(), s.SizeY())
	}

	if data, ok := r.cached(series, index); ok {
		samplePlanes, elem := 1, s.RGBChannelCount()*s.PixelType().BytesPerPixel()
		if !s.Interleaved() {
			samplePlanes, elem = s.RGBChannelCount(), s.PixelType().BytesPerPixel()
		}
		return layout.Region(data, s.SizeX(), s.SizeY(), samplePlanes, elem, x, y, w, h)
	}

	ref, err := s.plane(index)
	if err != nil {
		return nil, err
	}
	p, err := r.files.plane(ref)
	if err != nil {
		return nil, err
	}
	data, err := p.ReadRegion(x, y, w, h)
	if err != nil {
		return nil, fmt.Errorf("reading plane %d of series %d: %w", index, series, err)
	}
	return data, nil
}

// OpenPlane decodes one plane into dest, a pointer to a numeric slice.
func (r *Reader) OpenPlane(path string, series, index int, dest interface{}) error {
	s, err := r.Series(path, series)
	if err != nil {
		return err
	}
	raw, err := r.readPlane(s, series, index)
	if err != nil {
		return err
	}
	return pixel.Convert(s.PixelType(), pixel.Order(s.LittleEndian()), raw, dest)
}

func (r *Reader) readPlane(s *Series, series, index int) ([]byte, error) {
	if data, ok := r.cached(series, index); ok {
		return data, nil
	}
	ref, err := s.plane(index)
	if err != nil {
		return nil, err
	}
	p, err := r.files.plane(ref)
	if err != nil {
		return nil, err
	}
	data, err := p.Read()
	if err != nil {
		return nil, fmt.Errorf("reading plane %d of series %d: %w", index, series, err)
	}
	if r.cache != nil {
		if err := r.cache.Set(cacheKey(series, index), data, 0); err != nil {
			// planes larger than a cache segment are simply not kept
			r.log.Debug().Err(err).Int("series", series).Int("plane", index).Msg("plane not cached")
		}
	}
	return data, nil
}

func (r *Reader) cached(series, index int) ([]byte, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, err := r.cache.Get(cacheKey(series, index))
	if err != nil {
		return nil, false
	}
	return data, true
}

func cacheKey(series, index int) []byte {
	return []byte(strconv.Itoa(series) + "/" + strconv.Itoa(index))
}
