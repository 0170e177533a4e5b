package dimension

import (
	"fmt"

	"github.com/robert-malhotra/go-bioformats/internal/pixel"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// Option configures a Model.
type Option func(*Model)

// WithOrderCertain marks the dimension order as declared by the file rather
// than guessed.
func WithOrderCertain(certain bool) Option {
	return func(m *Model) {
		m.orderCertain = certain
	}
}

// WithInterleaved marks the samples of a plane as interleaved.
func WithInterleaved(interleaved bool) Option {
	return func(m *Model) {
		m.interleaved = interleaved
	}
}

// WithRGBChannels sets the number of samples stored per pixel of one plane.
func WithRGBChannels(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.rgbChannels = n
		}
	}
}

// Model is the dimensional description of one series.
type Model struct {
	sizeX, sizeY int
	declared     zct.Sizes
	sizes        zct.Sizes
	order        Order
	orderCertain bool
	pixelType    pixel.Type
	littleEndian bool
	interleaved  bool
	rgbChannels  int

	indexer    *Indexer
	attempted  bool
	reconciled bool
	shape      zct.Shape
	// planes maps linear plane number to physical plane
	planes []int
}

// New creates a model from declared sizes. The declared Z, C and T sizes are
// upper bounds until Reconcile is called.
func New(sizeX, sizeY, sizeZ, sizeC, sizeT int, order string, pt pixel.Type, littleEndian bool, opts ...Option) (*Model, error) {
	o, err := ParseOrder(order)
	if err != nil {
		return nil, err
	}
	if sizeX < 1 || sizeY < 1 {
		return nil, fmt.Errorf("%w: plane size %dx%d", ErrOutOfRange, sizeX, sizeY)
	}
	if !pt.Valid() {
		return nil, fmt.Errorf("unsupported pixel type %v", pt)
	}
	declared := zct.Sizes{Z: sizeZ, C: sizeC, T: sizeT}
	ix, err := NewIndexer(o, declared)
	if err != nil {
		return nil, err
	}

	m := &Model{
		sizeX:        sizeX,
		sizeY:        sizeY,
		declared:     declared,
		sizes:        declared,
		order:        o,
		pixelType:    pt,
		littleEndian: littleEndian,
		rgbChannels:  1,
		indexer:      ix,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Model) SizeX() int             { return m.sizeX }
func (m *Model) SizeY() int             { return m.sizeY }
func (m *Model) SizeZ() int             { return m.sizes.Z }
func (m *Model) SizeC() int             { return m.sizes.C }
func (m *Model) SizeT() int             { return m.sizes.T }
func (m *Model) Sizes() zct.Sizes       { return m.sizes }
func (m *Model) Order() Order           { return m.order }
func (m *Model) DimensionOrder() string { return string(m.order) }
func (m *Model) OrderCertain() bool     { return m.orderCertain }
func (m *Model) PixelType() pixel.Type  { return m.pixelType }
func (m *Model) LittleEndian() bool     { return m.littleEndian }
func (m *Model) Interleaved() bool      { return m.interleaved }
func (m *Model) RGBChannelCount() int   { return m.rgbChannels }
func (m *Model) Reconciled() bool       { return m.reconciled }
func (m *Model) Shape() zct.Shape       { return m.shape }
func (m *Model) Indexer() *Indexer      { return m.indexer }

// Declared returns the sizes the model was created with.
func (m *Model) Declared() zct.Sizes { return m.declared }

// ImageCount returns SizeZ*SizeC*SizeT.
func (m *Model) ImageCount() int { return m.sizes.Count() }

// PlaneBytes returns the size of one full plane.
func (m *Model) PlaneBytes() int {
	return m.sizeX * m.sizeY * m.rgbChannels * m.pixelType.BytesPerPixel()
}

// Index returns the linear plane number of (z, c, t).
func (m *Model) Index(z, c, t int) (int, error) {
	return m.indexer.Index(z, c, t)
}

// Coords returns the (z, c, t) of a linear plane number.
func (m *Model) Coords(index int) (z, c, t int, err error) {
	return m.indexer.Coords(index)
}

// Reconcile places the asserted planes at the declared bounds and shrinks
// the sizes to the smallest consistent extent. It may be called once; a
// failed attempt also consumes the call.
func (m *Model) Reconcile(a zct.Assertions) error {
	if m.attempted {
		return ErrReinitialized
	}
	m.attempted = true

	occ, err := zct.Replay(m.indexer, m.declared, a)
	if err != nil {
		return fmt.Errorf("replaying plane assertions: %w", err)
	}
	res, err := zct.Reduce(occ)
	if err != nil {
		return err
	}

	ix, err := NewIndexer(m.order, res.Sizes)
	if err != nil {
		return err
	}
	planes := make([]int, ix.Count())
	for i := range planes {
		z, c, t, err := ix.Coords(i)
		if err != nil {
			return err
		}
		p, ok := res.Plane(z, c, t)
		if !ok {
			return fmt.Errorf("%w: no plane at (%d, %d, %d)", ErrUnsupportedMapping, z, c, t)
		}
		planes[i] = p
	}

	m.sizes = res.Sizes
	m.indexer = ix
	m.shape = res.Shape
	m.planes = planes
	m.reconciled = true
	return nil
}

// Plane returns the physical plane stored at a linear plane number.
func (m *Model) Plane(index int) (int, error) {
	if !m.reconciled {
		return 0, ErrNotReconciled
	}
	if index < 0 || index >= len(m.planes) {
		return 0, fmt.Errorf("%w: plane %d not in [0, %d)", ErrOutOfRange, index, len(m.planes))
	}
	return m.planes[index], nil
}

// PlaneAt returns the physical plane stored at (z, c, t).
func (m *Model) PlaneAt(z, c, t int) (int, error) {
	if !m.reconciled {
		return 0, ErrNotReconciled
	}
	i, err := m.indexer.Index(z, c, t)
	if err != nil {
		return 0, err
	}
	return m.planes[i], nil
}
