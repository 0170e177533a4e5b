package bioformats

import (
	"time"

	"github.com/robert-malhotra/go-bioformats/internal/dimension"
	"github.com/robert-malhotra/go-bioformats/internal/pixel"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// PixelType is the storage type of one sample.
type PixelType = pixel.Type

// Pixel types
const (
	Int8    = pixel.Int8
	Uint8   = pixel.Uint8
	Int16   = pixel.Int16
	Uint16  = pixel.Uint16
	Int32   = pixel.Int32
	Uint32  = pixel.Uint32
	Float32 = pixel.Float32
	Float64 = pixel.Float64
)

// Shape is the occupancy pattern a series was reconciled from.
type Shape = zct.Shape

// seriesLayout is what a format front end discovers about one series before
// reconciliation.
type seriesLayout struct {
	name        string
	description string
	acquired    time.Time

	sizeX, sizeY int
	declared     zct.Sizes
	order        string
	orderCertain bool
	pixelType    pixel.Type
	littleEndian bool
	samples      int
	interleaved  bool

	// planes are the physical planes; records refer to them by position
	planes  []planeRef
	records []zct.Record
}

// Series is one reconciled image stack.
type Series struct {
	model  *dimension.Model
	planes []planeRef
	image  Image
}

func newSeries(l seriesLayout) (*Series, error) {
	m, err := dimension.New(l.sizeX, l.sizeY, l.declared.Z, l.declared.C, l.declared.T,
		l.order, l.pixelType, l.littleEndian,
		dimension.WithOrderCertain(l.orderCertain),
		dimension.WithInterleaved(l.interleaved),
		dimension.WithRGBChannels(l.samples),
	)
	if err != nil {
		return nil, err
	}
	if err := m.Reconcile(zct.Assertions{Planes: len(l.planes), Records: l.records}); err != nil {
		return nil, err
	}
	return &Series{
		model:  m,
		planes: l.planes,
		image: Image{
			Name:            l.name,
			Description:     l.description,
			AcquisitionDate: l.acquired,
		},
	}, nil
}

func (s *Series) SizeX() int { return s.model.SizeX() }
func (s *Series) SizeY() int { return s.model.SizeY() }
func (s *Series) SizeZ() int { return s.model.SizeZ() }
func (s *Series) SizeC() int { return s.model.SizeC() }
func (s *Series) SizeT() int { return s.model.SizeT() }

// ImageCount returns the number of planes, SizeZ*SizeC*SizeT.
func (s *Series) ImageCount() int { return s.model.ImageCount() }

// DimensionOrder returns the order, e.g. "XYCZT".
func (s *Series) DimensionOrder() string { return s.model.DimensionOrder() }

// OrderCertain reports whether the file declared the dimension order.
func (s *Series) OrderCertain() bool { return s.model.OrderCertain() }

func (s *Series) PixelType() PixelType { return s.model.PixelType() }
func (s *Series) LittleEndian() bool   { return s.model.LittleEndian() }
func (s *Series) Interleaved() bool    { return s.model.Interleaved() }

// RGBChannelCount returns the number of samples stored in each plane.
func (s *Series) RGBChannelCount() int { return s.model.RGBChannelCount() }

// Shape returns the occupancy pattern found during reconciliation.
func (s *Series) Shape() Shape { return s.model.Shape() }

// PlaneBytes returns the byte size of one plane.
func (s *Series) PlaneBytes() int { return s.model.PlaneBytes() }

// Image returns the descriptive fields.
func (s *Series) Image() Image { return s.image }

// Pixels returns the series geometry.
func (s *Series) Pixels() Pixels {
	return Pixels{
		SizeX:           s.SizeX(),
		SizeY:           s.SizeY(),
		SizeZ:           s.SizeZ(),
		SizeC:           s.SizeC(),
		SizeT:           s.SizeT(),
		PixelType:       s.PixelType(),
		LittleEndian:    s.LittleEndian(),
		DimensionOrder:  s.DimensionOrder(),
		Interleaved:     s.Interleaved(),
		SamplesPerPixel: s.RGBChannelCount(),
	}
}

// plane returns the physical plane behind a linear plane number.
func (s *Series) plane(index int) (planeRef, error) {
	p, err := s.model.Plane(index)
	if err != nil {
		return planeRef{}, err
	}
	return s.planes[p], nil
}
