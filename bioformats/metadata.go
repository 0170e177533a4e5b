package bioformats

import (
	"fmt"
	"time"
)

// Pixels is the geometry of one series.
type Pixels struct {
	SizeX, SizeY        int
	SizeZ, SizeC, SizeT int
	PixelType           PixelType
	LittleEndian        bool
	DimensionOrder      string
	Interleaved         bool
	SamplesPerPixel     int
}

// Image holds the descriptive fields of one series.
type Image struct {
	Name            string
	Description     string
	AcquisitionDate time.Time
}

// MetadataStore receives finalized series metadata. For every series,
// SetPixels is called before SetImage.
type MetadataStore interface {
	SetPixels(series int, p Pixels) error
	SetImage(series int, im Image) error
}

// Resetter is implemented by stores that can be cleared before a new file is
// described.
type Resetter interface {
	Reset()
}

type seriesMetadata struct {
	pixels    Pixels
	image     Image
	hasPixels bool
	hasImage  bool
}

// Metadata is an in-memory MetadataStore.
type Metadata struct {
	series []seriesMetadata
}

var _ MetadataStore = (*Metadata)(nil)

func (m *Metadata) grow(series int) error {
	if series < 0 {
		return fmt.Errorf("%w: series %d", ErrOutOfRange, series)
	}
	for len(m.series) <= series {
		m.series = append(m.series, seriesMetadata{})
	}
	return nil
}

// SetPixels records the geometry of a series. It may be set once.
func (m *Metadata) SetPixels(series int, p Pixels) error {
	if err := m.grow(series); err != nil {
		return err
	}
	if m.series[series].hasPixels {
		return fmt.Errorf("%w: pixels of series %d already set", ErrMetadataOrder, series)
	}
	m.series[series].pixels = p
	m.series[series].hasPixels = true
	return nil
}

// SetImage records the descriptive fields of a series whose pixels are set.
func (m *Metadata) SetImage(series int, im Image) error {
	if series < 0 || series >= len(m.series) || !m.series[series].hasPixels {
		return fmt.Errorf("%w: series %d", ErrMetadataOrder, series)
	}
	if m.series[series].hasImage {
		return fmt.Errorf("%w: image of series %d already set", ErrMetadataOrder, series)
	}
	m.series[series].image = im
	m.series[series].hasImage = true
	return nil
}

// Reset discards all series.
func (m *Metadata) Reset() {
	m.series = nil
}

// SeriesCount returns the number of series described.
func (m *Metadata) SeriesCount() int {
	return len(m.series)
}

// Pixels returns the geometry of a series.
func (m *Metadata) Pixels(series int) (Pixels, bool) {
	if series < 0 || series >= len(m.series) || !m.series[series].hasPixels {
		return Pixels{}, false
	}
	return m.series[series].pixels, true
}

// Image returns the descriptive fields of a series.
func (m *Metadata) Image(series int) (Image, bool) {
	if series < 0 || series >= len(m.series) || !m.series[series].hasImage {
		return Image{}, false
	}
	return m.series[series].image, true
}
