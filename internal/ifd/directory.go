package ifd

import (
	"fmt"
	"sort"
)

// Directory is one decoded image file directory.
type Directory struct {
	// Index is the position of the directory in the file's chain.
	Index int
	// Offset is the file offset the directory was read from.
	Offset uint64

	entries      map[Tag]*Value
	littleEndian bool
}

// SampleLayout describes how samples are stored for one directory.
type SampleLayout struct {
	BitsPerSample   int
	SamplesPerPixel int
	Compression     int
	SampleFormat    int
	Planar          int
	LittleEndian    bool
}

// BytesPerSample returns the storage size of one sample, rounding up.
func (l SampleLayout) BytesPerSample() int {
	return (l.BitsPerSample + 7) / 8
}

// Value returns the raw entry for tag, if present.
func (d *Directory) Value(tag Tag) (*Value, bool) {
	v, ok := d.entries[tag]
	return v, ok
}

// Has reports whether the directory contains tag.
func (d *Directory) Has(tag Tag) bool {
	_, ok := d.entries[tag]
	return ok
}

// Tags returns the tags present in ascending order.
func (d *Directory) Tags() []Tag {
	tags := make([]Tag, 0, len(d.entries))
	for t := range d.entries {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Int returns the first integer value of tag. An absent tag yields def, or
// ErrMissingTag when required is set.
func (d *Directory) Int(tag Tag, required bool, def int) (int, error) {
	v, ok := d.entries[tag]
	if !ok || v.Count == 0 {
		if required {
			return 0, fmt.Errorf("directory %d: %w: %s", d.Index, ErrMissingTag, tag)
		}
		return def, nil
	}
	ints, err := v.Ints()
	if err != nil {
		return 0, fmt.Errorf("directory %d: %s: %w", d.Index, tag, err)
	}
	return int(ints[0]), nil
}

// Uints returns all values of tag as unsigned integers.
func (d *Directory) Uints(tag Tag) ([]uint64, error) {
	v, ok := d.entries[tag]
	if !ok {
		return nil, fmt.Errorf("directory %d: %w: %s", d.Index, ErrMissingTag, tag)
	}
	vals, err := v.Uints()
	if err != nil {
		return nil, fmt.Errorf("directory %d: %s: %w", d.Index, tag, err)
	}
	return vals, nil
}

// Text returns an ASCII entry's text.
func (d *Directory) Text(tag Tag) (string, bool) {
	v, ok := d.entries[tag]
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// Width returns ImageWidth.
func (d *Directory) Width() (int, error) {
	return d.Int(ImageWidth, true, 0)
}

// Height returns ImageLength.
func (d *Directory) Height() (int, error) {
	return d.Int(ImageLength, true, 0)
}

// LittleEndian reports the byte order of the file the directory came from.
func (d *Directory) LittleEndian() bool {
	return d.littleEndian
}

// SampleLayout returns the per-directory sample description.
// BitsPerSample and SampleFormat must be uniform across samples.
func (d *Directory) SampleLayout() (SampleLayout, error) {
	layout := SampleLayout{LittleEndian: d.littleEndian}

	var err error
	if layout.SamplesPerPixel, err = d.Int(SamplesPerPixel, false, 1); err != nil {
		return layout, err
	}
	if layout.Compression, err = d.Int(Compression, false, CompressionNone); err != nil {
		return layout, err
	}
	if layout.Planar, err = d.Int(PlanarConfiguration, false, PlanarChunky); err != nil {
		return layout, err
	}

	if layout.BitsPerSample, err = d.uniform(BitsPerSample, 1); err != nil {
		return layout, err
	}
	if layout.SampleFormat, err = d.uniform(SampleFormat, SampleFormatUint); err != nil {
		return layout, err
	}

	if layout.SamplesPerPixel < 1 {
		return layout, fmt.Errorf("directory %d: %w: SamplesPerPixel %d", d.Index, ErrInvalidDirectory, layout.SamplesPerPixel)
	}
	if layout.Planar != PlanarChunky && layout.Planar != PlanarSeparate {
		return layout, fmt.Errorf("directory %d: %w: PlanarConfiguration %d", d.Index, ErrInvalidDirectory, layout.Planar)
	}
	return layout, nil
}

// uniform reads a per-sample tag that must hold one repeated value.
func (d *Directory) uniform(tag Tag, def int) (int, error) {
	v, ok := d.entries[tag]
	if !ok || v.Count == 0 {
		return def, nil
	}
	vals, err := v.Ints()
	if err != nil {
		return 0, fmt.Errorf("directory %d: %s: %w", d.Index, tag, err)
	}
	for _, x := range vals[1:] {
		if x != vals[0] {
			return 0, fmt.Errorf("directory %d: %s varies across samples %v", d.Index, tag, vals)
		}
	}
	return int(vals[0]), nil
}

// Tiled reports whether sample data is stored in tiles rather than strips.
func (d *Directory) Tiled() bool {
	return d.Has(TileOffsets)
}

// TileSize returns TileWidth and TileLength.
func (d *Directory) TileSize() (int, int, error) {
	w, err := d.Int(TileWidth, true, 0)
	if err != nil {
		return 0, 0, err
	}
	h, err := d.Int(TileLength, true, 0)
	if err != nil {
		return 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("directory %d: %w: tile %dx%d", d.Index, ErrInvalidDirectory, w, h)
	}
	return w, h, nil
}

// RowsPerStrip returns the strip height, defaulting to the image height.
func (d *Directory) RowsPerStrip() (int, error) {
	h, err := d.Height()
	if err != nil {
		return 0, err
	}
	rps, err := d.Int(RowsPerStrip, false, h)
	if err != nil {
		return 0, err
	}
	if rps <= 0 || rps > h {
		rps = h
	}
	return rps, nil
}

// Offsets returns the strip or tile offsets.
func (d *Directory) Offsets() ([]uint64, error) {
	if d.Tiled() {
		return d.Uints(TileOffsets)
	}
	return d.Uints(StripOffsets)
}

// ByteCounts returns the strip or tile byte counts.
func (d *Directory) ByteCounts() ([]uint64, error) {
	if d.Tiled() {
		return d.Uints(TileByteCounts)
	}
	return d.Uints(StripByteCounts)
}
