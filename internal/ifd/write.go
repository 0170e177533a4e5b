package ifd

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/robert-malhotra/go-bioformats/internal/alloc"
	binpkg "github.com/robert-malhotra/go-bioformats/internal/binary"
)

// Field is one entry to encode. Integer and rational types take Uints
// (rationals as numerator, denominator pairs), FLOAT and DOUBLE take Floats,
// ASCII takes Text, and BYTE or UNDEFINED may take Raw instead of Uints.
type Field struct {
	Tag    Tag
	Type   Type
	Uints  []uint64
	Floats []float64
	Text   string
	Raw    []byte
}

func (f Field) count() uint64 {
	switch {
	case f.Type == TypeASCII:
		return uint64(len(f.Text) + 1)
	case f.Raw != nil:
		return uint64(len(f.Raw))
	case f.Type == TypeRational || f.Type == TypeSRational:
		return uint64(len(f.Uints) / 2)
	case f.Type == TypeFloat || f.Type == TypeDouble:
		return uint64(len(f.Floats))
	default:
		return uint64(len(f.Uints))
	}
}

func (f Field) encode(w *binpkg.Writer) []byte {
	if f.Type == TypeASCII {
		return append([]byte(f.Text), 0)
	}
	if f.Raw != nil {
		return f.Raw
	}

	size := f.Type.Size()
	if f.Type == TypeRational || f.Type == TypeSRational {
		size = 4
	}
	if f.Type == TypeFloat || f.Type == TypeDouble {
		out := make([]byte, len(f.Floats)*size)
		for i, v := range f.Floats {
			if f.Type == TypeFloat {
				w.EncodeUint(out[i*4:i*4+4], uint64(math.Float32bits(float32(v))))
			} else {
				w.EncodeUint(out[i*8:i*8+8], math.Float64bits(v))
			}
		}
		return out
	}
	out := make([]byte, len(f.Uints)*size)
	for i, v := range f.Uints {
		w.EncodeUint(out[i*size:(i+1)*size], v)
	}
	return out
}

// Page describes one directory and its sample data.
type Page struct {
	Width, Height   int
	BitsPerSample   int
	SamplesPerPixel int // default 1
	SampleFormat    int // default unsigned
	Planar          int // default chunky
	Compression     int // default none
	RowsPerStrip    int // default Height
	TileWidth       int // tiled when non-zero
	TileHeight      int
	SubfileType     int
	Description     string
	// Blocks holds strips or tiles in storage order.
	Blocks [][]byte
	// Fields are extra entries appended to the generated ones.
	Fields []Field
}

// Options select the flavour of file to encode.
type Options struct {
	ByteOrder binary.ByteOrder
	BigTIFF   bool
}

func (p Page) fields(offsetType Type, offsets, counts []uint64) []Field {
	spp := p.SamplesPerPixel
	if spp == 0 {
		spp = 1
	}
	repeat := func(v int) []uint64 {
		out := make([]uint64, spp)
		for i := range out {
			out[i] = uint64(v)
		}
		return out
	}
	orDefault := func(v, def int) int {
		if v == 0 {
			return def
		}
		return v
	}

	photometric := 1
	if spp == 3 {
		photometric = 2
	}

	fields := []Field{
		{Tag: ImageWidth, Type: TypeLong, Uints: []uint64{uint64(p.Width)}},
		{Tag: ImageLength, Type: TypeLong, Uints: []uint64{uint64(p.Height)}},
		{Tag: BitsPerSample, Type: TypeShort, Uints: repeat(p.BitsPerSample)},
		{Tag: Compression, Type: TypeShort, Uints: []uint64{uint64(orDefault(p.Compression, CompressionNone))}},
		{Tag: PhotometricInterpretation, Type: TypeShort, Uints: []uint64{uint64(photometric)}},
		{Tag: SamplesPerPixel, Type: TypeShort, Uints: []uint64{uint64(spp)}},
		{Tag: PlanarConfiguration, Type: TypeShort, Uints: []uint64{uint64(orDefault(p.Planar, PlanarChunky))}},
		{Tag: SampleFormat, Type: TypeShort, Uints: repeat(orDefault(p.SampleFormat, SampleFormatUint))},
	}
	if p.SubfileType != 0 {
		fields = append(fields, Field{Tag: NewSubfileType, Type: TypeLong, Uints: []uint64{uint64(p.SubfileType)}})
	}
	if p.Description != "" {
		fields = append(fields, Field{Tag: ImageDescription, Type: TypeASCII, Text: p.Description})
	}
	if p.TileWidth > 0 {
		fields = append(fields,
			Field{Tag: TileWidth, Type: TypeLong, Uints: []uint64{uint64(p.TileWidth)}},
			Field{Tag: TileLength, Type: TypeLong, Uints: []uint64{uint64(p.TileHeight)}},
			Field{Tag: TileOffsets, Type: offsetType, Uints: offsets},
			Field{Tag: TileByteCounts, Type: offsetType, Uints: counts},
		)
	} else {
		fields = append(fields,
			Field{Tag: RowsPerStrip, Type: TypeLong, Uints: []uint64{uint64(orDefault(p.RowsPerStrip, p.Height))}},
			Field{Tag: StripOffsets, Type: offsetType, Uints: offsets},
			Field{Tag: StripByteCounts, Type: offsetType, Uints: counts},
		)
	}
	fields = append(fields, p.Fields...)

	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Tag < fields[j].Tag })
	return fields
}

type plannedDirectory struct {
	addr       uint64
	fields     []Field
	payloads   [][]byte
	valueAddrs []uint64
}

// Encode writes a complete TIFF file containing pages in order.
// Returns the total file size.
func Encode(w io.WriterAt, opts Options, pages []Page) (int64, error) {
	if len(pages) == 0 {
		return 0, fmt.Errorf("%w: no pages to encode", ErrInvalidDirectory)
	}
	order := opts.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	h := &Header{ByteOrder: order, BigTIFF: opts.BigTIFF}
	bw := binpkg.NewWriter(w, h.ReaderConfig())

	cfg := h.ReaderConfig()
	offsetType := TypeLong
	if opts.BigTIFF {
		offsetType = TypeLong8
	}
	inline := uint64(cfg.OffsetSize())

	a := alloc.New(uint64(h.Size()))
	planned := make([]plannedDirectory, len(pages))

	for i, p := range pages {
		offsets := make([]uint64, len(p.Blocks))
		counts := make([]uint64, len(p.Blocks))
		for j, block := range p.Blocks {
			offsets[j] = a.Alloc(uint64(len(block)), fmt.Sprintf("page %d block %d", i, j))
			counts[j] = uint64(len(block))
		}

		fields := p.fields(offsetType, offsets, counts)
		dirSize := uint64(cfg.CountSize() + len(fields)*cfg.EntrySize() + cfg.OffsetSize())
		pd := plannedDirectory{
			addr:       a.Alloc(dirSize, fmt.Sprintf("ifd %d", i)),
			fields:     fields,
			payloads:   make([][]byte, len(fields)),
			valueAddrs: make([]uint64, len(fields)),
		}
		for j, f := range fields {
			pd.payloads[j] = f.encode(bw)
			if uint64(len(pd.payloads[j])) > inline {
				pd.valueAddrs[j] = a.Alloc(uint64(len(pd.payloads[j])), fmt.Sprintf("ifd %d %s", i, f.Tag))
			}
		}
		planned[i] = pd
	}

	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("planning layout: %w", err)
	}

	if err := writeHeader(bw, h, planned[0].addr); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for i, p := range pages {
		pd := planned[i]
		for j, block := range p.Blocks {
			off, _ := pd.blockOffset(j)
			if err := bw.At(int64(off)).WriteBytes(block); err != nil {
				return 0, fmt.Errorf("writing page %d block %d: %w", i, j, err)
			}
		}

		var next uint64
		if i+1 < len(planned) {
			next = planned[i+1].addr
		}
		if err := pd.write(bw.At(int64(pd.addr)), next); err != nil {
			return 0, fmt.Errorf("writing directory %d: %w", i, err)
		}
	}

	return int64(a.End()), nil
}

// blockOffset finds the planned address of the j-th strip or tile.
func (pd plannedDirectory) blockOffset(j int) (uint64, bool) {
	for _, f := range pd.fields {
		if f.Tag == StripOffsets || f.Tag == TileOffsets {
			return f.Uints[j], true
		}
	}
	return 0, false
}

func (pd plannedDirectory) write(w *binpkg.Writer, next uint64) error {
	if err := w.WriteCount(len(pd.fields)); err != nil {
		return err
	}

	inline := w.Config().OffsetSize()
	for j, f := range pd.fields {
		if err := w.WriteUint16(uint16(f.Tag)); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(f.Type)); err != nil {
			return err
		}
		if err := w.WriteOffset(f.count()); err != nil {
			return err
		}

		payload := pd.payloads[j]
		if len(payload) <= inline {
			if err := w.WriteField(payload); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteOffset(pd.valueAddrs[j]); err != nil {
			return err
		}
		if err := w.At(int64(pd.valueAddrs[j])).WriteBytes(payload); err != nil {
			return err
		}
	}
	return w.WriteOffset(next)
}

func writeHeader(w *binpkg.Writer, h *Header, first uint64) error {
	mark := LittleEndianMark
	if !h.LittleEndian() {
		mark = BigEndianMark
	}
	if err := w.WriteBytes(mark); err != nil {
		return err
	}
	if !h.BigTIFF {
		if err := w.WriteUint16(MagicClassic); err != nil {
			return err
		}
		return w.WriteUint32(uint32(first))
	}
	if err := w.WriteUint16(MagicBigTIFF); err != nil {
		return err
	}
	if err := w.WriteUint16(8); err != nil {
		return err
	}
	if err := w.WriteUint16(0); err != nil {
		return err
	}
	return w.WriteUint64(first)
}
