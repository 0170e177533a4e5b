package layout

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-bioformats/internal/binary"
	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

// Errors
var (
	ErrUnsupported = errors.New("unsupported sample storage")
	ErrOutOfRange  = errors.New("region out of range")
)

// MaxPlaneBytes bounds the size of a plane, and of one strip or tile, that a
// directory may declare.
const MaxPlaneBytes = 1 << 31

// Kind is the block arrangement of a plane.
type Kind int

const (
	Strips Kind = iota
	Tiles
)

func (k Kind) String() string {
	if k == Tiles {
		return "tiles"
	}
	return "strips"
}

// Plane reads the samples of one directory.
type Plane struct {
	reader *binary.Reader
	kind   Kind

	width, height int
	// elem is the byte size of one pixel within one sample plane
	elem         int
	samplePlanes int

	blockW, blockH int
	across, down   int
	offsets        []uint64
	counts         []uint64
}

// New creates a plane reader for d. The reader must address the file the
// directory was decoded from.
func New(d *ifd.Directory, reader *binary.Reader) (*Plane, error) {
	sl, err := d.SampleLayout()
	if err != nil {
		return nil, err
	}
	if sl.Compression != ifd.CompressionNone {
		return nil, fmt.Errorf("directory %d: %w: compression %d", d.Index, ErrUnsupported, sl.Compression)
	}
	if sl.BitsPerSample%8 != 0 {
		return nil, fmt.Errorf("directory %d: %w: %d bits per sample", d.Index, ErrUnsupported, sl.BitsPerSample)
	}

	p := &Plane{reader: reader, samplePlanes: 1}
	if p.width, err = d.Width(); err != nil {
		return nil, err
	}
	if p.height, err = d.Height(); err != nil {
		return nil, err
	}
	if p.width < 1 || p.height < 1 {
		return nil, fmt.Errorf("directory %d: %w: image %dx%d", d.Index, ifd.ErrInvalidDirectory, p.width, p.height)
	}

	p.elem = sl.BytesPerSample()
	if sl.Planar == ifd.PlanarSeparate {
		p.samplePlanes = sl.SamplesPerPixel
	} else {
		p.elem *= sl.SamplesPerPixel
	}

	if d.Tiled() {
		p.kind = Tiles
		if p.blockW, p.blockH, err = d.TileSize(); err != nil {
			return nil, err
		}
	} else {
		p.kind = Strips
		p.blockW = p.width
		if p.blockH, err = d.RowsPerStrip(); err != nil {
			return nil, err
		}
	}
	if !fits(p.width, p.height, p.elem, p.samplePlanes) || !fits(p.blockW, p.blockH, p.elem) {
		return nil, fmt.Errorf("directory %d: %w: %dx%d plane in %dx%d blocks exceeds %d bytes",
			d.Index, ErrUnsupported, p.width, p.height, p.blockW, p.blockH, int64(MaxPlaneBytes))
	}
	p.across = (p.width + p.blockW - 1) / p.blockW
	p.down = (p.height + p.blockH - 1) / p.blockH

	if p.offsets, err = d.Offsets(); err != nil {
		return nil, err
	}
	want := p.across * p.down * p.samplePlanes
	if len(p.offsets) < want {
		return nil, fmt.Errorf("directory %d: %w: %d blocks, need %d", d.Index, ifd.ErrInvalidDirectory, len(p.offsets), want)
	}

	counts, err := d.ByteCounts()
	switch {
	case errors.Is(err, ifd.ErrMissingTag):
		// uncompressed data has a known block size
	case err != nil:
		return nil, err
	case len(counts) < want:
		return nil, fmt.Errorf("directory %d: %w: %d byte counts, need %d", d.Index, ifd.ErrInvalidDirectory, len(counts), want)
	default:
		p.counts = counts
	}
	return p, nil
}

// Kind returns the block arrangement.
func (p *Plane) Kind() Kind { return p.kind }

// Width returns the plane width in pixels.
func (p *Plane) Width() int { return p.width }

// Height returns the plane height in pixels.
func (p *Plane) Height() int { return p.height }

// Size returns the byte size of the full plane.
func (p *Plane) Size() int {
	return p.width * p.height * p.elem * p.samplePlanes
}

// Read assembles the full plane.
func (p *Plane) Read() ([]byte, error) {
	return p.ReadRegion(0, 0, p.width, p.height)
}

// ReadRegion assembles the w x h rectangle at (x, y), reading only the
// blocks it overlaps.
func (p *Plane) ReadRegion(x, y, w, h int) ([]byte, error) {
	if err := checkRegion(p.width, p.height, x, y, w, h); err != nil {
		return nil, err
	}

	rowBytes := w * p.elem
	out := make([]byte, rowBytes*h*p.samplePlanes)

	firstCol, lastCol := x/p.blockW, (x+w-1)/p.blockW
	firstRow, lastRow := y/p.blockH, (y+h-1)/p.blockH

	for s := 0; s < p.samplePlanes; s++ {
		dst := out[s*rowBytes*h : (s+1)*rowBytes*h]
		for by := firstRow; by <= lastRow; by++ {
			for bx := firstCol; bx <= lastCol; bx++ {
				index := s*p.across*p.down + by*p.across + bx
				if err := p.copyBlock(dst, rowBytes, index, bx, by, x, y, w, h); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// copyBlock copies the overlap of block (bx, by) with the region into dst.
func (p *Plane) copyBlock(dst []byte, dstStride, index, bx, by, x, y, w, h int) error {
	x0, y0 := bx*p.blockW, by*p.blockH
	// rows actually stored in this block; short final strips are allowed
	rows := p.blockH
	if p.kind == Strips && y0+rows > p.height {
		rows = p.height - y0
	}

	cx0, cx1 := max(x, x0), min(x+w, x0+p.blockW, p.width)
	cy0, cy1 := max(y, y0), min(y+h, y0+rows)
	if cx0 >= cx1 || cy0 >= cy1 {
		return nil
	}

	// read only the span from the first to the last byte the overlap needs
	srcStride := p.blockW * p.elem
	start := (cy0-y0)*srcStride + (cx0-x0)*p.elem
	end := (cy1-y0-1)*srcStride + (cx1-x0)*p.elem
	if p.counts != nil && p.counts[index] < uint64(end) {
		return fmt.Errorf("block %d: %d bytes stored, need %d", index, p.counts[index], end)
	}

	span, err := p.reader.At(int64(p.offsets[index]) + int64(start)).ReadBytes(end - start)
	if err != nil {
		return fmt.Errorf("reading block %d: %w", index, err)
	}

	n := (cx1 - cx0) * p.elem
	for row := cy0; row < cy1; row++ {
		src := (row - cy0) * srcStride
		d := (row-y)*dstStride + (cx0-x)*p.elem
		copy(dst[d:d+n], span[src:src+n])
	}
	return nil
}

// fits reports whether the product of dims is positive and within
// MaxPlaneBytes.
func fits(dims ...int) bool {
	size := int64(1)
	for _, d := range dims {
		if d < 1 || size > MaxPlaneBytes/int64(d) {
			return false
		}
		size *= int64(d)
	}
	return true
}

func checkRegion(width, height, x, y, w, h int) error {
	if x < 0 || y < 0 || w < 1 || h < 1 || x+w > width || y+h > height {
		return fmt.Errorf("%w: %dx%d at (%d, %d) in %dx%d plane", ErrOutOfRange, w, h, x, y, width, height)
	}
	return nil
}
