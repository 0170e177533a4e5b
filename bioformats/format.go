package bioformats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/pixel"
)

// Format names
const (
	FormatOMETIFF = "ome-tiff"
	FormatImageJ  = "imagej"
	FormatTIFF    = "tiff"
)

// format is a thin front end turning decoded directories into series.
type format interface {
	Name() string
	// Match reports whether the first directory of the opened file, with its
	// decoded description, belongs to this format.
	Match(d *ifd.Directory, description string) bool
	Parse(pc *parseContext) ([]seriesLayout, error)
}

// formats in detection order; plain TIFF matches everything.
var formats = []format{omeTIFF{}, imageJ{}, plainTIFF{}}

func lookupFormat(name string) (format, error) {
	for _, f := range formats {
		if strings.EqualFold(f.Name(), name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func detectFormat(pc *parseContext) format {
	dirs := pc.primaryFile().tiff.Directories
	desc := ""
	if len(dirs) > 0 {
		desc = pc.description(dirs[0])
	}
	for _, f := range formats {
		if len(dirs) > 0 && f.Match(dirs[0], desc) {
			return f
		}
	}
	return plainTIFF{}
}

// parseContext is the state a front end works with during initialization.
type parseContext struct {
	path    string
	files   *fileSet
	primary int
	charset *charmap.Charmap
	log     zerolog.Logger
}

func (pc *parseContext) primaryFile() *tiffFile {
	return pc.files.file(pc.primary)
}

// description returns a directory's ImageDescription as UTF-8.
func (pc *parseContext) description(d *ifd.Directory) string {
	s, ok := d.Text(ifd.ImageDescription)
	if !ok {
		return ""
	}
	return decodeText(s, pc.charset)
}

// sibling resolves a file name relative to the opened file.
func (pc *parseContext) sibling(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(pc.path), name)
}

// checkPlanes verifies that every plane of l has the series geometry.
func (pc *parseContext) checkPlanes(l *seriesLayout) error {
	for _, ref := range l.planes {
		d, err := pc.files.directory(ref)
		if err != nil {
			return err
		}
		base, err := directorySeries(d)
		if err != nil {
			return err
		}
		if base.sizeX != l.sizeX || base.sizeY != l.sizeY || base.samples != l.samples ||
			base.pixelType.BytesPerPixel() != l.pixelType.BytesPerPixel() {
			return fmt.Errorf("%w: directory %d is %dx%dx%d %v, series is %dx%dx%d %v",
				ErrUnsupported, d.Index, base.sizeX, base.sizeY, base.samples, base.pixelType,
				l.sizeX, l.sizeY, l.samples, l.pixelType)
		}
	}
	return nil
}

// decodeText returns s unchanged when it is valid UTF-8 and decodes it from
// cm otherwise.
func decodeText(s string, cm *charmap.Charmap) string {
	if utf8.ValidString(s) || cm == nil {
		return s
	}
	out, err := cm.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// directorySeries fills the geometry and sample fields of a series from
// one directory.
func directorySeries(d *ifd.Directory) (seriesLayout, error) {
	sl, err := d.SampleLayout()
	if err != nil {
		return seriesLayout{}, err
	}
	pt, err := pixel.FromSampleLayout(sl)
	if err != nil {
		return seriesLayout{}, fmt.Errorf("directory %d: %w: %v", d.Index, ErrUnsupported, err)
	}
	w, err := d.Width()
	if err != nil {
		return seriesLayout{}, err
	}
	h, err := d.Height()
	if err != nil {
		return seriesLayout{}, err
	}
	return seriesLayout{
		sizeX:        w,
		sizeY:        h,
		pixelType:    pt,
		littleEndian: sl.LittleEndian,
		samples:      sl.SamplesPerPixel,
		interleaved:  sl.Planar == ifd.PlanarChunky && sl.SamplesPerPixel > 1,
	}, nil
}

// reducedResolution reports whether d is a thumbnail or pyramid level.
func reducedResolution(d *ifd.Directory) bool {
	v, err := d.Int(ifd.NewSubfileType, false, 0)
	return err == nil && v&ifd.SubfileReducedImage != 0
}

// tiffTime parses the DateTime tag format.
func tiffTime(d *ifd.Directory) time.Time {
	s, ok := d.Text(ifd.DateTime)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse("2006:01:02 15:04:05", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
