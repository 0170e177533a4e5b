package bioformats

import (
	"fmt"
	"path/filepath"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// plainTIFF reads any TIFF. Directories with the same geometry form one
// series whose planes are stacked along Z in storage order; the order is a
// guess.
type plainTIFF struct{}

func (plainTIFF) Name() string { return FormatTIFF }

func (plainTIFF) Match(*ifd.Directory, string) bool { return true }

func (plainTIFF) Parse(pc *parseContext) ([]seriesLayout, error) {
	type geometry struct {
		width, height int
		samples       ifd.SampleLayout
	}

	var out []seriesLayout
	groups := make(map[geometry]int)

	for _, d := range pc.primaryFile().tiff.Directories {
		if reducedResolution(d) {
			pc.log.Debug().Int("directory", d.Index).Msg("skipping reduced-resolution directory")
			continue
		}
		sl, err := d.SampleLayout()
		if err != nil {
			return nil, err
		}
		base, err := directorySeries(d)
		if err != nil {
			return nil, err
		}

		key := geometry{base.sizeX, base.sizeY, sl}
		i, ok := groups[key]
		if !ok {
			base.name = seriesName(d, pc.path, len(out))
			base.description = pc.description(d)
			base.acquired = tiffTime(d)
			base.order = "XYCZT"
			out = append(out, base)
			i = len(out) - 1
			groups[key] = i
		}
		out[i].planes = append(out[i].planes, planeRef{file: pc.primary, dir: d.Index})
	}

	for i := range out {
		out[i].declared = zct.Sizes{Z: len(out[i].planes), C: 1, T: 1}
	}
	return out, nil
}

// seriesName prefers PageName and falls back to the file name.
func seriesName(d *ifd.Directory, path string, series int) string {
	if name, ok := d.Text(ifd.PageName); ok && name != "" {
		return name
	}
	if series == 0 {
		return filepath.Base(path)
	}
	return fmt.Sprintf("%s #%d", filepath.Base(path), series+1)
}
