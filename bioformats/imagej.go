package bioformats

import (
	"bufio"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// imageJ reads hyperstacks written by ImageJ. The first description holds
// key=value lines; channels vary fastest, then slices, then frames.
type imageJ struct{}

func (imageJ) Name() string { return FormatImageJ }

func (imageJ) Match(_ *ifd.Directory, description string) bool {
	return strings.HasPrefix(description, "ImageJ=")
}

// imageJInfo is the parsed description.
type imageJInfo map[string]string

func parseImageJ(description string) imageJInfo {
	info := make(imageJInfo)
	sc := bufio.NewScanner(strings.NewReader(description))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info
}

// Int returns a positive integer key.
func (info imageJInfo) Int(key string) (int, bool) {
	v, err := strconv.Atoi(info[key])
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

func (imageJ) Parse(pc *parseContext) ([]seriesLayout, error) {
	dirs := pc.primaryFile().tiff.Directories
	first := dirs[0]
	desc := pc.description(first)
	info := parseImageJ(desc)

	l, err := directorySeries(first)
	if err != nil {
		return nil, err
	}
	l.name = filepath.Base(pc.path)
	l.description = desc
	l.acquired = tiffTime(first)
	l.order = "XYCZT"
	l.orderCertain = true

	for _, d := range dirs {
		if reducedResolution(d) {
			continue
		}
		l.planes = append(l.planes, planeRef{file: pc.primary, dir: d.Index})
	}

	images, ok := info.Int("images")
	if !ok {
		images = len(l.planes)
	}
	c, hasC := info.Int("channels")
	z, hasZ := info.Int("slices")
	t, hasT := info.Int("frames")
	if !hasC {
		c = 1
	}
	if !hasT {
		t = 1
	}
	if !hasZ {
		z = 1
		if images > c*t {
			z = images / (c * t)
		}
	}
	l.declared = zct.Sizes{Z: z, C: c, T: t}

	if len(l.planes) > l.declared.Count() {
		pc.log.Warn().Int("directories", len(l.planes)).Str("declared", l.declared.String()).
			Msg("ignoring directories beyond the declared hyperstack")
		l.planes = l.planes[:l.declared.Count()]
	}
	if len(l.planes) < images {
		pc.log.Warn().Int("directories", len(l.planes)).Int("images", images).
			Msg("fewer directories than declared images")
	}
	pc.log.Debug().Bool("hasChannels", hasC).Bool("hasSlices", hasZ).Bool("hasFrames", hasT).
		Str("declared", l.declared.String()).Msg("read ImageJ hyperstack description")

	if err := pc.checkPlanes(&l); err != nil {
		return nil, err
	}
	return []seriesLayout{l}, nil
}
