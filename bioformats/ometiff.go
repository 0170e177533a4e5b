package bioformats

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/pixel"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// omeTIFF reads OME-TIFF. The OME-XML in the first description declares
// every series, and TiffData elements place directories, possibly in
// sibling files, at explicit (Z, C, T) positions.
type omeTIFF struct{}

func (omeTIFF) Name() string { return FormatOMETIFF }

func (omeTIFF) Match(_ *ifd.Directory, description string) bool {
	return strings.Contains(description, "<OME")
}

type omeXML struct {
	XMLName xml.Name   `xml:"OME"`
	UUID    string     `xml:"UUID,attr"`
	Images  []omeImage `xml:"Image"`
}

type omeImage struct {
	ID              string    `xml:"ID,attr"`
	Name            string    `xml:"Name,attr"`
	AcquisitionDate string    `xml:"AcquisitionDate"`
	Description     string    `xml:"Description"`
	Pixels          omePixels `xml:"Pixels"`
}

type omePixels struct {
	DimensionOrder string        `xml:"DimensionOrder,attr"`
	Type           string        `xml:"Type,attr"`
	SizeX          int           `xml:"SizeX,attr"`
	SizeY          int           `xml:"SizeY,attr"`
	SizeZ          int           `xml:"SizeZ,attr"`
	SizeC          int           `xml:"SizeC,attr"`
	SizeT          int           `xml:"SizeT,attr"`
	BigEndian      *bool         `xml:"BigEndian,attr"`
	Interleaved    *bool         `xml:"Interleaved,attr"`
	TiffData       []omeTiffData `xml:"TiffData"`
}

type omeTiffData struct {
	IFD        *int     `xml:"IFD,attr"`
	FirstZ     int      `xml:"FirstZ,attr"`
	FirstC     int      `xml:"FirstC,attr"`
	FirstT     int      `xml:"FirstT,attr"`
	PlaneCount *int     `xml:"PlaneCount,attr"`
	UUID       *omeUUID `xml:"UUID"`
}

type omeUUID struct {
	FileName string `xml:"FileName,attr"`
	Value    string `xml:",chardata"`
}

func parseOMEXML(description string) (*omeXML, error) {
	var doc omeXML
	dec := xml.NewDecoder(strings.NewReader(description))
	// descriptions are already UTF-8 whatever the declaration says
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOMEXML, err)
	}
	if len(doc.Images) == 0 {
		return nil, fmt.Errorf("%w: no Image elements", ErrInvalidOMEXML)
	}
	return &doc, nil
}

func (omeTIFF) Parse(pc *parseContext) ([]seriesLayout, error) {
	dirs := pc.primaryFile().tiff.Directories
	doc, err := parseOMEXML(pc.description(dirs[0]))
	if err != nil {
		return nil, err
	}

	out := make([]seriesLayout, 0, len(doc.Images))
	for i, img := range doc.Images {
		l, err := pc.omeSeries(doc, img)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, img.ID, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (pc *parseContext) omeSeries(doc *omeXML, img omeImage) (seriesLayout, error) {
	px := img.Pixels
	declared := zct.Sizes{Z: max(px.SizeZ, 1), C: max(px.SizeC, 1), T: max(px.SizeT, 1)}

	// SizeC counts samples; a plane holds all samples of one pixel
	samples := 1
	if sl, err := pc.primaryFile().tiff.Directories[0].SampleLayout(); err == nil {
		samples = sl.SamplesPerPixel
	}
	if samples > 1 && declared.C%samples == 0 {
		declared.C /= samples
	}

	var planes []planeRef
	var records []zct.Record

	for n, td := range px.TiffData {
		file := pc.primary
		if td.UUID != nil && td.UUID.FileName != "" && strings.TrimSpace(td.UUID.Value) != doc.UUID {
			idx, err := pc.files.add(pc.sibling(td.UUID.FileName))
			if err != nil {
				return seriesLayout{}, err
			}
			file = idx
		}
		available := len(pc.files.file(file).tiff.Directories)

		first := 0
		if td.IFD != nil {
			first = *td.IFD
		}
		if first < 0 || first >= available {
			return seriesLayout{}, fmt.Errorf("%w: TiffData %d names IFD %d of %d", ErrInvalidRecord, n, first, available)
		}

		var count int
		switch {
		case td.PlaneCount != nil:
			count = *td.PlaneCount
			if first+count > available {
				return seriesLayout{}, fmt.Errorf("%w: TiffData %d needs IFDs [%d, %d) of %d",
					ErrInvalidRecord, n, first, first+count, available)
			}
		case td.IFD == nil:
			// neither attribute: the run covers every plane
			count = min(declared.Count(), available-first)
		default:
			count = 1
		}
		if count < 1 {
			return seriesLayout{}, fmt.Errorf("%w: TiffData %d has PlaneCount %d", ErrInvalidRecord, n, count)
		}

		records = append(records, zct.Record{
			Plane: len(planes),
			Z:     td.FirstZ,
			C:     td.FirstC,
			T:     td.FirstT,
			Count: count,
		})
		for k := 0; k < count; k++ {
			planes = append(planes, planeRef{file: file, dir: first + k})
		}
	}

	if len(px.TiffData) == 0 {
		dirs := pc.primaryFile().tiff.Directories
		for k := 0; k < len(dirs) && k < declared.Count(); k++ {
			planes = append(planes, planeRef{file: pc.primary, dir: k})
		}
	}
	if len(planes) == 0 {
		return seriesLayout{}, ErrNoSeries
	}

	d, err := pc.files.directory(planes[0])
	if err != nil {
		return seriesLayout{}, err
	}
	l, err := directorySeries(d)
	if err != nil {
		return seriesLayout{}, err
	}
	if px.SizeX != l.sizeX || px.SizeY != l.sizeY {
		return seriesLayout{}, fmt.Errorf("%w: Pixels is %dx%d, directory %d is %dx%d",
			ErrUnsupported, px.SizeX, px.SizeY, d.Index, l.sizeX, l.sizeY)
	}

	if len(px.TiffData) > 0 && declared.Count() < len(planes) {
		pc.log.Debug().Int("planes", len(planes)).Str("declared", declared.String()).Msg("TiffData exceeds declared sizes")
	}

	if px.Type != "" {
		pt, err := pixel.Parse(px.Type)
		if err != nil {
			return seriesLayout{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		if pt.BytesPerPixel() != l.pixelType.BytesPerPixel() {
			return seriesLayout{}, fmt.Errorf("%w: Pixels Type %v stored as %v", ErrUnsupported, pt, l.pixelType)
		}
		l.pixelType = pt
	}
	if px.BigEndian != nil && *px.BigEndian == l.littleEndian {
		pc.log.Warn().Bool("bigEndian", *px.BigEndian).Msg("OME-XML byte order disagrees with the file; using the file's")
	}
	if px.Interleaved != nil && *px.Interleaved != l.interleaved && samples > 1 {
		pc.log.Warn().Bool("interleaved", *px.Interleaved).Msg("OME-XML interleaving disagrees with PlanarConfiguration")
	}

	order := px.DimensionOrder
	if order == "" {
		order = "XYZCT"
	}
	l.order = order
	l.orderCertain = px.DimensionOrder != ""
	l.declared = declared
	l.planes = planes
	l.records = records
	l.name = img.Name
	if l.name == "" {
		l.name = img.ID
	}
	l.description = strings.TrimSpace(img.Description)
	l.acquired = omeTime(img.AcquisitionDate)

	if err := pc.checkPlanes(&l); err != nil {
		return seriesLayout{}, err
	}
	return l, nil
}

func omeTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
