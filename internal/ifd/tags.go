package ifd

import "fmt"

// Tag identifies a directory entry.
type Tag uint16

// Baseline and extension tags used by the readers.
const (
	NewSubfileType            Tag = 0x00FE
	ImageWidth                Tag = 0x0100
	ImageLength               Tag = 0x0101
	BitsPerSample             Tag = 0x0102
	Compression               Tag = 0x0103
	PhotometricInterpretation Tag = 0x0106
	FillOrder                 Tag = 0x010A
	ImageDescription          Tag = 0x010E
	Make                      Tag = 0x010F
	Model                     Tag = 0x0110
	StripOffsets              Tag = 0x0111
	SamplesPerPixel           Tag = 0x0115
	RowsPerStrip              Tag = 0x0116
	StripByteCounts           Tag = 0x0117
	XResolution               Tag = 0x011A
	YResolution               Tag = 0x011B
	PlanarConfiguration       Tag = 0x011C
	PageName                  Tag = 0x011D
	ResolutionUnit            Tag = 0x0128
	Software                  Tag = 0x0131
	DateTime                  Tag = 0x0132
	Predictor                 Tag = 0x013D
	TileWidth                 Tag = 0x0142
	TileLength                Tag = 0x0143
	TileOffsets               Tag = 0x0144
	TileByteCounts            Tag = 0x0145
	SampleFormat              Tag = 0x0153
)

var tagNames = map[Tag]string{
	NewSubfileType:            "NewSubfileType",
	ImageWidth:                "ImageWidth",
	ImageLength:               "ImageLength",
	BitsPerSample:             "BitsPerSample",
	Compression:               "Compression",
	PhotometricInterpretation: "PhotometricInterpretation",
	FillOrder:                 "FillOrder",
	ImageDescription:          "ImageDescription",
	Make:                      "Make",
	Model:                     "Model",
	StripOffsets:              "StripOffsets",
	SamplesPerPixel:           "SamplesPerPixel",
	RowsPerStrip:              "RowsPerStrip",
	StripByteCounts:           "StripByteCounts",
	XResolution:               "XResolution",
	YResolution:               "YResolution",
	PlanarConfiguration:       "PlanarConfiguration",
	PageName:                  "PageName",
	ResolutionUnit:            "ResolutionUnit",
	Software:                  "Software",
	DateTime:                  "DateTime",
	Predictor:                 "Predictor",
	TileWidth:                 "TileWidth",
	TileLength:                "TileLength",
	TileOffsets:               "TileOffsets",
	TileByteCounts:            "TileByteCounts",
	SampleFormat:              "SampleFormat",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint16(t))
}

// Compression codes.
const (
	CompressionNone     = 1
	CompressionLZW      = 5
	CompressionJPEG     = 7
	CompressionDeflate  = 8
	CompressionPackBits = 32773
)

// SampleFormat codes.
const (
	SampleFormatUint  = 1
	SampleFormatInt   = 2
	SampleFormatFloat = 3
)

// PlanarConfiguration codes.
const (
	PlanarChunky   = 1
	PlanarSeparate = 2
)

// SubfileReducedImage marks a reduced-resolution copy of another image.
const SubfileReducedImage = 1

// Type is the on-disk type of a directory entry value.
type Type uint16

// Entry value types. LONG8, SLONG8 and IFD8 are BigTIFF only.
const (
	TypeByte      Type = 1
	TypeASCII     Type = 2
	TypeShort     Type = 3
	TypeLong      Type = 4
	TypeRational  Type = 5
	TypeSByte     Type = 6
	TypeUndefined Type = 7
	TypeSShort    Type = 8
	TypeSLong     Type = 9
	TypeSRational Type = 10
	TypeFloat     Type = 11
	TypeDouble    Type = 12
	TypeIFD       Type = 13
	TypeLong8     Type = 16
	TypeSLong8    Type = 17
	TypeIFD8      Type = 18
)

// Size returns the byte size of one value of the type, or 0 if unknown.
func (t Type) Size() int {
	switch t {
	case TypeByte, TypeASCII, TypeSByte, TypeUndefined:
		return 1
	case TypeShort, TypeSShort:
		return 2
	case TypeLong, TypeSLong, TypeFloat, TypeIFD:
		return 4
	case TypeRational, TypeSRational, TypeDouble, TypeLong8, TypeSLong8, TypeIFD8:
		return 8
	default:
		return 0
	}
}

// IsIntegral reports whether the type holds integers.
func (t Type) IsIntegral() bool {
	switch t {
	case TypeByte, TypeShort, TypeLong, TypeSByte, TypeSShort, TypeSLong,
		TypeIFD, TypeLong8, TypeSLong8, TypeIFD8, TypeUndefined:
		return true
	}
	return false
}

// IsSigned reports whether the type holds signed values.
func (t Type) IsSigned() bool {
	switch t {
	case TypeSByte, TypeSShort, TypeSLong, TypeSRational, TypeSLong8:
		return true
	}
	return false
}
