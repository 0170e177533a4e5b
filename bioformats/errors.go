// Package bioformats reads multi-dimensional microscope image series stored
// in TIFF-family files: plain TIFF, ImageJ hyperstacks and OME-TIFF.
package bioformats

import (
	"errors"

	"github.com/robert-malhotra/go-bioformats/internal/dimension"
	"github.com/robert-malhotra/go-bioformats/internal/ifd"
	"github.com/robert-malhotra/go-bioformats/internal/layout"
	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// Common errors
var (
	ErrInvalidDimensionOrder = dimension.ErrInvalidOrder
	ErrOutOfRange            = dimension.ErrOutOfRange
	ErrReinitialized         = dimension.ErrReinitialized
	ErrUnsupportedMapping    = zct.ErrUnsupportedMapping
	ErrInvalidRecord         = zct.ErrInvalidRecord
	ErrNotTIFF               = ifd.ErrNotTIFF
	ErrUnsupported           = layout.ErrUnsupported

	ErrClosed        = errors.New("reader is closed")
	ErrUnknownFormat = errors.New("unknown format")
	ErrNoSeries      = errors.New("file contains no image series")
	ErrMetadataOrder = errors.New("image fields set before pixels")
	ErrInvalidOMEXML = errors.New("invalid OME-XML")
)
