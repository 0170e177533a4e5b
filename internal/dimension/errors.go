package dimension

import (
	"errors"

	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// Errors
var (
	ErrInvalidOrder  = errors.New("invalid dimension order")
	ErrOutOfRange    = errors.New("out of range")
	ErrReinitialized = errors.New("dimension model already reconciled")
	ErrNotReconciled = errors.New("dimension model not reconciled")

	// ErrUnsupportedMapping is returned when the observed planes match no
	// recognized shape.
	ErrUnsupportedMapping = zct.ErrUnsupportedMapping
)
