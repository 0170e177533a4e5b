package zct

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrUnsupportedMapping = errors.New("unsupported dimension mapping")
	ErrInvalidRecord      = errors.New("invalid plane record")
)

// empty marks an unoccupied cell.
const empty = -1

// Sizes holds the extent of the three plane axes.
type Sizes struct {
	Z, C, T int
}

// Count returns Z*C*T.
func (s Sizes) Count() int {
	return s.Z * s.C * s.T
}

func (s Sizes) String() string {
	return fmt.Sprintf("Z=%d C=%d T=%d", s.Z, s.C, s.T)
}

// Occupancy records which physical plane, if any, fills each (z, c, t) cell.
type Occupancy struct {
	sizes Sizes
	cells []int
	count int
}

// NewOccupancy returns an empty occupancy cube.
func NewOccupancy(s Sizes) (*Occupancy, error) {
	if s.Z < 1 || s.C < 1 || s.T < 1 {
		return nil, fmt.Errorf("%w: bounds %s", ErrUnsupportedMapping, s)
	}
	cells := make([]int, s.Count())
	for i := range cells {
		cells[i] = empty
	}
	return &Occupancy{sizes: s, cells: cells}, nil
}

func (o *Occupancy) offset(z, c, t int) (int, bool) {
	if z < 0 || z >= o.sizes.Z || c < 0 || c >= o.sizes.C || t < 0 || t >= o.sizes.T {
		return 0, false
	}
	return (z*o.sizes.C+c)*o.sizes.T + t, true
}

// Set marks (z, c, t) as filled by plane. Re-asserting the same plane is a
// no-op; asserting a different plane for a filled cell fails.
func (o *Occupancy) Set(z, c, t, plane int) error {
	i, ok := o.offset(z, c, t)
	if !ok {
		return fmt.Errorf("%w: cell (%d, %d, %d) outside %s", ErrUnsupportedMapping, z, c, t, o.sizes)
	}
	if plane < 0 {
		return fmt.Errorf("%w: negative plane %d", ErrInvalidRecord, plane)
	}
	switch o.cells[i] {
	case empty:
		o.cells[i] = plane
		o.count++
	case plane:
	default:
		return fmt.Errorf("%w: cell (%d, %d, %d) claimed by planes %d and %d",
			ErrUnsupportedMapping, z, c, t, o.cells[i], plane)
	}
	return nil
}

// At returns the plane filling (z, c, t) and whether the cell is occupied.
func (o *Occupancy) At(z, c, t int) (int, bool) {
	i, ok := o.offset(z, c, t)
	if !ok || o.cells[i] == empty {
		return 0, false
	}
	return o.cells[i], true
}

// Occupied reports whether (z, c, t) is filled.
func (o *Occupancy) Occupied(z, c, t int) bool {
	_, ok := o.At(z, c, t)
	return ok
}

// Sizes returns the bounds of the cube.
func (o *Occupancy) Sizes() Sizes {
	return o.sizes
}

// Len returns the number of occupied cells.
func (o *Occupancy) Len() int {
	return o.count
}

// Equal reports whether two cubes have the same bounds and contents.
func (o *Occupancy) Equal(other *Occupancy) bool {
	if o.sizes != other.sizes || o.count != other.count {
		return false
	}
	for i := range o.cells {
		if o.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
