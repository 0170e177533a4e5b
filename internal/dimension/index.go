package dimension

import (
	"fmt"

	"github.com/robert-malhotra/go-bioformats/internal/zct"
)

// Indexer maps between linear plane numbers and (z, c, t) for one order and
// set of sizes. It is immutable and safe for concurrent use.
type Indexer struct {
	order Order
	sizes zct.Sizes
	// slot and extent of each plane axis, fastest first
	slots  [3]int
	extent [3]int
}

var _ zct.Mapper = (*Indexer)(nil)

// NewIndexer creates an indexer. All sizes must be at least 1.
func NewIndexer(order Order, sizes zct.Sizes) (*Indexer, error) {
	o, err := ParseOrder(string(order))
	if err != nil {
		return nil, err
	}
	if sizes.Z < 1 || sizes.C < 1 || sizes.T < 1 {
		return nil, fmt.Errorf("%w: sizes %s", ErrOutOfRange, sizes)
	}
	ix := &Indexer{order: o, sizes: sizes}
	ext := [3]int{sizes.Z, sizes.C, sizes.T}
	for i, a := range o.Planes() {
		ix.slots[i] = axisSlot(a)
		ix.extent[i] = ext[ix.slots[i]]
	}
	return ix, nil
}

// Order returns the dimension order.
func (ix *Indexer) Order() Order { return ix.order }

// Sizes returns the plane axis sizes.
func (ix *Indexer) Sizes() zct.Sizes { return ix.sizes }

// Count returns the number of planes.
func (ix *Indexer) Count() int { return ix.sizes.Count() }

// Index returns the linear plane number of (z, c, t).
func (ix *Indexer) Index(z, c, t int) (int, error) {
	if z < 0 || z >= ix.sizes.Z {
		return 0, fmt.Errorf("%w: z=%d not in [0, %d)", ErrOutOfRange, z, ix.sizes.Z)
	}
	if c < 0 || c >= ix.sizes.C {
		return 0, fmt.Errorf("%w: c=%d not in [0, %d)", ErrOutOfRange, c, ix.sizes.C)
	}
	if t < 0 || t >= ix.sizes.T {
		return 0, fmt.Errorf("%w: t=%d not in [0, %d)", ErrOutOfRange, t, ix.sizes.T)
	}
	v := [3]int{z, c, t}
	v1, v2, v3 := v[ix.slots[0]], v[ix.slots[1]], v[ix.slots[2]]
	return v1 + ix.extent[0]*(v2+ix.extent[1]*v3), nil
}

// Coords returns the (z, c, t) of linear plane number index.
func (ix *Indexer) Coords(index int) (z, c, t int, err error) {
	if index < 0 || index >= ix.Count() {
		return 0, 0, 0, fmt.Errorf("%w: plane %d not in [0, %d)", ErrOutOfRange, index, ix.Count())
	}
	var v [3]int
	v[ix.slots[0]] = index % ix.extent[0]
	rest := index / ix.extent[0]
	v[ix.slots[1]] = rest % ix.extent[1]
	v[ix.slots[2]] = rest / ix.extent[1]
	return v[0], v[1], v[2], nil
}
