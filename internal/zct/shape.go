package zct

import "fmt"

// Shape is a recognized occupancy pattern.
type Shape int

const (
	Unsupported Shape = iota
	Dense
	SingleZ
	SingleT
	SingleC
	PointZT
	PointZC
	PointTC
	SingleCell
)

var shapeNames = [...]string{
	Unsupported: "unsupported",
	Dense:       "dense",
	SingleZ:     "single-z",
	SingleT:     "single-t",
	SingleC:     "single-c",
	PointZT:     "point-zt",
	PointZC:     "point-zc",
	PointTC:     "point-tc",
	SingleCell:  "single-cell",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// profile summarizes an occupancy cube in one pass.
type profile struct {
	count   int
	z, c, t axisProfile
}

// axisProfile tracks the distinct occupied values of one axis.
type axisProfile struct {
	first    int
	distinct int
	seen     []bool
}

func newAxisProfile(n int) axisProfile {
	return axisProfile{first: -1, seen: make([]bool, n)}
}

func (a *axisProfile) observe(v int) {
	if a.seen[v] {
		return
	}
	a.seen[v] = true
	a.distinct++
	if a.first < 0 || v < a.first {
		a.first = v
	}
}

func (a axisProfile) single() bool {
	return a.distinct == 1
}

func scan(o *Occupancy) profile {
	s := o.sizes
	p := profile{
		count: o.count,
		z:     newAxisProfile(s.Z),
		c:     newAxisProfile(s.C),
		t:     newAxisProfile(s.T),
	}
	for z := 0; z < s.Z; z++ {
		for c := 0; c < s.C; c++ {
			for t := 0; t < s.T; t++ {
				if o.Occupied(z, c, t) {
					p.z.observe(z)
					p.c.observe(c)
					p.t.observe(t)
				}
			}
		}
	}
	return p
}

// Classify returns the first matching shape in priority order.
// Slab and sweep shapes require the retained extent to hold more than one
// cell, so a lone occupied cell always classifies as SingleCell.
func Classify(o *Occupancy) Shape {
	return classify(o.sizes, scan(o))
}

func classify(s Sizes, p profile) Shape {
	n := p.count
	switch {
	case n == 0:
		return Unsupported
	case n == s.Count():
		return Dense
	case p.z.single() && n == s.C*s.T && n > 1:
		return SingleZ
	case p.t.single() && n == s.Z*s.C && n > 1:
		return SingleT
	case p.c.single() && n == s.Z*s.T && n > 1:
		return SingleC
	case p.z.single() && p.t.single() && n == s.C && n > 1:
		return PointZT
	case p.z.single() && p.c.single() && n == s.T && n > 1:
		return PointZC
	case p.t.single() && p.c.single() && n == s.Z && n > 1:
		return PointTC
	case n == 1:
		return SingleCell
	default:
		return Unsupported
	}
}

// Result is a reduced dimension mapping.
type Result struct {
	Shape Shape
	// Sizes are the reconciled sizes.
	Sizes Sizes
	// Offset holds the fixed position of each collapsed axis in the
	// declared cube, zero for retained axes.
	Offset Sizes

	occ *Occupancy
}

// Plane returns the physical plane at reduced coordinates (z, c, t).
func (r Result) Plane(z, c, t int) (int, bool) {
	if z < 0 || z >= r.Sizes.Z || c < 0 || c >= r.Sizes.C || t < 0 || t >= r.Sizes.T {
		return 0, false
	}
	return r.occ.At(z+r.Offset.Z, c+r.Offset.C, t+r.Offset.T)
}

// Occupancy returns the reduced cube.
func (r Result) Occupancy() (*Occupancy, error) {
	out, err := NewOccupancy(r.Sizes)
	if err != nil {
		return nil, err
	}
	for z := 0; z < r.Sizes.Z; z++ {
		for c := 0; c < r.Sizes.C; c++ {
			for t := 0; t < r.Sizes.T; t++ {
				plane, ok := r.Plane(z, c, t)
				if !ok {
					continue
				}
				if err := out.Set(z, c, t, plane); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// Reduce classifies the cube and collapses it to the smallest consistent sizes.
func Reduce(o *Occupancy) (Result, error) {
	p := scan(o)
	shape := classify(o.sizes, p)
	res := Result{Shape: shape, Sizes: o.sizes, occ: o}

	collapseZ := func() { res.Sizes.Z, res.Offset.Z = 1, p.z.first }
	collapseC := func() { res.Sizes.C, res.Offset.C = 1, p.c.first }
	collapseT := func() { res.Sizes.T, res.Offset.T = 1, p.t.first }

	switch shape {
	case Dense:
	case SingleZ:
		collapseZ()
	case SingleT:
		collapseT()
	case SingleC:
		collapseC()
	case PointZT:
		collapseZ()
		collapseT()
	case PointZC:
		collapseZ()
		collapseC()
	case PointTC:
		collapseT()
		collapseC()
	case SingleCell:
		collapseZ()
		collapseC()
		collapseT()
	default:
		return Result{Shape: Unsupported}, fmt.Errorf("%w: %d of %d cells occupied at %s",
			ErrUnsupportedMapping, p.count, o.sizes.Count(), o.sizes)
	}
	return res, nil
}
