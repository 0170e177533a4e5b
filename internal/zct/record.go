package zct

import "fmt"

// Mapper linearizes (z, c, t) coordinates in a declared dimension order.
// Index and Coords must be exact inverses.
type Mapper interface {
	Index(z, c, t int) (int, error)
	Coords(index int) (z, c, t int, err error)
}

// Record is one explicit plane run: Count planes starting at physical plane
// Plane, placed from (Z, C, T) onward in the declared order.
type Record struct {
	Plane   int
	Z, C, T int
	Count   int
}

// Assertions are the observed plane positions of one series.
type Assertions struct {
	// Planes is the number of physical planes available to the series.
	Planes int
	// Records are explicit runs. When empty, physical plane i is placed at
	// linear index i (storage order).
	Records []Record
}

// Replay builds the occupancy cube at the declared bound.
func Replay(m Mapper, bound Sizes, a Assertions) (*Occupancy, error) {
	occ, err := NewOccupancy(bound)
	if err != nil {
		return nil, err
	}
	if a.Planes < 1 {
		return nil, fmt.Errorf("%w: series has no planes", ErrInvalidRecord)
	}

	if len(a.Records) == 0 {
		for i := 0; i < a.Planes; i++ {
			z, c, t, err := m.Coords(i)
			if err != nil {
				return nil, fmt.Errorf("placing plane %d in storage order: %w", i, err)
			}
			if err := occ.Set(z, c, t, i); err != nil {
				return nil, err
			}
		}
		return occ, nil
	}

	for n, r := range a.Records {
		if err := replayRecord(m, occ, a.Planes, r); err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
	}
	return occ, nil
}

func replayRecord(m Mapper, occ *Occupancy, planes int, r Record) error {
	if r.Count < 1 {
		return fmt.Errorf("%w: run length %d", ErrInvalidRecord, r.Count)
	}
	if r.Plane < 0 || r.Plane+r.Count > planes {
		return fmt.Errorf("%w: planes [%d, %d) outside the %d available", ErrInvalidRecord, r.Plane, r.Plane+r.Count, planes)
	}

	start, err := m.Index(r.Z, r.C, r.T)
	if err != nil {
		return fmt.Errorf("start (%d, %d, %d): %w", r.Z, r.C, r.T, err)
	}
	// advancing the linear index is the odometer step with carry; running
	// past the last cell carries out of the slowest axis
	for k := 0; k < r.Count; k++ {
		z, c, t, err := m.Coords(start + k)
		if err != nil {
			return fmt.Errorf("run step %d: %w", k, err)
		}
		if err := occ.Set(z, c, t, r.Plane+k); err != nil {
			return err
		}
	}
	return nil
}
