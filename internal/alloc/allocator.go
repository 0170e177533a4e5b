package alloc

import "fmt"

// WordAlign is the alignment TIFF requires for directories and value blocks.
const WordAlign = 2

// Allocator hands out append-only regions of a file being encoded.
type Allocator struct {
	base    uint64
	end     uint64
	regions []Region
}

// Region is one reserved span of the file.
type Region struct {
	Addr  uint64
	Size  uint64
	Label string
}

// New creates an Allocator whose first region starts at base, normally the
// header size.
func New(base uint64) *Allocator {
	return &Allocator{base: base, end: base}
}

// Alloc reserves size bytes at the next word boundary and returns the
// address. A zero size returns the aligned end without recording a region.
func (a *Allocator) Alloc(size uint64, label string) uint64 {
	a.end += a.end % WordAlign
	if size == 0 {
		return a.end
	}
	addr := a.end
	a.end += size
	a.regions = append(a.regions, Region{Addr: addr, Size: size, Label: label})
	return addr
}

// End returns the file size planned so far.
func (a *Allocator) End() uint64 {
	return a.end
}

// Regions returns a copy of the reserved regions in address order.
func (a *Allocator) Regions() []Region {
	return append([]Region(nil), a.regions...)
}

// Validate checks that no region overlaps the header or another region.
func (a *Allocator) Validate() error {
	prevEnd := a.base
	for _, r := range a.regions {
		if r.Addr < prevEnd {
			return fmt.Errorf("region %q at 0x%x overlaps data ending at 0x%x", r.Label, r.Addr, prevEnd)
		}
		if r.Addr%WordAlign != 0 {
			return fmt.Errorf("region %q at odd address 0x%x", r.Label, r.Addr)
		}
		prevEnd = r.Addr + r.Size
	}
	if prevEnd > a.end {
		return fmt.Errorf("regions extend to 0x%x past end 0x%x", prevEnd, a.end)
	}
	return nil
}
