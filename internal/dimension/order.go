package dimension

import (
	"fmt"
	"strings"
)

// Axis is one of the five image dimensions.
type Axis byte

const (
	X Axis = 'X'
	Y Axis = 'Y'
	Z Axis = 'Z'
	C Axis = 'C'
	T Axis = 'T'
)

func (a Axis) String() string {
	return string(rune(a))
}

// Order is a validated dimension order such as "XYZCT".
type Order string

// Common orders.
const (
	XYZCT Order = "XYZCT"
	XYZTC Order = "XYZTC"
	XYCZT Order = "XYCZT"
	XYCTZ Order = "XYCTZ"
	XYTZC Order = "XYTZC"
	XYTCZ Order = "XYTCZ"
)

// AllOrders returns every valid order.
func AllOrders() []Order {
	return []Order{XYZCT, XYZTC, XYCZT, XYCTZ, XYTZC, XYTCZ}
}

// ParseOrder validates s. Case is ignored; X and Y must lead and Z, C and T
// must each follow exactly once.
func ParseOrder(s string) (Order, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	if len(u) != 5 || u[0] != 'X' || u[1] != 'Y' {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
	var seen [3]bool
	for i := 2; i < 5; i++ {
		n := axisSlot(Axis(u[i]))
		if n < 0 || seen[n] {
			return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
		}
		seen[n] = true
	}
	return Order(u), nil
}

// axisSlot numbers the plane axes Z=0, C=1, T=2.
func axisSlot(a Axis) int {
	switch a {
	case Z:
		return 0
	case C:
		return 1
	case T:
		return 2
	}
	return -1
}

func (o Order) String() string {
	return string(o)
}

// Planes returns the plane axes from fastest to slowest.
func (o Order) Planes() [3]Axis {
	return [3]Axis{Axis(o[2]), Axis(o[3]), Axis(o[4])}
}

// Fastest returns the fastest-varying plane axis.
func (o Order) Fastest() Axis {
	return Axis(o[2])
}
