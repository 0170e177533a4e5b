// Package dimension holds the five-dimensional image model of one series and
// the mapping between linear plane numbers and (Z, C, T) coordinates.
//
// A dimension order such as "XYCZT" names the nesting of the plane axes:
// the third letter varies fastest and the last slowest, so
//
//	index = v(d1) + size(d1)*(v(d2) + size(d2)*v(d3))
//
// A [Model] is built from the sizes a file declares, reconciled once against
// the planes actually present, and read-only afterwards.
package dimension
