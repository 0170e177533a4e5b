// Package zct infers the dimensions of a plane stack from the (Z, C, T)
// positions its planes were observed at.
//
// Tag-directory files enumerate their planes either implicitly (one plane
// per directory in storage order, sizes declared once) or through explicit
// records that name a starting plane, a starting (Z, C, T) and a run length.
// Declared sizes are upper bounds: files routinely declare more focal planes,
// channels or time points than they store.
//
// # Occupancy
//
// [Replay] turns the assertions into an [Occupancy]: a boolean cube indexed
// [z][c][t] at the declared bound, remembering which physical plane fills
// each cell. Explicit runs advance like an odometer in the declared
// dimension order, first axis fastest, wrapping each axis at its bound and
// carrying into the next.
//
// # Shapes
//
// [Classify] recognizes, in fixed priority order:
//
//	Dense       every cell occupied
//	SingleZ     one z, full (c, t) slab
//	SingleT     one t, full (z, c) slab
//	SingleC     one c, full (z, t) slab
//	PointZT     one (z, t), full C sweep
//	PointZC     one (z, c), full T sweep
//	PointTC     one (t, c), full Z sweep
//	SingleCell  exactly one cell
//
// Anything else is Unsupported and [Reduce] fails with
// [ErrUnsupportedMapping]; arbitrary occupancy is never guessed at.
package zct
