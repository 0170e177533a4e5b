// Package pixel maps microscope pixel types to Go types and converts raw
// plane bytes into typed slices.
//
// # Type Mapping
//
//	Type     | Bytes | Go Type
//	---------|-------|---------
//	Int8     | 1     | int8
//	Uint8    | 1     | uint8
//	Int16    | 2     | int16
//	Uint16   | 2     | uint16
//	Int32    | 4     | int32
//	Uint32   | 4     | uint32
//	Float32  | 4     | float32
//	Float64  | 8     | float64
//
// Type names follow the OME schema ("uint16", "float", "double"); [Parse]
// also accepts the Go spellings.
//
// # Reading Data
//
// Use [Convert] to decode into any numeric slice, or [ToSlice] for a new
// slice of the natural type:
//
//	var values []uint16
//	err := pixel.Convert(pixel.Uint16, binary.BigEndian, raw, &values)
//
//	values, err := pixel.ToSlice[float32](pixel.Float32, true, raw)
//
// When the byte order and element type already match the host, the bytes
// are copied directly.
package pixel
