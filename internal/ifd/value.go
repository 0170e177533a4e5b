package ifd

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Value is the decoded payload of one directory entry.
type Value struct {
	Type  Type
	Count uint64
	raw   []byte
	order binary.ByteOrder
}

func newValue(typ Type, count uint64, raw []byte, order binary.ByteOrder) *Value {
	return &Value{Type: typ, Count: count, raw: raw, order: order}
}

// Bytes returns the raw value bytes in file byte order.
func (v *Value) Bytes() []byte {
	return v.raw
}

// check reports a value whose bytes cannot hold Count elements.
func (v *Value) check() error {
	size := v.Type.Size()
	if size == 0 {
		return fmt.Errorf("value of unknown type %d", v.Type)
	}
	if v.Count > uint64(len(v.raw)/size) {
		return fmt.Errorf("value holds %d bytes, too few for %d elements of type %d", len(v.raw), v.Count, v.Type)
	}
	return nil
}

func (v *Value) int64At(i int) int64 {
	switch v.Type {
	case TypeByte, TypeUndefined, TypeASCII:
		return int64(v.raw[i])
	case TypeSByte:
		return int64(int8(v.raw[i]))
	case TypeShort:
		return int64(v.order.Uint16(v.raw[2*i:]))
	case TypeSShort:
		return int64(int16(v.order.Uint16(v.raw[2*i:])))
	case TypeLong, TypeIFD:
		return int64(v.order.Uint32(v.raw[4*i:]))
	case TypeSLong:
		return int64(int32(v.order.Uint32(v.raw[4*i:])))
	case TypeLong8, TypeIFD8, TypeSLong8:
		return int64(v.order.Uint64(v.raw[8*i:]))
	}
	return 0
}

// Ints returns the values as signed integers.
func (v *Value) Ints() ([]int64, error) {
	if !v.Type.IsIntegral() {
		return nil, fmt.Errorf("value of type %d is not integral", v.Type)
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	out := make([]int64, v.Count)
	for i := range out {
		out[i] = v.int64At(i)
	}
	return out, nil
}

// Uints returns the values as unsigned integers. Negative signed values fail.
func (v *Value) Uints() ([]uint64, error) {
	if !v.Type.IsIntegral() {
		return nil, fmt.Errorf("value of type %d is not integral", v.Type)
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	out := make([]uint64, v.Count)
	for i := range out {
		if v.Type == TypeLong8 || v.Type == TypeIFD8 {
			out[i] = v.order.Uint64(v.raw[8*i:])
			continue
		}
		n := v.int64At(i)
		if n < 0 {
			return nil, fmt.Errorf("negative value %d at index %d", n, i)
		}
		out[i] = uint64(n)
	}
	return out, nil
}

// Floats returns the values as float64, converting integers and rationals.
func (v *Value) Floats() ([]float64, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	out := make([]float64, v.Count)
	for i := range out {
		switch v.Type {
		case TypeFloat:
			out[i] = float64(math.Float32frombits(v.order.Uint32(v.raw[4*i:])))
		case TypeDouble:
			out[i] = math.Float64frombits(v.order.Uint64(v.raw[8*i:]))
		case TypeRational:
			num := v.order.Uint32(v.raw[8*i:])
			den := v.order.Uint32(v.raw[8*i+4:])
			if den == 0 {
				return nil, fmt.Errorf("rational with zero denominator at index %d", i)
			}
			out[i] = float64(num) / float64(den)
		case TypeSRational:
			num := int32(v.order.Uint32(v.raw[8*i:]))
			den := int32(v.order.Uint32(v.raw[8*i+4:]))
			if den == 0 {
				return nil, fmt.Errorf("rational with zero denominator at index %d", i)
			}
			out[i] = float64(num) / float64(den)
		default:
			if !v.Type.IsIntegral() {
				return nil, fmt.Errorf("value of type %d is not numeric", v.Type)
			}
			out[i] = float64(v.int64At(i))
		}
	}
	return out, nil
}

// Text returns an ASCII value with the terminating NUL removed. Multiple
// NUL-separated strings are joined with newlines.
func (v *Value) Text() string {
	s := strings.TrimRight(string(v.raw), "\x00")
	return strings.ReplaceAll(s, "\x00", "\n")
}
