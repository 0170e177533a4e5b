package pixel

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

// Type is the storage type of one pixel sample.
type Type int

const (
	Int8 Type = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

var typeNames = [...]string{
	Int8:    "int8",
	Uint8:   "uint8",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Float32: "float",
	Float64: "double",
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t >= Int8 && t <= Float64
}

// Parse converts a type name to a Type.
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int8":
		return Int8, nil
	case "uint8":
		return Uint8, nil
	case "int16":
		return Int16, nil
	case "uint16":
		return Uint16, nil
	case "int32":
		return Int32, nil
	case "uint32":
		return Uint32, nil
	case "float", "float32":
		return Float32, nil
	case "double", "float64":
		return Float64, nil
	}
	return 0, fmt.Errorf("unknown pixel type %q", s)
}

// BytesPerPixel returns the size of one sample.
func (t Type) BytesPerPixel() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// Signed reports whether t is a signed integer or floating point type.
func (t Type) Signed() bool {
	switch t {
	case Int8, Int16, Int32, Float32, Float64:
		return true
	}
	return false
}

// Float reports whether t is a floating point type.
func (t Type) Float() bool {
	return t == Float32 || t == Float64
}

// GoType returns the Go type of one sample.
func (t Type) GoType() (reflect.Type, error) {
	switch t {
	case Int8:
		return reflect.TypeOf(int8(0)), nil
	case Uint8:
		return reflect.TypeOf(uint8(0)), nil
	case Int16:
		return reflect.TypeOf(int16(0)), nil
	case Uint16:
		return reflect.TypeOf(uint16(0)), nil
	case Int32:
		return reflect.TypeOf(int32(0)), nil
	case Uint32:
		return reflect.TypeOf(uint32(0)), nil
	case Float32:
		return reflect.TypeOf(float32(0)), nil
	case Float64:
		return reflect.TypeOf(float64(0)), nil
	}
	return nil, fmt.Errorf("unsupported pixel type %v", t)
}

// FromSampleLayout derives the type of a tag directory's samples.
func FromSampleLayout(l ifd.SampleLayout) (Type, error) {
	bytes := l.BytesPerSample()
	if l.BitsPerSample%8 != 0 {
		return 0, fmt.Errorf("unsupported bit depth %d", l.BitsPerSample)
	}
	switch l.SampleFormat {
	case ifd.SampleFormatUint:
		switch bytes {
		case 1:
			return Uint8, nil
		case 2:
			return Uint16, nil
		case 4:
			return Uint32, nil
		}
	case ifd.SampleFormatInt:
		switch bytes {
		case 1:
			return Int8, nil
		case 2:
			return Int16, nil
		case 4:
			return Int32, nil
		}
	case ifd.SampleFormatFloat:
		switch bytes {
		case 4:
			return Float32, nil
		case 8:
			return Float64, nil
		}
	default:
		return 0, fmt.Errorf("unsupported sample format %d", l.SampleFormat)
	}
	return 0, fmt.Errorf("unsupported %d-bit samples with format %d", l.BitsPerSample, l.SampleFormat)
}
