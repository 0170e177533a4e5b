package pixel

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

var nativeLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Order returns the byte order for a little-endian flag.
func Order(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Convert decodes raw samples of type t into dest, which must be a pointer
// to a slice of a numeric type. The slice is resized to the sample count.
func Convert(t Type, order binary.ByteOrder, data []byte, dest interface{}) error {
	size := t.BytesPerPixel()
	if size == 0 {
		return fmt.Errorf("unsupported pixel type %v", t)
	}
	if len(data)%size != 0 {
		return fmt.Errorf("%d bytes is not a whole number of %v samples", len(data), t)
	}

	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}
	slice := destVal.Elem()
	elemType := slice.Type().Elem()
	if !numericKind(elemType.Kind()) {
		return fmt.Errorf("cannot convert %v samples into %v", t, elemType)
	}

	n := len(data) / size
	if slice.Len() != n {
		slice.Set(reflect.MakeSlice(slice.Type(), n, n))
	}
	if n == 0 {
		return nil
	}

	// Fast path: identical representation on this host
	if canDirectCopy(t, order, elemType) {
		copy(unsafe.Slice((*byte)(slice.UnsafePointer()), len(data)), data)
		return nil
	}

	for i := 0; i < n; i++ {
		v := decode(t, order, data[i*size:(i+1)*size])
		slice.Index(i).Set(v.Convert(elemType))
	}
	return nil
}

// ToSlice decodes raw samples into a newly allocated slice.
func ToSlice[T any](t Type, littleEndian bool, data []byte) ([]T, error) {
	var result []T
	if err := Convert(t, Order(littleEndian), data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func decode(t Type, order binary.ByteOrder, b []byte) reflect.Value {
	switch t {
	case Int8:
		return reflect.ValueOf(int8(b[0]))
	case Uint8:
		return reflect.ValueOf(b[0])
	case Int16:
		return reflect.ValueOf(int16(order.Uint16(b)))
	case Uint16:
		return reflect.ValueOf(order.Uint16(b))
	case Int32:
		return reflect.ValueOf(int32(order.Uint32(b)))
	case Uint32:
		return reflect.ValueOf(order.Uint32(b))
	case Float32:
		return reflect.ValueOf(math.Float32frombits(order.Uint32(b)))
	default:
		return reflect.ValueOf(math.Float64frombits(order.Uint64(b)))
	}
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func canDirectCopy(t Type, order binary.ByteOrder, elemType reflect.Type) bool {
	if t.BytesPerPixel() > 1 && (order == binary.LittleEndian) != nativeLittleEndian {
		return false
	}
	goType, err := t.GoType()
	if err != nil {
		return false
	}
	return goType == elemType
}
