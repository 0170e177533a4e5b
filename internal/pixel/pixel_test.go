package pixel

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-bioformats/internal/ifd"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"uint8", Uint8},
		{"UINT16", Uint16},
		{"int32", Int32},
		{"float", Float32},
		{"float32", Float32},
		{"double", Float64},
		{" int8 ", Int8},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := Parse("bit"); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestTypeProperties(t *testing.T) {
	tests := []struct {
		t      Type
		bytes  int
		signed bool
		float  bool
		goType reflect.Type
	}{
		{Int8, 1, true, false, reflect.TypeOf(int8(0))},
		{Uint8, 1, false, false, reflect.TypeOf(uint8(0))},
		{Int16, 2, true, false, reflect.TypeOf(int16(0))},
		{Uint16, 2, false, false, reflect.TypeOf(uint16(0))},
		{Int32, 4, true, false, reflect.TypeOf(int32(0))},
		{Uint32, 4, false, false, reflect.TypeOf(uint32(0))},
		{Float32, 4, true, true, reflect.TypeOf(float32(0))},
		{Float64, 8, true, true, reflect.TypeOf(float64(0))},
	}
	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			if tt.t.BytesPerPixel() != tt.bytes {
				t.Errorf("BytesPerPixel: expected %d, got %d", tt.bytes, tt.t.BytesPerPixel())
			}
			if tt.t.Signed() != tt.signed {
				t.Errorf("Signed: expected %v", tt.signed)
			}
			if tt.t.Float() != tt.float {
				t.Errorf("Float: expected %v", tt.float)
			}
			gt, err := tt.t.GoType()
			if err != nil || gt != tt.goType {
				t.Errorf("GoType: expected %v, got %v (%v)", tt.goType, gt, err)
			}
			back, err := Parse(tt.t.String())
			if err != nil || back != tt.t {
				t.Errorf("Parse(String()) = %v, %v", back, err)
			}
		})
	}
	if Type(99).Valid() {
		t.Error("Type(99) should be invalid")
	}
}

func TestFromSampleLayout(t *testing.T) {
	tests := []struct {
		bits, format int
		want         Type
		wantErr      bool
	}{
		{8, ifd.SampleFormatUint, Uint8, false},
		{16, ifd.SampleFormatUint, Uint16, false},
		{32, ifd.SampleFormatUint, Uint32, false},
		{8, ifd.SampleFormatInt, Int8, false},
		{16, ifd.SampleFormatInt, Int16, false},
		{32, ifd.SampleFormatFloat, Float32, false},
		{64, ifd.SampleFormatFloat, Float64, false},
		{12, ifd.SampleFormatUint, 0, true},
		{1, ifd.SampleFormatUint, 0, true},
		{16, ifd.SampleFormatFloat, 0, true},
		{8, 4, 0, true},
	}
	for _, tt := range tests {
		got, err := FromSampleLayout(ifd.SampleLayout{BitsPerSample: tt.bits, SampleFormat: tt.format})
		if (err != nil) != tt.wantErr {
			t.Errorf("bits=%d format=%d: error %v, wantErr %v", tt.bits, tt.format, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("bits=%d format=%d: expected %v, got %v", tt.bits, tt.format, tt.want, got)
		}
	}
}

func TestConvertUint16(t *testing.T) {
	le := []byte{0x01, 0x00, 0xFF, 0xFF}
	be := []byte{0x00, 0x01, 0xFF, 0xFF}

	for name, tc := range map[string]struct {
		order binary.ByteOrder
		data  []byte
	}{
		"little": {binary.LittleEndian, le},
		"big":    {binary.BigEndian, be},
	} {
		t.Run(name, func(t *testing.T) {
			var out []uint16
			if err := Convert(Uint16, tc.order, tc.data, &out); err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if !reflect.DeepEqual(out, []uint16{1, 0xFFFF}) {
				t.Errorf("got %v", out)
			}
		})
	}
}

func TestConvertWidening(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x02, 0x00}
	var out []float64
	if err := Convert(Int16, binary.LittleEndian, data, &out); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !reflect.DeepEqual(out, []float64{-2, 2}) {
		t.Errorf("got %v", out)
	}
}

func TestToSliceFloat(t *testing.T) {
	data := make([]byte, 8)
	binary.BigEndian.PutUint32(data, math.Float32bits(1.5))
	binary.BigEndian.PutUint32(data[4:], math.Float32bits(-3))

	got, err := ToSlice[float32](Float32, false, data)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	if !reflect.DeepEqual(got, []float32{1.5, -3}) {
		t.Errorf("got %v", got)
	}

	native, err := ToSlice[float64](Float64, true, make([]byte, 16))
	if err != nil || len(native) != 2 {
		t.Errorf("ToSlice[float64] = %v, %v", native, err)
	}
}

func TestConvertErrors(t *testing.T) {
	var out []uint16
	if err := Convert(Uint16, binary.LittleEndian, []byte{1, 2, 3}, &out); err == nil {
		t.Error("expected error for partial sample")
	}
	if err := Convert(Uint16, binary.LittleEndian, []byte{1, 2}, out); err == nil {
		t.Error("expected error for non-pointer destination")
	}
	var strs []string
	if err := Convert(Uint8, binary.LittleEndian, []byte{1}, &strs); err == nil {
		t.Error("expected error for non-numeric destination")
	}
	if err := Convert(Type(42), binary.LittleEndian, []byte{1}, &out); err == nil {
		t.Error("expected error for unknown type")
	}
}
