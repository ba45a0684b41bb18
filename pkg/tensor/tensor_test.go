package tensor

import (
	"math"
	"testing"
)

func TestNewSizes(t *testing.T) {
	f := New(Float32, 49, 10)
	if f.Len() != 490 || f.Bytes() != 1960 {
		t.Errorf("float32: len=%d bytes=%d, want 490/1960", f.Len(), f.Bytes())
	}
	q := New(Int8, 1, 49, 10)
	if q.Len() != 490 || q.Bytes() != 490 {
		t.Errorf("int8: len=%d bytes=%d, want 490/490", q.Len(), q.Bytes())
	}
	if len(q.Shape) != 3 || q.Shape[1] != 49 {
		t.Errorf("Shape = %v, want [1 49 10]", q.Shape)
	}
}

func TestInt8RoundTrip(t *testing.T) {
	q := New(Int8, 4)
	q.Scale = 0.5
	q.ZeroPoint = -10

	q.Set(0, 3.0)   // 6 - 10 = -4
	q.Set(1, 1000)  // saturates
	q.Set(2, -1000) // saturates
	q.Set(3, 0.26)  // round(0.52)=1 -> -9

	if q.I8[0] != -4 {
		t.Errorf("I8[0] = %d, want -4", q.I8[0])
	}
	if q.I8[1] != math.MaxInt8 {
		t.Errorf("I8[1] = %d, want saturation at 127", q.I8[1])
	}
	if q.I8[2] != math.MinInt8 {
		t.Errorf("I8[2] = %d, want saturation at -128", q.I8[2])
	}
	if got := q.At(0); got != 3.0 {
		t.Errorf("At(0) = %f, want 3.0", got)
	}
	if got := q.At(3); got != 0.5 {
		t.Errorf("At(3) = %f, want 0.5", got)
	}
}

func TestQuantizeSaturatesBeyondInt32(t *testing.T) {
	i8 := New(Int8, 4)
	i8.Scale = 1e-6
	u8 := New(Uint8, 4)
	u8.Scale = 1e-6
	u8.ZeroPoint = 128

	for i, v := range []float32{1e4, -1e4, float32(math.Inf(1)), float32(math.Inf(-1))} {
		i8.Set(i, v)
		u8.Set(i, v)
	}
	wantI8 := []int8{math.MaxInt8, math.MinInt8, math.MaxInt8, math.MinInt8}
	wantU8 := []uint8{math.MaxUint8, 0, math.MaxUint8, 0}
	for i := range wantI8 {
		if i8.I8[i] != wantI8[i] {
			t.Errorf("I8[%d] = %d, want %d", i, i8.I8[i], wantI8[i])
		}
		if u8.U8[i] != wantU8[i] {
			t.Errorf("U8[%d] = %d, want %d", i, u8.U8[i], wantU8[i])
		}
	}
}

func TestQuantizeNaN(t *testing.T) {
	i8 := New(Int8, 1)
	i8.Scale = 0.5
	i8.ZeroPoint = -3
	i8.Set(0, float32(math.NaN()))
	if i8.I8[0] != -3 {
		t.Errorf("I8[0] = %d, want zero point -3", i8.I8[0])
	}

	u8 := New(Uint8, 1)
	u8.Scale = 0.5
	u8.ZeroPoint = 300
	u8.Set(0, float32(math.NaN()))
	if u8.U8[0] != math.MaxUint8 {
		t.Errorf("U8[0] = %d, want out-of-range zero point clamped to 255", u8.U8[0])
	}
}

func TestUint8Dequantize(t *testing.T) {
	q := New(Uint8, 3)
	q.Scale = 1.0 / 256
	q.ZeroPoint = 0
	q.U8[0], q.U8[1], q.U8[2] = 0, 128, 255

	got := q.Floats(nil)
	want := []float32{0, 0.5, 255.0 / 256}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestParseDataType(t *testing.T) {
	for s, want := range map[string]DataType{"float32": Float32, "int8": Int8, "uint8": Uint8} {
		got, err := ParseDataType(s)
		if err != nil || got != want {
			t.Errorf("ParseDataType(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseDataType("int4"); err == nil {
		t.Error("expected error for int4")
	}
}
