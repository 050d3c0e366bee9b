package mixcore

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

// randomBuffer fills n elements of f with in-range values.
func randomBuffer(f Format, n int, rng *rand.Rand) *Buffer {
	b := NewBuffer(f, n)
	for i := range n {
		switch f {
		case FormatS8:
			b.s8[i] = int8(rng.IntN(256) - 128)
		case FormatS16:
			b.s16[i] = int16(rng.IntN(1<<16) - 1<<15)
		case FormatS24:
			b.s32[i] = int32(rng.IntN(1<<24) - 1<<23)
		case FormatS32:
			b.s32[i] = int32(rng.Uint32())
		case FormatS64:
			b.s64[i] = int64(rng.Uint64())
		case FormatFloat:
			b.f32[i] = float32(rng.Float64()*2 - 1)
		case FormatDouble:
			b.f64[i] = rng.Float64()*2 - 1
		case FormatComplex:
			b.c128[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
		}
	}
	return b
}

func equalBuffers(a, b *Buffer) bool {
	if a.Format() != b.Format() || a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		switch a.Format() {
		case FormatComplex:
			if a.c128[i] != b.c128[i] {
				return false
			}
		case FormatFloat:
			if math.Float32bits(a.f32[i]) != math.Float32bits(b.f32[i]) {
				return false
			}
		case FormatDouble:
			if math.Float64bits(a.f64[i]) != math.Float64bits(b.f64[i]) {
				return false
			}
		case FormatS8:
			if a.s8[i] != b.s8[i] {
				return false
			}
		case FormatS16:
			if a.s16[i] != b.s16[i] {
				return false
			}
		case FormatS24, FormatS32:
			if a.s32[i] != b.s32[i] {
				return false
			}
		case FormatS64:
			if a.s64[i] != b.s64[i] {
				return false
			}
		}
	}
	return true
}

func TestCharBufferRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, f := range Formats {
		for _, n := range []int{1, 2, 7, 256} {
			b := randomBuffer(f, n, rng)
			data := ToCharBuffer(b, n)
			if len(data) != n*f.Width() {
				t.Fatalf("%v: ToCharBuffer length %d, want %d", f, len(data), n*f.Width())
			}
			got := CharBufferToTyped(data, len(data), f)
			if !equalBuffers(b, got) {
				t.Errorf("%v n=%d: round trip mismatch", f, n)
			}
		}
	}
}

func TestCharBufferTruncatesPartialElement(t *testing.T) {
	b := randomBuffer(FormatS24, 4, rand.New(rand.NewPCG(3, 4)))
	data := ToCharBuffer(b, 4)
	got := CharBufferToTyped(data, len(data)-1, FormatS24)
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	if !equalBuffers(b.Slice(0, 3), got) {
		t.Errorf("kept elements differ")
	}
	if _, err := CharBufferToTypedStrict(data, len(data)-1, FormatS24); !errors.Is(err, ErrInvalidBufferSize) {
		t.Errorf("strict error = %v, want ErrInvalidBufferSize", err)
	}
	if got, err := CharBufferToTypedStrict(data, len(data), FormatS24); err != nil || !equalBuffers(b, got) {
		t.Errorf("strict aligned = %v, %v", got, err)
	}
}

func TestCharBufferBigEndianIntegers(t *testing.T) {
	tests := []struct {
		b    *Buffer
		want []byte
	}{
		{mustWrap(t, FormatS8, []int8{-2}), []byte{0xfe}},
		{mustWrap(t, FormatS16, []int16{0x1234}), []byte{0x12, 0x34}},
		{mustWrap(t, FormatS24, []int32{-2}), []byte{0xff, 0xff, 0xfe}},
		{mustWrap(t, FormatS32, []int32{0x01020304}), []byte{1, 2, 3, 4}},
		{mustWrap(t, FormatS64, []int64{1}), []byte{0, 0, 0, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		if got := ToCharBuffer(tt.b, 1); !bytes.Equal(got, tt.want) {
			t.Errorf("%v: % x, want % x", tt.b.Format(), got, tt.want)
		}
	}
}

func mustWrap[T Sample](t *testing.T, f Format, data []T) *Buffer {
	t.Helper()
	b, err := Wrap(f, data)
	if err != nil {
		t.Fatalf("Wrap(%v): %v", f, err)
	}
	return b
}

func TestS24SignExtension(t *testing.T) {
	tests := []struct {
		in   []byte
		want int32
	}{
		{[]byte{0x80, 0x00, 0x00}, -1 << 23},
		{[]byte{0xff, 0xff, 0xff}, -1},
		{[]byte{0x7f, 0xff, 0xff}, 1<<23 - 1},
		{[]byte{0x00, 0x00, 0x01}, 1},
	}
	for _, tt := range tests {
		if got := ReadS24(tt.in, BigEndian); got != tt.want {
			t.Errorf("ReadS24(% x) = %d, want %d", tt.in, got, tt.want)
		}
		le := []byte{tt.in[2], tt.in[1], tt.in[0]}
		if got := ReadS24(le, LittleEndian); got != tt.want {
			t.Errorf("ReadS24 le (% x) = %d, want %d", le, got, tt.want)
		}
	}
}

func TestScalarAccessors(t *testing.T) {
	buf := make([]byte, 16)
	for _, o := range []ByteOrder{BigEndian, LittleEndian} {
		WriteS16(buf, -12345, o)
		if got := ReadS16(buf, o); got != -12345 {
			t.Errorf("%v S16 = %d", o, got)
		}
		WriteS32(buf, math.MinInt32, o)
		if got := ReadS32(buf, o); got != math.MinInt32 {
			t.Errorf("%v S32 = %d", o, got)
		}
		WriteS64(buf, math.MaxInt64, o)
		if got := ReadS64(buf, o); got != math.MaxInt64 {
			t.Errorf("%v S64 = %d", o, got)
		}
		WriteFloat(buf, -0.25, o)
		if got := ReadFloat(buf, o); got != -0.25 {
			t.Errorf("%v float = %g", o, got)
		}
		WriteDouble(buf, math.Pi, o)
		if got := ReadDouble(buf, o); got != math.Pi {
			t.Errorf("%v double = %g", o, got)
		}
		WriteComplex(buf, complex(0.5, -1.5), o)
		if got := ReadComplex(buf, o); got != complex(0.5, -1.5) {
			t.Errorf("%v complex = %v", o, got)
		}
	}
	WriteS16(buf, 0x0102, LittleEndian)
	if buf[0] != 0x02 || buf[1] != 0x01 {
		t.Errorf("little endian S16 = % x", buf[:2])
	}
	WriteS16(buf, 0x0102, BigEndian)
	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("big endian S16 = % x", buf[:2])
	}
}

func TestEncodeDecode(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, f := range Formats {
		for _, o := range []ByteOrder{BigEndian, LittleEndian} {
			b := randomBuffer(f, 33, rng)
			out := make([]byte, b.Len()*f.Width())
			if n := Encode(out, b, b.Len(), o); n != len(out) {
				t.Fatalf("%v %v: Encode wrote %d bytes, want %d", f, o, n, len(out))
			}
			got := NewBuffer(f, b.Len())
			if n := Decode(got, out, o); n != b.Len() {
				t.Fatalf("%v %v: Decode read %d elements", f, o, n)
			}
			if !equalBuffers(b, got) {
				t.Errorf("%v %v: mismatch", f, o)
			}
		}
	}
}

func TestSwapBytes(t *testing.T) {
	tests := []struct {
		in       []byte
		wordSize int
		count    int
		want     []byte
	}{
		{[]byte{1, 2, 3, 4}, 2, 4, []byte{2, 1, 4, 3}},
		{[]byte{1, 2, 3, 4, 5, 6}, 3, 6, []byte{3, 2, 1, 6, 5, 4}},
		{[]byte{1, 2, 3, 4, 5}, 4, 5, []byte{4, 3, 2, 1, 5}},
		{[]byte{1, 2, 3, 4}, 2, 2, []byte{2, 1, 3, 4}},
		{[]byte{1, 2}, 1, 2, []byte{1, 2}},
	}
	for _, tt := range tests {
		buf := append([]byte(nil), tt.in...)
		SwapBytes(buf, tt.wordSize, tt.count)
		if !bytes.Equal(buf, tt.want) {
			t.Errorf("SwapBytes(% x, %d, %d) = % x, want % x", tt.in, tt.wordSize, tt.count, buf, tt.want)
		}
	}
}

func TestSwapBytesConvertsOrder(t *testing.T) {
	buf := make([]byte, 8)
	WriteDouble(buf, 1.5, BigEndian)
	SwapBytes(buf, 8, 8)
	if got := ReadDouble(buf, LittleEndian); got != 1.5 {
		t.Errorf("swapped double = %g", got)
	}
}
