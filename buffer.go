package mixcore

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PCM is the set of scalar cell types backing sample buffers.
type PCM interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

// Sample adds the complex cell to PCM.
type Sample interface {
	PCM | complex128
}

// Buffer is a caller-owned run of samples in exactly one format. The
// format is fixed for the lifetime of the buffer and never inferred
// from the data.
type Buffer struct {
	format Format
	s8     []int8
	s16    []int16
	s32    []int32
	s64    []int64
	f32    []float32
	f64    []float64
	c128   []complex128
}

// NewBuffer allocates a zeroed buffer holding n elements.
func NewBuffer(f Format, n int) *Buffer {
	if n < 0 {
		n = 0
	}
	b := &Buffer{format: f}
	switch f {
	case FormatS8:
		b.s8 = make([]int8, n)
	case FormatS16:
		b.s16 = make([]int16, n)
	case FormatS24, FormatS32:
		b.s32 = make([]int32, n)
	case FormatS64:
		b.s64 = make([]int64, n)
	case FormatFloat:
		b.f32 = make([]float32, n)
	case FormatDouble:
		b.f64 = make([]float64, n)
	case FormatComplex:
		b.c128 = make([]complex128, n)
	default:
		return nil
	}
	return b
}

// Wrap builds a buffer around data without copying. The cell type of
// data must match the cell type of f.
func Wrap[T Sample](f Format, data []T) (*Buffer, error) {
	b := &Buffer{format: f}
	ok := false
	switch d := any(data).(type) {
	case []int8:
		b.s8, ok = d, f == FormatS8
	case []int16:
		b.s16, ok = d, f == FormatS16
	case []int32:
		b.s32, ok = d, f == FormatS24 || f == FormatS32
	case []int64:
		b.s64, ok = d, f == FormatS64
	case []float32:
		b.f32, ok = d, f == FormatFloat
	case []float64:
		b.f64, ok = d, f == FormatDouble
	case []complex128:
		b.c128, ok = d, f == FormatComplex
	}
	if !ok {
		return nil, fmt.Errorf("wrap %T as %s: %w", data, f, ErrUnsupportedFormat)
	}
	return b, nil
}

func (b *Buffer) Format() Format {
	return b.format
}

// Len returns the number of elements.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	switch b.format {
	case FormatS8:
		return len(b.s8)
	case FormatS16:
		return len(b.s16)
	case FormatS24, FormatS32:
		return len(b.s32)
	case FormatS64:
		return len(b.s64)
	case FormatFloat:
		return len(b.f32)
	case FormatDouble:
		return len(b.f64)
	case FormatComplex:
		return len(b.c128)
	}
	return 0
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(format=%s len=%d)", b.format, b.Len())
}

func (b *Buffer) S8() []int8            { return b.s8 }
func (b *Buffer) S16() []int16          { return b.s16 }
func (b *Buffer) S24() []int32          { return b.s32 }
func (b *Buffer) S32() []int32          { return b.s32 }
func (b *Buffer) S64() []int64          { return b.s64 }
func (b *Buffer) Float() []float32      { return b.f32 }
func (b *Buffer) Double() []float64     { return b.f64 }
func (b *Buffer) Complex() []complex128 { return b.c128 }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.format, b.Len())
	c.copyFrom(b, 0)
	return c
}

// copyFrom copies same-format elements of src into b starting at off.
func (b *Buffer) copyFrom(src *Buffer, off int) int {
	switch b.format {
	case FormatS8:
		return copy(b.s8[off:], src.s8)
	case FormatS16:
		return copy(b.s16[off:], src.s16)
	case FormatS24, FormatS32:
		return copy(b.s32[off:], src.s32)
	case FormatS64:
		return copy(b.s64[off:], src.s64)
	case FormatFloat:
		return copy(b.f32[off:], src.f32)
	case FormatDouble:
		return copy(b.f64[off:], src.f64)
	case FormatComplex:
		return copy(b.c128[off:], src.c128)
	}
	return 0
}

// Slice returns a buffer sharing b's storage for elements [lo, hi).
func (b *Buffer) Slice(lo, hi int) *Buffer {
	s := &Buffer{format: b.format}
	switch b.format {
	case FormatS8:
		s.s8 = b.s8[lo:hi]
	case FormatS16:
		s.s16 = b.s16[lo:hi]
	case FormatS24, FormatS32:
		s.s32 = b.s32[lo:hi]
	case FormatS64:
		s.s64 = b.s64[lo:hi]
	case FormatFloat:
		s.f32 = b.f32[lo:hi]
	case FormatDouble:
		s.f64 = b.f64[lo:hi]
	case FormatComplex:
		s.c128 = b.c128[lo:hi]
	}
	return s
}

// At returns element i normalized to [-1, 1] for integer formats. For
// complex buffers the real part is returned.
func (b *Buffer) At(i int) float64 {
	switch b.format {
	case FormatS8:
		return float64(b.s8[i]) / math.MaxInt8
	case FormatS16:
		return float64(b.s16[i]) / math.MaxInt16
	case FormatS24:
		return float64(b.s32[i]) / maxS24
	case FormatS32:
		return float64(b.s32[i]) / math.MaxInt32
	case FormatS64:
		return float64(b.s64[i]) / math.MaxInt64
	case FormatFloat:
		return float64(b.f32[i])
	case FormatDouble:
		return b.f64[i]
	case FormatComplex:
		return real(b.c128[i])
	}
	return 0
}

// Set stores a normalized value at i, quantizing and saturating for
// integer formats.
func (b *Buffer) Set(i int, v float64) {
	switch b.format {
	case FormatS8:
		b.s8[i] = quantize[int8](v*math.MaxInt8, FormatS8)
	case FormatS16:
		b.s16[i] = quantize[int16](v*math.MaxInt16, FormatS16)
	case FormatS24:
		b.s32[i] = quantize[int32](v*maxS24, FormatS24)
	case FormatS32:
		b.s32[i] = quantize[int32](v*math.MaxInt32, FormatS32)
	case FormatS64:
		b.s64[i] = quantize[int64](v*math.MaxInt64, FormatS64)
	case FormatFloat:
		b.f32[i] = float32(v)
	case FormatDouble:
		b.f64[i] = v
	case FormatComplex:
		b.c128[i] = complex(v, imag(b.c128[i]))
	}
}

// formatMin returns the most negative value of an integer format.
func formatMin(f Format) float64 {
	switch f {
	case FormatS8:
		return math.MinInt8
	case FormatS16:
		return math.MinInt16
	case FormatS24:
		return minS24
	case FormatS32:
		return math.MinInt32
	case FormatS64:
		return math.MinInt64
	}
	return math.Inf(-1)
}

// s64Ceil is the largest float64 strictly below 2^63.
const s64Ceil = float64(math.MaxInt64 - 1023)

// quantize rounds an already scaled value into the cell type of f,
// saturating at the format limits. Float formats pass through.
func quantize[T PCM](v float64, f Format) T {
	if !f.IsInteger() {
		return T(v)
	}
	if v != v {
		return 0
	}
	v = math.Round(v)
	if f == FormatS64 {
		n := int64(math.MaxInt64)
		switch {
		case v <= math.MinInt64:
			n = math.MinInt64
		case v < s64Ceil:
			n = int64(v)
		}
		return T(n)
	}
	return T(mgl64.Clamp(v, formatMin(f), f.FullScale()))
}
