package mixcore

import "math"

// Clear zeroes every stride-th element of b, count elements in total.
func Clear(b *Buffer, stride, count int) {
	if b == nil || count <= 0 {
		return
	}
	stride = max(stride, 1)
	count = min(count, span(b.Len(), 0, stride))
	switch b.format {
	case FormatS8:
		ClearSlice(b.s8, stride, count)
	case FormatS16:
		ClearSlice(b.s16, stride, count)
	case FormatS24, FormatS32:
		ClearSlice(b.s32, stride, count)
	case FormatS64:
		ClearSlice(b.s64, stride, count)
	case FormatFloat:
		ClearSlice(b.f32, stride, count)
	case FormatDouble:
		ClearSlice(b.f64, stride, count)
	case FormatComplex:
		ClearSlice(b.c128, stride, count)
	}
}

// ClearAll zeroes the whole buffer.
func ClearAll(b *Buffer) {
	Clear(b, 1, b.Len())
}

// ClearSlice zeroes count stride-spaced elements of s.
func ClearSlice[T Sample](s []T, stride, count int) {
	if stride == 1 {
		clear(s[:count])
		return
	}
	for i := range count {
		s[i*stride] = 0
	}
}

// Volume scales count stride-spaced elements of b by volume.
func Volume(b *Buffer, stride, count int, volume float64) {
	Envelope(b, stride, count, volume, 0)
}

// Envelope scales element k by start + k*ratio, the linear gain ramp
// used for fades.
func Envelope(b *Buffer, stride, count int, start, ratio float64) {
	if b == nil || count <= 0 {
		return
	}
	stride = max(stride, 1)
	count = min(count, span(b.Len(), 0, stride))
	switch b.format {
	case FormatS8:
		envelope(b.s8, b.format, stride, count, start, ratio)
	case FormatS16:
		envelope(b.s16, b.format, stride, count, start, ratio)
	case FormatS24, FormatS32:
		envelope(b.s32, b.format, stride, count, start, ratio)
	case FormatS64:
		envelope(b.s64, b.format, stride, count, start, ratio)
	case FormatFloat:
		envelope(b.f32, b.format, stride, count, start, ratio)
	case FormatDouble:
		envelope(b.f64, b.format, stride, count, start, ratio)
	case FormatComplex:
		for k := range count {
			b.c128[k*stride] *= complex(start+float64(k)*ratio, 0)
		}
	}
}

func envelope[T PCM](s []T, f Format, stride, count int, start, ratio float64) {
	for k := range count {
		i := k * stride
		s[i] = quantize[T](float64(s[i])*(start+float64(k)*ratio), f)
	}
}

// Peak returns the largest normalized magnitude among count
// stride-spaced elements.
func Peak(b *Buffer, stride, count int) float64 {
	if b == nil || count <= 0 {
		return 0
	}
	stride = max(stride, 1)
	count = min(count, span(b.Len(), 0, stride))
	peak := 0.0
	for k := range count {
		var v float64
		if b.format == FormatComplex {
			c := b.c128[k*stride]
			v = math.Hypot(real(c), imag(c))
		} else {
			v = math.Abs(b.At(k * stride))
		}
		peak = max(peak, v)
	}
	return peak
}

// IsSilent reports whether every element of b is zero.
func IsSilent(b *Buffer) bool {
	for i := range b.Len() {
		if b.format == FormatComplex {
			if b.c128[i] != 0 {
				return false
			}
		} else if b.At(i) != 0 {
			return false
		}
	}
	return true
}
