package mixcore

import "math"

// CopyMode names a (destination, source) format pair and selects the
// conversion routine used by CopyBufferToBuffer.
type CopyMode uint8

// GetCopyMode resolves the copy mode for dst <- src. Every pair of
// valid formats has exactly one mode.
func GetCopyMode(dst, src Format) (CopyMode, error) {
	if !dst.Valid() {
		return 0, formatErr("get copy mode", uint32(dst))
	}
	if !src.Valid() {
		return 0, formatErr("get copy mode", uint32(src))
	}
	return CopyMode(int(dst)*formatCount + int(src)), nil
}

func (m CopyMode) Dst() Format { return Format(int(m) / formatCount) }

func (m CopyMode) Src() Format { return Format(int(m) % formatCount) }

func (m CopyMode) Identity() bool { return m.Dst() == m.Src() }

func (m CopyMode) String() string {
	return m.Src().String() + "_to_" + m.Dst().String()
}

// region addresses count strided elements in dst and src.
type region struct {
	dstStride, dstOffset int
	srcStride, srcOffset int
	count                int
}

// span returns how many stride-spaced elements fit after off in n.
func span(n, off, stride int) int {
	if off < 0 || off >= n {
		return 0
	}
	return (n-off-1)/stride + 1
}

// CopyBufferToBuffer mixes count elements of src into dst, rescaling
// between format full scales and saturating integer results. A mode
// that does not match the buffers, or a range running past either
// buffer, is clipped or ignored rather than reported.
func CopyBufferToBuffer(dst *Buffer, dstStride, dstOffset int, src *Buffer, srcStride, srcOffset int, count int, mode CopyMode) {
	if dst == nil || src == nil || count <= 0 {
		return
	}
	if mode.Dst() != dst.format || mode.Src() != src.format {
		return
	}
	dstStride, srcStride = max(dstStride, 1), max(srcStride, 1)
	count = min(count, span(dst.Len(), dstOffset, dstStride), span(src.Len(), srcOffset, srcStride))
	if count <= 0 {
		return
	}
	r := region{dstStride, dstOffset, srcStride, srcOffset, count}
	if mode.Identity() && dst.format.IsInteger() {
		switch dst.format {
		case FormatS8:
			mixSameInt(dst.s8, src.s8, r, math.MinInt8, math.MaxInt8)
		case FormatS16:
			mixSameInt(dst.s16, src.s16, r, math.MinInt16, math.MaxInt16)
		case FormatS24:
			mixSameInt(dst.s32, src.s32, r, minS24, maxS24)
		case FormatS32:
			mixSameInt(dst.s32, src.s32, r, math.MinInt32, math.MaxInt32)
		case FormatS64:
			mixSameInt(dst.s64, src.s64, r, math.MinInt64, math.MaxInt64)
		}
		return
	}
	switch dst.format {
	case FormatS8:
		mixFrom(dst.s8, dst.format, r, src)
	case FormatS16:
		mixFrom(dst.s16, dst.format, r, src)
	case FormatS24, FormatS32:
		mixFrom(dst.s32, dst.format, r, src)
	case FormatS64:
		mixFrom(dst.s64, dst.format, r, src)
	case FormatFloat:
		mixFrom(dst.f32, dst.format, r, src)
	case FormatDouble:
		mixFrom(dst.f64, dst.format, r, src)
	case FormatComplex:
		mixComplex(dst.c128, r, src)
	}
}

// Convert returns a new buffer of format f holding the samples of src.
func Convert(src *Buffer, f Format) *Buffer {
	if src == nil || !f.Valid() {
		return nil
	}
	out := NewBuffer(f, src.Len())
	mode, _ := GetCopyMode(f, src.format)
	CopyBufferToBuffer(out, 1, 0, src, 1, 0, src.Len(), mode)
	return out
}

func mixFrom[D PCM](dst []D, df Format, r region, src *Buffer) {
	scale := df.FullScale() / src.format.FullScale()
	switch src.format {
	case FormatS8:
		mixTyped(dst, df, r, src.s8, scale)
	case FormatS16:
		mixTyped(dst, df, r, src.s16, scale)
	case FormatS24, FormatS32:
		mixTyped(dst, df, r, src.s32, scale)
	case FormatS64:
		mixTyped(dst, df, r, src.s64, scale)
	case FormatFloat:
		mixTyped(dst, df, r, src.f32, scale)
	case FormatDouble:
		mixTyped(dst, df, r, src.f64, scale)
	case FormatComplex:
		for k := range r.count {
			i := r.dstOffset + k*r.dstStride
			j := r.srcOffset + k*r.srcStride
			dst[i] = quantize[D](float64(dst[i])+real(src.c128[j])*scale, df)
		}
	}
}

func mixTyped[D, S PCM](dst []D, df Format, r region, src []S, scale float64) {
	for k := range r.count {
		i := r.dstOffset + k*r.dstStride
		j := r.srcOffset + k*r.srcStride
		dst[i] = quantize[D](float64(dst[i])+float64(src[j])*scale, df)
	}
}

type signedInt interface {
	int8 | int16 | int32 | int64
}

// mixSameInt adds in the integer domain so identity copies stay exact.
func mixSameInt[T signedInt](dst, src []T, r region, lo, hi int64) {
	for k := range r.count {
		i := r.dstOffset + k*r.dstStride
		j := r.srcOffset + k*r.srcStride
		a, b := int64(dst[i]), int64(src[j])
		sum := a + b
		switch {
		case a > 0 && b > 0 && sum < 0:
			sum = hi
		case a < 0 && b < 0 && sum >= 0:
			sum = lo
		}
		dst[i] = T(min(max(sum, lo), hi))
	}
}

func mixComplex(dst []complex128, r region, src *Buffer) {
	if src.format == FormatComplex {
		for k := range r.count {
			dst[r.dstOffset+k*r.dstStride] += src.c128[r.srcOffset+k*r.srcStride]
		}
		return
	}
	for k := range r.count {
		dst[r.dstOffset+k*r.dstStride] += complex(src.At(r.srcOffset+k*r.srcStride), 0)
	}
}
