package mixcore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ByteOrder selects the byte order of scalar accessors.
type ByteOrder uint8

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) binary() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "le"
	}
	return "be"
}

// ToCharBuffer packs the first frames elements of b into a new byte
// slice. Integer samples are written big-endian at their packed width;
// float, double and complex cells are copied in native layout.
func ToCharBuffer(b *Buffer, frames int) []byte {
	if b == nil || frames <= 0 {
		return nil
	}
	frames = min(frames, b.Len())
	w := b.format.Width()
	out := make([]byte, frames*w)
	ne := binary.NativeEndian
	switch b.format {
	case FormatS8:
		for i, v := range b.s8[:frames] {
			out[i] = byte(v)
		}
	case FormatS16:
		for i, v := range b.s16[:frames] {
			binary.BigEndian.PutUint16(out[i*2:], uint16(v))
		}
	case FormatS24:
		for i, v := range b.s32[:frames] {
			putS24(out[i*3:], v, BigEndian)
		}
	case FormatS32:
		for i, v := range b.s32[:frames] {
			binary.BigEndian.PutUint32(out[i*4:], uint32(v))
		}
	case FormatS64:
		for i, v := range b.s64[:frames] {
			binary.BigEndian.PutUint64(out[i*8:], uint64(v))
		}
	case FormatFloat:
		for i, v := range b.f32[:frames] {
			ne.PutUint32(out[i*4:], math.Float32bits(v))
		}
	case FormatDouble:
		for i, v := range b.f64[:frames] {
			ne.PutUint64(out[i*8:], math.Float64bits(v))
		}
	case FormatComplex:
		for i, v := range b.c128[:frames] {
			ne.PutUint64(out[i*16:], math.Float64bits(real(v)))
			ne.PutUint64(out[i*16+8:], math.Float64bits(imag(v)))
		}
	}
	return out
}

// CharBufferToTyped unpacks byteCount bytes of data into a new buffer
// of format f. A trailing partial element is dropped.
func CharBufferToTyped(data []byte, byteCount int, f Format) *Buffer {
	if data == nil || byteCount <= 0 || !f.Valid() {
		return nil
	}
	byteCount = min(byteCount, len(data))
	w := f.Width()
	n := byteCount / w
	b := NewBuffer(f, n)
	ne := binary.NativeEndian
	switch f {
	case FormatS8:
		for i := range n {
			b.s8[i] = int8(data[i])
		}
	case FormatS16:
		for i := range n {
			b.s16[i] = int16(binary.BigEndian.Uint16(data[i*2:]))
		}
	case FormatS24:
		for i := range n {
			b.s32[i] = getS24(data[i*3:], BigEndian)
		}
	case FormatS32:
		for i := range n {
			b.s32[i] = int32(binary.BigEndian.Uint32(data[i*4:]))
		}
	case FormatS64:
		for i := range n {
			b.s64[i] = int64(binary.BigEndian.Uint64(data[i*8:]))
		}
	case FormatFloat:
		for i := range n {
			b.f32[i] = math.Float32frombits(ne.Uint32(data[i*4:]))
		}
	case FormatDouble:
		for i := range n {
			b.f64[i] = math.Float64frombits(ne.Uint64(data[i*8:]))
		}
	case FormatComplex:
		for i := range n {
			re := math.Float64frombits(ne.Uint64(data[i*16:]))
			im := math.Float64frombits(ne.Uint64(data[i*16+8:]))
			b.c128[i] = complex(re, im)
		}
	}
	return b
}

// CharBufferToTypedStrict is CharBufferToTyped for setup code that
// wants misaligned input reported instead of truncated.
func CharBufferToTypedStrict(data []byte, byteCount int, f Format) (*Buffer, error) {
	if !f.Valid() {
		return nil, formatErr("char buffer to typed", uint32(f))
	}
	if byteCount < 0 || byteCount > len(data) || byteCount%f.Width() != 0 {
		return nil, fmt.Errorf("unpack %d bytes as %s: %w", byteCount, f, ErrInvalidBufferSize)
	}
	if byteCount == 0 {
		return NewBuffer(f, 0), nil
	}
	return CharBufferToTyped(data, byteCount, f), nil
}

func putS24(b []byte, v int32, o ByteOrder) {
	if o == LittleEndian {
		b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
		return
	}
	b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
}

// getS24 sign-extends bit 23 into the 32-bit cell.
func getS24(b []byte, o ByteOrder) int32 {
	var u uint32
	if o == LittleEndian {
		u = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	} else {
		u = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return int32(u<<8) >> 8
}

func ReadS8(b []byte) int8 { return int8(b[0]) }

func WriteS8(b []byte, v int8) { b[0] = byte(v) }

func ReadS16(b []byte, o ByteOrder) int16 { return int16(o.binary().Uint16(b)) }

func WriteS16(b []byte, v int16, o ByteOrder) { o.binary().PutUint16(b, uint16(v)) }

func ReadS24(b []byte, o ByteOrder) int32 { return getS24(b, o) }

func WriteS24(b []byte, v int32, o ByteOrder) { putS24(b, v, o) }

func ReadS32(b []byte, o ByteOrder) int32 { return int32(o.binary().Uint32(b)) }

func WriteS32(b []byte, v int32, o ByteOrder) { o.binary().PutUint32(b, uint32(v)) }

func ReadS64(b []byte, o ByteOrder) int64 { return int64(o.binary().Uint64(b)) }

func WriteS64(b []byte, v int64, o ByteOrder) { o.binary().PutUint64(b, uint64(v)) }

func ReadFloat(b []byte, o ByteOrder) float32 {
	return math.Float32frombits(o.binary().Uint32(b))
}

func WriteFloat(b []byte, v float32, o ByteOrder) {
	o.binary().PutUint32(b, math.Float32bits(v))
}

func ReadDouble(b []byte, o ByteOrder) float64 {
	return math.Float64frombits(o.binary().Uint64(b))
}

func WriteDouble(b []byte, v float64, o ByteOrder) {
	o.binary().PutUint64(b, math.Float64bits(v))
}

// ReadComplex reads the real then imaginary part, each 8 bytes in
// order o.
func ReadComplex(b []byte, o ByteOrder) complex128 {
	return complex(ReadDouble(b, o), ReadDouble(b[8:], o))
}

func WriteComplex(b []byte, v complex128, o ByteOrder) {
	WriteDouble(b, real(v), o)
	WriteDouble(b[8:], imag(v), o)
}

// ReadElement decodes the element of format f at the start of data into
// dst[i]. Short input leaves dst untouched.
func ReadElement(dst *Buffer, i int, data []byte, o ByteOrder) {
	if dst == nil || len(data) < dst.format.Width() {
		return
	}
	switch dst.format {
	case FormatS8:
		dst.s8[i] = ReadS8(data)
	case FormatS16:
		dst.s16[i] = ReadS16(data, o)
	case FormatS24:
		dst.s32[i] = ReadS24(data, o)
	case FormatS32:
		dst.s32[i] = ReadS32(data, o)
	case FormatS64:
		dst.s64[i] = ReadS64(data, o)
	case FormatFloat:
		dst.f32[i] = ReadFloat(data, o)
	case FormatDouble:
		dst.f64[i] = ReadDouble(data, o)
	case FormatComplex:
		dst.c128[i] = ReadComplex(data, o)
	}
}

// WriteElement encodes src[i] at the start of data.
func WriteElement(data []byte, src *Buffer, i int, o ByteOrder) {
	if src == nil || len(data) < src.format.Width() {
		return
	}
	switch src.format {
	case FormatS8:
		WriteS8(data, src.s8[i])
	case FormatS16:
		WriteS16(data, src.s16[i], o)
	case FormatS24:
		WriteS24(data, src.s32[i], o)
	case FormatS32:
		WriteS32(data, src.s32[i], o)
	case FormatS64:
		WriteS64(data, src.s64[i], o)
	case FormatFloat:
		WriteFloat(data, src.f32[i], o)
	case FormatDouble:
		WriteDouble(data, src.f64[i], o)
	case FormatComplex:
		WriteComplex(data, src.c128[i], o)
	}
}

// Encode packs n elements of b in byte order o into out, which must
// hold n*Width bytes. It does not allocate.
func Encode(out []byte, b *Buffer, n int, o ByteOrder) int {
	if b == nil {
		return 0
	}
	w := b.format.Width()
	n = min(n, b.Len(), len(out)/w)
	for i := range n {
		WriteElement(out[i*w:], b, i, o)
	}
	return n * w
}

// Decode is the inverse of Encode and returns the number of elements
// read.
func Decode(dst *Buffer, data []byte, o ByteOrder) int {
	if dst == nil {
		return 0
	}
	w := dst.format.Width()
	n := min(dst.Len(), len(data)/w)
	for i := range n {
		ReadElement(dst, i, data[i*w:], o)
	}
	return n
}

// SwapBytes reverses every wordSize-byte word of buf in place. Only the
// aligned prefix of the first count bytes is touched.
func SwapBytes(buf []byte, wordSize, count int) {
	if wordSize <= 1 || count <= 0 {
		return
	}
	count = min(count, len(buf))
	end := count / wordSize * wordSize
	for off := 0; off < end; off += wordSize {
		w := buf[off : off+wordSize]
		for i, j := 0, wordSize-1; i < j; i, j = i+1, j-1 {
			w[i], w[j] = w[j], w[i]
		}
	}
}
