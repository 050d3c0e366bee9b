package mixcore

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
)

const (
	resampleBlockFrames = 1024
	resampleMaxRatio    = 1.0 * 16
	resampleMinRatio    = 1.0 / 16
)

// Converter selects the libsamplerate algorithm, 0..4 in libsamplerate
// order.
type Converter int

const (
	ConverterSincBest Converter = iota
	ConverterSincMedium
	ConverterSincFast
	ConverterZeroOrder
	ConverterLinear
)

func (c Converter) Valid() bool {
	return c >= ConverterSincBest && c <= ConverterLinear
}

func isValidRatio(ratio float64) bool {
	if !gosamplerate.IsValidRatio(ratio) {
		return false
	}
	if ratio < resampleMinRatio || ratio > resampleMaxRatio {
		return false
	}
	return true
}

// toFloat32 normalizes b into an interleaved float32 slice.
func toFloat32(b *Buffer, out []float32) []float32 {
	out = out[:0]
	for i := range b.Len() {
		out = append(out, float32(b.At(i)))
	}
	return out
}

// fromFloat32 writes normalized samples into a new buffer of format f.
func fromFloat32(in []float32, f Format) *Buffer {
	b := NewBuffer(f, len(in))
	for i, v := range in {
		b.Set(i, float64(v))
	}
	return b
}

// Resample converts interleaved b from fromRate to toRate. The result
// keeps the format of b.
func Resample(b *Buffer, channels, fromRate, toRate int, conv Converter) (*Buffer, error) {
	if b == nil || channels <= 0 || fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("resample: channels=%d from=%d to=%d: %w",
			channels, fromRate, toRate, ErrDegenerateParameters)
	}
	if b.format == FormatComplex {
		return nil, formatErr("resample", uint32(b.format))
	}
	if !conv.Valid() {
		return nil, fmt.Errorf("resample: invalid converter: %d - must be between 0..4", conv)
	}
	if fromRate == toRate {
		return b.Clone(), nil
	}
	ratio := float64(toRate) / float64(fromRate)
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("resample: invalid ratio: %f", ratio)
	}
	in := toFloat32(b, make([]float32, 0, b.Len()))
	out, err := gosamplerate.Simple(in, ratio, channels, int(conv))
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return fromFloat32(out, b.format), nil
}

// Resampler converts a stream block by block. Buffers are allocated
// once in NewResampler so Process can run on the audio thread.
type Resampler struct {
	src       gosamplerate.Src
	channels  int
	ratio     float64
	inBlock   []float32
	outFormat Format
}

func NewResampler(conv Converter, channels int, ratio float64, f Format) (*Resampler, error) {
	if !isValidRatio(ratio) {
		return nil, fmt.Errorf("resample: invalid ratio: %f", ratio)
	}
	outputBufferLen := int(resampleBlockFrames*resampleMaxRatio) * channels
	src, err := gosamplerate.New(int(conv), channels, outputBufferLen)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return &Resampler{
		src:       src,
		channels:  channels,
		ratio:     ratio,
		inBlock:   make([]float32, 0, resampleBlockFrames*channels),
		outFormat: f,
	}, nil
}

// Process converts one block of interleaved input and mixes the
// produced frames into dst starting at element 0. It returns the
// number of elements produced.
func (r *Resampler) Process(dst, in *Buffer, endOfInput bool) (int, error) {
	r.inBlock = toFloat32(in, r.inBlock)
	out, err := r.src.Process(r.inBlock, r.ratio, endOfInput)
	if err != nil {
		return 0, err
	}
	n := min(len(out), dst.Len())
	for i := range n {
		dst.Set(i, dst.At(i)+float64(out[i]))
	}
	return n, nil
}

func (r *Resampler) Close() error {
	return gosamplerate.Delete(r.src)
}
