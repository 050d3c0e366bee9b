package mixcore

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the discrete Fourier transform of b. Complex
// buffers are transformed as analytic signals, scalar buffers through
// their normalized values.
func Spectrum(b *Buffer) []complex128 {
	n := b.Len()
	if n == 0 {
		return nil
	}
	if b.format == FormatComplex {
		return fft.FFT(b.c128)
	}
	x := make([]float64, n)
	for i := range n {
		x[i] = b.At(i)
	}
	return fft.FFTReal(x)
}

// Magnitudes returns |X[k]| for the first half of the spectrum.
func Magnitudes(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	m := make([]float64, half)
	for k := range half {
		m[k] = cmplx.Abs(spectrum[k])
	}
	return m
}

// PeakFrequency estimates the dominant frequency of b in Hz using the
// strongest bin below Nyquist, refined by parabolic interpolation.
func PeakFrequency(b *Buffer, sampleRate int) float64 {
	n := b.Len()
	if n < 4 || sampleRate <= 0 {
		return 0
	}
	m := Magnitudes(Spectrum(b))
	peak := 1
	for k := 2; k < len(m); k++ {
		if m[k] > m[peak] {
			peak = k
		}
	}
	bin := float64(peak)
	if peak+1 < len(m) {
		a, c, d := m[peak-1], m[peak], m[peak+1]
		if den := a - 2*c + d; den != 0 {
			bin += 0.5 * (a - d) / den
		}
	}
	return bin * float64(sampleRate) / float64(n)
}

// BinFrequency returns the centre frequency of bin k.
func BinFrequency(k, n, sampleRate int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return float64(k) * float64(sampleRate) / float64(n)
}
