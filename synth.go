package mixcore

import (
	"fmt"
	"math"
)

// Params describes one render call. Offset is the absolute frame
// index of the first rendered frame; successive calls that advance
// Offset by the frames already rendered produce a gapless stream.
type Params struct {
	Freq       float64 // Hz
	Phase      float64 // radians
	Volume     float64
	SampleRate int
	Offset     int
	Frames     int

	LFOOsc   Oscillator
	LFOFreq  float64 // Hz
	LFODepth float64 // relative frequency deviation
	Tuning   float64 // cents
}

// Validate reports parameters the renderers would treat as silence.
func (p Params) Validate() error {
	if p.Freq <= 0 || p.SampleRate <= 0 || p.Frames <= 0 {
		return fmt.Errorf("freq=%g samplerate=%d frames=%d: %w",
			p.Freq, p.SampleRate, p.Frames, ErrDegenerateParameters)
	}
	return nil
}

func (p Params) degenerate() bool {
	return p.Freq <= 0 || p.SampleRate <= 0 || p.Frames <= 0 ||
		math.IsNaN(p.Freq) || math.IsInf(p.Freq, 0)
}

// phasor maps an absolute frame index to carrier phase in cycles.
type phasor struct {
	freq  float64
	rate  float64
	phase float64
	lfo   Oscillator
	lfoF  float64
	depth float64
	fm    bool
}

func newPhasor(p Params, fm bool) phasor {
	ph := phasor{
		freq:  p.Freq,
		rate:  float64(p.SampleRate),
		phase: p.Phase / (2 * math.Pi),
	}
	if fm {
		ph.freq *= math.Exp2(p.Tuning / 1200)
		if p.LFOFreq > 0 && p.LFODepth != 0 {
			ph.fm = true
			ph.lfo = p.LFOOsc
			ph.lfoF = p.LFOFreq
			ph.depth = p.LFODepth
		}
	}
	return ph
}

// cycles integrates the instantaneous frequency freq*(1+depth*lfo(t))
// in closed form so any frame can be evaluated independently.
func (ph *phasor) cycles(n float64) float64 {
	c := ph.freq*n/ph.rate + ph.phase
	if ph.fm {
		c += ph.depth * ph.freq / ph.lfoF * ph.lfo.integral(ph.lfoF*n/ph.rate)
	}
	return c
}

func (ph *phasor) value(o Oscillator, n, shift float64) float64 {
	c := ph.cycles(n) - shift
	if o == Impulse {
		prev := ph.cycles(n-1) - shift
		if math.Floor(c) > math.Floor(prev) {
			return 1
		}
		return 0
	}
	return o.Shape(c - math.Floor(c))
}

// Synth overwrites the first p.Frames elements of b with the carrier
// waveform. LFO and tuning fields are ignored.
func Synth(b *Buffer, osc Oscillator, p Params) {
	render(b, osc, p, false)
}

// FMSynth is Synth with the carrier frequency tuned by p.Tuning cents
// and modulated by the LFO.
func FMSynth(b *Buffer, osc Oscillator, p Params) {
	render(b, osc, p, true)
}

func render(b *Buffer, osc Oscillator, p Params, fm bool) {
	if b == nil || p.degenerate() {
		return
	}
	frames := min(p.Frames, b.Len())
	ph := newPhasor(p, fm)
	switch b.format {
	case FormatS8:
		renderPCM(b.s8, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatS16:
		renderPCM(b.s16, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatS24, FormatS32:
		renderPCM(b.s32, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatS64:
		renderPCM(b.s64, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatFloat:
		renderPCM(b.f32, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatDouble:
		renderPCM(b.f64, b.format, osc, &ph, p.Offset, frames, p.Volume)
	case FormatComplex:
		renderComplex(b.c128, osc, &ph, p.Offset, frames, p.Volume)
	}
}

func renderPCM[T PCM](dst []T, f Format, osc Oscillator, ph *phasor, offset, frames int, volume float64) {
	scale := volume * f.FullScale()
	for i := range frames {
		dst[i] = quantize[T](ph.value(osc, float64(offset+i), 0)*scale, f)
	}
}

// renderComplex stores the quadrature pair: the waveform and the same
// waveform a quarter cycle behind.
func renderComplex(dst []complex128, osc Oscillator, ph *phasor, offset, frames int, volume float64) {
	for i := range frames {
		n := float64(offset + i)
		dst[i] = complex(volume*ph.value(osc, n, 0), volume*ph.value(osc, n, 0.25))
	}
}

// XCrossCount counts sign changes between consecutive elements of b.
// Zero counts as positive.
func XCrossCount(b *Buffer) int {
	n := b.Len()
	if n < 2 {
		return 0
	}
	count := 0
	prev := b.At(0) < 0
	for i := 1; i < n; i++ {
		neg := b.At(i) < 0
		if neg != prev {
			count++
		}
		prev = neg
	}
	return count
}

// Voice renders a continuous stream by carrying the frame offset from
// one call to the next.
type Voice struct {
	Osc    Oscillator
	Params Params
	FM     bool
}

// Render fills b and advances the offset by b.Len() frames.
func (v *Voice) Render(b *Buffer) {
	p := v.Params
	p.Frames = b.Len()
	if v.FM {
		FMSynth(b, v.Osc, p)
	} else {
		Synth(b, v.Osc, p)
	}
	v.Params.Offset += p.Frames
}
