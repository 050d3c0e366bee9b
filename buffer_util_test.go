package mixcore

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestClearIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, f := range Formats {
		b := randomBuffer(f, 64, rng)
		Clear(b, 1, b.Len())
		if !IsSilent(b) {
			t.Fatalf("%v: not silent after Clear", f)
		}
		Clear(b, 1, b.Len())
		for i := range b.Len() {
			if b.At(i) != 0 {
				t.Errorf("%v: element %d = %g after second Clear", f, i, b.At(i))
			}
		}
	}
}

func TestClearStride(t *testing.T) {
	b := mustWrap(t, FormatS32, []int32{1, 2, 3, 4, 5, 6})
	Clear(b, 2, 3)
	want := []int32{0, 2, 0, 4, 0, 6}
	for i, w := range want {
		if b.S32()[i] != w {
			t.Errorf("b[%d] = %d, want %d", i, b.S32()[i], w)
		}
	}
	Clear(b, 1, 100)
	if !IsSilent(b) {
		t.Errorf("count past the end did not clear everything")
	}
	Clear(nil, 1, 1)
}

func TestVolumeAndPeak(t *testing.T) {
	b := mustWrap(t, FormatS16, []int16{math.MaxInt16, -math.MaxInt16, 1000})
	Volume(b, 1, b.Len(), 0.5)
	if got := b.S16()[0]; got != 16384 {
		t.Errorf("b[0] = %d, want 16384", got)
	}
	if p := Peak(b, 1, b.Len()); math.Abs(p-16384.0/math.MaxInt16) > 1e-12 {
		t.Errorf("Peak = %g", p)
	}
}

func TestEnvelopeRamp(t *testing.T) {
	b := mustWrap(t, FormatDouble, []float64{1, 1, 1, 1, 1})
	Envelope(b, 1, b.Len(), 1, -0.25)
	want := []float64{1, 0.75, 0.5, 0.25, 0}
	for i, w := range want {
		if math.Abs(b.Double()[i]-w) > 1e-12 {
			t.Errorf("b[%d] = %g, want %g", i, b.Double()[i], w)
		}
	}
}

func TestBufferSetSaturates(t *testing.T) {
	for _, f := range PCMFormats {
		b := NewBuffer(f, 2)
		b.Set(0, 2)
		b.Set(1, -2)
		if f.IsInteger() {
			if got := b.At(0); got != 1 {
				t.Errorf("%v: At(0) = %g, want 1", f, got)
			}
			// the negative limit is one step beyond full scale
			if got := b.At(1); got > -1 || got < -1.01 {
				t.Errorf("%v: At(1) = %g, want about -1", f, got)
			}
		} else if b.At(0) != 2 {
			t.Errorf("%v: At(0) = %g, want 2", f, b.At(0))
		}
	}
}
