package mixcore

import (
	"errors"
	"math"
	"testing"
)

func TestResampleLength(t *testing.T) {
	tests := []struct {
		from, to int
		conv     Converter
	}{
		{22050, 44100, ConverterLinear},
		{44100, 22050, ConverterSincFast},
		{48000, 44100, ConverterZeroOrder},
	}
	for _, tt := range tests {
		in := NewBuffer(FormatFloat, 4800)
		Synth(in, Sine, Params{Freq: 200, Volume: 0.5, SampleRate: tt.from, Frames: in.Len()})
		out, err := Resample(in, 1, tt.from, tt.to, tt.conv)
		if err != nil {
			t.Fatalf("%d -> %d: %v", tt.from, tt.to, err)
		}
		want := float64(in.Len()) * float64(tt.to) / float64(tt.from)
		if got := float64(out.Len()); math.Abs(got-want) > want*0.01 {
			t.Errorf("%d -> %d: %g frames, want about %g", tt.from, tt.to, got, want)
		}
		if out.Format() != FormatFloat {
			t.Errorf("format = %v", out.Format())
		}
	}
}

func TestResampleSameRateClones(t *testing.T) {
	in := mustWrap(t, FormatS16, []int16{1, 2, 3})
	out, err := Resample(in, 1, 44100, 44100, ConverterSincBest)
	if err != nil {
		t.Fatal(err)
	}
	out.S16()[0] = 9
	if in.S16()[0] != 1 || out.Len() != 3 {
		t.Errorf("same rate result shares storage")
	}
}

func TestResampleErrors(t *testing.T) {
	b := NewBuffer(FormatFloat, 16)
	if _, err := Resample(b, 1, 0, 44100, ConverterLinear); !errors.Is(err, ErrDegenerateParameters) {
		t.Errorf("zero rate = %v", err)
	}
	if _, err := Resample(NewBuffer(FormatComplex, 4), 1, 100, 200, ConverterLinear); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("complex = %v", err)
	}
	if _, err := Resample(b, 1, 100, 200, Converter(7)); err == nil {
		t.Errorf("invalid converter accepted")
	}
	if _, err := Resample(b, 1, 100, 10000, ConverterLinear); err == nil {
		t.Errorf("ratio 100 accepted")
	}
}

func TestResamplerStream(t *testing.T) {
	const blocks, frames = 4, resampleBlockFrames
	r, err := NewResampler(ConverterLinear, 1, 2, FormatFloat)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	in := NewBuffer(FormatFloat, frames)
	out := NewBuffer(FormatFloat, frames*resampleMaxRatio)
	total := 0
	for i := range blocks {
		Synth(in, Sine, Params{Freq: 100, Volume: 0.5, SampleRate: 8000, Offset: i * frames, Frames: frames})
		ClearAll(out)
		n, err := r.Process(out, in, i == blocks-1)
		if err != nil {
			t.Fatal(err)
		}
		if p := Peak(out, 1, out.Len()); p > 0.6 {
			t.Errorf("block %d: peak %g", i, p)
		}
		total += n
	}
	want := float64(blocks * frames * 2)
	if math.Abs(float64(total)-want) > want*0.05 {
		t.Errorf("produced %d frames, want about %g", total, want)
	}
	if _, err := NewResampler(ConverterLinear, 1, 64, FormatFloat); err == nil {
		t.Errorf("ratio 64 accepted")
	}
}
