package mixcore

import (
	"fmt"
	"math"
	"strings"
)

// Oscillator selects a waveform for carriers and LFOs.
type Oscillator uint8

const (
	Sine Oscillator = iota
	Sawtooth
	Triangle
	Square
	Impulse
)

// Oscillators lists every waveform.
var Oscillators = []Oscillator{Sine, Sawtooth, Triangle, Square, Impulse}

var oscillatorNames = []string{"sine", "sawtooth", "triangle", "square", "impulse"}

func (o Oscillator) String() string {
	if int(o) < len(oscillatorNames) {
		return oscillatorNames[o]
	}
	return fmt.Sprintf("Oscillator(%d)", uint8(o))
}

func ParseOscillator(name string) (Oscillator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range oscillatorNames {
		if n == name {
			return Oscillator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown oscillator: %q", name)
}

// impulseWidth is the duty cycle of the impulse waveform when it runs
// as an LFO.
const impulseWidth = 1.0 / 16

func calcSin(phase float64) float64 {
	return math.Sin(phase * 2 * math.Pi)
}

func calcSaw(phase float64) float64 {
	if phase < 0.5 {
		return phase * 2.0
	} else {
		return -2.0 + phase*2.0
	}
}

func calcTriangle(phase float64) float64 {
	if phase < 0.25 {
		return phase * 4.0
	} else if phase < 0.75 {
		return 1.0 - (phase-0.25)*4.0
	} else {
		return -1.0 + (phase-0.75)*4.0
	}
}

func calcSquare(phase float64) float64 {
	if phase < 0.5 {
		return 1.0
	} else {
		return -1.0
	}
}

// Shape evaluates the unit waveform at phase in [0,1). Impulse is
// shaped as its LFO pulse here; carriers render it as a one sample
// spike per cycle.
func (o Oscillator) Shape(phase float64) float64 {
	switch o {
	case Sine:
		return calcSin(phase)
	case Sawtooth:
		return calcSaw(phase)
	case Triangle:
		return calcTriangle(phase)
	case Square:
		return calcSquare(phase)
	case Impulse:
		if phase < impulseWidth {
			return 1
		}
		return 0
	}
	return 0
}

// partialIntegral is the integral of Shape over [0, phase].
func (o Oscillator) partialIntegral(p float64) float64 {
	switch o {
	case Sine:
		return (1 - math.Cos(2*math.Pi*p)) / (2 * math.Pi)
	case Sawtooth:
		if p < 0.5 {
			return p * p
		}
		return (1 - p) * (1 - p)
	case Triangle:
		switch {
		case p < 0.25:
			return 2 * p * p
		case p < 0.75:
			return 2*p - 2*p*p - 0.25
		default:
			return 2*p*p - 4*p + 2
		}
	case Square:
		if p < 0.5 {
			return p
		}
		return 1 - p
	case Impulse:
		return min(p, impulseWidth)
	}
	return 0
}

// cycleIntegral is the integral of Shape over one full cycle.
func (o Oscillator) cycleIntegral() float64 {
	if o == Impulse {
		return impulseWidth
	}
	return 0
}

// integral returns the integral of Shape from 0 to x cycles.
func (o Oscillator) integral(x float64) float64 {
	k := math.Floor(x)
	return k*o.cycleIntegral() + o.partialIntegral(x-k)
}
