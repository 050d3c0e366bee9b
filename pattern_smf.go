package mixcore

import (
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMFImport controls how note starts in a standard MIDI file are
// quantized into pattern steps.
type SMFImport struct {
	// Keys maps each output pattern to the MIDI key that sets its steps.
	Keys []uint8
	// Channel restricts import to one MIDI channel; negative accepts all.
	Channel int
	// StepsPerQuarter is the grid resolution, 4 for 16th notes.
	StepsPerQuarter int
	// Length is the number of steps; later notes wrap around.
	Length int
	// BankI, BankJ select the bank the steps land in; DimI and DimJ
	// size the resulting patterns.
	BankI, BankJ int
	DimI, DimJ   int
}

// ReadPatternsSMF returns one pattern per entry of opts.Keys.
func ReadPatternsSMF(r io.Reader, opts SMFImport) ([]*Pattern, error) {
	if opts.StepsPerQuarter <= 0 || opts.Length <= 0 {
		return nil, fmt.Errorf("read smf: steps per quarter %d, length %d: %w",
			opts.StepsPerQuarter, opts.Length, ErrInvalidPattern)
	}
	dimI, dimJ := max(opts.DimI, opts.BankI+1), max(opts.DimJ, opts.BankJ+1)
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read smf: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || mt == 0 {
		return nil, fmt.Errorf("read smf: unsupported time format %v", s.TimeFormat)
	}
	ticksPerQuarter := int64(mt)
	index := make(map[uint8]int, len(opts.Keys))
	patterns := make([]*Pattern, len(opts.Keys))
	for n, key := range opts.Keys {
		index[key] = n
		patterns[n] = NewPattern(dimI, dimJ, opts.Length)
	}
	for _, track := range s.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			if !midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				continue
			}
			if opts.Channel >= 0 && int(ch) != opts.Channel {
				continue
			}
			n, ok := index[key]
			if !ok {
				continue
			}
			step := (abs*int64(opts.StepsPerQuarter) + ticksPerQuarter/2) / ticksPerQuarter
			bit := int(step % int64(opts.Length))
			if err := patterns[n].SetBit(opts.BankI, opts.BankJ, bit, true); err != nil {
				return nil, err
			}
		}
	}
	logger().Debug("imported smf patterns", "keys", len(opts.Keys), "tracks", len(s.Tracks), "ticks4th", ticksPerQuarter)
	return patterns, nil
}

// ReadPatternsSMFFile opens path and imports it.
func ReadPatternsSMFFile(path string, opts SMFImport) ([]*Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPatternsSMF(f, opts)
}
