package mixcore

import (
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// drumSMF writes a one bar beat at 96 ticks per quarter: kick on the
// quarters, snare on 2 and 4, a slightly early hat on the last 16th.
func drumSMF(t *testing.T) *bytes.Buffer {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	var tr smf.Track
	tr.Add(0, midi.NoteOn(9, 36, 100))
	tr.Add(24, midi.NoteOff(9, 36))
	tr.Add(72, midi.NoteOn(9, 38, 100), midi.NoteOn(9, 36, 100))
	tr.Add(24, midi.NoteOff(9, 38), midi.NoteOff(9, 36))
	tr.Add(72, midi.NoteOn(9, 36, 100))
	tr.Add(24, midi.NoteOff(9, 36))
	tr.Add(72, midi.NoteOn(9, 38, 100), midi.NoteOn(9, 36, 100))
	tr.Add(24, midi.NoteOff(9, 38), midi.NoteOff(9, 36))
	tr.Add(43, midi.NoteOn(9, 42, 90)) // tick 355, rounds to step 15
	tr.Add(0, midi.NoteOn(1, 42, 90))  // other channel
	tr.Add(10, midi.NoteOff(9, 42))
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestReadPatternsSMF(t *testing.T) {
	patterns, err := ReadPatternsSMF(drumSMF(t), SMFImport{
		Keys:            []uint8{36, 38, 42},
		Channel:         9,
		StepsPerQuarter: 4,
		Length:          16,
		DimI:            1,
		DimJ:            1,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"x...x...x...x...",
		"....x.......x...",
		"...............x",
	}
	for n, w := range want {
		if got := patterns[n].Steps(0, 0); got != w {
			t.Errorf("key %d: %q, want %q", n, got, w)
		}
	}
}

func TestReadPatternsSMFWraps(t *testing.T) {
	patterns, err := ReadPatternsSMF(drumSMF(t), SMFImport{
		Keys:            []uint8{38},
		Channel:         -1,
		StepsPerQuarter: 2,
		Length:          4,
		BankI:           1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if i, j, n := patterns[0].Dim(); i != 2 || j != 1 || n != 4 {
		t.Fatalf("Dim() = %d, %d, %d", i, j, n)
	}
	// steps 2 and 6 both land on step 2
	if got := patterns[0].Steps(1, 0); got != "..x." {
		t.Errorf("steps = %q", got)
	}
}

func TestReadPatternsSMFErrors(t *testing.T) {
	if _, err := ReadPatternsSMF(bytes.NewReader(nil), SMFImport{Keys: []uint8{36}}); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("zero grid error = %v", err)
	}
	opts := SMFImport{Keys: []uint8{36}, StepsPerQuarter: 4, Length: 16}
	if _, err := ReadPatternsSMF(bytes.NewReader([]byte("not a midi file")), opts); err == nil {
		t.Errorf("garbage accepted")
	}
}
