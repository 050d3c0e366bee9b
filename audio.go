package mixcore

import (
	"fmt"
	"sync"
)

// Channel is one pattern line of an audio machine. Its recycling chain
// runs from First to Last inclusive.
type Channel struct {
	Line    int
	Pattern *Pattern
	First   RecyclingHandle
	Last    RecyclingHandle
}

// Audio is a pattern machine: a set of channels sharing a recycling
// pool and the recalls scheduled on them.
type Audio struct {
	Name       string
	Format     Format
	SampleRate int
	BufferSize int

	recyclings *RecyclingPool
	channels   []*Channel

	mu      sync.Mutex
	recalls []Recall
}

// NewAudio creates lines channels, each with a single recycling and a
// pattern of the given dimensions.
func NewAudio(name string, lines int, f Format, sampleRate, bufferSize int, pool *SignalPool) *Audio {
	a := &Audio{
		Name:       name,
		Format:     f,
		SampleRate: sampleRate,
		BufferSize: bufferSize,
		recyclings: NewRecyclingPool(pool),
	}
	for line := range lines {
		h := a.recyclings.New(f, sampleRate, bufferSize)
		a.channels = append(a.channels, &Channel{
			Line:    line,
			Pattern: NewPattern(1, 1, 16),
			First:   h,
			Last:    h,
		})
	}
	return a
}

func (a *Audio) String() string {
	return fmt.Sprintf("Audio(%s lines=%d format=%s)", a.Name, len(a.channels), a.Format)
}

func (a *Audio) Recyclings() *RecyclingPool { return a.recyclings }

func (a *Audio) Channels() []*Channel { return a.channels }

// Channel returns the channel of line or nil.
func (a *Audio) Channel(line int) *Channel {
	if line < 0 || line >= len(a.channels) {
		return nil
	}
	return a.channels[line]
}

// ExtendChannel appends a fresh recycling to the chain of line and
// returns it.
func (a *Audio) ExtendChannel(line int) (RecyclingHandle, error) {
	ch := a.Channel(line)
	if ch == nil {
		return NoRecycling, fmt.Errorf("extend channel %d: no such line", line)
	}
	h := a.recyclings.New(a.Format, a.SampleRate, a.BufferSize)
	a.recyclings.Link(ch.Last, h)
	ch.Last = h
	return h, nil
}

// AllRecyclings returns every recycling handle of every channel chain.
func (a *Audio) AllRecyclings() []RecyclingHandle {
	var hs []RecyclingHandle
	for _, ch := range a.channels {
		a.recyclings.Chain(ch.First, ch.Last, func(r *Recycling) bool {
			hs = append(hs, r.Handle())
			return true
		})
	}
	return hs
}

func (a *Audio) AddRecall(r Recall) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recalls = append(a.recalls, r)
}

// RemoveRecall drops r from the audio.
func (a *Audio) RemoveRecall(r Recall) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, x := range a.recalls {
		if x == r {
			a.recalls = append(a.recalls[:i], a.recalls[i+1:]...)
			return
		}
	}
}

// Recalls returns a snapshot of the attached recalls.
func (a *Audio) Recalls() []Recall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Recall(nil), a.recalls...)
}

// FindRecall returns the non-template recall of kind bound to id.
func (a *Audio) FindRecall(kind RecallKind, id *RecallID) Recall {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.recalls {
		if r.Kind() == kind && r.RecallID() == id {
			return r
		}
	}
	return nil
}
