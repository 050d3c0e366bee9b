package mixcore

import (
	"fmt"
	"sync/atomic"
)

// CountBeatsAudioRun tracks the current sequencer step. It advances on
// every count tick of its clock, after the alloc listeners have seen
// the step.
type CountBeatsAudioRun struct {
	recallBase

	length    int
	loop      bool
	loopStart int
	loopEnd   int

	delay       *DelayAudioRun
	unsubscribe func()

	counter  atomic.Int64
	finished atomic.Bool
}

// NewCountBeatsAudioRun returns a template counter over length steps.
// A looping counter wraps from loopEnd back to loopStart.
func NewCountBeatsAudioRun(audio *Audio, length int, loop bool, loopStart, loopEnd int) *CountBeatsAudioRun {
	c := &CountBeatsAudioRun{}
	c.init(KindCountBeatsAudioRun, audio, nil)
	c.configure(length, loop, loopStart, loopEnd)
	return c
}

func (c *CountBeatsAudioRun) configure(length int, loop bool, loopStart, loopEnd int) {
	c.length = max(length, 1)
	c.loop = loop
	c.loopStart = min(max(loopStart, 0), c.length-1)
	if loopEnd <= c.loopStart || loopEnd > c.length {
		loopEnd = c.length
	}
	c.loopEnd = loopEnd
}

func (c *CountBeatsAudioRun) Duplicate(id *RecallID) (Recall, error) {
	if id == nil {
		return nil, ErrUnresolved
	}
	d := &CountBeatsAudioRun{}
	d.init(KindCountBeatsAudioRun, c.audio, id)
	d.configure(c.length, c.loop, c.loopStart, c.loopEnd)
	return d, nil
}

// ResolveDependencies finds the clock bound to the same id.
func (c *CountBeatsAudioRun) ResolveDependencies() error {
	if done, err := c.checkResolvable(); done || err != nil {
		return err
	}
	delay, ok := c.audio.FindRecall(KindDelayAudioRun, c.id).(*DelayAudioRun)
	if !ok {
		return fmt.Errorf("resolve %s: no %s: %w", c.kind, KindDelayAudioRun, ErrUnresolved)
	}
	c.delay = delay
	c.transition(StateIdle, StateResolved)
	return nil
}

func (c *CountBeatsAudioRun) RunInitPre() {
	c.start(func() {
		c.delay.NotifyDependency(1)
		c.unsubscribe = c.delay.OnSequencerCount(c.count)
	}, c.release)
}

func (c *CountBeatsAudioRun) release() {
	c.unsubscribe()
	c.delay.NotifyDependency(-1)
}

func (c *CountBeatsAudioRun) Done()   { c.finish(StateDone, c.release) }
func (c *CountBeatsAudioRun) Cancel() { c.finish(StateCancelled, c.release) }

func (c *CountBeatsAudioRun) count(delay float64, attack int) {
	if c.finished.Load() {
		return
	}
	next := c.counter.Load() + 1
	switch {
	case c.loop && next >= int64(c.loopEnd):
		next = int64(c.loopStart)
	case !c.loop && next >= int64(c.length):
		c.finished.Store(true)
		return
	}
	c.counter.Store(next)
}

// Counter returns the current step.
func (c *CountBeatsAudioRun) Counter() int { return int(c.counter.Load()) }

// Finished reports whether a non-looping counter ran past its length.
func (c *CountBeatsAudioRun) Finished() bool { return c.finished.Load() }

func (c *CountBeatsAudioRun) Length() int { return c.length }

// Delay returns the clock the counter listens to.
func (c *CountBeatsAudioRun) Delay() *DelayAudioRun { return c.delay }
