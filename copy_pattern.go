package mixcore

import (
	"fmt"
	"sync/atomic"
)

// CopyPatternAudioRun is the audio-level part of the pattern copier. It
// selects the pattern bank and ties the clock and the counter together.
type CopyPatternAudioRun struct {
	recallBase

	bankI, bankJ int

	delay      *DelayAudioRun
	countBeats *CountBeatsAudioRun
}

func NewCopyPatternAudioRun(audio *Audio, bankI, bankJ int) *CopyPatternAudioRun {
	c := &CopyPatternAudioRun{bankI: bankI, bankJ: bankJ}
	c.init(KindCopyPatternAudioRun, audio, nil)
	return c
}

func (c *CopyPatternAudioRun) Duplicate(id *RecallID) (Recall, error) {
	if id == nil {
		return nil, ErrUnresolved
	}
	d := &CopyPatternAudioRun{bankI: c.bankI, bankJ: c.bankJ}
	d.init(KindCopyPatternAudioRun, c.audio, id)
	return d, nil
}

func (c *CopyPatternAudioRun) ResolveDependencies() error {
	if done, err := c.checkResolvable(); done || err != nil {
		return err
	}
	delay, ok := c.audio.FindRecall(KindDelayAudioRun, c.id).(*DelayAudioRun)
	if !ok {
		return fmt.Errorf("resolve %s: no %s: %w", c.kind, KindDelayAudioRun, ErrUnresolved)
	}
	countBeats, ok := c.audio.FindRecall(KindCountBeatsAudioRun, c.id).(*CountBeatsAudioRun)
	if !ok {
		return fmt.Errorf("resolve %s: no %s: %w", c.kind, KindCountBeatsAudioRun, ErrUnresolved)
	}
	c.delay, c.countBeats = delay, countBeats
	c.transition(StateIdle, StateResolved)
	return nil
}

func (c *CopyPatternAudioRun) RunInitPre() { c.start(func() {}, func() {}) }

func (c *CopyPatternAudioRun) Done()   { c.finish(StateDone, func() {}) }
func (c *CopyPatternAudioRun) Cancel() { c.finish(StateCancelled, func() {}) }

// Bank returns the pattern bank the copier reads.
func (c *CopyPatternAudioRun) Bank() (i, j int) { return c.bankI, c.bankJ }

// SetBank selects the pattern bank. Call it while playback is stopped.
func (c *CopyPatternAudioRun) SetBank(i, j int) { c.bankI, c.bankJ = i, j }

func (c *CopyPatternAudioRun) CountBeats() *CountBeatsAudioRun { return c.countBeats }

// CopyPatternChannelRun fires the pattern of one channel. On every
// alloc tick for its run order whose step bit is set it starts one
// audio signal in each recycling of the channel chain.
type CopyPatternChannelRun struct {
	recallBase

	channel  *Channel
	runOrder int

	audioRun    *CopyPatternAudioRun
	countBeats  *CountBeatsAudioRun
	unsubscribe func()

	fired       atomic.Uint64
	allocated   atomic.Uint64
	guardMisses atomic.Uint64
}

// NewCopyPatternChannelRun returns a template copier for channel.
func NewCopyPatternChannelRun(audio *Audio, channel *Channel) *CopyPatternChannelRun {
	c := &CopyPatternChannelRun{channel: channel}
	c.init(KindCopyPatternChannelRun, audio, nil)
	return c
}

func (c *CopyPatternChannelRun) Duplicate(id *RecallID) (Recall, error) {
	if id == nil {
		return nil, ErrUnresolved
	}
	d := &CopyPatternChannelRun{channel: c.channel, runOrder: id.RunOrder}
	d.init(KindCopyPatternChannelRun, c.audio, id)
	return d, nil
}

// ResolveDependencies looks up the audio-level copier bound to the
// parent id, or to the own id for a recall started without a voice.
func (c *CopyPatternChannelRun) ResolveDependencies() error {
	if done, err := c.checkResolvable(); done || err != nil {
		return err
	}
	audioID := c.id
	if p := c.id.Parent(); p != nil {
		audioID = p
	}
	audioRun, ok := c.audio.FindRecall(KindCopyPatternAudioRun, audioID).(*CopyPatternAudioRun)
	if !ok || audioRun.countBeats == nil {
		return fmt.Errorf("resolve %s: no resolved %s: %w", c.kind, KindCopyPatternAudioRun, ErrUnresolved)
	}
	c.audioRun = audioRun
	c.countBeats = audioRun.countBeats
	c.transition(StateIdle, StateResolved)
	return nil
}

func (c *CopyPatternChannelRun) RunInitPre() {
	c.start(func() {
		c.countBeats.NotifyDependency(1)
		c.unsubscribe = c.countBeats.Delay().OnSequencerAlloc(c.runOrder, c.SequencerAlloc)
	}, c.release)
}

func (c *CopyPatternChannelRun) release() {
	c.unsubscribe()
	c.countBeats.NotifyDependency(-1)
}

func (c *CopyPatternChannelRun) Done()   { c.finish(StateDone, c.release) }
func (c *CopyPatternChannelRun) Cancel() { c.finish(StateCancelled, c.release) }

func (c *CopyPatternChannelRun) RunOrder() int { return c.runOrder }

func (c *CopyPatternChannelRun) Channel() *Channel { return c.channel }

func (c *CopyPatternChannelRun) accept(runOrder int) error {
	if runOrder != c.runOrder {
		return ErrSchedulingGuardMiss
	}
	return nil
}

// SequencerAlloc is the alloc tick callback. It runs on the audio
// thread and never fails; mismatched run orders are counted and
// ignored.
func (c *CopyPatternChannelRun) SequencerAlloc(runOrder int, delay float64, attack int) {
	if c.State() != StateRunning {
		return
	}
	if c.accept(runOrder) != nil {
		c.guardMisses.Add(1)
		return
	}
	if c.countBeats.Finished() {
		return
	}
	i, j := c.audioRun.Bank()
	if !c.channel.Pattern.GetBit(i, j, c.countBeats.Counter()) {
		return
	}
	c.fired.Add(1)
	ctx := c.id.Context
	c.audio.recyclings.Chain(c.channel.First, c.channel.Last, func(r *Recycling) bool {
		// a Cancel may land between recyclings
		if c.State() != StateRunning {
			return false
		}
		if ctx != nil && !ctx.Contains(r.Handle()) {
			return true
		}
		s := r.NewAudioSignal(c.id)
		r.CreateAudioSignalWithDefaults(s, delay, attack)
		s.Rewind()
		s.Connect()
		r.AddAudioSignal(s)
		c.allocated.Add(1)
		return true
	})
}

// Fired returns the number of steps whose bit was set.
func (c *CopyPatternChannelRun) Fired() uint64 { return c.fired.Load() }

// Allocated returns the number of audio signals started.
func (c *CopyPatternChannelRun) Allocated() uint64 { return c.allocated.Load() }

// GuardMisses returns the number of ticks addressed to other run orders.
func (c *CopyPatternChannelRun) GuardMisses() uint64 { return c.guardMisses.Load() }
