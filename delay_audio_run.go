package mixcore

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// AllocFunc receives the sequencer-alloc tick. delay is the step length
// in buffers and attack the frame within the current buffer at which
// the step begins.
type AllocFunc func(runOrder int, delay float64, attack int)

// CountFunc receives the tick that follows every alloc dispatch.
type CountFunc func(delay float64, attack int)

type allocListener struct {
	id       uint64
	runOrder int
	fn       AllocFunc
}

type countListener struct {
	id uint64
	fn CountFunc
}

// listeners is swapped as a whole so the audio thread reads it without
// locking.
type listeners struct {
	alloc  []allocListener
	count  []countListener
	orders []int
}

// DelayAudioRun is the step clock. Run is called once per buffer
// period and emits one alloc dispatch per registered run order for
// every step boundary inside the buffer.
type DelayAudioRun struct {
	recallBase

	bpm          float64
	stepsPerBeat int

	elapsed  int64
	nextStep float64

	mu        sync.Mutex
	nextID    uint64
	listeners atomic.Pointer[listeners]
	ticks     atomic.Uint64
}

// NewDelayAudioRun returns a template clock.
func NewDelayAudioRun(audio *Audio, bpm float64, stepsPerBeat int) *DelayAudioRun {
	d := &DelayAudioRun{bpm: bpm, stepsPerBeat: max(stepsPerBeat, 1)}
	d.init(KindDelayAudioRun, audio, nil)
	d.listeners.Store(&listeners{})
	return d
}

func (d *DelayAudioRun) Duplicate(id *RecallID) (Recall, error) {
	if id == nil {
		return nil, ErrUnresolved
	}
	c := &DelayAudioRun{bpm: d.bpm, stepsPerBeat: d.stepsPerBeat}
	c.init(KindDelayAudioRun, d.audio, id)
	c.listeners.Store(&listeners{})
	return c, nil
}

// ResolveDependencies has nothing to wire for the clock.
func (d *DelayAudioRun) ResolveDependencies() error {
	if done, err := d.checkResolvable(); done || err != nil {
		return err
	}
	d.transition(StateIdle, StateResolved)
	return nil
}

func (d *DelayAudioRun) RunInitPre() {
	d.start(func() {}, func() {})
}

func (d *DelayAudioRun) Done()   { d.finish(StateDone, func() {}) }
func (d *DelayAudioRun) Cancel() { d.finish(StateCancelled, func() {}) }

// Delay returns the step length in buffer periods.
func (d *DelayAudioRun) Delay() float64 {
	a := d.audio
	if a == nil || d.bpm <= 0 || a.BufferSize <= 0 {
		return math.Inf(1)
	}
	return 60 / d.bpm * float64(a.SampleRate) / float64(a.BufferSize) / float64(d.stepsPerBeat)
}

// SetBPM changes the tempo. Call it while playback is stopped.
func (d *DelayAudioRun) SetBPM(bpm float64) { d.bpm = bpm }

func (d *DelayAudioRun) BPM() float64 { return d.bpm }

// Ticks returns the number of step boundaries emitted.
func (d *DelayAudioRun) Ticks() uint64 { return d.ticks.Load() }

// Run advances the clock by one buffer period.
func (d *DelayAudioRun) Run() {
	if d.State() != StateRunning {
		return
	}
	delay := d.Delay()
	if math.IsInf(delay, 0) || delay <= 0 {
		return
	}
	bufferSize := d.audio.BufferSize
	end := float64(d.elapsed + 1)
	for d.nextStep < end {
		attack := int((d.nextStep - float64(d.elapsed)) * float64(bufferSize))
		d.emit(delay, min(max(attack, 0), bufferSize-1))
		d.nextStep += delay
	}
	d.elapsed++
}

func (d *DelayAudioRun) emit(delay float64, attack int) {
	ls := d.listeners.Load()
	for _, order := range ls.orders {
		for _, l := range ls.alloc {
			l.fn(order, delay, attack)
		}
	}
	for _, l := range ls.count {
		l.fn(delay, attack)
	}
	d.ticks.Add(1)
}

// Reset rewinds the clock to its first step.
func (d *DelayAudioRun) Reset() {
	d.elapsed = 0
	d.nextStep = 0
}

// update copies the listener set, applies fn and publishes the result.
func (d *DelayAudioRun) update(fn func(*listeners)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.listeners.Load()
	ls := &listeners{
		alloc: slices.Clone(old.alloc),
		count: slices.Clone(old.count),
	}
	fn(ls)
	for _, l := range ls.alloc {
		if !slices.Contains(ls.orders, l.runOrder) {
			ls.orders = append(ls.orders, l.runOrder)
		}
	}
	slices.Sort(ls.orders)
	d.listeners.Store(ls)
}

// OnSequencerAlloc subscribes fn for runOrder and returns the function
// that removes it.
func (d *DelayAudioRun) OnSequencerAlloc(runOrder int, fn AllocFunc) (unsubscribe func()) {
	var id uint64
	d.update(func(ls *listeners) {
		d.nextID++
		id = d.nextID
		ls.alloc = append(ls.alloc, allocListener{id: id, runOrder: runOrder, fn: fn})
	})
	return func() {
		d.update(func(ls *listeners) {
			ls.alloc = slices.DeleteFunc(ls.alloc, func(l allocListener) bool { return l.id == id })
		})
	}
}

// OnSequencerCount subscribes fn to the count tick.
func (d *DelayAudioRun) OnSequencerCount(fn CountFunc) (unsubscribe func()) {
	var id uint64
	d.update(func(ls *listeners) {
		d.nextID++
		id = d.nextID
		ls.count = append(ls.count, countListener{id: id, fn: fn})
	})
	return func() {
		d.update(func(ls *listeners) {
			ls.count = slices.DeleteFunc(ls.count, func(l countListener) bool { return l.id == id })
		})
	}
}
