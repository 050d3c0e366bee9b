package mixcore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// EngineConfig sizes an engine.
type EngineConfig struct {
	Name string
	// Lines is the number of pattern channels.
	Lines int
	// Format is the internal format of recyclings and signals.
	Format Format
	// DeviceFormat and Channels describe the interleaved output buffer.
	DeviceFormat Format
	Channels     int
	SampleRate   int
	BufferSize   int

	BPM          float64
	StepsPerBeat int
	Length       int
	Loop         bool
	LoopStart    int
	LoopEnd      int

	// PoolSize signals of PoolChunks buffers each are preallocated.
	PoolSize   int
	PoolChunks int
}

func (c EngineConfig) validate() error {
	switch {
	case c.Lines <= 0:
		return fmt.Errorf("engine: lines %d", c.Lines)
	case c.Channels <= 0:
		return fmt.Errorf("engine: channels %d", c.Channels)
	case c.SampleRate <= 0 || c.BufferSize <= 0 || c.BPM <= 0:
		return fmt.Errorf("engine: sample rate %d, buffer size %d, bpm %g: %w",
			c.SampleRate, c.BufferSize, c.BPM, ErrDegenerateParameters)
	case c.Length <= 0:
		return fmt.Errorf("engine: length %d: %w", c.Length, ErrInvalidPattern)
	}
	if !c.Format.Valid() {
		return formatErr("engine", uint32(c.Format))
	}
	if !c.DeviceFormat.Valid() {
		return formatErr("engine", uint32(c.DeviceFormat))
	}
	return nil
}

// Stats is a snapshot of the scheduler counters.
type Stats struct {
	Ticks        uint64
	Step         int
	Fired        uint64
	Allocated    uint64
	GuardMisses  uint64
	Live         int
	Retired      uint64
	Dependencies int32
}

// Engine plays the patterns of one Audio. Process is called from the
// audio thread once per buffer period; the other methods belong to the
// controlling thread.
type Engine struct {
	cfg   EngineConfig
	audio *Audio

	delayTemplate      *DelayAudioRun
	countBeatsTemplate *CountBeatsAudioRun
	audioRunTemplate   *CopyPatternAudioRun
	channelTemplates   []*CopyPatternChannelRun

	mu         sync.Mutex
	running    []Recall
	delay      *DelayAudioRun
	countBeats *CountBeatsAudioRun
	channels   []*CopyPatternChannelRun

	// clock is the running clock as seen by the audio thread.
	clock atomic.Pointer[DelayAudioRun]
	mix   *Buffer
	mode  CopyMode
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.StepsPerBeat <= 0 {
		cfg.StepsPerBeat = 4
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	mode, err := GetCopyMode(cfg.DeviceFormat, cfg.Format)
	if err != nil {
		return nil, err
	}
	pool := NewSignalPool(cfg.Format, cfg.PoolSize, cfg.PoolChunks, cfg.BufferSize)
	a := NewAudio(cfg.Name, cfg.Lines, cfg.Format, cfg.SampleRate, cfg.BufferSize, pool)
	for _, ch := range a.Channels() {
		ch.Pattern.SetDim(1, 1, cfg.Length)
	}
	e := &Engine{
		cfg:                cfg,
		audio:              a,
		delayTemplate:      NewDelayAudioRun(a, cfg.BPM, cfg.StepsPerBeat),
		countBeatsTemplate: NewCountBeatsAudioRun(a, cfg.Length, cfg.Loop, cfg.LoopStart, cfg.LoopEnd),
		audioRunTemplate:   NewCopyPatternAudioRun(a, 0, 0),
		mix:                NewBuffer(cfg.Format, cfg.BufferSize),
		mode:               mode,
	}
	for _, ch := range a.Channels() {
		e.channelTemplates = append(e.channelTemplates, NewCopyPatternChannelRun(a, ch))
	}
	logger().Debug("engine created", "audio", a, "device", cfg.DeviceFormat, "channels", cfg.Channels)
	return e, nil
}

func (e *Engine) Audio() *Audio { return e.audio }

func (e *Engine) Config() EngineConfig { return e.cfg }

var errEngineRunning = errors.New("engine is running")

func (e *Engine) stopped() error {
	if e.running != nil {
		return errEngineRunning
	}
	return nil
}

// SetPattern replaces the pattern of line.
func (e *Engine) SetPattern(line int, p *Pattern) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopped(); err != nil {
		return err
	}
	ch := e.audio.Channel(line)
	if ch == nil || p == nil {
		return fmt.Errorf("set pattern %d: %w", line, ErrInvalidPattern)
	}
	ch.Pattern = p
	return nil
}

// SetBank selects the pattern bank all channels play.
func (e *Engine) SetBank(i, j int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopped(); err != nil {
		return err
	}
	e.audioRunTemplate.SetBank(i, j)
	return nil
}

// SetTemplate sets the sound each recycling of line starts its
// signals with.
func (e *Engine) SetTemplate(line int, data *Buffer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopped(); err != nil {
		return err
	}
	ch := e.audio.Channel(line)
	if ch == nil {
		return fmt.Errorf("set template %d: no such line", line)
	}
	e.audio.Recyclings().Chain(ch.First, ch.Last, func(r *Recycling) bool {
		r.SetTemplate(data)
		return true
	})
	return nil
}

// Start duplicates the templates for a new playback, resolves them and
// starts them. Channel recalls get child ids whose run order is their
// line.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopped(); err != nil {
		return err
	}
	pool := e.audio.Recyclings()
	for _, h := range e.audio.AllRecyclings() {
		pool.Get(h).Reset()
	}
	ctx := NewRecyclingContext(nil, e.audio.AllRecyclings()...)
	root := NewRecallID(0, ctx)
	var recalls []Recall
	started := false
	defer func() {
		if !started {
			for _, r := range recalls {
				e.audio.RemoveRecall(r)
			}
		}
	}()
	dup := func(t Recall, id *RecallID) (Recall, error) {
		r, err := t.Duplicate(id)
		if err != nil {
			return nil, err
		}
		e.audio.AddRecall(r)
		recalls = append(recalls, r)
		return r, nil
	}
	delay, err := dup(e.delayTemplate, root)
	if err != nil {
		return err
	}
	countBeats, err := dup(e.countBeatsTemplate, root)
	if err != nil {
		return err
	}
	if _, err := dup(e.audioRunTemplate, root); err != nil {
		return err
	}
	var channels []*CopyPatternChannelRun
	for _, t := range e.channelTemplates {
		r, err := dup(t, root.Child(t.Channel().Line))
		if err != nil {
			return err
		}
		channels = append(channels, r.(*CopyPatternChannelRun))
	}
	for _, r := range recalls {
		if err := r.ResolveDependencies(); err != nil {
			return fmt.Errorf("start %s: %w", e.audio.Name, err)
		}
	}
	for _, r := range recalls {
		r.RunInitPre()
	}
	e.running = recalls
	e.delay = delay.(*DelayAudioRun)
	e.countBeats = countBeats.(*CountBeatsAudioRun)
	e.channels = channels
	e.clock.Store(e.delay)
	started = true
	logger().Info("engine started", "audio", e.audio.Name, "recalls", len(recalls), "delay", e.delay.Delay())
	return nil
}

// Process renders one buffer period into out, an interleaved buffer of
// BufferSize frames in the device format. The mono mix of all
// recyclings is copied into every device channel.
func (e *Engine) Process(out *Buffer) {
	if out == nil {
		return
	}
	Clear(out, 1, out.Len())
	if out.Format() != e.cfg.DeviceFormat {
		return
	}
	delay := e.clock.Load()
	if delay == nil {
		return
	}
	delay.Run()
	ClearAll(e.mix)
	pool := e.audio.Recyclings()
	for _, ch := range e.audio.Channels() {
		pool.Chain(ch.First, ch.Last, func(r *Recycling) bool {
			r.Mix(e.mix, 1, 0)
			return true
		})
	}
	n := e.cfg.Channels
	for c := range n {
		CopyBufferToBuffer(out, n, c, e.mix, 1, 0, e.cfg.BufferSize, e.mode)
	}
}

// Render runs Process until frames frames have been produced.
func (e *Engine) Render(frames int) *Buffer {
	n := e.cfg.Channels
	out := NewBuffer(e.cfg.DeviceFormat, frames*n)
	period := NewBuffer(e.cfg.DeviceFormat, e.cfg.BufferSize*n)
	for pos := 0; pos < frames; pos += e.cfg.BufferSize {
		e.Process(period)
		m := min(e.cfg.BufferSize, frames-pos)
		out.copyFrom(period.Slice(0, m*n), pos*n)
	}
	return out
}

// Finished reports whether a non-looping playback reached its end and
// every signal has drained.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.countBeats == nil || !e.countBeats.Finished() {
		return false
	}
	for _, h := range e.audio.AllRecyclings() {
		if e.audio.Recyclings().Get(h).Live() > 0 {
			return false
		}
	}
	return true
}

// Stop cancels the running recalls in reverse start order.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stop(func(r Recall) { r.Cancel() })
}

// Done ends the running recalls normally.
func (e *Engine) Done() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stop(func(r Recall) { r.Done() })
}

func (e *Engine) stop(end func(Recall)) {
	if e.running == nil {
		return
	}
	e.clock.Store(nil)
	for i := len(e.running) - 1; i >= 0; i-- {
		r := e.running[i]
		end(r)
		e.audio.RemoveRecall(r)
	}
	logger().Info("engine stopped", "audio", e.audio.Name, "ticks", e.delay.Ticks())
	e.running = nil
}

// Stats collects the counters of the current or last playback.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	var s Stats
	if e.delay != nil {
		s.Ticks = e.delay.Ticks()
		s.Dependencies = e.delay.Dependencies()
	}
	if e.countBeats != nil {
		s.Step = e.countBeats.Counter()
	}
	for _, c := range e.channels {
		s.Fired += c.Fired()
		s.Allocated += c.Allocated()
		s.GuardMisses += c.GuardMisses()
	}
	pool := e.audio.Recyclings()
	for _, h := range e.audio.AllRecyclings() {
		r := pool.Get(h)
		s.Live += r.Live()
		s.Retired += r.Retired()
	}
	return s
}
