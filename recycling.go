package mixcore

import (
	"sync"
	"sync/atomic"
)

// RecyclingHandle is a stable index into a RecyclingPool.
type RecyclingHandle int32

const NoRecycling RecyclingHandle = -1

// RecyclingPool owns every recycling of an audio graph. Handles stay
// valid for the lifetime of the pool.
type RecyclingPool struct {
	mu         sync.RWMutex
	recyclings []*Recycling
	signals    *SignalPool
}

func NewRecyclingPool(signals *SignalPool) *RecyclingPool {
	if signals == nil {
		signals = NewSignalPool(FormatFloat, 0, 0, 0)
	}
	return &RecyclingPool{signals: signals}
}

// New adds a recycling producing mono streams of bufferSize frames.
func (p *RecyclingPool) New(f Format, sampleRate, bufferSize int) RecyclingHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := RecyclingHandle(len(p.recyclings))
	p.recyclings = append(p.recyclings, &Recycling{
		handle:     h,
		next:       NoRecycling,
		prev:       NoRecycling,
		format:     f,
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		signals:    p.signals,
	})
	return h
}

// Get returns the recycling for h or nil.
func (p *RecyclingPool) Get(h RecyclingHandle) *Recycling {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if h < 0 || int(h) >= len(p.recyclings) {
		return nil
	}
	return p.recyclings[h]
}

func (p *RecyclingPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.recyclings)
}

// Link makes b follow a in the chain.
func (p *RecyclingPool) Link(a, b RecyclingHandle) {
	ra, rb := p.Get(a), p.Get(b)
	if ra == nil || rb == nil {
		return
	}
	ra.next, rb.prev = b, a
}

// Chain calls fn for first, its successors and last, inclusive. It
// stops early when the chain breaks or fn returns false.
func (p *RecyclingPool) Chain(first, last RecyclingHandle, fn func(*Recycling) bool) {
	limit := p.Len()
	for h, n := first, 0; h != NoRecycling && n < limit; n++ {
		r := p.Get(h)
		if r == nil || !fn(r) || h == last {
			return
		}
		h = r.next
	}
}

// Recycling collects the live audio signals of one channel segment.
// The live list is touched only by the audio thread during playback;
// other threads read its length through Live.
type Recycling struct {
	handle     RecyclingHandle
	next, prev RecyclingHandle
	format     Format
	sampleRate int
	bufferSize int

	template *Buffer
	live     []*AudioSignal
	signals  *SignalPool
	retired  atomic.Uint64
	nlive    atomic.Int32
}

func (r *Recycling) Handle() RecyclingHandle { return r.handle }
func (r *Recycling) Next() RecyclingHandle   { return r.next }
func (r *Recycling) Prev() RecyclingHandle   { return r.prev }
func (r *Recycling) Format() Format          { return r.format }
func (r *Recycling) SampleRate() int         { return r.sampleRate }
func (r *Recycling) BufferSize() int         { return r.bufferSize }

// SetTemplate sets the default content of new signals, converting data
// to the recycling format. Call it while playback is stopped.
func (r *Recycling) SetTemplate(data *Buffer) {
	if data == nil {
		r.template = nil
		return
	}
	r.template = Convert(data, r.format)
}

func (r *Recycling) Template() *Buffer { return r.template }

// AudioSignals returns the live signals. Only the thread driving Mix
// may call it while playback runs.
func (r *Recycling) AudioSignals() []*AudioSignal {
	return r.live
}

// Live returns the number of live signals. It is safe to call from
// any thread.
func (r *Recycling) Live() int { return int(r.nlive.Load()) }

func (r *Recycling) AddAudioSignal(s *AudioSignal) {
	r.live = append(r.live, s)
	r.nlive.Store(int32(len(r.live)))
}

func (r *Recycling) RemoveAudioSignal(s *AudioSignal) bool {
	for i, l := range r.live {
		if l == s {
			copy(r.live[i:], r.live[i+1:])
			r.live[len(r.live)-1] = nil
			r.live = r.live[:len(r.live)-1]
			r.nlive.Store(int32(len(r.live)))
			return true
		}
	}
	return false
}

// NewAudioSignal takes a signal from the pool bound to id and r.
func (r *Recycling) NewAudioSignal(id *RecallID) *AudioSignal {
	return r.signals.Get(id, r.handle)
}

// Retired returns the number of signals that played to the end.
func (r *Recycling) Retired() uint64 { return r.retired.Load() }

// CreateAudioSignalWithDefaults fills s with the template content,
// delayed by attack frames into its first buffer.
func (r *Recycling) CreateAudioSignalWithDefaults(s *AudioSignal, delay float64, attack int) {
	attack = min(max(attack, 0), max(r.bufferSize-1, 0))
	frames := attack + r.template.Len()
	chunks := max((frames+r.bufferSize-1)/max(r.bufferSize, 1), 1)
	s.format = r.format
	s.sampleRate = r.sampleRate
	s.bufferSize = r.bufferSize
	s.delay = delay
	s.attack = attack
	s.StreamResize(chunks)
	if r.template == nil {
		return
	}
	mode, _ := GetCopyMode(r.format, r.format)
	pos := 0
	for _, chunk := range s.stream[:s.length] {
		lo := 0
		if pos == 0 {
			lo = attack
		}
		n := min(r.bufferSize-lo, r.template.Len()-pos)
		if n <= 0 {
			break
		}
		CopyBufferToBuffer(chunk, 1, lo, r.template, 1, pos, n, mode)
		pos += n
	}
}

// Mix adds the current buffer of every live signal into dst, element k
// of the signal going to dst[offset+k*stride], then advances the
// signals. Signals that reach the end of their stream are removed,
// completed and returned to the pool.
func (r *Recycling) Mix(dst *Buffer, stride, offset int) {
	if len(r.live) == 0 {
		return
	}
	mode, err := GetCopyMode(dst.Format(), r.format)
	if err != nil {
		return
	}
	keep := r.live[:0]
	for _, s := range r.live {
		if cur := s.Current(); cur != nil {
			CopyBufferToBuffer(dst, stride, offset, cur, 1, 0, cur.Len(), mode)
		}
		if s.Advance() {
			keep = append(keep, s)
			continue
		}
		s.complete()
		r.retired.Add(1)
		r.signals.Put(s)
	}
	clear(r.live[len(keep):])
	r.live = keep
	r.nlive.Store(int32(len(keep)))
}

// Reset drops every live signal. Their completion channels are closed
// without counting them as retired.
func (r *Recycling) Reset() {
	for _, s := range r.live {
		s.complete()
		r.signals.Put(s)
	}
	clear(r.live)
	r.live = r.live[:0]
	r.nlive.Store(0)
}

// AudioSignal is a stream of buffers bound to a recall id and a
// recycling.
type AudioSignal struct {
	recallID   *RecallID
	recycling  RecyclingHandle
	format     Format
	sampleRate int
	bufferSize int
	delay      float64
	attack     int

	stream []*Buffer
	length int
	cursor int
	done   chan struct{}
}

func (s *AudioSignal) RecallID() *RecallID        { return s.recallID }
func (s *AudioSignal) Recycling() RecyclingHandle { return s.recycling }
func (s *AudioSignal) Format() Format             { return s.format }
func (s *AudioSignal) Attack() int                { return s.attack }
func (s *AudioSignal) Length() int                { return s.length }
func (s *AudioSignal) Cursor() int                { return s.cursor }
func (s *AudioSignal) Stream() []*Buffer          { return s.stream[:s.length] }

// StreamResize sets the stream to n cleared buffers, reusing the ones
// already allocated.
func (s *AudioSignal) StreamResize(n int) {
	for len(s.stream) < n {
		s.stream = append(s.stream, nil)
	}
	for i := range n {
		b := s.stream[i]
		if b == nil || b.Format() != s.format || b.Len() != s.bufferSize {
			s.stream[i] = NewBuffer(s.format, s.bufferSize)
			continue
		}
		ClearAll(b)
	}
	s.length = n
}

// Rewind moves the cursor to the first buffer.
func (s *AudioSignal) Rewind() { s.cursor = 0 }

// Current returns the buffer under the cursor or nil past the end.
func (s *AudioSignal) Current() *Buffer {
	if s.cursor >= s.length {
		return nil
	}
	return s.stream[s.cursor]
}

// Advance moves the cursor and reports whether buffers remain.
func (s *AudioSignal) Advance() bool {
	if s.cursor < s.length {
		s.cursor++
	}
	return s.cursor < s.length
}

// Connect arms the completion channel.
func (s *AudioSignal) Connect() {
	s.done = make(chan struct{})
}

// Done is closed once the signal played to its end or its recycling
// was reset.
func (s *AudioSignal) Done() <-chan struct{} { return s.done }

func (s *AudioSignal) complete() {
	if s.done != nil {
		close(s.done)
	}
}

// SignalPool recycles audio signals so the audio thread rarely
// allocates.
type SignalPool struct {
	mu   sync.Mutex
	free []*AudioSignal
}

// NewSignalPool preallocates n signals each holding chunks buffers of
// bufferSize elements in format f.
func NewSignalPool(f Format, n, chunks, bufferSize int) *SignalPool {
	p := &SignalPool{free: make([]*AudioSignal, 0, n)}
	for range n {
		s := &AudioSignal{format: f, bufferSize: bufferSize}
		s.StreamResize(chunks)
		s.length = 0
		p.free = append(p.free, s)
	}
	return p
}

// Get returns a pooled signal bound to id and h, or a new one when the
// pool is empty.
func (p *SignalPool) Get(id *RecallID, h RecyclingHandle) *AudioSignal {
	p.mu.Lock()
	var s *AudioSignal
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()
	if s == nil {
		s = &AudioSignal{}
	}
	s.recallID = id
	s.recycling = h
	s.cursor = 0
	s.length = 0
	s.done = nil
	return s
}

func (p *SignalPool) Put(s *AudioSignal) {
	s.recallID = nil
	p.mu.Lock()
	p.free = append(p.free, s)
	p.mu.Unlock()
}

// Free returns the number of pooled signals.
func (p *SignalPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
