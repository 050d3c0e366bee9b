package mixcore

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// RecallFlags records the lifecycle milestones of a recall.
type RecallFlags uint32

const (
	RecallTemplate RecallFlags = 1 << iota
	RecallResolved
	RecallInitialized
	RecallDone
	RecallCancelled
)

var recallFlagNames = []string{"template", "resolved", "initialized", "done", "cancelled"}

func (f RecallFlags) Has(x RecallFlags) bool {
	return f&x == x
}

func (f RecallFlags) String() string {
	var names []string
	for i, n := range recallFlagNames {
		if f&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// RecallState is the position of a recall in its lifecycle.
type RecallState int32

const (
	// StateTemplate recalls are never scheduled; they are duplicated.
	StateTemplate RecallState = iota
	// StateIdle recalls are duplicates awaiting ResolveDependencies.
	StateIdle
	StateResolved
	StateRunning
	StateDone
	StateCancelled
)

var recallStateNames = []string{"template", "idle", "resolved", "running", "done", "cancelled"}

func (s RecallState) String() string {
	if int(s) < len(recallStateNames) {
		return recallStateNames[s]
	}
	return fmt.Sprintf("RecallState(%d)", int32(s))
}

// Terminal reports whether no further transition is possible.
func (s RecallState) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

type RecallKind uint8

const (
	KindDelayAudioRun RecallKind = iota
	KindCountBeatsAudioRun
	KindCopyPatternAudioRun
	KindCopyPatternChannelRun
)

func (k RecallKind) String() string {
	switch k {
	case KindDelayAudioRun:
		return "delay-audio-run"
	case KindCountBeatsAudioRun:
		return "count-beats-audio-run"
	case KindCopyPatternAudioRun:
		return "copy-pattern-audio-run"
	case KindCopyPatternChannelRun:
		return "copy-pattern-channel-run"
	}
	return fmt.Sprintf("RecallKind(%d)", uint8(k))
}

// Recall is a stateful processing unit of the playback graph.
type Recall interface {
	Kind() RecallKind
	State() RecallState
	Flags() RecallFlags
	RecallID() *RecallID
	// Duplicate returns a fresh, unresolved instance bound to id.
	Duplicate(id *RecallID) (Recall, error)
	// ResolveDependencies wires the recall to the recalls it listens
	// to. It is idempotent.
	ResolveDependencies() error
	// RunInitPre starts receiving callbacks.
	RunInitPre()
	Done()
	Cancel()
}

// recallBase carries the state shared by every recall kind.
type recallBase struct {
	kind         RecallKind
	audio        *Audio
	id           *RecallID
	state        atomic.Int32
	registered   atomic.Bool
	dependencies atomic.Int32
}

func (r *recallBase) init(kind RecallKind, audio *Audio, id *RecallID) {
	r.kind = kind
	r.audio = audio
	r.id = id
	if id == nil {
		r.state.Store(int32(StateTemplate))
	} else {
		r.state.Store(int32(StateIdle))
	}
}

func (r *recallBase) Kind() RecallKind { return r.kind }

func (r *recallBase) State() RecallState { return RecallState(r.state.Load()) }

func (r *recallBase) RecallID() *RecallID { return r.id }

func (r *recallBase) Flags() RecallFlags {
	var f RecallFlags
	switch r.State() {
	case StateTemplate:
		f |= RecallTemplate
	case StateResolved:
		f |= RecallResolved
	case StateRunning:
		f |= RecallResolved | RecallInitialized
	case StateDone:
		f |= RecallResolved | RecallInitialized | RecallDone
	case StateCancelled:
		f |= RecallResolved | RecallCancelled
	}
	return f
}

func (r *recallBase) transition(from, to RecallState) bool {
	return r.state.CompareAndSwap(int32(from), int32(to))
}

// NotifyDependency adjusts the count of recalls listening to r.
func (r *recallBase) NotifyDependency(delta int32) int32 {
	return r.dependencies.Add(delta)
}

// Dependencies returns the count of recalls listening to r.
func (r *recallBase) Dependencies() int32 {
	return r.dependencies.Load()
}

// checkResolvable returns done=true when resolution already happened.
func (r *recallBase) checkResolvable() (done bool, err error) {
	switch s := r.State(); s {
	case StateTemplate:
		return false, fmt.Errorf("resolve %s: %w", r.kind, ErrTemplateRecall)
	case StateIdle:
		return false, nil
	default:
		return true, nil
	}
}

// start moves a resolved recall to running. register runs first so a
// concurrent Cancel always sees it and unregisters exactly once.
func (r *recallBase) start(register, unregister func()) {
	if r.State() != StateResolved {
		return
	}
	register()
	r.registered.Store(true)
	if !r.transition(StateResolved, StateRunning) {
		if r.registered.Swap(false) {
			unregister()
		}
	}
}

// finish moves a resolved or running recall to a terminal state and
// undoes start. It reports whether this call made the transition.
func (r *recallBase) finish(to RecallState, unregister func()) bool {
	for {
		s := r.State()
		if s != StateResolved && s != StateRunning {
			return false
		}
		if r.transition(s, to) {
			break
		}
	}
	if r.registered.Swap(false) {
		unregister()
	}
	return true
}

// RecallID identifies one playback invocation. Audio-level recalls are
// bound to a root id; per-voice channel recalls to children of it.
type RecallID struct {
	RunOrder int
	Context  *RecyclingContext
	parent   *RecallID
}

func NewRecallID(runOrder int, ctx *RecyclingContext) *RecallID {
	return &RecallID{RunOrder: runOrder, Context: ctx}
}

// Child returns a voice id sharing the context of id.
func (id *RecallID) Child(runOrder int) *RecallID {
	return &RecallID{RunOrder: runOrder, Context: id.Context, parent: id}
}

func (id *RecallID) Parent() *RecallID { return id.parent }

// Root returns the outermost ancestor.
func (id *RecallID) Root() *RecallID {
	for id.parent != nil {
		id = id.parent
	}
	return id
}

// RecyclingContext scopes the recyclings a recall may write into.
type RecyclingContext struct {
	mu         sync.RWMutex
	parent     *RecyclingContext
	children   []*RecyclingContext
	recyclings []RecyclingHandle
}

// NewRecyclingContext creates a context, attaching it to parent when
// parent is not nil.
func NewRecyclingContext(parent *RecyclingContext, recyclings ...RecyclingHandle) *RecyclingContext {
	c := &RecyclingContext{
		parent:     parent,
		recyclings: append([]RecyclingHandle(nil), recyclings...),
	}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, c)
		parent.mu.Unlock()
	}
	return c
}

func (c *RecyclingContext) Parent() *RecyclingContext { return c.parent }

func (c *RecyclingContext) Children() []*RecyclingContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*RecyclingContext(nil), c.children...)
}

func (c *RecyclingContext) Add(h RecyclingHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recyclings = append(c.recyclings, h)
}

// Contains reports whether h is in c or one of its sub-contexts.
func (c *RecyclingContext) Contains(h RecyclingHandle) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.recyclings {
		if r == h {
			return true
		}
	}
	for _, child := range c.children {
		if child.Contains(h) {
			return true
		}
	}
	return false
}
