package mixcore

import (
	"testing"
)

func TestRecyclingChain(t *testing.T) {
	pool := NewRecyclingPool(nil)
	a := pool.New(FormatFloat, 1000, 64)
	b := pool.New(FormatFloat, 1000, 64)
	c := pool.New(FormatFloat, 1000, 64)
	pool.Link(a, b)
	pool.Link(b, c)
	var got []RecyclingHandle
	pool.Chain(a, c, func(r *Recycling) bool {
		got = append(got, r.Handle())
		return true
	})
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("chain = %v", got)
	}
	got = got[:0]
	pool.Chain(a, b, func(r *Recycling) bool {
		got = append(got, r.Handle())
		return true
	})
	if len(got) != 2 {
		t.Errorf("partial chain = %v", got)
	}
	pool.Chain(NoRecycling, c, func(r *Recycling) bool {
		t.Errorf("visited %d from an empty chain", r.Handle())
		return true
	})
	if pool.Get(c).Prev() != b || pool.Get(a).Next() != b {
		t.Errorf("links not set")
	}
}

func TestRecyclingMixRetiresSignals(t *testing.T) {
	pool := NewSignalPool(FormatFloat, 1, 3, 256)
	rp := NewRecyclingPool(pool)
	r := rp.Get(rp.New(FormatFloat, 44100, 256))
	tmpl := NewBuffer(FormatDouble, 600)
	for i := range tmpl.Len() {
		tmpl.Set(i, 0.25)
	}
	r.SetTemplate(tmpl)

	s := r.NewAudioSignal(nil)
	if pool.Free() != 0 {
		t.Fatalf("pool not used")
	}
	r.CreateAudioSignalWithDefaults(s, 4, 10)
	if s.Length() != 3 {
		t.Fatalf("Length() = %d, want 3", s.Length())
	}
	s.Rewind()
	s.Connect()
	r.AddAudioSignal(s)
	done := s.Done()

	dst := NewBuffer(FormatFloat, 256)
	r.Mix(dst, 1, 0)
	if dst.Float()[9] != 0 || dst.Float()[10] != 0.25 || dst.Float()[255] != 0.25 {
		t.Errorf("first buffer = %v...", dst.Float()[8:12])
	}
	ClearAll(dst)
	r.Mix(dst, 1, 0)
	r.Mix(dst, 1, 0)
	// the last chunk holds 600+10-512 = 98 template frames
	if dst.Float()[97] != 0.5 || dst.Float()[98] != 0.25 {
		t.Errorf("mixed tail = %v", dst.Float()[96:100])
	}
	select {
	case <-done:
	default:
		t.Fatalf("signal not completed")
	}
	if len(r.AudioSignals()) != 0 || r.Retired() != 1 || pool.Free() != 1 {
		t.Errorf("live=%d retired=%d free=%d", len(r.AudioSignals()), r.Retired(), pool.Free())
	}
	if again := r.NewAudioSignal(nil); again != s {
		t.Errorf("retired signal not reused")
	}
}

func TestRecyclingReset(t *testing.T) {
	rp := NewRecyclingPool(nil)
	r := rp.Get(rp.New(FormatS16, 1000, 8))
	var done []<-chan struct{}
	for range 3 {
		s := r.NewAudioSignal(nil)
		r.CreateAudioSignalWithDefaults(s, 1, 0)
		s.Connect()
		r.AddAudioSignal(s)
		done = append(done, s.Done())
	}
	if r.Live() != 3 {
		t.Fatalf("Live() = %d, want 3", r.Live())
	}
	if !r.RemoveAudioSignal(r.AudioSignals()[1]) || len(r.AudioSignals()) != 2 || r.Live() != 2 {
		t.Fatalf("RemoveAudioSignal failed")
	}
	r.Reset()
	if len(r.AudioSignals()) != 0 || r.Live() != 0 {
		t.Errorf("%d signals after Reset, Live() = %d", len(r.AudioSignals()), r.Live())
	}
	if r.Retired() != 0 {
		t.Errorf("Reset retired %d signals", r.Retired())
	}
	for i, ch := range []<-chan struct{}{done[0], done[2]} {
		select {
		case <-ch:
		default:
			t.Errorf("signal %d still pending after Reset", i)
		}
	}
}

func TestRecyclingContextNesting(t *testing.T) {
	root := NewRecyclingContext(nil, 1, 2)
	child := NewRecyclingContext(root, 5)
	if !root.Contains(5) || !root.Contains(1) {
		t.Errorf("root does not see its own and child recyclings")
	}
	if child.Contains(1) {
		t.Errorf("child sees parent recycling")
	}
	child.Add(7)
	if !root.Contains(7) || child.Parent() != root || len(root.Children()) != 1 {
		t.Errorf("nesting broken")
	}
}

func TestRecallIDTree(t *testing.T) {
	ctx := NewRecyclingContext(nil)
	root := NewRecallID(0, ctx)
	voice := root.Child(3).Child(4)
	if voice.Root() != root || voice.Parent().RunOrder != 3 || voice.Context != ctx {
		t.Errorf("recall id tree broken")
	}
}

func TestRecallFlagsString(t *testing.T) {
	tests := []struct {
		f    RecallFlags
		want string
	}{
		{0, "none"},
		{RecallTemplate, "template"},
		{RecallResolved | RecallInitialized | RecallDone, "resolved|initialized|done"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func BenchmarkRecyclingMix(b *testing.B) {
	rp := NewRecyclingPool(NewSignalPool(FormatFloat, 64, 4, 512))
	r := rp.Get(rp.New(FormatFloat, 44100, 512))
	r.SetTemplate(NewBuffer(FormatFloat, 2048))
	dst := NewBuffer(FormatFloat, 512)
	for i := 0; i < b.N; i++ {
		if len(r.AudioSignals()) < 8 {
			s := r.NewAudioSignal(nil)
			r.CreateAudioSignalWithDefaults(s, 1, 0)
			r.AddAudioSignal(s)
		}
		r.Mix(dst, 1, 0)
	}
}
