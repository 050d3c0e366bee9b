package mixcore

import (
	"errors"
	"testing"
)

func TestPatternSteps(t *testing.T) {
	p := NewPattern(2, 3, 8)
	if err := p.SetSteps(1, 2, "x..x|.x.x"); err != nil {
		t.Fatal(err)
	}
	if got := p.Steps(1, 2); got != "x..x.x.x" {
		t.Errorf("Steps() = %q", got)
	}
	if !p.IsEmpty(0, 0) || p.IsEmpty(1, 2) {
		t.Errorf("IsEmpty wrong")
	}
	tests := []struct {
		bit  int
		want bool
	}{
		{0, true}, {1, false}, {3, true}, {7, true}, {8, false}, {-1, false},
	}
	for _, tt := range tests {
		if got := p.GetBit(1, 2, tt.bit); got != tt.want {
			t.Errorf("GetBit(1, 2, %d) = %v", tt.bit, got)
		}
	}
	if p.GetBit(2, 0, 0) || p.GetBit(0, 3, 0) {
		t.Errorf("out of range bank reads set")
	}
}

func TestPatternSetStepsErrors(t *testing.T) {
	p := NewPattern(1, 1, 4)
	for _, s := range []string{"x...x", "x.y."} {
		if err := p.SetSteps(0, 0, s); !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("SetSteps(%q) = %v", s, err)
		}
	}
	if err := p.SetSteps(1, 0, "x"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("SetSteps on missing bank = %v", err)
	}
	if err := p.SetBit(0, 0, 4, true); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("SetBit past length = %v", err)
	}
}

func TestPatternToggleAndClone(t *testing.T) {
	p := NewPattern(1, 1, 4)
	if err := p.ToggleBit(0, 0, 2); err != nil {
		t.Fatal(err)
	}
	c := p.Clone()
	p.ToggleBit(0, 0, 2)
	if p.GetBit(0, 0, 2) || !c.GetBit(0, 0, 2) {
		t.Errorf("clone shares storage with the original")
	}
}

func TestPatternSetDimKeepsBits(t *testing.T) {
	p := NewPattern(2, 2, 4)
	p.SetSteps(1, 1, "x..x")
	p.SetSteps(0, 1, ".x..")
	p.SetDim(3, 2, 6)
	if got := p.Steps(1, 1); got != "x..x.." {
		t.Errorf("bank (1,1) = %q", got)
	}
	if got := p.Steps(0, 1); got != ".x...." {
		t.Errorf("bank (0,1) = %q", got)
	}
	p.SetDim(1, 1, 2)
	if i, j, n := p.Dim(); i != 1 || j != 1 || n != 2 {
		t.Errorf("Dim() = %d, %d, %d", i, j, n)
	}
	if !p.IsEmpty(0, 0) {
		t.Errorf("bank (0,0) = %q", p.Steps(0, 0))
	}
}
