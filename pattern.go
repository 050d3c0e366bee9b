package mixcore

import (
	"fmt"
	"strings"
)

// Pattern is a step grid indexed by bank (i, j) and beat position. It
// is edited while playback is stopped and only read by the scheduler.
type Pattern struct {
	dimI, dimJ, length int
	bits               [][]bool
}

func NewPattern(i, j, length int) *Pattern {
	p := &Pattern{}
	p.SetDim(i, j, length)
	return p
}

// Dim returns the bank dimensions and the step count.
func (p *Pattern) Dim() (i, j, length int) {
	return p.dimI, p.dimJ, p.length
}

// SetDim resizes the grid, keeping the bits that still fit.
func (p *Pattern) SetDim(i, j, length int) {
	i, j, length = max(i, 0), max(j, 0), max(length, 0)
	bits := make([][]bool, i*j)
	for bi := range i {
		for bj := range j {
			row := make([]bool, length)
			if bi < p.dimI && bj < p.dimJ {
				copy(row, p.bits[bi*p.dimJ+bj])
			}
			bits[bi*j+bj] = row
		}
	}
	p.dimI, p.dimJ, p.length = i, j, length
	p.bits = bits
}

func (p *Pattern) row(i, j int) []bool {
	if p == nil || i < 0 || j < 0 || i >= p.dimI || j >= p.dimJ {
		return nil
	}
	return p.bits[i*p.dimJ+j]
}

// GetBit reports whether step bit of bank (i, j) is set. Positions
// outside the grid read as unset.
func (p *Pattern) GetBit(i, j, bit int) bool {
	row := p.row(i, j)
	if bit < 0 || bit >= len(row) {
		return false
	}
	return row[bit]
}

func (p *Pattern) SetBit(i, j, bit int, on bool) error {
	row := p.row(i, j)
	if bit < 0 || bit >= len(row) {
		return fmt.Errorf("set bit (%d, %d, %d): %w", i, j, bit, ErrInvalidPattern)
	}
	row[bit] = on
	return nil
}

func (p *Pattern) ToggleBit(i, j, bit int) error {
	return p.SetBit(i, j, bit, !p.GetBit(i, j, bit))
}

// IsEmpty reports whether bank (i, j) has no step set.
func (p *Pattern) IsEmpty(i, j int) bool {
	for _, on := range p.row(i, j) {
		if on {
			return false
		}
	}
	return true
}

func (p *Pattern) Clone() *Pattern {
	c := &Pattern{dimI: p.dimI, dimJ: p.dimJ, length: p.length}
	c.bits = make([][]bool, len(p.bits))
	for k, row := range p.bits {
		c.bits[k] = append([]bool(nil), row...)
	}
	return c
}

// SetSteps fills bank (i, j) from a step string such as "x...x...".
// 'x', 'X' and '1' set a step, '.', '-' and '0' clear it, spaces and
// '|' are ignored.
func (p *Pattern) SetSteps(i, j int, steps string) error {
	row := p.row(i, j)
	if row == nil {
		return fmt.Errorf("set steps (%d, %d): %w", i, j, ErrInvalidPattern)
	}
	bit := 0
	for _, r := range steps {
		var on bool
		switch r {
		case ' ', '|':
			continue
		case 'x', 'X', '1':
			on = true
		case '.', '-', '0':
		default:
			return fmt.Errorf("set steps: unexpected %q: %w", r, ErrInvalidPattern)
		}
		if bit >= len(row) {
			return fmt.Errorf("set steps: %d steps exceed length %d: %w", bit+1, len(row), ErrInvalidPattern)
		}
		row[bit] = on
		bit++
	}
	return nil
}

// Steps renders bank (i, j) in the SetSteps notation.
func (p *Pattern) Steps(i, j int) string {
	var sb strings.Builder
	for _, on := range p.row(i, j) {
		if on {
			sb.WriteByte('x')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
