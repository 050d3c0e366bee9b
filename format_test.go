package mixcore

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(f.String())
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", f, err)
		}
		if got != f {
			t.Errorf("ParseFormat(%q) = %v", f, got)
		}
	}
	if _, err := ParseFormat("u8"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(u8) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatWidths(t *testing.T) {
	tests := []struct {
		f     Format
		width int
		cell  int
	}{
		{FormatS8, 1, 1},
		{FormatS16, 2, 2},
		{FormatS24, 3, 4},
		{FormatS32, 4, 4},
		{FormatS64, 8, 8},
		{FormatFloat, 4, 4},
		{FormatDouble, 8, 8},
		{FormatComplex, 16, 16},
	}
	for _, tt := range tests {
		if got := tt.f.Width(); got != tt.width {
			t.Errorf("%v.Width() = %d, want %d", tt.f, got, tt.width)
		}
		if got := tt.f.CellWidth(); got != tt.cell {
			t.Errorf("%v.CellWidth() = %d, want %d", tt.f, got, tt.cell)
		}
	}
}

func TestFormatFromSoundcard(t *testing.T) {
	tests := []struct {
		sf   SoundcardFormat
		want Format
	}{
		{0x8, FormatS8},
		{0x10, FormatS16},
		{0x18, FormatS24},
		{0x20, FormatS32},
		{0x40, FormatS64},
		{0x100, FormatFloat},
		{0x200, FormatDouble},
		{0x400, FormatComplex},
	}
	for _, tt := range tests {
		got, err := FormatFromSoundcard(tt.sf)
		if err != nil {
			t.Fatalf("FormatFromSoundcard(%v): %v", tt.sf, err)
		}
		if got != tt.want {
			t.Errorf("FormatFromSoundcard(%v) = %v, want %v", tt.sf, got, tt.want)
		}
		back, err := SoundcardFormatOf(got)
		if err != nil || back != tt.sf {
			t.Errorf("SoundcardFormatOf(%v) = %v, %v", got, back, err)
		}
	}
}

func TestFormatFromSoundcardUnknown(t *testing.T) {
	_, err := FormatFromSoundcard(0x12)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Code != 0x12 {
		t.Errorf("error = %#v, want FormatError with code 0x12", err)
	}
}
