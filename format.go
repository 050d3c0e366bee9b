package mixcore

import (
	"fmt"
	"math"
	"strings"
)

// Format identifies the in-memory representation of a sample buffer.
type Format uint8

const (
	FormatS8 Format = iota
	FormatS16
	FormatS24
	FormatS32
	FormatS64
	FormatFloat
	FormatDouble
	FormatComplex

	formatCount = int(FormatComplex) + 1
)

// PCMFormats lists the seven scalar sample formats.
var PCMFormats = []Format{
	FormatS8,
	FormatS16,
	FormatS24,
	FormatS32,
	FormatS64,
	FormatFloat,
	FormatDouble,
}

// Formats lists every format including complex.
var Formats = append(append([]Format(nil), PCMFormats...), FormatComplex)

var formatNames = [formatCount]string{
	"s8", "s16", "s24", "s32", "s64", "float", "double", "complex",
}

func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return formatNames[f]
}

func (f Format) Valid() bool {
	return int(f) < formatCount
}

// ParseFormat resolves a format from its lower case name.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("parse format %q: %w", name, ErrUnsupportedFormat)
}

// Width returns the packed size of one element in a char buffer.
func (f Format) Width() int {
	switch f {
	case FormatS8:
		return 1
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatS32, FormatFloat:
		return 4
	case FormatS64, FormatDouble:
		return 8
	case FormatComplex:
		return 16
	}
	return 0
}

// CellWidth returns the size of one element in memory. S24 samples
// live in 32-bit cells.
func (f Format) CellWidth() int {
	if f == FormatS24 {
		return 4
	}
	return f.Width()
}

// IsInteger reports whether f is one of the signed integer formats.
func (f Format) IsInteger() bool {
	return f <= FormatS64
}

// FullScale is the largest positive magnitude of an integer format;
// float formats are normalized to 1.
func (f Format) FullScale() float64 {
	switch f {
	case FormatS8:
		return math.MaxInt8
	case FormatS16:
		return math.MaxInt16
	case FormatS24:
		return maxS24
	case FormatS32:
		return math.MaxInt32
	case FormatS64:
		return math.MaxInt64
	}
	return 1
}

const (
	maxS24 = 1<<23 - 1
	minS24 = -1 << 23
)

// SoundcardFormat is the format code a device backend negotiates.
type SoundcardFormat uint32

const (
	SoundcardS8      SoundcardFormat = 0x8
	SoundcardS16     SoundcardFormat = 0x10
	SoundcardS24     SoundcardFormat = 0x18
	SoundcardS32     SoundcardFormat = 0x20
	SoundcardS64     SoundcardFormat = 0x40
	SoundcardFloat   SoundcardFormat = 0x100
	SoundcardDouble  SoundcardFormat = 0x200
	SoundcardComplex SoundcardFormat = 0x400
)

var soundcardFormats = map[SoundcardFormat]Format{
	SoundcardS8:      FormatS8,
	SoundcardS16:     FormatS16,
	SoundcardS24:     FormatS24,
	SoundcardS32:     FormatS32,
	SoundcardS64:     FormatS64,
	SoundcardFloat:   FormatFloat,
	SoundcardDouble:  FormatDouble,
	SoundcardComplex: FormatComplex,
}

func (sf SoundcardFormat) String() string {
	if f, ok := soundcardFormats[sf]; ok {
		return "soundcard-" + f.String()
	}
	return fmt.Sprintf("SoundcardFormat(0x%x)", uint32(sf))
}

// FormatFromSoundcard maps a device format code to the internal format.
func FormatFromSoundcard(sf SoundcardFormat) (Format, error) {
	f, ok := soundcardFormats[sf]
	if !ok {
		return 0, formatErr("format from soundcard", uint32(sf))
	}
	return f, nil
}

// SoundcardFormatOf is the inverse of FormatFromSoundcard.
func SoundcardFormatOf(f Format) (SoundcardFormat, error) {
	for sf, g := range soundcardFormats {
		if g == f {
			return sf, nil
		}
	}
	return 0, formatErr("soundcard format of", uint32(f))
}
