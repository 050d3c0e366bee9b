package mixcore

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// SampleData is decoded audio handed to the core by a loader: interleaved
// frames, their channel count and sample rate.
type SampleData struct {
	Buffer     *Buffer
	Channels   int
	SampleRate int
}

// Frames returns the number of interleaved frames.
func (s *SampleData) Frames() int {
	if s.Channels == 0 {
		return 0
	}
	return s.Buffer.Len() / s.Channels
}

// Channel extracts channel c as a mono buffer.
func (s *SampleData) Channel(c int) *Buffer {
	if c < 0 || c >= s.Channels {
		return nil
	}
	f := s.Buffer.Format()
	mono := NewBuffer(f, s.Frames())
	mode, _ := GetCopyMode(f, f)
	CopyBufferToBuffer(mono, 1, 0, s.Buffer, s.Channels, c, mono.Len(), mode)
	return mono
}

func wavFormat(bitDepth int) (Format, error) {
	switch bitDepth {
	case 8:
		return FormatS8, nil
	case 16:
		return FormatS16, nil
	case 24:
		return FormatS24, nil
	case 32:
		return FormatS32, nil
	}
	return 0, formatErr("wav bit depth", uint32(bitDepth))
}

func wavBitDepth(f Format) (int, error) {
	switch f {
	case FormatS8:
		return 8, nil
	case FormatS16:
		return 16, nil
	case FormatS24:
		return 24, nil
	case FormatS32:
		return 32, nil
	}
	return 0, formatErr("wav format", uint32(f))
}

// ReadWAV decodes a PCM WAV stream into a buffer of the matching
// integer format.
func ReadWAV(r io.ReadSeeker) (*SampleData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("read wav: invalid wav file")
	}
	f, err := wavFormat(int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	b := NewBuffer(f, len(ib.Data))
	for i, v := range ib.Data {
		switch f {
		case FormatS8:
			// 8-bit WAV is unsigned
			b.s8[i] = int8(v - 128)
		case FormatS16:
			b.s16[i] = int16(v)
		case FormatS24, FormatS32:
			b.s32[i] = int32(v)
		}
	}
	return &SampleData{
		Buffer:     b,
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
	}, nil
}

// ReadWAVFile opens and decodes path.
func ReadWAVFile(path string) (*SampleData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWAV(f)
}

// WriteWAV encodes s as PCM. Float, double and 64-bit buffers are
// converted to 32-bit integers first; complex buffers are rejected.
func WriteWAV(w io.WriteSeeker, s *SampleData) error {
	b := s.Buffer
	switch b.format {
	case FormatS64, FormatFloat, FormatDouble:
		b = Convert(b, FormatS32)
	case FormatComplex:
		return fmt.Errorf("write wav: %w", formatErr("wav format", uint32(b.format)))
	}
	bitDepth, err := wavBitDepth(b.format)
	if err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	data := make([]int, b.Len())
	for i := range data {
		switch b.format {
		case FormatS8:
			data[i] = int(b.s8[i]) + 128
		case FormatS16:
			data[i] = int(b.s16[i])
		case FormatS24, FormatS32:
			data[i] = int(b.s32[i])
		}
	}
	enc := wav.NewEncoder(w, s.SampleRate, bitDepth, s.Channels, wavFormatPCM)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: s.Channels, SampleRate: s.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

// WriteWAVFile creates path and encodes s into it.
func WriteWAVFile(path string, s *SampleData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
