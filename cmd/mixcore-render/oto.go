package main

import (
	"fmt"
	"sync"

	"github.com/cellux/mixcore"
	"github.com/ebitengine/oto/v3"
)

// FormatFromOto maps an oto sample format to the matching buffer
// format. Unsigned 8-bit output is produced from S8 by flipping the
// sign bit.
func FormatFromOto(f oto.Format) (mixcore.Format, error) {
	switch f {
	case oto.FormatUnsignedInt8:
		return mixcore.FormatS8, nil
	case oto.FormatSignedInt16LE:
		return mixcore.FormatS16, nil
	case oto.FormatFloat32LE:
		return mixcore.FormatFloat, nil
	}
	return 0, fmt.Errorf("oto format %d: %w", int(f), mixcore.ErrUnsupportedFormat)
}

// engineReader feeds oto from an engine, one buffer period at a time.
type engineReader struct {
	engine   *mixcore.Engine
	unsigned bool
	nice     int

	period  *mixcore.Buffer
	pending []byte
	chunk   []byte

	once sync.Once
}

func newEngineReader(e *mixcore.Engine, unsigned bool, nice int) *engineReader {
	cfg := e.Config()
	period := mixcore.NewBuffer(cfg.DeviceFormat, cfg.BufferSize*cfg.Channels)
	return &engineReader{
		engine:   e,
		unsigned: unsigned,
		nice:     nice,
		period:   period,
		chunk:    make([]byte, period.Len()*cfg.DeviceFormat.Width()),
	}
}

func (r *engineReader) Read(p []byte) (int, error) {
	// Read runs on the player goroutine; pin it on first use.
	r.once.Do(func() {
		if _, err := mixcore.RaiseThreadPriority(r.nice); err != nil {
			mixcore.Logger().Warn("audio thread priority unchanged", "err", err)
		}
	})
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.engine.Process(r.period)
			m := mixcore.Encode(r.chunk, r.period, r.period.Len(), mixcore.LittleEndian)
			if r.unsigned {
				for i := range m {
					r.chunk[i] ^= 0x80
				}
			}
			r.pending = r.chunk[:m]
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

func otoFormat(f mixcore.Format) (oto.Format, error) {
	for _, of := range []oto.Format{oto.FormatFloat32LE, oto.FormatSignedInt16LE, oto.FormatUnsignedInt8} {
		if mf, _ := FormatFromOto(of); mf == f {
			return of, nil
		}
	}
	return 0, fmt.Errorf("no oto format for %s: %w", f, mixcore.ErrUnsupportedFormat)
}

func newOtoContext(sampleRate, channels int, f oto.Format) (*oto.Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       f,
		BufferSize:   0,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	return ctx, nil
}
