package mixcore

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved stereo signed 16-bit little
// endian frames.
const mp3Channels = 2

// ReadMP3 decodes an MP3 stream into an S16 buffer.
func ReadMP3(r io.Reader) (*SampleData, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("read mp3: %w", err)
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read mp3: %w", err)
	}
	b := NewBuffer(FormatS16, len(data)/FormatS16.Width())
	Decode(b, data, LittleEndian)
	return &SampleData{
		Buffer:     b,
		Channels:   mp3Channels,
		SampleRate: dec.SampleRate(),
	}, nil
}

// ReadMP3File opens and decodes path.
func ReadMP3File(path string) (*SampleData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMP3(f)
}
