package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cellux/mixcore"
	"github.com/cellux/mixcore/config"
)

type options struct {
	configPath string
	output     string
	play       bool
	sample     string
	midi       string
	keys       string
	steps      string
	loops      int
	nice       int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/mixcore/config.json)")
	flag.StringVar(&opts.output, "o", "out.wav", "output WAV file")
	flag.BoolVar(&opts.play, "play", false, "play through the sound card instead of writing a file")
	flag.StringVar(&opts.sample, "sample", "", "WAV or MP3 file to trigger instead of the oscillator")
	flag.StringVar(&opts.midi, "midi", "", "standard MIDI file to import patterns from")
	flag.StringVar(&opts.keys, "keys", "36,38,42", "comma separated MIDI keys, one pattern line each")
	flag.StringVar(&opts.steps, "steps", "", "comma separated step strings, e.g. x...x...,..x...x.")
	flag.IntVar(&opts.loops, "loops", 1, "pattern repetitions when looping")
	flag.IntVar(&opts.nice, "nice", -10, "nice value of the audio thread")
	flag.Parse()
	if err := run(opts); err != nil {
		log.Fatalf("%v\n", err)
	}
}

func run(opts options) error {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := mixcore.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	logger := mixcore.Logger()

	patterns, err := loadPatterns(cfg, opts)
	if err != nil {
		return err
	}
	ecfg, err := cfg.EngineConfig("mixcore-render", len(patterns))
	if err != nil {
		return err
	}
	if opts.play {
		if _, err := otoFormat(ecfg.DeviceFormat); err != nil {
			logger.Warn("device format not playable, using float", "format", ecfg.DeviceFormat)
			ecfg.DeviceFormat = mixcore.FormatFloat
		}
	}
	engine, err := mixcore.NewEngine(ecfg)
	if err != nil {
		return err
	}
	template, err := loadTemplate(cfg, opts)
	if err != nil {
		return err
	}
	for line, p := range patterns {
		if err := engine.SetPattern(line, p); err != nil {
			return err
		}
		if err := engine.SetTemplate(line, template); err != nil {
			return err
		}
	}
	if err := engine.Start(); err != nil {
		return err
	}
	frames := playbackFrames(cfg, opts, template.Len())
	if opts.play {
		err = play(engine, frames, opts.nice)
	} else {
		err = render(engine, frames, opts.output)
	}
	engine.Done()
	st := engine.Stats()
	logger.Info("playback finished",
		"ticks", st.Ticks, "fired", st.Fired, "allocated", st.Allocated,
		"retired", st.Retired, "guardMisses", st.GuardMisses)
	return err
}

func loadPatterns(cfg *config.Config, opts options) ([]*mixcore.Pattern, error) {
	length := cfg.Playback.Length
	if opts.midi != "" {
		var keys []uint8
		for _, k := range strings.Split(opts.keys, ",") {
			n, err := strconv.ParseUint(strings.TrimSpace(k), 10, 7)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			keys = append(keys, uint8(n))
		}
		return mixcore.ReadPatternsSMFFile(opts.midi, mixcore.SMFImport{
			Keys:            keys,
			Channel:         -1,
			StepsPerQuarter: cfg.Playback.StepsPerBeat,
			Length:          length,
			DimI:            1,
			DimJ:            1,
		})
	}
	steps := cfg.Steps
	if opts.steps != "" {
		steps = strings.Split(opts.steps, ",")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no pattern lines: %w", mixcore.ErrInvalidPattern)
	}
	var patterns []*mixcore.Pattern
	for _, s := range steps {
		p := mixcore.NewPattern(1, 1, length)
		if err := p.SetSteps(0, 0, s); err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// loadTemplate returns the mono sound every step starts, resampled to
// the engine rate when it comes from a file.
func loadTemplate(cfg *config.Config, opts options) (*mixcore.Buffer, error) {
	if opts.sample == "" {
		osc, params, err := cfg.Params()
		if err != nil {
			return nil, err
		}
		b := mixcore.NewBuffer(mixcore.FormatDouble, params.Frames)
		if params.LFODepth != 0 || params.Tuning != 0 {
			mixcore.FMSynth(b, osc, params)
		} else {
			mixcore.Synth(b, osc, params)
		}
		// fade out to avoid a click at the end
		mixcore.Envelope(b, 1, b.Len(), 1, -1/float64(max(b.Len(), 1)))
		return b, nil
	}
	var data *mixcore.SampleData
	var err error
	switch strings.ToLower(filepath.Ext(opts.sample)) {
	case ".mp3":
		data, err = mixcore.ReadMP3File(opts.sample)
	default:
		data, err = mixcore.ReadWAVFile(opts.sample)
	}
	if err != nil {
		return nil, err
	}
	mono := data.Channel(0)
	if data.SampleRate != cfg.Audio.SampleRate {
		mono, err = mixcore.Resample(mono, 1, data.SampleRate, cfg.Audio.SampleRate, mixcore.ConverterSincMedium)
		if err != nil {
			return nil, err
		}
	}
	return mono, nil
}

// playbackFrames covers the pattern passes plus the tail of the last
// triggered sound.
func playbackFrames(cfg *config.Config, opts options, tail int) int {
	p := cfg.Playback
	passes := 1
	if p.Loop {
		passes = max(opts.loops, 1)
	}
	stepFrames := 60 / p.BPM * float64(cfg.Audio.SampleRate) / float64(max(p.StepsPerBeat, 1))
	return int(math.Ceil(float64(passes*p.Length)*stepFrames)) + tail
}

func render(engine *mixcore.Engine, frames int, path string) error {
	cfg := engine.Config()
	out := engine.Render(frames)
	if cfg.DeviceFormat == mixcore.FormatComplex {
		return fmt.Errorf("write %s: %w", path, mixcore.ErrUnsupportedFormat)
	}
	return mixcore.WriteWAVFile(path, &mixcore.SampleData{
		Buffer:     out,
		Channels:   cfg.Channels,
		SampleRate: cfg.SampleRate,
	})
}

func play(engine *mixcore.Engine, frames int, nice int) error {
	cfg := engine.Config()
	of, err := otoFormat(cfg.DeviceFormat)
	if err != nil {
		return err
	}
	ctx, err := newOtoContext(cfg.SampleRate, cfg.Channels, of)
	if err != nil {
		return err
	}
	player := ctx.NewPlayer(newEngineReader(engine, cfg.DeviceFormat == mixcore.FormatS8, nice))
	defer player.Close()
	player.Play()
	time.Sleep(time.Duration(frames) * time.Second / time.Duration(cfg.SampleRate))
	return player.Err()
}
