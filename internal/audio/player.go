// Package audio plays alarm sounds. Playback internals are hidden behind the
// engine's Player interface; this package is the beep-backed implementation.
package audio

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrMissingSound indicates an alarm sound file is absent at play time.
// Playback is skipped but the caller's timer transition still completes.
var ErrMissingSound = errors.New("alarm sound file missing")

// BeepPlayer plays one alarm at a time through the system speaker. Starting a
// new alarm stops the previous one first.
type BeepPlayer struct {
	mu               sync.Mutex
	defaultPrimary   string
	defaultSecondary string
	pick             func(n int) int
	initialized      bool
	sampleRate       beep.SampleRate
	playing          bool
}

// NewBeepPlayer creates a player. The default paths back any slot that has no
// sound of its own; either may be empty.
func NewBeepPlayer(defaultPrimary, defaultSecondary string) *BeepPlayer {
	return &BeepPlayer{
		defaultPrimary:   defaultPrimary,
		defaultSecondary: defaultSecondary,
		pick:             rand.Intn,
	}
}

// Play starts the alarm, choosing randomly between the two sounds. loop gives
// the repetition count, 0 meaning until stopped. Both paths must exist; an
// empty secondary falls back to the primary, empty slot paths fall back to
// the player defaults.
func (p *BeepPlayer) Play(primary, secondary string, loop int) error {
	chosen, err := p.resolve(primary, secondary)
	if err != nil {
		return err
	}

	file, err := os.Open(chosen)
	if err != nil {
		return fmt.Errorf("open alarm sound: %w", err)
	}
	streamer, format, err := decodeSound(chosen, file)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("decode alarm sound: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.sampleRate = format.SampleRate
		p.initialized = true
	}

	count := loop
	if count == 0 {
		count = -1
	}
	var stream beep.Streamer = beep.Loop(count, streamer)
	if format.SampleRate != p.sampleRate {
		stream = beep.Resample(4, format.SampleRate, p.sampleRate, stream)
	}

	speaker.Clear()
	p.playing = true
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		_ = streamer.Close()
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	})))
	return nil
}

// Stop silences any current playback.
func (p *BeepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	p.playing = false
}

// Playing reports whether an alarm is currently sounding.
func (p *BeepPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// resolve applies the fallback chain and picks one of the two sounds.
func (p *BeepPlayer) resolve(primary, secondary string) (string, error) {
	if primary == "" {
		primary = p.defaultPrimary
	}
	if secondary == "" {
		secondary = p.defaultSecondary
	}
	if primary != "" && secondary == "" {
		secondary = primary
	}
	if primary == "" || secondary == "" {
		return "", ErrMissingSound
	}
	for _, path := range []string{primary, secondary} {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrMissingSound, path)
		}
	}
	if p.pick(2) == 0 {
		return primary, nil
	}
	return secondary, nil
}

func decodeSound(path string, file *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(file)
	case ".mp3":
		return mp3.Decode(file)
	case ".ogg":
		return vorbis.Decode(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported alarm sound format %q", filepath.Ext(path))
	}
}
