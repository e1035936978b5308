// Package audio plays short tones for builder outcomes.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/config"
	"github.com/sugarsyndicate/beltline/internal/core/event"
)

const (
	sampleRate = beep.SampleRate(48000)
	toneLength = 80 * time.Millisecond
)

// Sink plays a finite streamer.
type Sink interface {
	Play(s beep.Streamer)
}

// Speaker mixes cues into the system audio device.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Cues maps bus events to tones: commits, deletions and refusals (discarded
// ghosts or cancelled sessions) each get their own pitch.
type Cues struct {
	sink Sink
	cfg  config.AudioConfig
	log  *zap.Logger
}

func NewCues(cfg config.AudioConfig, sink Sink, log *zap.Logger) *Cues {
	return &Cues{sink: sink, cfg: cfg, log: log}
}

func (c *Cues) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.UnitsCommitted) { c.play(c.cfg.CommitTone) })
	event.Subscribe(bus, func(event.UnitDeleted) { c.play(c.cfg.DeleteTone) })
	event.Subscribe(bus, func(event.GhostsDiscarded) { c.play(c.cfg.RefuseTone) })
	event.Subscribe(bus, func(event.SessionCancelled) { c.play(c.cfg.RefuseTone) })
}

func (c *Cues) play(freq float64) {
	if !c.cfg.Enabled || freq <= 0 {
		return
	}
	st, err := tone(freq, c.cfg.Volume)
	if err != nil {
		c.log.Warn("tone", zap.Float64("freq", freq), zap.Error(err))
		return
	}
	c.sink.Play(st)
}

func tone(freq, vol float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil, err
	}
	s := beep.Take(sampleRate.N(toneLength), sine)
	// math.Log2(0) is -Inf.
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}, nil
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}, nil
}
