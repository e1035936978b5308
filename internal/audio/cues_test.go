package audio

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sugarsyndicate/beltline/internal/config"
	"github.com/sugarsyndicate/beltline/internal/core/event"
)

type recordSink struct{ played []beep.Streamer }

func (r *recordSink) Play(s beep.Streamer) { r.played = append(r.played, s) }

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestCues_PlayOnEvents(t *testing.T) {
	sink := &recordSink{}
	cfg := config.AudioConfig{Enabled: true, Volume: 0.5, CommitTone: 880, DeleteTone: 440, RefuseTone: 0}
	c := NewCues(cfg, sink, zaptest.NewLogger(t))
	bus := event.NewBus()
	c.Subscribe(bus)

	event.Emit(bus, event.UnitsCommitted{})
	event.Emit(bus, event.UnitDeleted{})
	event.Emit(bus, event.GhostsDiscarded{})
	bus.SwapBuffers()
	bus.DispatchAll()

	require.Len(t, sink.played, 2, "zero refuse tone stays silent")
	assert.Equal(t, sampleRate.N(toneLength), drain(sink.played[0]))
}

func TestCues_Disabled(t *testing.T) {
	sink := &recordSink{}
	c := NewCues(config.AudioConfig{CommitTone: 880}, sink, zaptest.NewLogger(t))
	bus := event.NewBus()
	c.Subscribe(bus)

	event.Emit(bus, event.UnitsCommitted{})
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Empty(t, sink.played)
}

func TestSpeaker_PlayBeforeInitIsNoop(t *testing.T) {
	s := NewSpeaker()
	s.Play(beep.Silence(10))
	s.Close()
}
