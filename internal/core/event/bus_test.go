package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e JobCompleted) { got = append(got, int(e.JobID)) })

	Emit(b, JobCompleted{JobID: 1})
	Emit(b, JobCompleted{JobID: 2})
	assert.Equal(t, 0, b.DispatchAll(), "events stay in back buffer until swap")
	require.Empty(t, got)

	b.SwapBuffers()
	assert.Equal(t, 2, b.DispatchAll())
	assert.Equal(t, []int{1, 2}, got)

	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll(), "delivered events are not replayed")
}

func TestBus_EmitDuringDispatchLandsInNextTick(t *testing.T) {
	b := NewBus()
	var cancelled int
	Subscribe(b, func(e JobCompleted) { Emit(b, SessionCancelled{Tool: "belt"}) })
	Subscribe(b, func(e SessionCancelled) { cancelled++ })

	Emit(b, JobCompleted{JobID: 7})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, cancelled)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, cancelled)
}
