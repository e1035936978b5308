package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase           { return r.phase }
func (r recorder) Update(_ time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunner_PhaseOrderIsStable(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"input-a", PhaseInput, &log})
	r.Register(recorder{"jobs", PhaseUpdate, &log})
	r.Register(recorder{"input-b", PhaseInput, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"input-a", "input-b", "jobs", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = log[:0]
	r.TickPhase(PhaseInput, time.Millisecond)
	assert.Equal(t, []string{"input-a", "input-b"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}
