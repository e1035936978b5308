package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarsyndicate/beltline/internal/core/event"
	"github.com/sugarsyndicate/beltline/internal/grid"
)

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	defer srv.Close()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestMetrics_CountBusEvents(t *testing.T) {
	m := New()
	bus := event.NewBus()
	m.Subscribe(bus)

	event.Emit(bus, event.UnitsCommitted{Kind: grid.UnitBelt, Cells: []grid.Cell{{X: 0}, {X: 1}, {X: 2}}, Cost: 15})
	event.Emit(bus, event.UnitDeleted{Kind: grid.UnitMachine, Refund: 120})
	event.Emit(bus, event.GhostsDiscarded{Cells: []grid.Cell{{X: 5}}, Refunded: 5})
	event.Emit(bus, event.SessionCancelled{Tool: "belt", Delete: true})
	event.Emit(bus, event.BalanceChanged{Balance: 410})
	bus.SwapBuffers()
	bus.DispatchAll()

	code, body := scrape(t, m.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `beltline_units_placed_total{kind="belt"} 3`)
	assert.Contains(t, body, `beltline_units_deleted_total{kind="machine"} 1`)
	assert.Contains(t, body, "beltline_refunded_total 125")
	assert.Contains(t, body, "beltline_spent_total 15")
	assert.Contains(t, body, "beltline_ghosts_discarded_total 1")
	assert.Contains(t, body, `beltline_sessions_cancelled_total{mode="delete"} 1`)
	assert.Contains(t, body, "beltline_balance 410")
}

func TestMetrics_Healthz(t *testing.T) {
	code, body := scrape(t, New().Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
}
