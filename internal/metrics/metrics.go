// Package metrics exposes builder activity as Prometheus series.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sugarsyndicate/beltline/internal/core/event"
)

// Metrics holds the builder's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	placed     *prometheus.CounterVec
	deleted    *prometheus.CounterVec
	refunded   prometheus.Counter
	spent      prometheus.Counter
	discarded  prometheus.Counter
	cancelled  *prometheus.CounterVec
	jobsDone   *prometheus.CounterVec
	jobsCancel prometheus.Counter
	balance    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beltline_units_placed_total",
			Help: "Units committed to the grid, by kind.",
		}, []string{"kind"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beltline_units_deleted_total",
			Help: "Units removed by the deletion engine, by kind.",
		}, []string{"kind"}),
		refunded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beltline_refunded_total",
			Help: "Currency returned by deletions, discards and cancelled jobs.",
		}),
		spent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beltline_spent_total",
			Help: "Currency charged for committed units.",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beltline_ghosts_discarded_total",
			Help: "Ghosts dropped at commit time.",
		}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beltline_sessions_cancelled_total",
			Help: "Drag sessions torn down without committing.",
		}, []string{"mode"}),
		jobsDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beltline_jobs_completed_total",
			Help: "Construction jobs finished, by kind.",
		}, []string{"kind"}),
		jobsCancel: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beltline_jobs_cancelled_total",
			Help: "Construction jobs cancelled before completion.",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beltline_balance",
			Help: "Current wallet balance.",
		}),
	}
	m.registry.MustRegister(m.placed, m.deleted, m.refunded, m.spent, m.discarded,
		m.cancelled, m.jobsDone, m.jobsCancel, m.balance)
	return m
}

// Registry returns the registry backing the handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Subscribe feeds the collectors from bus events.
func (m *Metrics) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.UnitsCommitted) {
		m.placed.WithLabelValues(e.Kind.String()).Add(float64(len(e.Cells)))
		m.spent.Add(float64(e.Cost))
	})
	event.Subscribe(bus, func(e event.UnitDeleted) {
		m.deleted.WithLabelValues(e.Kind.String()).Inc()
		m.refunded.Add(float64(e.Refund))
	})
	event.Subscribe(bus, func(e event.GhostsDiscarded) {
		m.discarded.Add(float64(len(e.Cells)))
		m.refunded.Add(float64(e.Refunded))
	})
	event.Subscribe(bus, func(e event.SessionCancelled) {
		mode := "place"
		if e.Delete {
			mode = "delete"
		}
		m.cancelled.WithLabelValues(mode).Inc()
	})
	event.Subscribe(bus, func(e event.JobCompleted) {
		m.jobsDone.WithLabelValues(e.Kind.String()).Inc()
	})
	event.Subscribe(bus, func(e event.JobCancelled) {
		m.jobsCancel.Inc()
		m.refunded.Add(float64(e.Refunded))
	})
	event.Subscribe(bus, func(e event.BalanceChanged) {
		m.balance.Set(float64(e.Balance))
	})
}

// SetBalance seeds the gauge before the first balance event arrives.
func (m *Metrics) SetBalance(v int64) { m.balance.Set(float64(v)) }

// Handler serves /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	return r
}

// Serve runs the metrics endpoint until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Info("metrics server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
