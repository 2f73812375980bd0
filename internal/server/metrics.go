package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

// PromMonitor exports match activity as Prometheus metrics. It keeps its
// own registry so several servers can live in one process.
type PromMonitor struct {
	registry *prometheus.Registry

	matchesStarted prometheus.Counter
	matchesEnded   *prometheus.CounterVec
	activeMatches  prometheus.Gauge
	moves          *prometheus.CounterVec
	sendFailures   prometheus.Counter
	connections    *prometheus.GaugeVec
}

// NewPromMonitor creates and registers the metric set
func NewPromMonitor() *PromMonitor {
	m := &PromMonitor{
		registry: prometheus.NewRegistry(),
		matchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominoes_matches_started_total",
			Help: "Matches started",
		}),
		matchesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dominoes_matches_ended_total",
			Help: "Matches ended by reason",
		}, []string{"reason"}),
		activeMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dominoes_active_matches",
			Help: "Matches currently running",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dominoes_moves_total",
			Help: "Moves submitted by result",
		}, []string{"result"}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominoes_send_failures_total",
			Help: "Messages that could not be queued for a player",
		}),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dominoes_connections",
			Help: "Connected players by transport",
		}, []string{"transport"}),
	}

	m.registry.MustRegister(
		m.matchesStarted,
		m.matchesEnded,
		m.activeMatches,
		m.moves,
		m.sendFailures,
		m.connections,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *PromMonitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *PromMonitor) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PromMonitor) OnMatchStart(string, int) {
	m.matchesStarted.Inc()
	m.activeMatches.Inc()
}

func (m *PromMonitor) OnMatchEnd(_ string, err error) {
	m.activeMatches.Dec()
	m.matchesEnded.WithLabelValues(endReason(err)).Inc()
}

func (m *PromMonitor) OnMoveAccepted(string, game.Update) {
	m.moves.WithLabelValues("accepted").Inc()
}

func (m *PromMonitor) OnMoveRejected(string, int, error) {
	m.moves.WithLabelValues("rejected").Inc()
}

func (m *PromMonitor) OnSendFailed(string, int, error) {
	m.sendFailures.Inc()
}

// ConnectionOpened and ConnectionClosed track connected players
func (m *PromMonitor) ConnectionOpened(transport string) {
	m.connections.WithLabelValues(transport).Inc()
}

func (m *PromMonitor) ConnectionClosed(transport string) {
	m.connections.WithLabelValues(transport).Dec()
}

func endReason(err error) string {
	switch {
	case err == nil:
		return "finished"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, match.ErrSeatDisconnected):
		return "disconnected"
	default:
		return "error"
	}
}
