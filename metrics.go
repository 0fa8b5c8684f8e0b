package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"onearmedbandit/internal/bandit"
)

// Metrics counts spins for /metrics. It implements bandit.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	spins    prometheus.Counter
	wins     prometheus.Counter
	staked   prometheus.Counter
	paid     prometheus.Counter
	notices  prometheus.Counter
	sessions prometheus.Gauge
	swept    prometheus.Counter

	stake  int
	payout int
}

var _ bandit.Observer = (*Metrics)(nil)

func newCounter(f promauto.Factory, name, help string) prometheus.Counter {
	return f.NewCounter(prometheus.CounterOpts{Namespace: "bandit", Name: name, Help: help})
}

// NewMetrics registers the game metrics on a fresh registry.
func NewMetrics(rules bandit.Rules) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		spins:    newCounter(f, "spins_total", "Spins settled."),
		wins:     newCounter(f, "wins_total", "Spins that landed three identical symbols."),
		staked:   newCounter(f, "credits_staked_total", "Credits taken as stakes."),
		paid:     newCounter(f, "credits_paid_total", "Credits paid out on wins."),
		notices:  newCounter(f, "insufficient_credits_total", "Times the insufficient-credits notice was raised."),
		swept:    newCounter(f, "sessions_swept_total", "Idle sessions removed by the sweeper."),
		sessions: f.NewGauge(prometheus.GaugeOpts{Namespace: "bandit", Name: "sessions", Help: "Live sessions after the last sweep."}),
		stake:    rules.Stake,
		payout:   rules.Payout,
	}
}

func (m *Metrics) SpinStarted(_ string, _ bandit.State) {
	m.staked.Add(float64(m.stake))
}

func (m *Metrics) SpinSettled(_ string, s bandit.State) {
	m.spins.Inc()
	if s.Outcome == bandit.OutcomeWinner {
		m.wins.Inc()
		m.paid.Add(float64(m.payout))
	}
}

func (m *Metrics) NoticeShown(_ string, _ bandit.State) {
	m.notices.Inc()
}

func (m *Metrics) observeSweep(removed, live int) {
	m.swept.Add(float64(removed))
	m.sessions.Set(float64(live))
}
