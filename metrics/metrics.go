// Package metrics exports actor and machine activity to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
)

// Metrics implements actor.Metrics on a set of Prometheus collectors.
type Metrics struct {
	actorsRunning prometheus.Gauge
	actorStops    *prometheus.CounterVec
	events        *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	transitions   *prometheus.CounterVec
	ignored       *prometheus.CounterVec
}

var _ actor.Metrics = (*Metrics)(nil)

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		actorsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statechart_actors_running",
			Help: "Number of actors currently draining a mailbox",
		}),
		actorStops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statechart_actor_stops_total",
				Help: "Actors that stopped, by outcome",
			},
			[]string{"outcome"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statechart_events_handled_total",
				Help: "Events delivered to actor handlers",
			},
			[]string{"actor", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statechart_event_duration_seconds",
				Help:    "Time spent handling one event",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"actor"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statechart_transitions_total",
				Help: "Machine steps that fired at least one rule",
			},
			[]string{"chart"},
		),
		ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statechart_events_ignored_total",
				Help: "Events that matched no enabled rule",
			},
			[]string{"chart"},
		),
	}
	for _, c := range []prometheus.Collector{m.actorsRunning, m.actorStops, m.events, m.latency, m.transitions, m.ignored} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ActorStarted implements actor.Metrics.
func (m *Metrics) ActorStarted(string) {
	m.actorsRunning.Inc()
}

// ActorStopped implements actor.Metrics.
func (m *Metrics) ActorStopped(_ string, err error) {
	m.actorsRunning.Dec()
	m.actorStops.WithLabelValues(outcome(err)).Inc()
}

// EventHandled implements actor.Metrics.
func (m *Metrics) EventHandled(name string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(name, result).Inc()
	m.latency.WithLabelValues(name).Observe(d.Seconds())
}

// Observer returns a statechart.Observer counting the steps of one chart.
func (m *Metrics) Observer(chart string) statechart.Observer {
	return &observer{
		transitions: m.transitions.WithLabelValues(chart),
		ignored:     m.ignored.WithLabelValues(chart),
	}
}

type observer struct {
	transitions prometheus.Counter
	ignored     prometheus.Counter
}

func (o *observer) OnTransition(statechart.TransitionRecord) {
	o.transitions.Inc()
}

func (o *observer) OnIgnored(statechart.Event) {
	o.ignored.Inc()
}

func outcome(err error) string {
	var fault *actor.FaultError
	switch {
	case err == nil:
		return "drained"
	case errors.As(err, &fault):
		return "fault"
	default:
		return "canceled"
	}
}
