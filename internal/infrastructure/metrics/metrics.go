package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay holds the collectors the hub updates as connections and events flow
// through it.
type Relay struct {
	registry *prometheus.Registry

	Connections     prometheus.Gauge
	AssociatedUsers prometheus.Gauge
	Rooms           prometheus.Gauge
	EventsDelivered *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
}

func NewRelay() *Relay {
	reg := prometheus.NewRegistry()

	m := &Relay{
		registry: reg,
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Name:      "connections",
			Help:      "Number of live websocket connections.",
		}),
		AssociatedUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Name:      "associated_users",
			Help:      "Number of user identities with a presence entry.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Name:      "rooms",
			Help:      "Number of rooms with at least one member.",
		}),
		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "events_delivered_total",
			Help:      "Events handed to a session send queue, by event name.",
		}, []string{"event"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a session queue was full, by event name.",
		}, []string{"event"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Connections,
		m.AssociatedUsers,
		m.Rooms,
		m.EventsDelivered,
		m.EventsDropped,
	)

	return m
}

func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
