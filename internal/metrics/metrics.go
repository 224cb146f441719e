// Package metrics exposes the counters behind the Announce Bus's
// periodic tick (spec §2 C8): live session count and messages fanned
// out, plus fan-out drops from the backpressure policy in spec §5.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the linkshell server's Prometheus metrics, all under
// the extrachat_ prefix.
type Metrics struct {
	SessionsOnline  prometheus.Gauge
	MessagesSent    prometheus.Counter
	FanoutDropped   prometheus.Counter
	RefresherQueued prometheus.Gauge
}

// New creates and registers the metrics against reg. Panics on
// registration failure, which can only happen at startup with a
// duplicate name.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "extrachat_sessions_online",
			Help: "Number of currently authenticated sessions.",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "extrachat_messages_sent_total",
			Help: "Total Message requests accepted, regardless of fan-out outcome.",
		}),
		FanoutDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "extrachat_fanout_dropped_total",
			Help: "Total fan-out deliveries dropped because a peer's outbound queue was full.",
		}),
		RefresherQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "extrachat_refresher_inbox_depth",
			Help: "Depth of the Background Refresher's inbox. The refresher does not update this gauge.",
		}),
	}

	reg.MustRegister(m.SessionsOnline, m.MessagesSent, m.FanoutDropped, m.RefresherQueued)
	return m
}
