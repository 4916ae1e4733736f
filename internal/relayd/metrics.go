package relayd

import (
	"net/http"

	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "bchnostr_relay"

// metrics is registered on a private registry so several relays can share a
// process (tests do).
type metrics struct {
	registry *stdprometheus.Registry

	events        *kitprom.Counter
	subscriptions *kitprom.Counter
	connections   *kitprom.Gauge
}

func newMetrics() *metrics {
	reg := stdprometheus.NewRegistry()

	events := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "events",
		Name:      "received_total",
		Help:      "EVENT messages received, by result.",
	}, []string{"result"})
	subs := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "subscriptions",
		Name:      "opened_total",
		Help:      "REQ subscriptions opened.",
	}, []string{})
	conns := stdprometheus.NewGaugeVec(stdprometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "connections",
		Name:      "open",
		Help:      "Websocket connections currently open.",
	}, []string{})
	reg.MustRegister(events, subs, conns)

	return &metrics{
		registry:      reg,
		events:        kitprom.NewCounter(events),
		subscriptions: kitprom.NewCounter(subs),
		connections:   kitprom.NewGauge(conns),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
