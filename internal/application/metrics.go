package application

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nfishel48/conduit/internal/domain"
)

// Tool call outcomes recorded in conduit_tool_calls_total.
const (
	OutcomeSuccess        = "success"
	OutcomeGraphQLError   = "graphql_error"
	OutcomeTransportError = "transport_error"
)

// Metrics holds the Prometheus collectors of the bridge.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec   // JSON-RPC messages by method and result code
	toolCalls       *prometheus.CounterVec   // Tool executions by tool and outcome
	toolDuration    *prometheus.HistogramVec // Backend round trip by tool
	registeredTools prometheus.Gauge         // Size of the compiled registry
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		registry: registry,

		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conduit",
			Subsystem: "jsonrpc",
			Name:      "requests_total",
			Help:      "JSON-RPC messages handled, by method and result code (0 for success)",
		}, []string{"method", "code"}),

		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conduit",
			Name:      "tool_calls_total",
			Help:      "Tool executions against the GraphQL backend, by outcome",
		}, []string{"tool", "outcome"}),

		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conduit",
			Name:      "tool_call_duration_seconds",
			Help:      "Duration of the backend round trip of a tool call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),

		registeredTools: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "conduit",
			Name:      "registered_tools",
			Help:      "Number of tools compiled from the GraphQL schema",
		}),
	}

	collectors := []prometheus.Collector{m.requests, m.toolCalls, m.toolDuration, m.registeredTools}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest counts one handled message. code is 0 on success.
func (m *Metrics) ObserveRequest(method string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(methodLabel(method), strconv.Itoa(code)).Inc()
}

// ObserveToolCall records one backend round trip.
func (m *Metrics) ObserveToolCall(tool, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// SetRegisteredTools publishes the registry size.
func (m *Metrics) SetRegisteredTools(n int) {
	if m == nil {
		return
	}
	m.registeredTools.Set(float64(n))
}

// methodLabel keeps label cardinality bounded against arbitrary client input.
func methodLabel(method string) string {
	switch method {
	case domain.MethodInitialize, domain.MethodNotificationInitialized,
		domain.MethodToolsList, domain.MethodToolsCall:
		return method
	default:
		return "other"
	}
}
