package application

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("tools/list", 0)
		m.ObserveToolCall("getUser", OutcomeSuccess, time.Millisecond)
		m.SetRegisteredTools(3)
	})
}

func TestMetrics_Observe(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("tools/call", 0)
	m.ObserveRequest("tools/call", -32601)
	m.ObserveRequest("resources/list", -32601)
	m.ObserveRequest("prompts/list", -32601)
	m.ObserveToolCall("getUser", OutcomeGraphQLError, 20*time.Millisecond)
	m.SetRegisteredTools(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("tools/call", "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("tools/call", "-32601")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("other", "-32601")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("getUser", OutcomeGraphQLError)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.registeredTools))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewMetrics(registry)
	require.NoError(t, err)

	_, err = NewMetrics(registry)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m.SetRegisteredTools(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "conduit_registered_tools 2")
}

func TestMethodLabel(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"initialize", "initialize"},
		{"notifications/initialized", "notifications/initialized"},
		{"tools/list", "tools/list"},
		{"tools/call", "tools/call"},
		{"", "other"},
		{"resources/read", "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, methodLabel(tt.method), tt.method)
	}
}
