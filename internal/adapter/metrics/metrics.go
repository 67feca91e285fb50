// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessiontimer"

// Set bundles every collector the service exports, registered on one registry.
type Set struct {
	Registry *prometheus.Registry
	HTTP     *HTTPMetrics
	Store    *StoreMetrics
	Sessions *SessionMetrics
}

// NewSet creates a fresh registry and registers all service metrics on it.
func NewSet() *Set {
	reg := NewRegistry()
	return &Set{
		Registry: reg,
		HTTP:     NewHTTPMetrics(reg),
		Store:    NewStoreMetrics(reg),
		Sessions: NewSessionMetrics(reg),
	}
}

// Handler serves this set's registry.
func (s *Set) Handler() http.Handler {
	return Handler(s.Registry)
}

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
