// Package inertiaprom exports Prometheus metrics for the antenna middleware.
//
//	obs := inertiaprom.New(prometheus.DefaultRegisterer)
//	mw := antenna.NewMiddleware(renderer, func(c *antenna.MiddlewareConfig) {
//		c.OnNegotiate = obs.Observe
//	})
package inertiaprom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.inout.gg/antenna"
)

const DefaultNamespace = "antenna"

// Config configures the metrics.
type Config struct {
	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Namespace is the metrics namespace.
	//
	// Defaults to DefaultNamespace.
	Namespace string

	// Subsystem is the metrics subsystem.
	Subsystem string
}

// Option configures the metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// Observer counts negotiation outcomes of the antenna middleware.
type Observer struct {
	negotiations *prometheus.CounterVec
}

// New creates an Observer and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer, opts ...Option) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	//nolint:exhaustruct
	config := Config{Namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(reg)

	return &Observer{
		negotiations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "negotiations_total",
			Help:        "Total number of requests negotiated by the antenna middleware",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "outcome"}),
	}
}

// Observe records the outcome of a request. It has the signature of
// antenna.MiddlewareConfig.OnNegotiate.
func (o *Observer) Observe(r *http.Request, outcome antenna.Outcome) {
	o.negotiations.WithLabelValues(r.Method, string(outcome)).Inc()
}
