// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadmap_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StepTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_step_toggles_total",
			Help: "Roadmap steps marked complete or incomplete.",
		},
		[]string{"checked"},
	)

	RoadmapsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_roadmaps_generated_total",
			Help: "Roadmaps generated from templates, by role.",
		},
		[]string{"role"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadmap_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)
