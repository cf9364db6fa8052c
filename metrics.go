// Copyright 2026 The snag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package snag

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/snaghttp/snag/request"
)

// A MetricsCollector exports Prometheus metrics for the request
// lifecycle: executions, retries, hook phase timings, and terminal
// errors by code. It is safe for concurrent use and may be shared by
// any number of clients.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	retriesTotal *prometheus.CounterVec

	hookPhaseDuration *prometheus.HistogramVec

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector registered on the default
// Prometheus registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector registered on
// the supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snag_requests_total",
				Help: "Total number of executed requests",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snag_request_duration_seconds",
				Help:    "Duration of executed requests in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code"},
		),
		requestsInFlight: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "snag_requests_in_flight",
				Help: "Number of requests currently executing",
			},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snag_retries_total",
				Help: "Total number of retried attempts",
			},
			[]string{"method"},
		),
		hookPhaseDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snag_hook_phase_duration_seconds",
				Help:    "Duration of hook phase runs in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"phase"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "snag_errors_total",
				Help: "Total number of requests that surfaced an error, by code",
			},
			[]string{"code"},
		),
	}
}

func (m *MetricsCollector) startRequest() {
	m.requestsInFlight.Inc()
}

func (m *MetricsCollector) endRequest(e *request.Execution, err error) {
	m.requestsInFlight.Dec()
	method := "GET"
	if e.Options != nil {
		method = e.Options.Method
	}
	status := strconv.Itoa(e.StatusCode())
	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method, status).Observe(e.Duration().Seconds())
	if err != nil {
		code := "unknown"
		var reqErr *Error
		if errors.As(err, &reqErr) {
			code = string(reqErr.Code)
		}
		m.errorsTotal.WithLabelValues(code).Inc()
	}
}

func (m *MetricsCollector) incRetry(method string) {
	m.retriesTotal.WithLabelValues(method).Inc()
}

func (m *MetricsCollector) observePhase(p Phase, d time.Duration) {
	m.hookPhaseDuration.WithLabelValues(p.Name()).Observe(d.Seconds())
}
