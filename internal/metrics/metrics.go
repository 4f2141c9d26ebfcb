// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics defines the Prometheus collectors for tool calls, sampling
// requests and document loads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mcp_tool_demo"

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeUserError = "user_error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	ToolCalls        *prometheus.CounterVec
	SamplingRequests *prometheus.CounterVec
	SamplingDuration *prometheus.HistogramVec
	DocumentLoads    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg, if reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		SamplingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampling_requests_total",
			Help:      "sampling/createMessage requests sent to the client, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		SamplingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sampling_duration_seconds",
			Help:      "Time spent waiting for the client to answer a sampling request.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"tool"}),
		DocumentLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_loads_total",
			Help:      "Document loads by result status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.ToolCalls, m.SamplingRequests, m.SamplingDuration, m.DocumentLoads)
	}
	return m
}

// ToolCall records one finished tool invocation.
func (m *Metrics) ToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// Sampling records one finished sampling request.
func (m *Metrics) Sampling(tool string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.SamplingRequests.WithLabelValues(tool, outcome).Inc()
	m.SamplingDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// DocumentLoad records the status of one document load.
func (m *Metrics) DocumentLoad(status string) {
	if m == nil {
		return
	}
	m.DocumentLoads.WithLabelValues(status).Inc()
}
