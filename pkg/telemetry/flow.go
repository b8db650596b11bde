// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry instruments loopback OAuth flows with OpenTelemetry.
//
// Nothing here installs exporters. Hosts that want the data register their
// own tracer and meter providers; by default the global no-op providers are
// used and instrumentation costs next to nothing.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/loopback-oauth/pkg/logger"
)

const (
	// instrumentationName is the name of this instrumentation package
	instrumentationName = "github.com/stacklok/loopback-oauth/pkg/telemetry"

	// SpanFlow is the name of the span covering one flow
	SpanFlow = "loopback.flow"

	// MetricFlows counts completed flows by outcome
	MetricFlows = "loopback_oauth_flows_total"

	// MetricFlowDuration records flow wall time in seconds
	MetricFlowDuration = "loopback_oauth_flow_duration_seconds"

	// AttrOutcome is the outcome attribute key
	AttrOutcome = "loopback.outcome"

	// AttrPort is the callback port attribute key
	AttrPort = "loopback.port"
)

// FlowDurationBuckets are histogram boundaries in seconds; a flow waits on a
// human so the tail is long.
var FlowDurationBuckets = []float64{
	0.5, 1, 2, 5, 10, 20, 30, 60, 120, 180, 300,
}

// FlowInstrumentation records spans and metrics for flows.
type FlowInstrumentation struct {
	tracer   trace.Tracer
	flows    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewFlowInstrumentation builds instrumentation on the given providers.
// Nil providers fall back to the global ones.
func NewFlowInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider) *FlowInstrumentation {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	fi := &FlowInstrumentation{tracer: tp.Tracer(instrumentationName)}

	var err error
	fi.flows, err = meter.Int64Counter(
		MetricFlows,
		metric.WithDescription("Number of completed loopback OAuth flows"),
	)
	if err != nil {
		logger.Warnf("Failed to create %s counter: %v", MetricFlows, err)
	}
	fi.duration, err = meter.Float64Histogram(
		MetricFlowDuration,
		metric.WithDescription("Duration of loopback OAuth flows"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(FlowDurationBuckets...),
	)
	if err != nil {
		logger.Warnf("Failed to create %s histogram: %v", MetricFlowDuration, err)
	}
	return fi
}

// FlowSpan tracks one flow from start to completion.
type FlowSpan struct {
	fi    *FlowInstrumentation
	span  trace.Span
	start time.Time
}

// StartFlow opens the flow span and returns a context carrying it.
func (fi *FlowInstrumentation) StartFlow(ctx context.Context) (context.Context, *FlowSpan) {
	ctx, span := fi.tracer.Start(ctx, SpanFlow, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &FlowSpan{fi: fi, span: span, start: time.Now()}
}

// SetPort records the allocated callback port on the span.
func (s *FlowSpan) SetPort(port int) {
	s.span.SetAttributes(attribute.Int(AttrPort, port))
}

// Event adds a state-transition event to the span.
func (s *FlowSpan) Event(name string) {
	s.span.AddEvent(name)
}

// End closes the span with the flow's outcome and records metrics.
// A non-nil err marks the span as failed.
func (s *FlowSpan) End(ctx context.Context, outcome string, err error) {
	attrs := metric.WithAttributes(attribute.String(AttrOutcome, outcome))
	if s.fi.flows != nil {
		s.fi.flows.Add(ctx, 1, attrs)
	}
	if s.fi.duration != nil {
		s.fi.duration.Record(ctx, time.Since(s.start).Seconds(), attrs)
	}

	s.span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
