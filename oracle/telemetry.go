// Copyright 2025 achetronic
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oracle

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig controls whether Complete/Embed spans are exported to a
// collector. It is off by default: Instrument still wraps the Client and
// records through the global meter (no-op unless the caller installs a
// MeterProvider; SetupTracing does not) and the global tracer (no-op
// unless SetupTracing ran) regardless of this config.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
}

// SetupTracing installs a batching OTLP/HTTP span exporter as the global
// TracerProvider and returns a shutdown func to flush it on exit. Called
// with Enabled false (the default), it is a no-op: spans from Instrument
// go to the global no-op provider exactly as if SetupTracing were never
// called.
func SetupTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.New(ctx, sdkresource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// instrumented wraps a Client with an OpenTelemetry span and token/call
// counters per call (no latency metric is recorded), so a caller can see block-size decisions and oracle
// round trips on the same trace without BlockJoin or AdaptiveJoin knowing
// telemetry exists.
type instrumented struct {
	next   Client
	tracer trace.Tracer
}

var (
	instrumentsOnce  sync.Once
	promptTokens     otelmetric.Int64Counter
	completionTokens otelmetric.Int64Counter
	callCount        otelmetric.Int64Counter
)

func ensureInstruments() {
	instrumentsOnce.Do(func() {
		m := otel.Meter("github.com/achetronic/semjoin/oracle")
		promptTokens, _ = m.Int64Counter("semjoin.oracle.prompt_tokens",
			otelmetric.WithDescription("Prompt tokens sent to the oracle"))
		completionTokens, _ = m.Int64Counter("semjoin.oracle.completion_tokens",
			otelmetric.WithDescription("Completion tokens returned by the oracle"))
		callCount, _ = m.Int64Counter("semjoin.oracle.calls",
			otelmetric.WithDescription("Oracle calls by method and outcome"))
	})
}

// Instrument wraps next with tracing spans and token/call counters. The
// returned Client is safe to pass anywhere a Client is expected; telemetry
// is purely observational and never changes Complete/Embed semantics.
func Instrument(next Client) Client {
	ensureInstruments()
	return &instrumented{next: next, tracer: otel.Tracer("github.com/achetronic/semjoin/oracle")}
}

func (c *instrumented) Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error) {
	ctx, span := c.tracer.Start(ctx, "oracle.Complete", trace.WithAttributes(
		attribute.String("semjoin.model", req.Model),
		attribute.Int("semjoin.max_tokens", req.MaxTokens),
	))
	defer span.End()

	resp, err := c.next.Complete(ctx, req)

	outcome := "ok"
	if err != nil {
		span.RecordError(err)
		outcome = "error"
	} else {
		span.SetAttributes(
			attribute.String("semjoin.finish_reason", resp.FinishReason),
			attribute.Int("semjoin.prompt_tokens", resp.PromptTokens),
			attribute.Int("semjoin.completion_tokens", resp.CompletionTokens),
		)
		promptTokens.Add(ctx, int64(resp.PromptTokens), otelmetric.WithAttributes(attribute.String("semjoin.model", req.Model)))
		completionTokens.Add(ctx, int64(resp.CompletionTokens), otelmetric.WithAttributes(attribute.String("semjoin.model", req.Model)))
	}
	callCount.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("semjoin.method", "Complete"),
		attribute.String("semjoin.outcome", outcome),
	))

	return resp, err
}

func (c *instrumented) Embed(ctx context.Context, text string, model string) (EmbedResponse, error) {
	ctx, span := c.tracer.Start(ctx, "oracle.Embed", trace.WithAttributes(
		attribute.String("semjoin.model", model),
	))
	defer span.End()

	resp, err := c.next.Embed(ctx, text, model)

	outcome := "ok"
	if err != nil {
		span.RecordError(err)
		outcome = "error"
	} else {
		span.SetAttributes(attribute.Int("semjoin.prompt_tokens", resp.PromptTokens))
		promptTokens.Add(ctx, int64(resp.PromptTokens), otelmetric.WithAttributes(attribute.String("semjoin.model", model)))
	}
	callCount.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("semjoin.method", "Embed"),
		attribute.String("semjoin.outcome", outcome),
	))

	return resp, err
}

var _ Client = (*instrumented)(nil)
