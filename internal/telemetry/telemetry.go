// Package telemetry exports the progress of report waves as OpenTelemetry spans.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/gitsummary/internal/contract"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies the spans emitted by this package.
const TracerName = "github.com/huangsam/gitsummary"

// Observer opens one span per wave and adds one event per completed item.
type Observer struct {
	ctx    context.Context
	tracer trace.Tracer

	mu       sync.Mutex
	spans    map[string]trace.Span
	failures map[string]int
}

var _ contract.WaveObserver = &Observer{} // Compile-time check

// NewObserver creates wave spans as children of the span carried by ctx, if any.
func NewObserver(ctx context.Context, tp trace.TracerProvider) *Observer {
	return &Observer{
		ctx:      ctx,
		tracer:   tp.Tracer(TracerName),
		spans:    make(map[string]trace.Span),
		failures: make(map[string]int),
	}
}

// WaveStarted opens the span of a wave.
func (o *Observer) WaveStarted(wave string, total int) {
	_, span := o.tracer.Start(o.ctx, "wave "+wave, trace.WithAttributes(
		attribute.String("wave", wave),
		attribute.Int("items.total", total),
	))
	o.mu.Lock()
	defer o.mu.Unlock()
	if previous, ok := o.spans[wave]; ok {
		previous.End()
	}
	o.spans[wave] = span
	o.failures[wave] = 0
}

// ItemCompleted records one finished item on the wave span.
func (o *Observer) ItemCompleted(wave string, item string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	span, ok := o.spans[wave]
	if !ok {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("item", item), attribute.Bool("failed", err != nil)}
	if err != nil {
		o.failures[wave]++
		span.RecordError(err, trace.WithAttributes(attrs...))
		return
	}
	span.AddEvent("item completed", trace.WithAttributes(attrs...))
}

// WaveFinished closes the wave span, marking it failed when any item failed.
func (o *Observer) WaveFinished(wave string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	span, ok := o.spans[wave]
	if !ok {
		return
	}
	failed := o.failures[wave]
	span.SetAttributes(attribute.Int("items.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d items failed", failed))
	}
	span.End()
	delete(o.spans, wave)
	delete(o.failures, wave)
}

// Setup exports spans as JSON lines to spanFile and returns an observer bound to that exporter.
// The returned shutdown function flushes the exporter and closes the file.
func Setup(ctx context.Context, spanFile string) (*Observer, func(context.Context) error, error) {
	f, err := os.Create(spanFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create span file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}
	return NewObserver(ctx, tp), shutdown, nil
}
