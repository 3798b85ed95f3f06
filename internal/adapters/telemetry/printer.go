package telemetry

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/weave/internal/ui/style"
)

// SpanPrinter implements sdktrace.SpanProcessor by writing one line per ended span.
type SpanPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSpanPrinter returns a SpanPrinter writing to w.
func NewSpanPrinter(w io.Writer) *SpanPrinter {
	return &SpanPrinter{w: w}
}

// NewTracerProvider returns an SDK provider that prints spans to w.
func NewTracerProvider(w io.Writer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewSpanPrinter(w)))
}

// OnStart does nothing.
func (p *SpanPrinter) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd writes the span name, duration, and whether it was served from a cache.
func (p *SpanPrinter) OnEnd(s sdktrace.ReadOnlySpan) {
	icon := style.Check
	suffix := ""
	for _, attr := range s.Attributes() {
		if string(attr.Key) == ports.AttrCached && attr.Value.AsBool() {
			suffix = " (cached)"
		}
	}
	if s.Status().Code == codes.Error {
		icon = style.Cross
		suffix += ": " + s.Status().Description
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "%s %s %s%s\n", icon, s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Microsecond), suffix)
}

// ForceFlush does nothing.
func (p *SpanPrinter) ForceFlush(context.Context) error { return nil }

// Shutdown does nothing.
func (p *SpanPrinter) Shutdown(context.Context) error { return nil }
