// Package progrock provides a ports.Tracer that records resolution steps as progrock vertexes.
package progrock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

// Recorder implements ports.Tracer on a progrock tape.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
	seq atomic.Uint64
}

// New creates a Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{w: w, rec: progrock.NewRecorder(w)}
}

// Start records a new vertex. Vertex digests are unique per span, so repeated
// steps of one token show up separately.
func (r *Recorder) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	v := r.vertex(name)
	span := &Vertex{vertex: v}
	for k, val := range ports.NewSpanConfig(opts...).Attributes {
		span.SetAttribute(k, val)
	}
	return ctx, span
}

// EmitPlan records the rendered plan as a completed vertex.
func (r *Recorder) EmitPlan(_ context.Context, plan *domain.Plan) {
	v := r.vertex(fmt.Sprintf("plan %s [%s]", plan.Target, plan.Digest()))
	_, _ = fmt.Fprint(v.Stdout(), plan.String())
	v.Done(nil)
}

func (r *Recorder) vertex(name string) *progrock.VertexRecorder {
	d := digest.FromString(fmt.Sprintf("%s#%d", name, r.seq.Add(1)))
	return r.rec.Vertex(d, name)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Vertex implements ports.Span wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder

	mu  sync.Mutex
	err error
}

// End completes the vertex with the recorded error, if any.
func (v *Vertex) End() {
	v.mu.Lock()
	err := v.err
	v.mu.Unlock()
	v.vertex.Done(err)
}

// RecordError marks the vertex as failed when it ends.
func (v *Vertex) RecordError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

// SetAttribute marks cache hits and logs every other attribute to the vertex output.
func (v *Vertex) SetAttribute(key string, value any) {
	if key == ports.AttrCached {
		if cached, _ := value.(bool); cached {
			v.vertex.Cached()
		}
		return
	}
	_, _ = fmt.Fprintf(v.vertex.Stdout(), "%s=%v\n", key, value)
}
