package progrock

import (
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/weave/internal/ui/style"
)

// LogWriter is a progrock.Writer that prints one line per completed vertex.
type LogWriter struct {
	mu   sync.Mutex
	w    io.Writer
	done map[string]bool
}

// NewLogWriter returns a LogWriter printing to w.
func NewLogWriter(w io.Writer) *LogWriter {
	return &LogWriter{w: w, done: make(map[string]bool)}
}

// WriteStatus prints vertexes the first time they are seen completed.
func (l *LogWriter) WriteStatus(update *progrock.StatusUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range update.Vertexes {
		if v.Completed == nil || l.done[v.Id] {
			continue
		}
		l.done[v.Id] = true

		var err error
		switch {
		case v.Error != nil:
			_, err = fmt.Fprintf(l.w, "%s %s: %s\n", style.Cross, v.Name, *v.Error)
		case v.Cached:
			_, err = fmt.Fprintf(l.w, "%s %s (cached)\n", style.Dot, v.Name)
		default:
			_, err = fmt.Fprintf(l.w, "%s %s\n", style.Check, v.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing.
func (l *LogWriter) Close() error { return nil }
