// Package analyzer holds the contract shared by file analyzers and the
// progress tracker the processing layer reports through.
package analyzer

import (
	"context"
	"sync/atomic"
)

// FileAnalyzer analyzes a collection of files. The context carries
// cancellation and, optionally, a Tracker.
type FileAnalyzer[T any] interface {
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

// ProgressFunc is called after each completed item with the number done so
// far, the current total and the item's path.
type ProgressFunc func(done, total int, path string)

// Tracker counts completed items. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int64
	done     atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker that reports each Tick to callback, which
// may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add grows the expected total by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int64(n))
}

// Tick marks one item as completed.
func (t *Tracker) Tick(path string) {
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, int(t.total.Load()), path)
	}
}

// Done returns the number of completed items.
func (t *Tracker) Done() int {
	return int(t.done.Load())
}

// Total returns the expected item count.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

type trackerKey struct{}

// WithTracker returns a context that carries t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the context's tracker, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
