// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/panbanda/cyclo/pkg/parser"
	"github.com/panbanda/cyclo/pkg/source"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge is recorded for files over Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the per-file errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

func (e *ProcessingErrors) sort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	sort.SliceStable(e.Errors, func(i, j int) bool { return e.Errors[i].Path < e.Errors[j].Path })
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O and CGO parsing.
const DefaultWorkerMultiplier = 2

// Options tunes MapFilesN.
type Options struct {
	// MaxWorkers bounds concurrency; <= 0 means 2x NumCPU.
	MaxWorkers int
	// MaxFileSize skips larger files with ErrFileTooLarge; 0 means no limit.
	MaxFileSize int64
}

// MapFiles processes files in parallel with default options.
// See MapFilesN.
func MapFiles[T any](ctx context.Context, files []string, src source.ContentSource, fn func(psr *parser.Parser, path string, content []byte) (T, error)) ([]T, *ProcessingErrors) {
	return MapFilesN(ctx, files, src, Options{}, fn)
}

// MapFilesN reads each file from src and calls fn with a parser owned by
// the worker. Results are returned in the order of files; failed files are
// left out and reported in the returned errors, which are sorted by path and
// nil when every file succeeded. Once ctx is cancelled the remaining files
// are recorded with the context error instead of being processed.
// Progress is tracked via context using analyzer.WithTracker.
func MapFilesN[T any](ctx context.Context, files []string, src source.ContentSource, opts Options, fn func(psr *parser.Parser, path string, content []byte) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	maxWorkers = min(maxWorkers, len(files))

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	parsers := newParserPool(maxWorkers)
	defer parsers.close()

	type slot struct {
		value T
		ok    bool
	}
	slots := make([]slot, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if tracker != nil {
				defer tracker.Tick(path)
			}

			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return nil
			default:
			}

			content, err := src.Read(path)
			if err != nil {
				errs.Add(path, fmt.Errorf("failed to read file: %w", err))
				return nil
			}
			if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
				errs.Add(path, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content)))
				return nil
			}

			psr := parsers.get()
			defer parsers.put(psr)

			result, err := fn(psr, path, content)
			if err != nil {
				errs.Add(path, err)
				return nil
			}

			slots[i] = slot{value: result, ok: true}
			return nil
		})
	}
	_ = p.Wait() // per-file errors are in errs

	results := make([]T, 0, len(files))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.value)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	errs.sort()
	return results, errs
}

// parserPool hands out tree-sitter parsers, which are not safe for
// concurrent use, so that each worker reuses one instead of allocating per
// file.
type parserPool struct {
	parsers chan *parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{parsers: make(chan *parser.Parser, size)}
}

func (p *parserPool) get() *parser.Parser {
	select {
	case psr := <-p.parsers:
		return psr
	default:
		return parser.New()
	}
}

func (p *parserPool) put(psr *parser.Parser) {
	select {
	case p.parsers <- psr:
	default:
		psr.Close()
	}
}

// close releases pooled parsers. It must not race with get or put.
func (p *parserPool) close() {
	close(p.parsers)
	for psr := range p.parsers {
		psr.Close()
	}
}
