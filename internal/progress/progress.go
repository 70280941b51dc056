// Package progress draws terminal progress bars for long analyses.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/panbanda/cyclo/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Bar wraps a progress bar for file processing.
type Bar struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewSpinner creates a spinner for operations with unknown total count,
// such as scanning directories.
func NewSpinner(label string) *Bar {
	return newSpinner(os.Stderr, label)
}

func newSpinner(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, label: label, out: w}
}

// NewBar creates a progress bar on stderr with the given label and total.
func NewBar(label string, total int) *Bar {
	return NewBarWriter(os.Stderr, label, total)
}

// NewBarWriter creates a progress bar drawing to w.
func NewBarWriter(w io.Writer, label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, label: label, out: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (b *Bar) Tick() {
	_ = b.bar.Add(1)
}

// Tracker returns an analyzer tracker that advances the bar once per
// processed file.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(func(_, _ int, _ string) {
		b.Tick()
	})
}

// Current returns how far the bar has advanced.
func (b *Bar) Current() int64 {
	return b.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (b *Bar) FinishSuccess() {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishSkipped clears the bar and reports why the work was skipped.
func (b *Bar) FinishSkipped(reason string) {
	b.FinishSuccess()
	fmt.Fprintf(b.out, "  %s skipped (%s)\n", b.label, reason)
}

// FinishError clears the bar and reports the error.
func (b *Bar) FinishError(err error) {
	b.FinishSuccess()
	fmt.Fprintf(b.out, "  %s error: %v\n", b.label, err)
}
