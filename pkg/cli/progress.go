package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// renderInterval throttles terminal repaints. In-memory evaluation loops
// update millions of times per second; repainting on every update would
// dominate the run.
const renderInterval = 100 * time.Millisecond

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

// SimpleProgress draws a single-line text progress bar with a rate.
type SimpleProgress struct {
	mu       sync.Mutex
	total    int64
	current  int64
	started  time.Time
	lastDraw time.Time
	writer   io.Writer
	unit     string
}

// NewProgressReporter creates a progress reporter that writes to w.
// If w is nil, it defaults to os.Stdout. The unit labels the rate,
// for example "eval" renders as "12345 eval/s".
func NewProgressReporter(w io.Writer, unit string) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	if unit == "" {
		unit = "op"
	}
	return &SimpleProgress{
		writer: w,
		unit:   unit,
	}
}

// Start initializes the progress reporter with the total number of items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update updates the current progress. Repaints are rate-limited; the
// final state always renders via Finish.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if time.Since(p.lastDraw) < renderInterval {
		return
	}
	p.render()
}

// Finish marks the progress as complete and terminates the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}
	p.lastDraw = time.Now()

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started)
	rate := float64(p.current) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\rProgress: [%s] %.1f%% (%d/%d) %.0f %s/s",
		bar, percent, p.current, p.total, rate, p.unit)
}
