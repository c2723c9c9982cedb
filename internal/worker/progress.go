package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress renders a single-line progress bar for a batch.
type Progress struct {
	start   time.Time
	out     io.Writer
	total   int
	done    int
	failed  int
	mu      sync.RWMutex
	enabled bool
}

// NewProgress creates a tracker for total tasks. A disabled tracker still
// counts but never prints.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		total:   total,
		start:   time.Now(),
		out:     os.Stderr,
		enabled: enabled,
	}
}

// Update records the latest counts and redraws the bar.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.done, p.total, p.failed = completed, total, failed
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

type snapshot struct {
	elapsed time.Duration
	done    int
	total   int
	failed  int
}

func (p *Progress) snapshot() snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return snapshot{
		elapsed: time.Since(p.start),
		done:    p.done,
		total:   p.total,
		failed:  p.failed,
	}
}

// rate returns finished tasks per second and the estimated time left.
func (s snapshot) rate() (float64, time.Duration) {
	if s.done == 0 || s.elapsed <= 0 {
		return 0, 0
	}
	r := float64(s.done) / s.elapsed.Seconds()
	return r, time.Duration(float64(s.total-s.done)/r) * time.Second
}

func (s snapshot) bar() string {
	filled := 0
	if s.total > 0 {
		filled = min(barWidth, s.done*barWidth/s.total)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (s snapshot) line() string {
	rate, eta := s.rate()

	var b strings.Builder
	fmt.Fprintf(&b, "\r[%s] %d/%d rasters", s.bar(), s.done, s.total)
	if s.failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.failed)
	}
	fmt.Fprintf(&b, " - %.1f rasters/sec", rate)
	switch {
	case s.done == s.total:
		fmt.Fprintf(&b, " - Done in %s", formatDuration(s.elapsed))
	case eta > 0:
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(eta))
	}
	// clear leftovers of a longer previous line
	b.WriteString("          ")
	return b.String()
}

// Print draws the current state.
func (p *Progress) Print() {
	fmt.Fprint(p.out, p.snapshot().line())
}

// Done prints the final state followed by a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.out)
	}
}

// Summary returns a one-line report of the finished batch.
func (p *Progress) Summary() string {
	s := p.snapshot()
	rate, _ := s.rate()
	return fmt.Sprintf("Built %d/%d rasters (%d failed) in %s (%.1f rasters/sec)",
		s.done-s.failed, s.total, s.failed, formatDuration(s.elapsed), rate)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
