package indexer

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// Progress receives the number of durably written records.
type Progress interface {
	Update(total int64)
	Finish(total int64)
}

// NoopProgress discards progress updates.
type NoopProgress struct{}

func (NoopProgress) Update(int64) {}
func (NoopProgress) Finish(int64) {}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders a single, repainted status line.
type Spinner struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	start     time.Time
	frame     int
	sometimes rate.Sometimes
}

// NewSpinner creates a spinner writing to w. Repaints are limited to ten per second.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{
		w:         w,
		label:     label,
		start:     time.Now(),
		sometimes: rate.Sometimes{Interval: 100 * time.Millisecond},
	}
}

// NewTerminalProgress returns a spinner on f when it is a terminal and a
// NoopProgress otherwise.
func NewTerminalProgress(f *os.File, label string) Progress {
	if !term.IsTerminal(int(f.Fd())) {
		return NoopProgress{}
	}
	return NewSpinner(f, label)
}

// Update repaints the line if the last repaint is old enough.
func (s *Spinner) Update(total int64) {
	s.sometimes.Do(func() { s.render(total, false) })
}

// Finish paints the final count and ends the line.
func (s *Spinner) Finish(total int64) {
	s.render(total, true)
}

func (s *Spinner) render(total int64, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.start).Truncate(time.Second)
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	s.frame++
	label := s.label
	if done {
		frame = "✓"
		label = "done"
	}

	fmt.Fprintf(s.w, "\r%s [%s] %s %s files", frame, formatElapsed(elapsed), label, humanize.Comma(total))
	if done {
		fmt.Fprintln(s.w)
	}
}

func formatElapsed(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
