package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const (
	defaultSpinInterval = 100 * time.Millisecond
	defaultBarWidth     = 40
	clearLine           = "\r\033[K"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerOptions configures a Spinner.
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // 100ms when zero
}

// Spinner animates a message on one line while a blocking call runs.
type Spinner struct {
	writer   io.Writer
	message  string
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a stopped spinner.
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultSpinInterval
	}
	return &Spinner{
		writer:   w,
		message:  opts.Message,
		interval: interval,
		noColor:  opts.NoColor,
	}
}

// Start begins the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.animate(s.stop, s.stopped)
}

// Stop ends the animation and clears the line. It returns once the last
// frame has been written, so nothing is drawn after the line is cleared.
// Stopping a stopped spinner does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
	fmt.Fprint(s.writer, clearLine)
}

// finish stops the spinner and leaves a status line in its place.
func (s *Spinner) finish(ok bool, message string) {
	s.Stop()
	if ok {
		paint(s.noColor, color.FgGreen, color.Bold).Fprintf(s.writer, "✓ %s\n", message)
		return
	}
	paint(s.noColor, color.FgRed, color.Bold).Fprintf(s.writer, "✗ %s\n", message)
}

func (s *Spinner) animate(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := paint(s.noColor, color.FgCyan)
	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-stop:
			return
		case <-ticker.C:
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], s.message)
		}
	}
}

// WithSpinner runs fn behind a spinner labelled message and reports the
// outcome on the same line.
func WithSpinner(w io.Writer, message string, noColor bool, fn func() error) error {
	spinner := NewSpinner(w, SpinnerOptions{Message: message, NoColor: noColor})
	spinner.Start()

	if err := fn(); err != nil {
		spinner.finish(false, message+" failed")
		return err
	}
	spinner.finish(true, message)
	return nil
}

// ProgressBarOptions configures a ProgressBar.
type ProgressBarOptions struct {
	Total   int
	Width   int // 40 when zero
	Message string
	NoColor bool
}

// ProgressBar tracks a fixed number of checks, some of which may fail. It
// redraws one line in place on every step.
type ProgressBar struct {
	writer  io.Writer
	total   int
	done    int
	failed  int
	width   int
	message string
	noColor bool
}

// NewProgressBar creates a bar with nothing done.
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width <= 0 {
		width = defaultBarWidth
	}
	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		width:   width,
		message: opts.Message,
		noColor: opts.NoColor,
	}
}

// Add records n passed steps.
func (p *ProgressBar) Add(n int) {
	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	p.render()
}

// AddFailure records one failed step.
func (p *ProgressBar) AddFailure() {
	p.failed++
	p.Add(1)
}

// Failed returns the number of steps recorded with AddFailure.
func (p *ProgressBar) Failed() int {
	return p.failed
}

// Finish fills the bar, ends its line and prints the tally: green when
// every step passed, red otherwise.
func (p *ProgressBar) Finish() {
	p.done = p.total
	p.render()
	fmt.Fprintln(p.writer)

	passed := p.total - p.failed
	if p.failed == 0 {
		paint(p.noColor, color.FgGreen, color.Bold).Fprintf(p.writer, "✓ %s: %d/%d passed\n", p.message, passed, p.total)
		return
	}
	paint(p.noColor, color.FgRed, color.Bold).Fprintf(p.writer, "✗ %s: %d/%d passed, %d failed\n", p.message, passed, p.total, p.failed)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}

	filled := p.width * p.done / p.total
	var bar strings.Builder
	bar.WriteString("[")
	paint(p.noColor, color.FgCyan).Fprint(&bar, strings.Repeat("█", filled))
	paint(p.noColor, color.FgHiBlack).Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	line := fmt.Sprintf("\r%s %3d%%", bar.String(), 100*p.done/p.total)
	if p.message != "" {
		line += " " + p.message
	}
	if p.failed > 0 {
		line += paint(p.noColor, color.FgRed).Sprintf(" (%d failed)", p.failed)
	}
	fmt.Fprint(p.writer, line)
}

// WithProgress runs fn with a bar of total steps and finishes the bar when
// fn succeeds. On error the bar's line is ended and the error returned.
func WithProgress(w io.Writer, message string, total int, noColor bool, fn func(*ProgressBar) error) error {
	bar := NewProgressBar(w, ProgressBarOptions{Total: total, Message: message, NoColor: noColor})
	if err := fn(bar); err != nil {
		fmt.Fprintln(w)
		return err
	}
	bar.Finish()
	return nil
}
