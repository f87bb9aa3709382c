package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter keeps a single spinner line updated in place while a phase
// runs, such as loading the catalog before the fetch table appears.
type StatusWriter struct {
	w       io.Writer
	mu      sync.Mutex
	message string
	started time.Time
	stop    chan struct{}
	exited  chan struct{}
	stopped bool
}

// NewStatusWriter starts a background spinner rendering to w.
func NewStatusWriter(w io.Writer, message string) *StatusWriter {
	sw := &StatusWriter{
		w:       w,
		message: message,
		started: time.Now(),
		stop:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update replaces the message and restarts the elapsed timer.
func (sw *StatusWriter) Update(message string) {
	sw.mu.Lock()
	sw.message = message
	sw.started = time.Now()
	sw.mu.Unlock()
}

// Stop clears the line and waits for the spinner goroutine to exit.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()

	close(sw.stop)
	<-sw.exited
	fmt.Fprint(sw.w, "\r\033[K")
}

// Finish stops the spinner and leaves a styled summary line.
func (sw *StatusWriter) Finish(format string, args ...any) {
	sw.Stop()
	fmt.Fprintln(sw.w, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (sw *StatusWriter) loop() {
	defer close(sw.exited)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			sw.mu.Lock()
			msg, since := sw.message, time.Since(sw.started)
			sw.mu.Unlock()
			fmt.Fprintf(sw.w, "\r\033[K%s %s (%s)", spinnerFrames[frame%len(spinnerFrames)], msg, formatElapsed(since))
		}
	}
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
