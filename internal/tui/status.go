package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StatusWriter keeps a single spinner line updated on w while a command
// works through its phases. Each Update resets the elapsed counter.
type StatusWriter struct {
	w    io.Writer
	stop chan struct{}
	once sync.Once

	mu    sync.Mutex
	phase string
	since time.Time
}

// NewStatusWriter starts a background spinner on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{w: w, stop: make(chan struct{}), since: time.Now()}
	go sw.spin()
	return sw
}

// Update replaces the phase message and restarts the phase timer.
func (sw *StatusWriter) Update(phase string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.phase, sw.since = phase, time.Now()
}

// Stop clears the status line and stops the spinner. Later calls are no-ops.
func (sw *StatusWriter) Stop() {
	sw.once.Do(func() {
		close(sw.stop)
		fmt.Fprint(sw.w, "\r\033[K")
	})
}

func (sw *StatusWriter) line(frame int) string {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	glyph := activity.Frames[frame%len(activity.Frames)]
	return fmt.Sprintf("\r\033[K%s %s (%s)", glyph, sw.phase, formatElapsed(time.Since(sw.since)))
}

func (sw *StatusWriter) spin() {
	ticker := time.NewTicker(activity.FPS)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			fmt.Fprint(sw.w, sw.line(frame))
		}
	}
}

// formatElapsed renders d compactly: 250ms, 2.5s, 42s, 2m05s.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
