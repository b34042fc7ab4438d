package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithWork starts a bubbletea program for model, runs workFn in a
// goroutine and blocks until the program exits. workFn receives a send
// callback for row updates; WorkDoneMsg is sent when it returns.
func RunWithWork(out io.Writer, model ProgressModel, workFn func(send func(tea.Msg))) error {
	p := tea.NewProgram(model, tea.WithOutput(out))

	go func() {
		// Let the event loop draw the initial table first.
		time.Sleep(50 * time.Millisecond)

		workFn(func(msg tea.Msg) {
			p.Send(msg)
			// Skipped clips complete in bursts; a short yield keeps the
			// table readable as they land.
			time.Sleep(5 * time.Millisecond)
		})

		p.Send(WorkDoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(ProgressModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
