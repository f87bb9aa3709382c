package tui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user aborts a running display.
var ErrInterrupted = errors.New("interrupted")

// RunWithWork starts a bubbletea program for model, runs workFn in a
// goroutine and blocks until both have finished. workFn receives a context
// that is cancelled when the user aborts, and a send callback that yields
// briefly after each message so the renderer can draw.
func RunWithWork(parent context.Context, in io.Reader, out io.Writer, model ProgressModel, workFn func(ctx context.Context, send func(tea.Msg))) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	p := tea.NewProgram(model, opts...)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		time.Sleep(50 * time.Millisecond)

		workFn(ctx, func(msg tea.Msg) {
			p.Send(msg)
			time.Sleep(5 * time.Millisecond)
		})
		p.Send(WorkDoneMsg{})
	}()

	final, err := p.Run()
	cancel()
	<-finished

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
			return parent.Err()
		}
		return err
	}
	if m, ok := final.(ProgressModel); ok {
		if m.Interrupted() {
			return ErrInterrupted
		}
		if m.Err() != nil {
			return m.Err()
		}
	}
	return nil
}
