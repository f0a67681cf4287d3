package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"shale/internal/driver"
	"shale/internal/ui"
)

type buildOutcome struct {
	outcomes []driver.FileOutcome
	err      error
}

// runBuildWithUI runs BuildAll in the background and draws its events.
func runBuildWithUI(ctx context.Context, title string, req driver.BuildRequest) ([]driver.FileOutcome, error) {
	events := make(chan driver.BuildEvent, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		req.Observer = func(ev driver.BuildEvent) { events <- ev }
		outcomes, err := driver.BuildAll(ctx, req)
		close(events)
		outcomeCh <- buildOutcome{outcomes: outcomes, err: err}
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so BuildAll can finish
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.outcomes, uiErr
	}
	return outcome.outcomes, outcome.err
}
