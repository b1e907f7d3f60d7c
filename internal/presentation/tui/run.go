package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, nav Navigator, opts ...Option) error {
	p := tea.NewProgram(New(ctx, nav, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
