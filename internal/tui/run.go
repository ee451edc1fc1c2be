package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, backend Backend, logger *slog.Logger, timeout time.Duration) error {
	model := NewModel(ctx, backend, logger, timeout)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
