package logging

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// newStyledHandler returns a charmbracelet/log logger, which implements
// slog.Handler, for colourised interactive output.
func newStyledHandler(w io.Writer, level slog.Level, addSource bool) slog.Handler {
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		ReportCaller:    addSource,
		Prefix:          "checklist",
	})
}
