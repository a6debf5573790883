package monitor

import (
	"log/slog"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// Log is a Monitor that writes structured log lines for every event.
// Safe for concurrent use; slog handlers serialize internally.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging monitor. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) OnResult(c *work.Case, data []byte) {
	l.logger.Debug("result reported",
		"case", c.ID,
		"unit", c.Unit.Name(),
		"target", c.Target.Key.Short(),
		"bytes", len(data),
	)
}

func (l *Log) OnFlag(c *work.Case, flag string) {
	l.logger.Info("flag found",
		"case", c.ID,
		"unit", c.Unit.Name(),
		"target", c.Target.Key.Short(),
		"flag", flag,
	)
}

func (l *Log) OnException(c *work.Case, err error) {
	l.logger.Warn("unit failed",
		"case", c.ID,
		"unit", c.Unit.Name(),
		"target", c.Target.Key.Short(),
		"error", err,
	)
}
