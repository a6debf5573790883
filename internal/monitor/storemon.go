package monitor

import (
	"context"
	"log/slog"

	"github.com/spyglass-sec/spyglass/internal/store"
	"github.com/spyglass-sec/spyglass/internal/work"
)

// Persist is a Monitor that records every event in the outcome store.
//
// Writes are synchronous but bounded (single local SQLite statement);
// callers that cannot tolerate even that on the worker path should wrap
// Persist in Async. Write failures are logged and swallowed: losing an
// audit row must never take down the dispatch loop.
type Persist struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPersist creates a store-backed monitor.
func NewPersist(s *store.Store, logger *slog.Logger) *Persist {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persist{store: s, logger: logger}
}

func (p *Persist) OnResult(c *work.Case, data []byte) {
	rec := store.ResultRecord{
		CaseID:     c.ID,
		Unit:       c.Unit.Name(),
		TargetKey:  string(c.Target.Key),
		TargetDesc: c.Target.Summary(),
		Data:       data,
	}
	if err := p.store.WriteResult(context.Background(), rec); err != nil {
		p.logger.Warn("persist result failed", "case", c.ID, "error", err)
	}
}

func (p *Persist) OnFlag(c *work.Case, flag string) {
	solution, err := work.Reconstruct(c, flag).JSON()
	if err != nil {
		p.logger.Warn("render solution failed", "case", c.ID, "error", err)
		solution = "{}"
	}

	rec := store.FlagRecord{
		CaseID:    c.ID,
		Unit:      c.Unit.Name(),
		TargetKey: string(c.Target.Key),
		Flag:      flag,
		Solution:  solution,
	}
	if err := p.store.WriteFlag(context.Background(), rec); err != nil {
		p.logger.Warn("persist flag failed", "case", c.ID, "error", err)
	}
}

func (p *Persist) OnException(c *work.Case, err error) {
	rec := store.ExceptionRecord{
		CaseID:    c.ID,
		Unit:      c.Unit.Name(),
		TargetKey: string(c.Target.Key),
		Error:     err.Error(),
	}
	if werr := p.store.WriteException(context.Background(), rec); werr != nil {
		p.logger.Warn("persist exception failed", "case", c.ID, "error", werr)
	}
}
