package store

import (
	"context"
	"fmt"
)

// ResultRecord is one reported candidate output.
type ResultRecord struct {
	CaseID     string
	Unit       string
	TargetKey  string
	TargetDesc string
	Data       []byte
}

// FlagRecord is one discovered flag with its reconstructed solution.
type FlagRecord struct {
	CaseID    string
	Unit      string
	TargetKey string
	Flag      string
	Solution  string // JSON trace, root to leaf
}

// ExceptionRecord is one unit failure caught at the worker boundary.
type ExceptionRecord struct {
	CaseID    string
	Unit      string
	TargetKey string
	Error     string
}

// WriteResult appends a result record.
func (s *Store) WriteResult(ctx context.Context, r ResultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (case_id, unit, target_key, target_desc, data)
		VALUES (?, ?, ?, ?, ?)
	`, r.CaseID, r.Unit, r.TargetKey, r.TargetDesc, r.Data)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// WriteFlag appends a flag record.
// Uses ON CONFLICT(flag) DO NOTHING: a flag value is recorded once with
// the first provenance chain that produced it, mirroring the engine's
// by-value flag dedup.
func (s *Store) WriteFlag(ctx context.Context, f FlagRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flags (case_id, unit, target_key, flag, solution)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(flag) DO NOTHING
	`, f.CaseID, f.Unit, f.TargetKey, f.Flag, f.Solution)
	if err != nil {
		return fmt.Errorf("write flag: %w", err)
	}
	return nil
}

// WriteException appends an exception record.
func (s *Store) WriteException(ctx context.Context, e ExceptionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exceptions (case_id, unit, target_key, error)
		VALUES (?, ?, ?, ?)
	`, e.CaseID, e.Unit, e.TargetKey, e.Error)
	if err != nil {
		return fmt.Errorf("write exception: %w", err)
	}
	return nil
}
