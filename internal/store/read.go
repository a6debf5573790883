package store

import (
	"context"
	"fmt"
)

// ReadFlags returns all recorded flags in insertion order.
func (s *Store) ReadFlags(ctx context.Context) ([]FlagRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, unit, target_key, flag, solution
		FROM flags
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}
	defer rows.Close()

	var flags []FlagRecord
	for rows.Next() {
		var f FlagRecord
		if err := rows.Scan(&f.CaseID, &f.Unit, &f.TargetKey, &f.Flag, &f.Solution); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}
	return flags, nil
}

// ReadResults returns all results recorded for a target key, in
// insertion order. An empty key returns every result.
func (s *Store) ReadResults(ctx context.Context, targetKey string) ([]ResultRecord, error) {
	query := `
		SELECT case_id, unit, target_key, target_desc, data
		FROM results
	`
	var args []any
	if targetKey != "" {
		query += ` WHERE target_key = ?`
		args = append(args, targetKey)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.CaseID, &r.Unit, &r.TargetKey, &r.TargetDesc, &r.Data); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return results, nil
}

// ReadExceptions returns all recorded unit failures in insertion order.
func (s *Store) ReadExceptions(ctx context.Context) ([]ExceptionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, unit, target_key, error
		FROM exceptions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("read exceptions: %w", err)
	}
	defer rows.Close()

	var excs []ExceptionRecord
	for rows.Next() {
		var e ExceptionRecord
		if err := rows.Scan(&e.CaseID, &e.Unit, &e.TargetKey, &e.Error); err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		excs = append(excs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read exceptions: %w", err)
	}
	return excs, nil
}
