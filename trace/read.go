package trace

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReadRuns returns all recorded runs, oldest first. Ordering is
// deterministic: created_at, then token.
//
// Returns an empty slice (not nil) when the store holds no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, grammar, input, ok, parsed_len, created_at
		FROM runs
		ORDER BY created_at ASC, token ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given token.
func (s *Store) ReadRun(ctx context.Context, token string) (Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, grammar, input, ok, parsed_len, created_at
		FROM runs
		WHERE token = ?
	`, token)
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Run{}, fmt.Errorf("query run: %w", err)
		}
		return Run{}, fmt.Errorf("run not found: %s", token)
	}
	return scanRun(rows)
}

// ReadSteps returns a run's steps in dispatch order.
//
// Returns an empty slice (not nil) when the run has no steps.
func (s *Store) ReadSteps(ctx context.Context, token string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, seq, current, head, result
		FROM steps
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var step Step
		if err := rows.Scan(&step.RunToken, &step.Seq, &step.Current, &step.Head, &step.Result); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var createdAt string
	if err := rows.Scan(&run.Token, &run.Grammar, &run.Input, &run.OK, &run.ParsedLen, &createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp: %w", err)
	}
	run.CreatedAt = ts
	return run, nil
}
