package trace

import (
	"context"
	"fmt"
	"time"
)

// WriteRun inserts a run record.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - duplicate tokens
// are silently ignored. Other constraint violations still return
// errors.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (token, grammar, input, ok, parsed_len, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Grammar,
		run.Input,
		run.OK,
		run.ParsedLen,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSteps inserts a run's steps in one transaction. The run record
// must exist first (foreign key constraint). Duplicate (token, seq)
// pairs are silently ignored for idempotency.
func (s *Store) WriteSteps(ctx context.Context, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (run_token, seq, current, head, result)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	defer stmt.Close()

	for _, step := range steps {
		if _, err := stmt.ExecContext(ctx, step.RunToken, step.Seq, step.Current, step.Head, step.Result); err != nil {
			return fmt.Errorf("write step %d: %w", step.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	return nil
}
