package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/mipsgrade/internal/canonical"
)

// BeginRun records the start of a run and assigns its seq. The returned Run
// carries the assigned seq.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, suite, started_at, seq, total, passed, finished)
		VALUES (?, ?, ?, ?, 0, 0, 0)
	`,
		run.ID,
		run.Suite,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}

	run.Seq = seq
	run.Total, run.Passed, run.Finished = 0, 0, false
	return run, nil
}

// WriteResult inserts a graded case. Duplicate IDs are ignored so a result
// written twice is stored once. The run must already exist.
func (s *Store) WriteResult(ctx context.Context, r Result) error {
	messages := r.Messages
	if messages == nil {
		messages = []string{}
	}
	messagesJSON, err := canonical.Marshal(messages)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results
		(id, run_id, position, name, program, success, score, messages, error, expected_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.RunID,
		r.Position,
		r.Name,
		r.Program,
		r.Success,
		r.Score,
		string(messagesJSON),
		r.Error,
		r.ExpectedDigest,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// FinishRun marks a run complete with its totals.
func (s *Store) FinishRun(ctx context.Context, runID string, total, passed int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET total = ?, passed = ?, finished = 1 WHERE id = ?
	`, total, passed, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %q: %w", runID, ErrNotFound)
	}
	return nil
}
