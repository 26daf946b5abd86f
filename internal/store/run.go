package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	runsTable     = "pipeline_runs"
	attemptsTable = "generation_attempts"
)

var runColumns = []string{
	"id", "sequence", "timestamp", "grade", "subject", "skill_id", "skill_name",
	"question_type", "state", "success", "error_message", "attempts",
	"duration_ms", "question",
}

var attemptColumns = []string{
	"sequence", "timestamp", "run_id", "attempt", "question_type", "action",
	"defects", "error_message", "latency_ms",
}

type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *runRepo) SaveRun(ctx context.Context, run RunRecord) error {
	if run.ID == "" {
		return errors.New("save run: empty run ID")
	}

	// Sequence numbers are drawn before the transaction opens; the counter
	// writes through its own connection.
	runSeq, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	attemptSeqs := make([]int64, len(run.History))
	for i := range run.History {
		if attemptSeqs[i], err = r.seq.Next(ctx); err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
	}

	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder.Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID, runSeq, ts.UnixMilli(), run.Grade, run.Subject, run.SkillID,
			run.SkillName, run.QuestionType, run.State, run.Success,
			run.ErrorMessage, run.Attempts, run.DurationMs, run.Question,
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if len(run.History) > 0 {
		ins := builder.Insert(attemptsTable).Columns(attemptColumns...)
		for i, a := range run.History {
			ats := a.Timestamp
			if ats.IsZero() {
				ats = ts
			}
			ins.Values(
				attemptSeqs[i], ats.UnixMilli(), run.ID, a.Attempt, a.QuestionType,
				a.Action, strings.Join(a.Defects, ","), a.ErrorMessage, a.LatencyMs,
			)
		}
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save attempts: %w", err)
		}
	}

	return tx.Commit()
}

func (r *runRepo) ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error) {
	sel := builder.Select(runColumns...).
		From(entsql.Table(runsTable)).
		OrderBy(entsql.Desc("sequence"))
	applyOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *runRepo) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	query, args := builder.Select(runColumns...).
		From(entsql.Table(runsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	query, args = builder.Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		Where(entsql.EQ("run_id", id)).
		OrderBy("attempt").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a       AttemptRecord
			ts      int64
			defects string
		)
		if err := rows.Scan(&a.Sequence, &ts, &a.RunID, &a.Attempt, &a.QuestionType,
			&a.Action, &defects, &a.ErrorMessage, &a.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Timestamp = time.UnixMilli(ts).UTC()
		if defects != "" {
			a.Defects = strings.Split(defects, ",")
		}
		run.History = append(run.History, a)
	}
	return run, rows.Err()
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		run RunRecord
		ts  int64
	)
	err := row.Scan(
		&run.ID, &run.Sequence, &ts, &run.Grade, &run.Subject, &run.SkillID,
		&run.SkillName, &run.QuestionType, &run.State, &run.Success,
		&run.ErrorMessage, &run.Attempts, &run.DurationMs, &run.Question,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Timestamp = time.UnixMilli(ts).UTC()
	return &run, nil
}
