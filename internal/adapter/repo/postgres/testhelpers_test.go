package postgres_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// rowStub implements pgx.Row.
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// rowsStub implements pgx.Rows over a list of evaluations.
type rowsStub struct {
	pgx.Rows
	evals   []domain.Evaluation
	i       int
	scanErr error
	err     error
	closed  bool
}

func (r *rowsStub) Next() bool { r.i++; return r.i <= len(r.evals) }
func (r *rowsStub) Close()     { r.closed = true }
func (r *rowsStub) Err() error { return r.err }
func (r *rowsStub) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return fillEvaluation(r.evals[r.i-1], dest)
}

// poolStub implements postgres.PgxPool and records the last statement.
type poolStub struct {
	execErr  error
	execTag  pgconn.CommandTag
	row      rowStub
	rows     *rowsStub
	queryErr error

	lastSQL  string
	lastArgs []any
	execs    int
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs++
	p.lastSQL, p.lastArgs = sql, args
	return p.execTag, p.execErr
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.lastSQL, p.lastArgs = sql, args
	if p.row.scan == nil {
		return rowStub{scan: func(_ ...any) error { return errors.New("no row configured") }}
	}
	return p.row
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.lastSQL, p.lastArgs = sql, args
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return p.rows, nil
}

func fillEvaluation(e domain.Evaluation, dest []any) error {
	*dest[0].(*string) = e.ID
	*dest[1].(*string) = e.UserID
	*dest[2].(*string) = e.QuestionID
	*dest[3].(*string) = e.QuestionText
	*dest[4].(*string) = e.Transcript
	*dest[5].(*string) = string(e.Framework)
	*dest[6].(*string) = e.FeedbackText
	*dest[7].(*float64) = e.OverallScore
	*dest[8].(*string) = string(e.Source)
	*dest[9].(*bool) = e.IsIdeal
	*dest[10].(*time.Time) = e.CreatedAt
	return nil
}
