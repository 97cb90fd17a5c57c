package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

const evaluationColumns = `id, user_id, question_id, question_text, transcript, framework, feedback_text, overall_score, source, is_ideal, created_at`

// EvaluationRepo persists and loads evaluations from PostgreSQL.
type EvaluationRepo struct{ Pool PgxPool }

// NewEvaluationRepo constructs an EvaluationRepo with the given pool.
func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

// Create inserts an evaluation and returns its id.
func (r *EvaluationRepo) Create(ctx domain.Context, e domain.Evaluation) (string, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.Create")
	defer span.End()
	span.SetAttributes(attribute.String("framework", string(e.Framework)), attribute.String("source", string(e.Source)))

	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	q := `INSERT INTO evaluations (` + evaluationColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.Pool.Exec(ctx, q, id, e.UserID, e.QuestionID, e.QuestionText, e.Transcript,
		string(e.Framework), e.FeedbackText, e.OverallScore, string(e.Source), e.IsIdeal, created)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("op=evaluation.create: %w", err)
	}
	return id, nil
}

// Get loads an evaluation by id.
func (r *EvaluationRepo) Get(ctx domain.Context, id string) (domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.Get")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return domain.Evaluation{}, fmt.Errorf("op=evaluation.get: %w", domain.ErrNotFound)
	}
	row := r.Pool.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id=$1`, id)
	e, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Evaluation{}, fmt.Errorf("op=evaluation.get: %w", domain.ErrNotFound)
		}
		span.RecordError(err)
		return domain.Evaluation{}, fmt.Errorf("op=evaluation.get: %w", err)
	}
	return e, nil
}

// ListByUser returns a user's evaluations, newest first.
func (r *EvaluationRepo) ListByUser(ctx domain.Context, userID string, limit int) ([]domain.Evaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.ListByUser")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.Pool.Query(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("op=evaluation.list: %w", err)
	}
	defer rows.Close()

	out := []domain.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("op=evaluation.list: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=evaluation.list: %w", err)
	}
	return out, nil
}

func scanEvaluation(row pgx.Row) (domain.Evaluation, error) {
	var e domain.Evaluation
	var framework, source string
	err := row.Scan(&e.ID, &e.UserID, &e.QuestionID, &e.QuestionText, &e.Transcript,
		&framework, &e.FeedbackText, &e.OverallScore, &source, &e.IsIdeal, &e.CreatedAt)
	if err != nil {
		return domain.Evaluation{}, err
	}
	e.Framework = domain.Framework(framework)
	e.Source = domain.EvaluationSource(source)
	return e, nil
}
