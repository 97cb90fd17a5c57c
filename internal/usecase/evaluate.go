package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	obsctx "github.com/fairyhunter13/pm-interview-coach/internal/observability"
)

const (
	// DefaultListLimit applies when a caller does not ask for a page size.
	DefaultListLimit = 20
	// MaxListLimit caps ListByUser page sizes.
	MaxListLimit = 100
)

// Scored is a persisted evaluation together with the pipeline details that
// are not stored on the record.
type Scored struct {
	Evaluation domain.Evaluation
	Sections   []domain.SectionScore
	Attempts   int
	Model      string
	// QuotaRemaining is the number of evaluations the user has left, when known.
	QuotaRemaining *int
}

// QuotaReporter is implemented by limiters that can report a user's balance.
type QuotaReporter interface {
	Remaining(ctx context.Context, userID string) (float64, error)
}

// EvaluationService wraps the Analyzer with quota enforcement and persistence.
type EvaluationService struct {
	Analyzer *Analyzer
	Repo     domain.EvaluationRepository
	// Quota may be nil, in which case every request is allowed.
	Quota domain.QuotaLimiter
	Now   func() time.Time
}

// NewEvaluationService constructs an EvaluationService with its dependencies.
func NewEvaluationService(a *Analyzer, repo domain.EvaluationRepository, quota domain.QuotaLimiter) EvaluationService {
	return EvaluationService{Analyzer: a, Repo: repo, Quota: quota, Now: func() time.Time { return time.Now().UTC() }}
}

// Evaluate checks the user's quota, runs the pipeline and stores the result.
func (s EvaluationService) Evaluate(ctx context.Context, req domain.EvaluationRequest) (Scored, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Scored{}, fmt.Errorf("op=evaluation.Evaluate: %w: user_id required", domain.ErrInvalidArgument)
	}
	ctx = obsctx.ContextWithAttrs(ctx, slog.String("user_id", req.UserID))
	if err := s.checkQuota(ctx, req.UserID); err != nil {
		return Scored{}, err
	}

	res := s.Analyzer.Analyze(ctx, req)
	out, err := s.persist(ctx, req, res, false)
	if err != nil {
		return Scored{}, err
	}
	out.QuotaRemaining = s.remaining(ctx, req.UserID)
	return out, nil
}

// remaining returns nil when the limiter cannot report or the user is unlimited.
func (s EvaluationService) remaining(ctx context.Context, userID string) *int {
	rep, ok := s.Quota.(QuotaReporter)
	if !ok {
		return nil
	}
	left, err := rep.Remaining(ctx, userID)
	if err != nil {
		obsctx.LoggerFromContext(ctx).Debug("quota balance unavailable", slog.Any("error", err))
		return nil
	}
	if math.IsInf(left, 1) || math.IsNaN(left) {
		return nil
	}
	n := int(math.Floor(left))
	if n < 0 {
		n = 0
	}
	return &n
}

// ScoreIdeal scores a reference answer with the heuristic scorer only. It does
// not consume quota and the record is flagged as ideal.
func (s EvaluationService) ScoreIdeal(ctx context.Context, req domain.EvaluationRequest) (Scored, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Scored{}, fmt.Errorf("op=evaluation.ScoreIdeal: %w: user_id required", domain.ErrInvalidArgument)
	}
	res := s.Analyzer.Heuristic(ctx, req)
	return s.persist(ctx, req, res, true)
}

// Get loads one evaluation by id.
func (s EvaluationService) Get(ctx context.Context, id string) (domain.Evaluation, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Evaluation{}, fmt.Errorf("op=evaluation.Get: %w: id required", domain.ErrInvalidArgument)
	}
	return s.Repo.Get(ctx, id)
}

// ListByUser returns a user's most recent evaluations. The limit is clamped to
// [1, MaxListLimit]; zero or negative means DefaultListLimit.
func (s EvaluationService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Evaluation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("op=evaluation.ListByUser: %w: user_id required", domain.ErrInvalidArgument)
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.Repo.ListByUser(ctx, userID, limit)
}

// checkQuota fails open: a broken limiter must not block evaluations.
func (s EvaluationService) checkQuota(ctx context.Context, userID string) error {
	if s.Quota == nil {
		return nil
	}
	ok, retryAfter, err := s.Quota.Allow(ctx, userID, 1)
	if err != nil {
		obsctx.LoggerFromContext(ctx).Warn("quota check failed, allowing request", slog.Any("error", err))
		return nil
	}
	if !ok {
		observability.RecordQuotaDenied()
		obsctx.LoggerFromContext(ctx).Info("evaluation quota exhausted", slog.Duration("retry_after", retryAfter))
		return fmt.Errorf("op=evaluation.Evaluate: %w: retry after %s", domain.ErrRateLimited, retryAfter.Round(time.Second))
	}
	return nil
}

func (s EvaluationService) persist(ctx context.Context, req domain.EvaluationRequest, res domain.EvaluationResult, ideal bool) (Scored, error) {
	ev := domain.Evaluation{
		UserID:       req.UserID,
		QuestionID:   req.QuestionID,
		QuestionText: req.QuestionText,
		Transcript:   req.Transcript,
		Framework:    res.Framework,
		FeedbackText: res.FullText,
		OverallScore: res.OverallScore,
		Source:       res.Source,
		IsIdeal:      ideal,
		CreatedAt:    s.now(),
	}
	id, err := s.Repo.Create(ctx, ev)
	if err != nil {
		obsctx.LoggerFromContext(ctx).Error("failed to store evaluation", slog.Any("error", err))
		return Scored{}, fmt.Errorf("op=evaluation.persist: %w", err)
	}
	ev.ID = id

	if !ideal {
		observability.ObserveEvaluation(string(res.Framework), string(res.Source), res.OverallScore)
		observability.RecordScoreDrift(string(res.Framework), string(res.Source), res.OverallScore)
	}
	return Scored{Evaluation: ev, Sections: res.Sections, Attempts: res.Attempts, Model: res.Model}, nil
}

func (s EvaluationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
