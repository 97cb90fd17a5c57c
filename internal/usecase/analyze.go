// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/ai"
	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/heuristic"
	obsctx "github.com/fairyhunter13/pm-interview-coach/internal/observability"
	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
)

// Analyzer runs the response-analysis pipeline for one submission: resolve the
// framework, prompt the completion endpoint, extract the score, and fall back to
// the heuristic scorer whenever the endpoint cannot produce text.
type Analyzer struct {
	client  domain.CompletionClient
	scorer  *heuristic.Scorer
	cleaner *ai.ResponseCleaner
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithScorer replaces the heuristic scorer, e.g. to use a stricter segmenter.
func WithScorer(s *heuristic.Scorer) AnalyzerOption {
	return func(a *Analyzer) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithStrictSections makes the fallback scorer accept section markers only at
// the start of a line.
func WithStrictSections(strict bool) AnalyzerOption {
	if !strict {
		return func(*Analyzer) {}
	}
	return WithScorer(heuristic.New(heuristic.WithSegmenter(heuristic.LineSegmenter{})))
}

// NewAnalyzer builds an Analyzer. A nil client makes every evaluation heuristic.
func NewAnalyzer(client domain.CompletionClient, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{client: client, scorer: heuristic.New(), cleaner: ai.NewResponseCleaner()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze never returns an error: completion failures are logged and replaced
// by heuristic feedback. OverallScore is always read back from FullText.
func (a *Analyzer) Analyze(ctx context.Context, req domain.EvaluationRequest) domain.EvaluationResult {
	f := rubric.Resolve(req.Framework, req.Transcript)
	ctx = obsctx.ContextWithAttrs(ctx,
		slog.String("framework", string(f)),
		slog.String("question_id", req.QuestionID))
	lg := obsctx.LoggerFromContext(ctx)

	if a.client == nil {
		lg.Debug("no completion client configured, using heuristic scorer")
		return a.fallback(ctx, f, req.Transcript, 0)
	}

	resp, err := a.client.Complete(ctx, domain.CompletionRequest{
		SystemPrompt: rubric.BuildPrompt(f, req.QuestionText, req.Transcript),
		UserContent:  req.Transcript,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			lg.Info("evaluation canceled, returning heuristic feedback", slog.Any("error", err))
		} else {
			lg.Warn("completion unavailable, using heuristic scorer",
				slog.Int("attempts", resp.Attempts),
				slog.Any("error", err))
		}
		return a.fallback(ctx, f, req.Transcript, resp.Attempts)
	}

	text := a.cleaner.CleanEvaluationText(resp.Text)
	if strings.TrimSpace(text) == "" {
		lg.Warn("completion text empty after cleaning, using heuristic scorer", slog.Int("attempts", resp.Attempts))
		return a.fallback(ctx, f, req.Transcript, resp.Attempts)
	}

	res := domain.EvaluationResult{
		Framework:    f,
		FullText:     text,
		OverallScore: ai.ExtractOverallScore(text),
		Sections:     ai.ExtractSectionScores(text, rubric.For(f)),
		Source:       domain.SourceCompletion,
		Attempts:     resp.Attempts,
		Model:        resp.Model,
	}
	if res.OverallScore == 0 {
		lg.Warn("no overall score found in completion text")
	}
	lg.Info("evaluation completed",
		slog.String("source", string(res.Source)),
		slog.Float64("overall_score", res.OverallScore),
		slog.Int("attempts", res.Attempts))
	return res
}

// Heuristic scores the transcript without contacting the completion endpoint.
func (a *Analyzer) Heuristic(ctx context.Context, req domain.EvaluationRequest) domain.EvaluationResult {
	f := rubric.Resolve(req.Framework, req.Transcript)
	rep := a.scorer.Score(f, req.Transcript)
	obsctx.LoggerFromContext(ctx).Debug("heuristic evaluation",
		slog.String("framework", string(f)),
		slog.Float64("overall_score", rep.Overall))
	return resultFromReport(rep, 0)
}

func (a *Analyzer) fallback(ctx context.Context, f domain.Framework, transcript string, attempts int) domain.EvaluationResult {
	observability.RecordFallback(string(f))
	rep := a.scorer.Score(f, transcript)
	obsctx.LoggerFromContext(ctx).Info("heuristic evaluation completed",
		slog.Float64("overall_score", rep.Overall))
	return resultFromReport(rep, attempts)
}

func resultFromReport(rep heuristic.Report, attempts int) domain.EvaluationResult {
	return domain.EvaluationResult{
		Framework:    rep.Framework,
		FullText:     rep.Text,
		OverallScore: ai.ExtractOverallScore(rep.Text),
		Sections:     rep.SectionScores(),
		Source:       domain.SourceHeuristic,
		Attempts:     attempts,
	}
}
