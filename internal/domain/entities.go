package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrCompletionExhausted = errors.New("completion retries exhausted")
	ErrInternal            = errors.New("internal error")
)

// Framework identifies the rubric used to structure and score a response.
type Framework string

const (
	FrameworkSTAR           Framework = "star"
	FrameworkCIRCLES        Framework = "circles"
	FrameworkDesignThinking Framework = "design_thinking"
	FrameworkJTBD           Framework = "jtbd"
	FrameworkUserCentric    Framework = "user_centric"
	FrameworkGeneric        Framework = "generic"
)

// Frameworks lists every supported framework in a stable order.
var Frameworks = []Framework{
	FrameworkSTAR,
	FrameworkCIRCLES,
	FrameworkDesignThinking,
	FrameworkJTBD,
	FrameworkUserCentric,
	FrameworkGeneric,
}

var frameworkAliases = map[string]Framework{
	"star":                FrameworkSTAR,
	"circles":             FrameworkCIRCLES,
	"design_thinking":     FrameworkDesignThinking,
	"designthinking":      FrameworkDesignThinking,
	"jtbd":                FrameworkJTBD,
	"jobs_to_be_done":     FrameworkJTBD,
	"user_centric":        FrameworkUserCentric,
	"user_centric_design": FrameworkUserCentric,
	"ucd":                 FrameworkUserCentric,
	"generic":             FrameworkGeneric,
	"product":             FrameworkGeneric,
	"product_framework":   FrameworkGeneric,
}

// ParseFramework resolves a user supplied identifier. Matching is case-insensitive
// and treats '-' and ' ' like '_'. Unknown values resolve to FrameworkGeneric with ok=false.
func ParseFramework(s string) (Framework, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	if f, ok := frameworkAliases[k]; ok {
		return f, true
	}
	return FrameworkGeneric, false
}

// DisplayName returns the human readable framework name used in feedback text.
func (f Framework) DisplayName() string {
	switch f {
	case FrameworkSTAR:
		return "STAR"
	case FrameworkCIRCLES:
		return "CIRCLES"
	case FrameworkDesignThinking:
		return "Design Thinking"
	case FrameworkJTBD:
		return "Jobs To Be Done"
	case FrameworkUserCentric:
		return "User-Centric Design"
	default:
		return "Product Framework"
	}
}

// EvaluationSource records which path produced the feedback text.
type EvaluationSource string

const (
	SourceCompletion EvaluationSource = "completion"
	SourceHeuristic  EvaluationSource = "heuristic"
)

// EvaluationRequest is one user submission.
// Transcript and QuestionText should be non-empty for a meaningful score, but
// empty values still produce a valid (all-zero) evaluation.
type EvaluationRequest struct {
	UserID       string
	QuestionID   string
	QuestionText string
	Transcript   string
	// Framework is the raw identifier supplied by the caller; empty means detect.
	Framework string
}

// SectionScore is the score of one rubric section in [0,10].
type SectionScore struct {
	Key   string  `json:"key"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// EvaluationResult is the pipeline output.
// Invariant: OverallScore is always extracted from FullText, never computed separately.
type EvaluationResult struct {
	Framework    Framework
	FullText     string
	OverallScore float64
	Sections     []SectionScore
	Source       EvaluationSource
	Attempts     int
	Model        string
}

// Evaluation is the persisted record of a scored submission.
type Evaluation struct {
	ID           string
	UserID       string
	QuestionID   string
	QuestionText string
	Transcript   string
	Framework    Framework
	FeedbackText string
	OverallScore float64
	Source       EvaluationSource
	IsIdeal      bool
	CreatedAt    time.Time
}

// CompletionRequest carries one prompt to the completion endpoint.
type CompletionRequest struct {
	SystemPrompt string
	UserContent  string
}

// CompletionResponse is the generated text plus accounting details.
type CompletionResponse struct {
	Text             string
	Model            string
	Attempts         int
	PromptTokens     int
	CompletionTokens int
}

// Ports

//go:generate mockery --name=CompletionClient --filename=mock_completion_client.go
//go:generate mockery --name=EvaluationRepository --filename=mock_evaluation_repository.go
//go:generate mockery --name=QuotaLimiter --filename=mock_quota_limiter.go

// CompletionClient submits a prompt to an external text-completion service.
// Implementations return ErrCompletionExhausted once their retry budget is spent.
type CompletionClient interface {
	Complete(ctx Context, req CompletionRequest) (CompletionResponse, error)
}

// EvaluationRepository persists evaluation records.
type EvaluationRepository interface {
	Create(ctx Context, e Evaluation) (string, error)
	Get(ctx Context, id string) (Evaluation, error)
	ListByUser(ctx Context, userID string, limit int) ([]Evaluation, error)
}

// QuotaLimiter enforces per-user usage quotas.
type QuotaLimiter interface {
	Allow(ctx Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// Context is an alias to context.Context so ports read naturally.
type Context = context.Context
