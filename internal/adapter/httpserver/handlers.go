package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
	"github.com/fairyhunter13/pm-interview-coach/internal/usecase"
	"github.com/fairyhunter13/pm-interview-coach/pkg/textx"
)

const maxJSONBody = 1 << 20

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Evaluations usecase.EvaluationService
	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, evals usecase.EvaluationService, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Evaluations: evals, DBCheck: dbCheck, RedisCheck: redisCheck}
}

type evaluationResponse struct {
	ID             string                `json:"id"`
	UserID         string                `json:"user_id"`
	QuestionID     string                `json:"question_id,omitempty"`
	Framework      domain.Framework      `json:"framework"`
	OverallScore   float64               `json:"overall_score"`
	Source         string                `json:"source"`
	Feedback       string                `json:"feedback"`
	Sections       []domain.SectionScore `json:"sections,omitempty"`
	IsIdeal        bool                  `json:"is_ideal"`
	Attempts       int                   `json:"attempts,omitempty"`
	Model          string                `json:"model,omitempty"`
	QuotaRemaining *int                  `json:"quota_remaining,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func toResponse(e domain.Evaluation) evaluationResponse {
	return evaluationResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		QuestionID:   e.QuestionID,
		Framework:    e.Framework,
		OverallScore: e.OverallScore,
		Source:       string(e.Source),
		Feedback:     e.FeedbackText,
		IsIdeal:      e.IsIdeal,
		CreatedAt:    e.CreatedAt,
	}
}

func scoredResponse(s usecase.Scored) evaluationResponse {
	resp := toResponse(s.Evaluation)
	resp.Sections = s.Sections
	resp.Attempts = s.Attempts
	resp.Model = s.Model
	resp.QuotaRemaining = s.QuotaRemaining
	return resp
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	return nil
}

// EvaluateHandler scores a transcript and stores the evaluation.
func (s *Server) EvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req evaluationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out, err := s.Evaluations.Evaluate(r.Context(), req.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, scoredResponse(out))
	}
}

// IdealHandler scores a reference answer with the heuristic scorer only.
func (s *Server) IdealHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req evaluationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out, err := s.Evaluations.ScoreIdeal(r.Context(), req.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, scoredResponse(out))
	}
}

// allowedExt enforces an allowlist for transcript uploads.
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// UploadHandler accepts a multipart transcript file plus form fields and evaluates it.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.maxUploadBytes()
		// Room for the form fields next to the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_kb": maxBytes >> 10},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		file, header, err := r.FormFile("transcript")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: transcript file required", domain.ErrInvalidArgument), map[string]string{"field": "transcript"})
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: transcript read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if int64(len(data)) > maxBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_kb": maxBytes >> 10},
			}})
			return
		}

		if !allowedExt(header.Filename) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (extension)", Details: map[string]any{"filename": header.Filename},
			}})
			return
		}
		mt := mimetype.Detect(data)
		if !strings.HasPrefix(mt.String(), "text/") {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code: "INVALID_ARGUMENT", Message: "unsupported media type (content)", Details: map[string]any{"mime": mt.String(), "filename": header.Filename},
			}})
			return
		}

		req := evaluationRequest{
			UserID:       r.FormValue("user_id"),
			QuestionID:   r.FormValue("question_id"),
			QuestionText: textx.SanitizeText(r.FormValue("question_text")),
			Transcript:   textx.SanitizeText(string(data)),
			Framework:    r.FormValue("framework"),
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out, err := s.Evaluations.Evaluate(r.Context(), req.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, scoredResponse(out))
	}
}

func (s *Server) maxUploadBytes() int64 {
	kb := s.Cfg.MaxUploadKB
	if kb <= 0 {
		kb = 256
	}
	return kb << 10
}

// GetEvaluationHandler returns one stored evaluation.
func (s *Server) GetEvaluationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id := chi.URLParam(r, "id")
		if err := ValidateEvaluationID(id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		e, err := s.Evaluations.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(e))
	}
}

// ListUserEvaluationsHandler returns a user's most recent evaluations.
func (s *Server) ListUserEvaluationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		limit, err := ParseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, r, err, map[string]string{"field": "limit"})
			return
		}
		evals, err := s.Evaluations.ListByUser(r.Context(), chi.URLParam(r, "userID"), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]evaluationResponse, 0, len(evals))
		for _, e := range evals {
			items = append(items, toResponse(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	}
}

// DetectFrameworkHandler reports which framework a transcript follows.
func (s *Server) DetectFrameworkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		var req detectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if details, err := validate(req); err != nil {
			writeError(w, r, err, details)
			return
		}
		f := rubric.Detect(req.Transcript)
		writeJSON(w, http.StatusOK, map[string]string{"framework": string(f), "name": f.DisplayName()})
	}
}

// RubricHandler returns the rubric for a framework.
func (s *Server) RubricHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		name := chi.URLParam(r, "framework")
		f, ok := domain.ParseFramework(name)
		if !ok {
			writeError(w, r, fmt.Errorf("%w: unknown framework %q", domain.ErrNotFound, name), nil)
			return
		}
		writeJSON(w, http.StatusOK, rubric.For(f))
	}
}

// ReadyzHandler probes the database and Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name string
			fn   func(context.Context) error
		}{{"db", s.DBCheck}, {"redis", s.RedisCheck}}

		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: p.name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
