package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain/mocks"
)

func postJSON(path string, v any) *http.Request {
	b, _ := json.Marshal(v)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return r
}

func TestEvaluateHandler_200(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e domain.Evaluation) bool {
		return e.UserID == "u-1" && e.Framework == domain.FrameworkSTAR && e.Source == domain.SourceHeuristic
	})).Return("0b9d0d0e-1111-4c3a-9d37-6c3f1fb2a1d0", nil)

	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, postJSON("/v1/evaluations", map[string]any{
		"user_id": "u-1", "question_id": "q-1", "question_text": "Tell me about a recovery.",
		"transcript": starTranscript, "framework": "star",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "0b9d0d0e-1111-4c3a-9d37-6c3f1fb2a1d0", body["id"])
	assert.Equal(t, "star", body["framework"])
	assert.Equal(t, "heuristic", body["source"])
	assert.Contains(t, body["feedback"], "Overall Score:")
	assert.Len(t, body["sections"], 4)
	assert.NotContains(t, body, "model")
	assert.NotContains(t, body, "quota_remaining")
}

type balanceQuota struct {
	*mocks.MockQuotaLimiter
	left float64
}

func (q balanceQuota) Remaining(context.Context, string) (float64, error) { return q.left, nil }

func TestEvaluateHandler_ReportsQuotaRemaining(t *testing.T) {
	lim := mocks.NewMockQuotaLimiter(t)
	lim.On("Allow", mock.Anything, "u-1", int64(1)).Return(true, time.Duration(0), nil)
	srv, repo := newTestServer(t, balanceQuota{MockQuotaLimiter: lim, left: 2.5})
	repo.On("Create", mock.Anything, mock.Anything).Return("0b9d0d0e-1111-4c3a-9d37-6c3f1fb2a1d0", nil)

	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, postJSON("/v1/evaluations", map[string]any{
		"user_id": "u-1", "transcript": starTranscript,
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["quota_remaining"])
}

func TestEvaluateHandler_ValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, postJSON("/v1/evaluations", map[string]any{"transcript": "x", "framework": "okr"}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	b := decodeErr(t, w)
	assert.Equal(t, "INVALID_ARGUMENT", b.Error.Code)
	assert.Equal(t, "required", b.Error.Details["user_id"])
	assert.Equal(t, "framework", b.Error.Details["framework"])

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/evaluations", strings.NewReader("{not json"))
	srv.EvaluateHandler()(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateHandler_NotAcceptable(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	r := postJSON("/v1/evaluations", map[string]any{"user_id": "u"})
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, r)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestEvaluateHandler_QuotaExceeded(t *testing.T) {
	quota := mocks.NewMockQuotaLimiter(t)
	quota.On("Allow", mock.Anything, "u-1", int64(1)).Return(false, time.Hour, nil)
	srv, repo := newTestServer(t, quota)

	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, postJSON("/v1/evaluations", map[string]any{"user_id": "u-1", "transcript": "x"}))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decodeErr(t, w).Error.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestEvaluateHandler_StoreFailureIsInternal(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return("", assert.AnError)

	w := httptest.NewRecorder()
	srv.EvaluateHandler()(w, postJSON("/v1/evaluations", map[string]any{"user_id": "u-1", "transcript": "x"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	b := decodeErr(t, w)
	assert.Equal(t, "INTERNAL", b.Error.Code)
	assert.Equal(t, "internal error", b.Error.Message)
}

func TestIdealHandler(t *testing.T) {
	srv, repo := newTestServer(t, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e domain.Evaluation) bool { return e.IsIdeal })).
		Return("11111111-2222-4333-8444-555555555555", nil)

	w := httptest.NewRecorder()
	srv.IdealHandler()(w, postJSON("/v1/evaluations/ideal", map[string]any{"user_id": "coach", "transcript": starTranscript, "framework": "star"}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["is_ideal"])
}
