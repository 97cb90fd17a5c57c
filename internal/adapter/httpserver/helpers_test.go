package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/pm-interview-coach/internal/adapter/httpserver"
	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain/mocks"
	"github.com/fairyhunter13/pm-interview-coach/internal/usecase"
)

const starTranscript = "Situation: Checkout conversion fell after a redesign. Task: I owned the recovery. " +
	"Action: First I pulled funnel data, then interviewed buyers, for example ten repeat customers. " +
	"Result: Conversion recovered and the metric held."

// newTestServer wires a heuristic-only analyzer to mocked persistence and quota.
func newTestServer(t *testing.T, quota domain.QuotaLimiter) (*httpserver.Server, *mocks.MockEvaluationRepository) {
	t.Helper()
	repo := mocks.NewMockEvaluationRepository(t)
	svc := usecase.NewEvaluationService(usecase.NewAnalyzer(nil), repo, quota)
	return httpserver.NewServer(config.Config{MaxUploadKB: 4}, svc, nil, nil), repo
}

func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type errBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errBody {
	t.Helper()
	var b errBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}
