package real

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// recordingTimer fires immediately and remembers every requested wait.
type recordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	ch    chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waits = append(t.waits, d)
	t.ch = make(chan time.Time, 1)
	t.ch <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ch
}

func (t *recordingTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:                "dev",
		CompletionAPIKey:      "test-key",
		CompletionBaseURL:     baseURL,
		CompletionModel:       "gpt-4o-mini",
		CompletionTemperature: 0.7,
		CompletionMaxTokens:   2000,
		CompletionTimeout:     5 * time.Second,
		RetryMaxAttempts:      3,
		RetryBaseDelay:        time.Second,
	}
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150},
	})
}

func TestComplete_SendsChatRequest(t *testing.T) {
	var got openai.ChatCompletionRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeCompletion(w, "Overall Score: 7.5/10")
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	resp, err := c.Complete(context.Background(), domain.CompletionRequest{SystemPrompt: "rubric", UserContent: "answer"})
	require.NoError(t, err)

	assert.Equal(t, "Overall Score: 7.5/10", resp.Text)
	assert.Equal(t, 1, resp.Attempts)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, 120, resp.PromptTokens)
	assert.Equal(t, 30, resp.CompletionTokens)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "rubric", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "answer", got.Messages[1].Content)
}

func TestComplete_ExhaustsAfterThreeAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	timer := &recordingTimer{}
	c := New(testConfig(ts.URL), WithTimer(timer))
	resp, err := c.Complete(context.Background(), domain.CompletionRequest{SystemPrompt: "p", UserContent: "u"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompletionExhausted)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.Waits())
}

func TestComplete_RetriesEveryFailureKind(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{not json`))
		case 2:
			writeCompletion(w, "   ")
		default:
			writeCompletion(w, "Overall Score: 6/10")
		}
	}))
	defer ts.Close()

	timer := &recordingTimer{}
	c := New(testConfig(ts.URL), WithTimer(timer))
	resp, err := c.Complete(context.Background(), domain.CompletionRequest{UserContent: "u"})

	require.NoError(t, err)
	assert.Equal(t, "Overall Score: 6/10", resp.Text)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, timer.Waits())
}

func TestComplete_ClientErrorsAreRetriedToo(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, `{"error":{"message":"slow down"}}`, http.StatusTooManyRequests)
			return
		}
		writeCompletion(w, "ok")
	}))
	defer ts.Close()

	timer := &recordingTimer{}
	resp, err := New(testConfig(ts.URL), WithTimer(timer)).Complete(context.Background(), domain.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Attempts)
	assert.Equal(t, []time.Duration{time.Second}, timer.Waits())
}

func TestComplete_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	timer := &recordingTimer{}
	resp, err := New(testConfig(url), WithTimer(timer)).Complete(context.Background(), domain.CompletionRequest{})
	assert.ErrorIs(t, err, domain.ErrCompletionExhausted)
	assert.Equal(t, 3, resp.Attempts)
}

func TestComplete_MissingAPIKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.CompletionAPIKey = ""
	resp, err := New(cfg).Complete(context.Background(), domain.CompletionRequest{})
	assert.ErrorIs(t, err, domain.ErrCompletionExhausted)
	assert.Zero(t, resp.Attempts)
}

func TestComplete_ContextCanceledDuringBackoff(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(ts.URL)
	cfg.RetryBaseDelay = time.Hour
	c := New(cfg)

	done := make(chan error, 1)
	go func() {
		_, err := c.Complete(ctx, domain.CompletionRequest{})
		done <- err
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrCompletionExhausted)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Complete did not return after cancellation")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestComplete_RealBackoffSpacing(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	base := 50 * time.Millisecond
	c := New(testConfig(ts.URL), WithRetryPolicy(domain.RetryPolicy{MaxAttempts: 3, Base: base}))
	_, err := c.Complete(context.Background(), domain.CompletionRequest{})
	require.ErrorIs(t, err, domain.ErrCompletionExhausted)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 3)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), base)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 2*base)
}

func TestComplete_EstimatesUsageWhenMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"","choices":[{"message":{"role":"assistant","content":"Overall Score: 5/10"}}]}`))
	}))
	defer ts.Close()

	resp, err := New(testConfig(ts.URL)).Complete(context.Background(), domain.CompletionRequest{SystemPrompt: "rubric text", UserContent: "answer"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Greater(t, resp.PromptTokens, 0)
	assert.Greater(t, resp.CompletionTokens, 0)
}

func TestNew_Defaults(t *testing.T) {
	cfg := testConfig("")
	cfg.CompletionModel = ""
	cfg.CompletionRPS = 2
	c := New(cfg)
	assert.Equal(t, openai.GPT4oMini, c.Model())
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())
}
