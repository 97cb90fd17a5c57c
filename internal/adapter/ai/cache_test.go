package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

type fakeCompletion struct {
	calls int
	err   error
}

func (f *fakeCompletion) Complete(_ domain.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return domain.CompletionResponse{}, f.err
	}
	return domain.CompletionResponse{Text: "echo:" + req.UserContent, Attempts: 1}, nil
}

func Test_NewCompletionCache_UsesCache(t *testing.T) {
	base := &fakeCompletion{}
	wrapped := NewCompletionCache(base, "m", 8)
	ctx := context.Background()
	req := domain.CompletionRequest{SystemPrompt: "p", UserContent: "hello"}

	first, err := wrapped.Complete(ctx, req)
	require.NoError(t, err)
	second, err := wrapped.Complete(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, base.calls)

	_, err = wrapped.Complete(ctx, domain.CompletionRequest{SystemPrompt: "p", UserContent: "other"})
	require.NoError(t, err)
	assert.Equal(t, 2, base.calls)
}

func Test_NewCompletionCache_Disabled(t *testing.T) {
	base := &fakeCompletion{}
	assert.Same(t, domain.CompletionClient(base), NewCompletionCache(base, "m", 0))
	assert.Nil(t, NewCompletionCache(nil, "m", 4))
}

func Test_NewCompletionCache_DoesNotCacheErrors(t *testing.T) {
	base := &fakeCompletion{err: errors.New("boom")}
	wrapped := NewCompletionCache(base, "m", 4)
	req := domain.CompletionRequest{UserContent: "x"}

	_, err := wrapped.Complete(context.Background(), req)
	require.Error(t, err)
	_, err = wrapped.Complete(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 2, base.calls)
}

func Test_keyFor_SeparatesFields(t *testing.T) {
	a := keyFor("m", domain.CompletionRequest{SystemPrompt: "ab", UserContent: "c"})
	b := keyFor("m", domain.CompletionRequest{SystemPrompt: "a", UserContent: "bc"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, keyFor("m", domain.CompletionRequest{SystemPrompt: "ab", UserContent: "c"}))
	assert.NotEqual(t, a, keyFor("n", domain.CompletionRequest{SystemPrompt: "ab", UserContent: "c"}))
}
