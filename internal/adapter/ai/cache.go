package ai

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// completionCacheClient wraps a CompletionClient and caches responses by
// prompt hash. The LRU is safe for concurrent use. Failures are never cached.
type completionCacheClient struct {
	base  domain.CompletionClient
	model string
	cache *lru.Cache[string, domain.CompletionResponse]
}

// NewCompletionCache wraps base with an LRU of the given capacity.
// If capacity <= 0, base is returned unmodified.
func NewCompletionCache(base domain.CompletionClient, model string, capacity int) domain.CompletionClient {
	if capacity <= 0 || base == nil {
		return base
	}
	c, err := lru.New[string, domain.CompletionResponse](capacity)
	if err != nil {
		return base
	}
	return &completionCacheClient{base: base, model: model, cache: c}
}

func (c *completionCacheClient) Complete(ctx domain.Context, req domain.CompletionRequest) (domain.CompletionResponse, error) {
	k := keyFor(c.model, req)
	if v, ok := c.cache.Get(k); ok {
		return v, nil
	}
	resp, err := c.base.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	c.cache.Add(k, resp)
	return resp, nil
}

func keyFor(model string, req domain.CompletionRequest) string {
	h := sha256.New()
	for _, part := range []string{model, req.SystemPrompt, req.UserContent} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
