// Package ai provides completion adapters plus the cleaning and score
// extraction applied to generated evaluation text.
package ai

import (
	"regexp"
	"strings"
)

var thinkBlockRe = regexp.MustCompile(`(?is)<think>.*?</think>`)

// ResponseCleaner normalizes generated evaluation text before it is stored.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

// CleanEvaluationText strips reasoning blocks and a wrapping markdown fence.
// The result is the text shown to users and scanned for the overall score.
func (rc *ResponseCleaner) CleanEvaluationText(response string) string {
	response = rc.removeThinkBlocks(response)
	response = rc.removeMarkdownBlocks(response)
	return strings.TrimSpace(response)
}

func (rc *ResponseCleaner) removeThinkBlocks(response string) string {
	response = thinkBlockRe.ReplaceAllString(response, "")
	// An unterminated block swallows the rest of the text.
	if i := strings.Index(strings.ToLower(response), "<think>"); i >= 0 {
		response = response[:i]
	}
	return response
}

// removeMarkdownBlocks removes a fence that wraps the whole response.
func (rc *ResponseCleaner) removeMarkdownBlocks(response string) string {
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "```") {
		return response
	}
	// Drop the opening fence line including any language tag.
	if nl := strings.IndexByte(response, '\n'); nl >= 0 {
		response = response[nl+1:]
	} else {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	return strings.TrimSpace(response)
}
