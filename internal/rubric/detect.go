package rubric

import (
	"strings"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// signature is the set of literal phrases that must all appear for a framework to match.
type signature struct {
	framework domain.Framework
	phrases   []string
}

// Order is priority: the first full match wins.
var signatures = []signature{
	{domain.FrameworkCIRCLES, []string{"Comprehend", "Identify", "List solutions"}},
	{domain.FrameworkDesignThinking, []string{"Empathize", "Define", "Ideate"}},
	{domain.FrameworkJTBD, []string{"Job Statement", "Desired Outcomes"}},
	{domain.FrameworkUserCentric, []string{"User Needs", "User Journey"}},
}

// Detect guesses the product-sense framework a transcript follows by
// case-sensitive phrase presence. No match yields the generic rubric.
func Detect(transcript string) domain.Framework {
	for _, sig := range signatures {
		if containsAll(transcript, sig.phrases) {
			return sig.framework
		}
	}
	return domain.FrameworkGeneric
}

// Resolve picks the rubric for a request: a known explicit framework wins,
// an empty one is detected from the transcript, anything else is generic.
func Resolve(requested, transcript string) domain.Framework {
	if strings.TrimSpace(requested) == "" {
		return Detect(transcript)
	}
	f, _ := domain.ParseFramework(requested)
	return f
}

func containsAll(s string, phrases []string) bool {
	for _, p := range phrases {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
