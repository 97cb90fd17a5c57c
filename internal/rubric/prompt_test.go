package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	a := BuildPrompt(domain.FrameworkCIRCLES, "Improve Instagram DMs", "Comprehend: ...")
	b := BuildPrompt(domain.FrameworkCIRCLES, "Improve Instagram DMs", "Comprehend: ...")
	assert.Equal(t, a, b)
}

func TestBuildPrompt_EmbedsRubric(t *testing.T) {
	t.Parallel()

	for _, f := range domain.Frameworks {
		t.Run(string(f), func(t *testing.T) {
			p := BuildPrompt(f, "Design a fridge for kids", "my answer text")
			r := For(f)

			assert.Contains(t, p, "Design a fridge for kids")
			assert.Contains(t, p, "my answer text")
			assert.Contains(t, p, r.Name+" framework")
			assert.Contains(t, p, SafetyRule)
			assert.Contains(t, p, "Overall Score: X/10")

			last := -1
			for _, s := range r.Sections {
				assert.Contains(t, p, s.Title+": X/10")
				for _, c := range s.Criteria {
					assert.Contains(t, p, c.Name)
				}
				idx := strings.Index(p, s.Title+" (10 points)")
				assert.Greater(t, idx, last, "sections must keep rubric order")
				last = idx
			}
		})
	}
}

func TestBuildPrompt_UnknownFrameworkUsesGeneric(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(domain.Framework("nope"), "q", "t")
	assert.Equal(t, BuildPrompt(domain.FrameworkGeneric, "q", "t"), p)
	assert.Contains(t, p, "Problem Understanding (10 points)")
}
