package ai

import (
	"regexp"
	"strconv"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
)

var overallScoreRe = regexp.MustCompile(`Overall Score: (\d+(?:\.\d+)?)/10`)

// ExtractOverallScore returns the number in the first "Overall Score: X/10"
// phrase anywhere in text. A missing or unparsable phrase yields 0.
func ExtractOverallScore(text string) float64 {
	m := overallScoreRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractSectionScores reads "Title: X/10" lines for each section of r.
// Sections without a parsable line are omitted; values are clamped to [0,10].
// They are not reconciled with the overall score.
func ExtractSectionScores(text string, r rubric.Rubric) []domain.SectionScore {
	out := make([]domain.SectionScore, 0, len(r.Sections))
	for _, s := range r.Sections {
		re := regexp.MustCompile(`(?m)^\W*` + regexp.QuoteMeta(s.Title) + `\W*:\s*(\d+(?:\.\d+)?)\s*/\s*10`)
		m := re.FindStringSubmatch(text)
		if len(m) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v > rubric.MaxSectionScore {
			v = rubric.MaxSectionScore
		}
		out = append(out, domain.SectionScore{Key: s.Key, Title: s.Title, Score: v})
	}
	return out
}
