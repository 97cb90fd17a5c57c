package heuristic

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
)

const (
	// lengthCap is the span length in characters that earns the full length share.
	lengthCap = 200
	// detailTarget is the number of distinct detail indicators that earns the full detail share.
	detailTarget = 5

	lengthShare     = 0.4
	keywordShare    = 0.2
	detailShare     = 0.4
	detailShareWide = 0.6

	// StrengthThreshold splits strengths (>=) from improvements (<).
	StrengthThreshold = 7
)

// DetailIndicators are the phrases counted as evidence of concrete detail.
var DetailIndicators = []string{
	"for example", "specifically", "such as", "because",
	"step", "first", "second", "then",
	"finally", "result", "metric", "data",
	"analysis", "measure", "impact", "user",
}

// SectionResult is the scored outcome of one section with its components.
type SectionResult struct {
	Section       rubric.Section
	Found         bool
	Length        int
	KeywordFound  bool
	Indicators    []string
	LengthPoints  float64
	KeywordPoints float64
	DetailPoints  float64
	Score         int
}

// Report is a complete heuristic evaluation.
type Report struct {
	Framework domain.Framework
	Rubric    rubric.Rubric
	Sections  []SectionResult
	Overall   float64
	Text      string
}

// SectionScores converts the report into domain section scores.
func (r Report) SectionScores() []domain.SectionScore {
	out := make([]domain.SectionScore, 0, len(r.Sections))
	for _, s := range r.Sections {
		out = append(out, domain.SectionScore{Key: s.Section.Key, Title: s.Section.Title, Score: float64(s.Score)})
	}
	return out
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithSegmenter swaps the transcript segmentation strategy.
func WithSegmenter(seg Segmenter) Option {
	return func(s *Scorer) {
		if seg != nil {
			s.seg = seg
		}
	}
}

// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	seg Segmenter
}

// New builds a Scorer using LiteralSegmenter unless overridden.
func New(opts ...Option) *Scorer {
	s := &Scorer{seg: LiteralSegmenter{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score evaluates transcript against the rubric for f. It performs no I/O and
// never fails; an empty transcript scores zero everywhere.
func (s *Scorer) Score(f domain.Framework, transcript string) Report {
	r := rubric.For(f)
	spans := s.seg.Segment(transcript, r.Sections)

	rep := Report{Framework: r.Framework, Rubric: r, Sections: make([]SectionResult, len(r.Sections))}
	total := 0
	for i, sec := range r.Sections {
		res := ScoreSection(sec, spans[i].Text)
		res.Found = spans[i].Found
		rep.Sections[i] = res
		total += res.Score
	}
	rep.Overall = round1(float64(total) / float64(len(r.Sections)))
	rep.Text = Render(rep)
	return rep
}

// ScoreSection applies the length, keyword and detail components to one span.
func ScoreSection(sec rubric.Section, span string) SectionResult {
	res := SectionResult{Section: sec}
	if span == "" {
		return res
	}
	top := float64(rubric.MaxSectionScore)
	lower := strings.ToLower(span)

	res.Length = utf8.RuneCountInString(span)
	res.LengthPoints = math.Min(top*lengthShare, float64(res.Length)/lengthCap*top*lengthShare)

	share := detailShareWide
	if sec.Keyword != "" {
		share = detailShare
		if strings.Contains(lower, strings.ToLower(sec.Keyword)) {
			res.KeywordFound = true
			res.KeywordPoints = top * keywordShare
		}
	}

	for _, ind := range DetailIndicators {
		if strings.Contains(lower, ind) {
			res.Indicators = append(res.Indicators, ind)
		}
	}
	res.DetailPoints = math.Min(top*share, float64(len(res.Indicators))/detailTarget*top*share)

	score := int(math.Round(res.LengthPoints + res.KeywordPoints + res.DetailPoints))
	res.Score = clamp(score, 0, rubric.MaxSectionScore)
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
