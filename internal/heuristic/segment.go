// Package heuristic scores interview answers from surface features of the
// transcript. It is the fallback when the completion service is unavailable
// and the scorer for generated ideal answers.
package heuristic

import (
	"sort"
	"strings"

	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
)

// Span is the slice of a transcript attributed to one rubric section.
type Span struct {
	Key   string
	Text  string
	Found bool
}

// Segmenter splits a transcript into one span per rubric section, in section order.
type Segmenter interface {
	Segment(transcript string, sections []rubric.Section) []Span
}

// LiteralSegmenter locates the first case-sensitive occurrence of each section
// marker anywhere in the text. A span ends where the next found marker begins.
type LiteralSegmenter struct{}

// Segment implements Segmenter.
func (LiteralSegmenter) Segment(transcript string, sections []rubric.Section) []Span {
	hits := make([]hit, len(sections))
	for i, s := range sections {
		hits[i] = hit{start: -1}
		if s.Marker == "" {
			continue
		}
		if idx := strings.Index(transcript, s.Marker); idx >= 0 {
			hits[i] = hit{start: idx, end: idx + len(s.Marker)}
		}
	}
	return cut(transcript, sections, hits)
}

// LineSegmenter only accepts a marker at the start of a line, optionally after
// indentation, heading hashes or a bullet. Mentions inside prose are ignored.
type LineSegmenter struct{}

// Segment implements Segmenter.
func (LineSegmenter) Segment(transcript string, sections []rubric.Section) []Span {
	hits := make([]hit, len(sections))
	for i := range hits {
		hits[i] = hit{start: -1}
	}
	offset := 0
	for _, line := range strings.SplitAfter(transcript, "\n") {
		body := strings.TrimLeft(line, " \t#*->")
		lead := offset + len(line) - len(body)
		for i, s := range sections {
			if hits[i].start >= 0 || s.Marker == "" {
				continue
			}
			if strings.HasPrefix(body, s.Marker) {
				hits[i] = hit{start: offset, end: lead + len(s.Marker)}
			}
		}
		offset += len(line)
	}
	return cut(transcript, sections, hits)
}

type hit struct {
	start, end int
}

// cut turns marker positions into spans. Each span runs from the end of its
// marker to the nearest later marker start, or to the end of the text.
func cut(transcript string, sections []rubric.Section, hits []hit) []Span {
	starts := make([]int, 0, len(hits))
	for _, h := range hits {
		if h.start >= 0 {
			starts = append(starts, h.start)
		}
	}
	sort.Ints(starts)

	spans := make([]Span, len(sections))
	for i, s := range sections {
		spans[i].Key = s.Key
		h := hits[i]
		if h.start < 0 {
			continue
		}
		end := len(transcript)
		if j := sort.SearchInts(starts, h.end); j < len(starts) {
			end = starts[j]
		}
		spans[i].Found = true
		spans[i].Text = trimSpan(transcript[h.end:end])
	}
	return spans
}

func trimSpan(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":-–")
	return strings.TrimSpace(s)
}
