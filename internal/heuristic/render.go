package heuristic

import (
	"fmt"
	"strings"
)

// Render formats a report in the same layout the completion prompt asks for,
// ending with the "Overall Score: X.X/10" line. Transcript text is never echoed.
func Render(rep Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Evaluation (automated review)\n\n", rep.Rubric.Name)

	b.WriteString("Section Scores:\n")
	for _, s := range rep.Sections {
		fmt.Fprintf(&b, "%s: %d/10\n", s.Section.Title, s.Score)
	}

	b.WriteString("\nStrengths:\n")
	strengths := 0
	for _, s := range rep.Sections {
		if s.Score >= StrengthThreshold {
			fmt.Fprintf(&b, "- %s is well developed with concrete detail.\n", s.Section.Title)
			strengths++
		}
	}
	if strengths == 0 {
		b.WriteString("- No section reached 7/10 yet.\n")
	}

	b.WriteString("\nAreas for Improvement:\n")
	improvements := 0
	for _, s := range rep.Sections {
		if s.Score < StrengthThreshold {
			fmt.Fprintf(&b, "- %s: %s.\n", s.Section.Title, lowerFirst(firstCriterion(s)))
			improvements++
		}
	}
	if improvements == 0 {
		b.WriteString("- Keep the same structure and depth across future answers.\n")
	}

	b.WriteString("\nDetailed Feedback:\n")
	for _, s := range rep.Sections {
		fmt.Fprintf(&b, "\n%s (%d/10)\n", s.Section.Title, s.Score)
		fmt.Fprintf(&b, "Observed: %s\n", observed(s))
		fmt.Fprintf(&b, "Missing: %s\n", missing(s))
		fmt.Fprintf(&b, "Suggestions: %s\n", suggestions(s))
	}

	fmt.Fprintf(&b, "\nOverall Score: %.1f/10\n", rep.Overall)
	return b.String()
}

func observed(s SectionResult) string {
	if !s.Found {
		return fmt.Sprintf("no section labelled %q was found.", s.Section.Marker)
	}
	if s.Length == 0 {
		return "the section label is present but the section is empty."
	}
	out := fmt.Sprintf("%d characters", s.Length)
	if len(s.Indicators) > 0 {
		out += fmt.Sprintf(" with detail indicators (%s)", strings.Join(s.Indicators, ", "))
	} else {
		out += " without concrete detail indicators"
	}
	if s.KeywordFound {
		out += fmt.Sprintf(", addresses %q", s.Section.Keyword)
	}
	return out + "."
}

func missing(s SectionResult) string {
	var gaps []string
	if s.Length < lengthCap {
		gaps = append(gaps, "more depth")
	}
	if len(s.Indicators) < detailTarget {
		gaps = append(gaps, "specific examples, data or metrics")
	}
	if s.Section.Keyword != "" && !s.KeywordFound {
		gaps = append(gaps, fmt.Sprintf("explicit discussion of the %s", s.Section.Keyword))
	}
	if len(gaps) == 0 {
		return "nothing significant."
	}
	return strings.Join(gaps, "; ") + "."
}

func suggestions(s SectionResult) string {
	names := make([]string, 0, len(s.Section.Criteria))
	for _, c := range s.Section.Criteria {
		names = append(names, lowerFirst(c.Name))
	}
	return "focus on " + strings.Join(names, "; ") + "."
}

func firstCriterion(s SectionResult) string {
	if len(s.Section.Criteria) == 0 {
		return "add more detail"
	}
	return s.Section.Criteria[0].Name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
