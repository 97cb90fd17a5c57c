// Package rubric holds the fixed scoring rubrics for each interview framework,
// the evaluation prompt builder and the transcript framework router.
package rubric

import (
	"fmt"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
)

// MaxSectionScore is the ceiling for every rubric section.
const MaxSectionScore = 10

// Criterion is one additive sub-criterion of a section.
type Criterion struct {
	Name   string `json:"name" yaml:"name"`
	Points int    `json:"points" yaml:"points"`
}

// Section is one named part of a framework answer.
type Section struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
	// Marker is the literal text that opens this section inside a transcript.
	Marker string `json:"marker" yaml:"marker"`
	// Keyword enables the heuristic keyword bonus when non-empty.
	Keyword  string      `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// MaxScore sums the section's criterion points.
func (s Section) MaxScore() int {
	total := 0
	for _, c := range s.Criteria {
		total += c.Points
	}
	return total
}

// Rubric is the ordered list of sections for a framework.
type Rubric struct {
	Framework domain.Framework `json:"framework" yaml:"framework"`
	Name      string           `json:"name" yaml:"name"`
	Sections  []Section        `json:"sections" yaml:"sections"`
}

// Validate checks that every section allocates exactly MaxSectionScore points.
func (r Rubric) Validate() error {
	if len(r.Sections) == 0 {
		return fmt.Errorf("op=rubric.Validate: %w: %s has no sections", domain.ErrInvalidArgument, r.Framework)
	}
	for _, s := range r.Sections {
		if got := s.MaxScore(); got != MaxSectionScore {
			return fmt.Errorf("op=rubric.Validate: %w: %s/%s totals %d points", domain.ErrInvalidArgument, r.Framework, s.Key, got)
		}
	}
	return nil
}

// For returns a copy of the rubric for f. Unknown frameworks get the generic rubric.
func For(f domain.Framework) Rubric {
	r, ok := rubrics[f]
	if !ok {
		r = rubrics[domain.FrameworkGeneric]
	}
	return r.clone()
}

func (r Rubric) clone() Rubric {
	out := Rubric{Framework: r.Framework, Name: r.Name, Sections: make([]Section, len(r.Sections))}
	for i, s := range r.Sections {
		s.Criteria = append([]Criterion(nil), s.Criteria...)
		out.Sections[i] = s
	}
	return out
}

func section(key, title, marker string, criteria ...Criterion) Section {
	return Section{Key: key, Title: title, Marker: marker, Criteria: criteria}
}

var rubrics = map[domain.Framework]Rubric{
	domain.FrameworkSTAR: {
		Framework: domain.FrameworkSTAR,
		Name:      "STAR",
		Sections: []Section{
			section("situation", "Situation", "Situation",
				Criterion{"Sets clear context (company, team, timeframe)", 4},
				Criterion{"Explains why the situation mattered", 3},
				Criterion{"Stays concise and relevant", 3}),
			section("task", "Task", "Task",
				Criterion{"Defines personal responsibility", 4},
				Criterion{"States the goal or constraint", 3},
				Criterion{"Shows ownership of the outcome", 3}),
			section("action", "Action", "Action",
				Criterion{"Describes specific steps taken", 4},
				Criterion{"Explains reasoning and trade-offs", 3},
				Criterion{"Shows collaboration and leadership", 3}),
			section("result", "Result", "Result",
				Criterion{"Quantifies the outcome with metrics", 4},
				Criterion{"Connects the result to business impact", 3},
				Criterion{"Reflects on lessons learned", 3}),
		},
	},
	domain.FrameworkCIRCLES: {
		Framework: domain.FrameworkCIRCLES,
		Name:      "CIRCLES",
		Sections: []Section{
			section("comprehend", "Comprehend the situation", "Comprehend",
				Criterion{"Asks clarifying questions", 4},
				Criterion{"States goals and constraints", 3},
				Criterion{"Summarizes the problem space", 3}),
			section("identify", "Identify the customer", "Identify",
				Criterion{"Names specific user segments", 4},
				Criterion{"Justifies the chosen segment", 3},
				Criterion{"Describes user characteristics", 3}),
			section("report", "Report customer needs", "Report",
				Criterion{"Lists concrete user needs", 4},
				Criterion{"Grounds needs in user behavior", 3},
				Criterion{"Frames needs as user stories", 3}),
			section("cut", "Cut through prioritization", "Cut",
				Criterion{"Uses explicit prioritization criteria", 4},
				Criterion{"Explains trade-offs", 3},
				Criterion{"Commits to a focus area", 3}),
			section("list", "List solutions", "List",
				Criterion{"Offers several distinct solutions", 4},
				Criterion{"Shows creativity", 3},
				Criterion{"Ties solutions to prioritized needs", 3}),
			section("evaluate", "Evaluate trade-offs", "Evaluate",
				Criterion{"Compares solutions on impact and effort", 4},
				Criterion{"Identifies risks", 3},
				Criterion{"Uses data or reasoning to decide", 3}),
			section("summarize", "Summarize recommendation", "Summarize",
				Criterion{"States a clear recommendation", 4},
				Criterion{"Recaps why it wins", 3},
				Criterion{"Defines success metrics or next steps", 3}),
		},
	},
	domain.FrameworkDesignThinking: {
		Framework: domain.FrameworkDesignThinking,
		Name:      "Design Thinking",
		Sections: []Section{
			section("empathize", "Empathize", "Empathize",
				Criterion{"Describes user research methods", 4},
				Criterion{"Shows understanding of user emotions", 3},
				Criterion{"Captures real user insights", 3}),
			section("define", "Define", "Define",
				Criterion{"Writes a clear problem statement", 4},
				Criterion{"Centers the statement on the user", 3},
				Criterion{"Scopes the problem appropriately", 3}),
			section("ideate", "Ideate", "Ideate",
				Criterion{"Generates a breadth of ideas", 4},
				Criterion{"Explains selection criteria", 3},
				Criterion{"Builds on user insights", 3}),
			section("prototype", "Prototype", "Prototype",
				Criterion{"Chooses an appropriate fidelity", 4},
				Criterion{"Targets the riskiest assumption", 3},
				Criterion{"Keeps the prototype cheap and fast", 3}),
			section("test", "Test", "Test",
				Criterion{"Plans validation with real users", 4},
				Criterion{"Defines what success looks like", 3},
				Criterion{"Describes how feedback drives iteration", 3}),
		},
	},
	domain.FrameworkJTBD: {
		Framework: domain.FrameworkJTBD,
		Name:      "Jobs To Be Done",
		Sections: []Section{
			section("job_statement", "Job Statement", "Job Statement",
				Criterion{"States the job in the customer's terms", 4},
				Criterion{"Separates the job from any solution", 3},
				Criterion{"Keeps the statement specific", 3}),
			section("context", "Context", "Context",
				Criterion{"Describes when and where the job arises", 4},
				Criterion{"Covers functional, emotional and social aspects", 3},
				Criterion{"Identifies the job executor", 3}),
			section("desired_outcomes", "Desired Outcomes", "Desired Outcomes",
				Criterion{"Lists measurable outcomes", 4},
				Criterion{"Prioritizes outcomes", 3},
				Criterion{"Phrases outcomes from the customer view", 3}),
			section("pain_points", "Pain Points", "Pain Points",
				Criterion{"Identifies concrete obstacles", 4},
				Criterion{"Explains current workarounds", 3},
				Criterion{"Sizes the severity of the pain", 3}),
			section("proposed_solution", "Proposed Solution", "Proposed Solution",
				Criterion{"Addresses the highest priority outcomes", 4},
				Criterion{"Explains why it beats current alternatives", 3},
				Criterion{"Defines how adoption will be measured", 3}),
		},
	},
	domain.FrameworkUserCentric: {
		Framework: domain.FrameworkUserCentric,
		Name:      "User-Centric Design",
		Sections: []Section{
			section("user_needs", "User Needs", "User Needs",
				Criterion{"Identifies explicit and latent needs", 4},
				Criterion{"Backs needs with research", 3},
				Criterion{"Prioritizes needs", 3}),
			section("personas", "Personas", "Personas",
				Criterion{"Defines distinct personas", 4},
				Criterion{"Includes goals and frustrations", 3},
				Criterion{"Keeps personas grounded in data", 3}),
			section("user_journey", "User Journey", "User Journey",
				Criterion{"Maps the end-to-end journey", 4},
				Criterion{"Highlights friction points", 3},
				Criterion{"Identifies moments that matter", 3}),
			section("design_solution", "Design Solution", "Design Solution",
				Criterion{"Solves the prioritized friction", 4},
				Criterion{"Explains design decisions", 3},
				Criterion{"Considers accessibility and edge cases", 3}),
			section("validation", "Validation", "Validation",
				Criterion{"Plans usability testing", 4},
				Criterion{"Defines success metrics", 3},
				Criterion{"Describes the iteration loop", 3}),
		},
	},
	domain.FrameworkGeneric: {
		Framework: domain.FrameworkGeneric,
		Name:      "Product Framework",
		Sections: []Section{
			withKeyword(section("problem_understanding", "Problem Understanding", "Problem Understanding",
				Criterion{"Clarifies the problem and goals", 4},
				Criterion{"States assumptions and constraints", 3},
				Criterion{"Explains why the problem matters", 3}), "problem"),
			withKeyword(section("user_analysis", "User Analysis", "User Analysis",
				Criterion{"Segments target users", 4},
				Criterion{"Describes user pain points", 3},
				Criterion{"Prioritizes a segment", 3}), "user"),
			withKeyword(section("solution_design", "Solution Design", "Solution Design",
				Criterion{"Proposes a concrete solution", 4},
				Criterion{"Considers alternatives", 3},
				Criterion{"Explains trade-offs", 3}), "solution"),
			withKeyword(section("implementation_plan", "Implementation Plan", "Implementation Plan",
				Criterion{"Breaks delivery into phases", 4},
				Criterion{"Identifies dependencies and risks", 3},
				Criterion{"Defines an MVP", 3}), "implement"),
			withKeyword(section("success_metrics", "Success Metrics", "Success Metrics",
				Criterion{"Defines a north star metric", 4},
				Criterion{"Adds guardrail metrics", 3},
				Criterion{"Explains how metrics will be measured", 3}), "metric"),
		},
	},
}

func withKeyword(s Section, kw string) Section {
	s.Keyword = kw
	return s
}
