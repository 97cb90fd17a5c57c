package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/pm-interview-coach/internal/adapter/ai/real"
	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/usecase"
	"github.com/fairyhunter13/pm-interview-coach/pkg/textx"
)

const excerptRunes = 80

type evaluateOptions struct {
	question  string
	framework string
	format    string
	offline   bool
	strict    bool
	timeout   time.Duration
}

type evaluationOutput struct {
	Framework    string                `yaml:"framework"`
	Source       string                `yaml:"source"`
	OverallScore float64               `yaml:"overall_score"`
	Attempts     int                   `yaml:"attempts,omitempty"`
	Model        string                `yaml:"model,omitempty"`
	Transcript   string                `yaml:"transcript"`
	Sections     []domain.SectionScore `yaml:"sections,omitempty"`
	Feedback     string                `yaml:"feedback"`
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	o := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate [transcript-file]",
		Short: "Score a transcript and print feedback",
		Long: `Evaluate reads a transcript from a file, or stdin when no file or "-" is
given, and prints the feedback and overall score.

Example:
  coach evaluate answer.txt --question "How would you improve Maps?"
  coach evaluate answer.txt --framework circles --format yaml
  cat answer.txt | coach evaluate --offline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, root, o)
		},
	}
	cmd.Flags().StringVarP(&o.question, "question", "q", "", "interview question the transcript answers")
	cmd.Flags().StringVarP(&o.framework, "framework", "f", "", "framework to score against (default: detect)")
	cmd.Flags().StringVar(&o.format, "format", "text", "output format (text, yaml)")
	cmd.Flags().BoolVar(&o.strict, "strict-sections", false, "only accept section markers at the start of a line")
	cmd.Flags().BoolVar(&o.offline, "offline", false, "skip the completion endpoint and use the heuristic scorer")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 3*time.Minute, "overall evaluation timeout")
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string, root *rootOptions, o *evaluateOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	transcript, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}

	var client domain.CompletionClient
	if !o.offline {
		cfg, err := root.appConfig()
		if err != nil {
			return err
		}
		if cfg.CompletionEnabled() {
			client = real.New(cfg)
		} else if root.verbose {
			fmt.Fprintln(cmd.ErrOrStderr(), "No completion API key configured, using heuristic scorer")
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	res := usecase.NewAnalyzer(client, usecase.WithStrictSections(o.strict)).Analyze(ctx, domain.EvaluationRequest{
		QuestionText: o.question,
		Transcript:   transcript,
		Framework:    o.framework,
	})

	out := evaluationOutput{
		Framework:    string(res.Framework),
		Source:       string(res.Source),
		OverallScore: res.OverallScore,
		Attempts:     res.Attempts,
		Model:        res.Model,
		Transcript:   textx.Excerpt(transcript, excerptRunes),
		Sections:     res.Sections,
		Feedback:     res.FullText,
	}
	w := cmd.OutOrStdout()
	if o.format == "yaml" {
		return writeYAML(w, out)
	}
	fmt.Fprintf(w, "Framework: %s (%s)\n", res.Framework.DisplayName(), res.Source)
	fmt.Fprintf(w, "Transcript: %s\n\n", out.Transcript)
	fmt.Fprintln(w, strings.TrimSpace(res.FullText))
	return nil
}

func checkFormat(f string) error {
	switch f {
	case "text", "yaml":
		return nil
	}
	return fmt.Errorf("op=cli.checkFormat: %w: unknown format %q", domain.ErrInvalidArgument, f)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("op=cli.writeYAML: %w", err)
	}
	return enc.Close()
}
