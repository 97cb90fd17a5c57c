package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/pm-interview-coach/internal/domain"
	"github.com/fairyhunter13/pm-interview-coach/internal/rubric"
)

func newDetectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "detect [transcript-file]",
		Short: "Print the framework a transcript follows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			transcript, err := readTranscript(cmd, args)
			if err != nil {
				return err
			}
			f := rubric.Detect(transcript)
			if format == "yaml" {
				return writeYAML(cmd.OutOrStdout(), map[string]string{"framework": string(f), "name": f.DisplayName()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f, f.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, yaml)")
	return cmd
}

func newRubricCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rubric <framework>",
		Short: "Print a framework's scoring rubric as YAML",
		Long: `Rubric prints the sections and criterion points of a framework.

Known frameworks: star, circles, design_thinking, jtbd, user_centric, generic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := domain.ParseFramework(args[0])
			if !ok {
				return fmt.Errorf("op=cli.rubric: %w: unknown framework %q", domain.ErrInvalidArgument, args[0])
			}
			return writeYAML(cmd.OutOrStdout(), rubric.For(f))
		},
	}
}
