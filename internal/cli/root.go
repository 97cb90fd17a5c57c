// Package cli implements the coach command line: offline scoring, framework
// detection and rubric inspection against the same pipeline the server uses.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fairyhunter13/pm-interview-coach/internal/config"
	"github.com/fairyhunter13/pm-interview-coach/pkg/textx"
)

const version = "coach v0.3.0"

type rootOptions struct {
	cfgFile string
	verbose bool
	v       *viper.Viper
}

// NewRootCmd builds the command tree. Each call gets its own viper instance.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "coach",
		Short: "Score product-manager interview answers",
		Long: `coach scores spoken PM interview answers against a product framework
(STAR, CIRCLES, Design Thinking, JTBD, User-Centric Design or a generic
product rubric) and prints framework-specific feedback.

With a completion API key configured the feedback comes from the completion
endpoint; otherwise, or when every attempt fails, the built-in heuristic
scorer answers instead.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.coach/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	_ = opts.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
		newEvaluateCmd(opts),
		newDetectCmd(),
		newRubricCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// initConfig reads the optional config file and COACH_* environment variables.
func (o *rootOptions) initConfig(stderr io.Writer) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			o.v.AddConfigPath(filepath.Join(home, ".coach"))
		}
		o.v.SetConfigType("yaml")
		o.v.SetConfigName("config")
	}

	o.v.SetEnvPrefix("COACH")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	if err := o.v.ReadInConfig(); err != nil {
		// An explicit --config must exist; the default location is optional.
		if o.cfgFile != "" {
			return fmt.Errorf("op=cli.initConfig: %w", err)
		}
	} else if o.v.GetBool("verbose") {
		fmt.Fprintf(stderr, "Using config file: %s\n", o.v.ConfigFileUsed())
	}
	return nil
}

// appConfig layers config file and COACH_* values over the server's
// environment configuration.
func (o *rootOptions) appConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if s := o.v.GetString("completion.api_key"); s != "" {
		cfg.CompletionAPIKey = s
	}
	if s := o.v.GetString("completion.base_url"); s != "" {
		cfg.CompletionBaseURL = s
	}
	if s := o.v.GetString("completion.model"); s != "" {
		cfg.CompletionModel = s
	}
	if d := o.v.GetDuration("completion.timeout"); d > 0 {
		cfg.CompletionTimeout = d
	}
	return cfg, nil
}

// readTranscript loads the transcript from a file argument, or stdin when the
// argument is missing or "-".
func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("op=cli.readTranscript: %w", err)
	}
	return textx.SanitizeText(string(data)), nil
}
