// Package commands implements the incluia command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/config"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
)

const version = "0.3.0"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *observability.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "incluia",
		Short: "Adapt assessments for students with special educational needs",
		Long: `incluia rewrites assessment items for a given special educational need,
creates supporting illustrations and reports the readability of the original and
adapted text. Documents may be PDF or DOCX; the model sees every page as an image.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.InitUI(a.noColor, a.verbose)

			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Observability.LogLevel = "debug"
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(observability.LogConfig{
				Level:  cfg.Observability.LogLevel,
				Format: cfg.Observability.LogFormat,
				Output: ui.ErrOut,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newAdaptCommand(a),
		newIllustrateCommand(a),
		newReadabilityCommand(a),
		newServeCommand(a),
		newNeedsCommand(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func reportError(err error) {
	if t := domain.TypeOf(err); t != "" {
		ui.Error("%s: %v", t, err)
	} else {
		ui.Error("%v", err)
	}
	if domain.IsType(err, domain.ErrorTypeModelUnavailable) {
		ui.Info("The model is busy or the quota is exhausted. Wait a moment and try again.")
	}
}

// requireKeys fails early when a model command lacks its API keys.
func (a *app) requireKeys() error {
	if err := a.cfg.RequireModelKeys(); err != nil {
		return fmt.Errorf("%w (set them in the environment or a .env file)", err)
	}
	return nil
}
