package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/prompt"
)

func newAdaptCommand(a *app) *cobra.Command {
	var (
		input  inputFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Adapt an assessment for a special educational need",
		Example: `  incluia adapt --file prova.pdf --need tdah
  incluia adapt --text "Calcule 3/4 de 20." --need dyscalculia --suggest "Incluir dicas"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input.build()
			if err != nil {
				return err
			}
			if err := a.requireKeys(); err != nil {
				return err
			}

			var res *domain.AdaptationResult
			err = a.runPipeline(func(ctx context.Context, svc *adapt.Service, eventCh chan<- domain.StreamEvent) error {
				var err error
				res, err = svc.Adapt(ctx, in, eventCh)
				return err
			})
			if err != nil {
				return err
			}

			printAdaptation(in, res)

			if output != "" {
				if err := os.WriteFile(output, []byte(res.AdaptedContent+"\n"), 0o644); err != nil {
					return domain.IOError("write output file", err)
				}
				ui.Success("Adapted content written to %s", output)
			}
			return nil
		},
	}

	input.register(cmd, prompt.AdaptationFlow.Suggestions)
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the adapted content to this file")
	return cmd
}

// runPipeline builds the service, runs fn under the model timeout and
// renders its events.
func (a *app) runPipeline(fn func(ctx context.Context, svc *adapt.Service, eventCh chan<- domain.StreamEvent) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Model.RequestTimeout)
	defer cancel()

	svc, closer, err := buildService(ctx, a.cfg, a.logger, nil)
	if closer != nil {
		defer closer.Close()
	}
	if err != nil {
		return err
	}

	eventCh := make(chan domain.StreamEvent, 100)
	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, svc, eventCh)
		close(eventCh)
		errCh <- err
	}()

	watch(eventCh)
	return <-errCh
}

func printAdaptation(in adapt.Input, res *domain.AdaptationResult) {
	if res.Issue != nil {
		ui.Warning("The model reply did not follow the expected format; showing a best-effort split.")
		ui.Detail("%v", res.Issue)
	}

	ui.Section("Conteúdo adaptado (" + in.Need.Label() + ")")
	ui.Message("%s", res.AdaptedContent)

	ui.Section("Justificativas")
	ui.Message("%s", res.Justification)

	ui.Section("Legibilidade")
	printReadabilityComparison(res.OriginalReadability, res.AdaptedReadability)
}
