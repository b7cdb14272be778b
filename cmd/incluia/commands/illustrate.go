package commands

import (
	"context"
	"mime"
	"os"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/prompt"
)

func newIllustrateCommand(a *app) *cobra.Command {
	var (
		input    inputFlags
		imageOut string
	)

	cmd := &cobra.Command{
		Use:   "illustrate",
		Short: "Create a supporting illustration for an assessment item",
		Example: `  incluia illustrate --text "Joana comprou 5 maçãs." --need tea --image-out apoio.png
  incluia illustrate --file questao.png --need di --suggest Minimalista`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input.build()
			if err != nil {
				return err
			}
			if err := a.requireKeys(); err != nil {
				return err
			}

			var res *domain.IllustrationResult
			err = a.runPipeline(func(ctx context.Context, svc *adapt.Service, eventCh chan<- domain.StreamEvent) error {
				var err error
				res, err = svc.Illustrate(ctx, in, eventCh)
				return err
			})
			if err != nil {
				return err
			}

			printIllustration(res)

			if res.Image == nil {
				return nil
			}
			path := imageOut
			if path == "" {
				path = "ilustracao" + imageExtension(res.Image.MIMEType)
			}
			if err := os.WriteFile(path, res.Image.Data, 0o644); err != nil {
				return domain.IOError("write image", err)
			}
			ui.Success("Image written to %s", path)
			return nil
		},
	}

	input.register(cmd, prompt.IllustrationFlow.Suggestions)
	cmd.Flags().StringVar(&imageOut, "image-out", "", "where to write the generated image (default ilustracao.<ext>)")
	return cmd
}

func printIllustration(res *domain.IllustrationResult) {
	if res.Issue != nil {
		ui.Warning("The model reply did not follow the expected format; showing a best-effort split.")
		ui.Detail("%v", res.Issue)
	}

	ui.Section("Prompt da imagem")
	ui.Message("%s", res.ImagePrompt)

	ui.Section("Descrição da imagem")
	ui.Message("%s", res.Description)

	ui.Section("Justificativas")
	ui.Message("%s", res.Justification)

	if res.ImageError != nil {
		ui.Newline()
		ui.Warning("No image was generated: %v", res.ImageError)
		if domain.IsType(res.ImageError, domain.ErrorTypeModelUnavailable) {
			ui.Info("The image model is busy or the quota is exhausted. Try again later.")
		}
	}
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
