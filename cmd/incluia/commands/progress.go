package commands

import (
	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/domain"
)

// watch renders pipeline events until the channel is closed.
func watch(eventCh <-chan domain.StreamEvent) {
	var (
		bar     *ui.ProgressBar
		spinner = ui.NewSpinner("Waiting for the model...")
	)
	defer spinner.Stop()

	for ev := range eventCh {
		switch ev.Type {
		case domain.EventStart:
			ui.Info("%v", ev.Payload)

		case domain.EventDocumentRender:
			ui.Detail("%v", ev.Payload)

		case domain.EventPageRendered:
			if bar == nil {
				bar = ui.NewProgressBar(int64(ev.Total), "Rendering pages")
			}
			bar.Set(int64(ev.PageNumber))
			if ev.PageNumber == ev.Total {
				bar.Finish()
			}

		case domain.EventModelRequest:
			spinner.Start()

		case domain.EventModelStreaming:
			if ui.Verbose() {
				spinner.Stop()
				if chunk, ok := ev.Payload.(string); ok {
					ui.Detail("%s", chunk)
				}
			}

		case domain.EventImageGeneration:
			spinner.UpdateMessage("Generating the image...")
			spinner.Start()

		case domain.EventError, domain.EventComplete:
			spinner.Stop()
			ui.Detail("%v", ev.Payload)
		}
	}
}
