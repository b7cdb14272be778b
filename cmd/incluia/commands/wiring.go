package commands

import (
	"context"
	"io"

	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/config"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/llm"
	"github.com/incluia/assessment-adapter/internal/observability"
	"github.com/incluia/assessment-adapter/internal/office"
	"github.com/incluia/assessment-adapter/internal/pdf"
	"github.com/incluia/assessment-adapter/internal/readability"
	"github.com/incluia/assessment-adapter/internal/response"
)

// buildService wires the pipeline from configuration. The returned closer
// releases model clients.
func buildService(ctx context.Context, cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*adapt.Service, io.Closer, error) {
	rasterizer := pdf.NewRasterizer(cfg.Render.JPEGQuality, logger)
	converter := office.NewConverter(office.Options{
		Binary:   cfg.Office.Binary,
		Timeout:  cfg.Office.Timeout,
		TempRoot: cfg.Office.TempRoot,
	}, rasterizer, logger, metrics)

	closers := closerList{}

	var gemini *llm.GeminiClient
	geminiClient := func() (*llm.GeminiClient, error) {
		if gemini != nil {
			return gemini, nil
		}
		c, err := llm.NewGeminiClient(ctx, cfg.Model.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		gemini = c
		closers = append(closers, c)
		return c, nil
	}

	var text domain.Generator
	switch cfg.Model.Provider {
	case config.ProviderOpenRouter:
		text = llm.NewOpenRouterClient(cfg.Model.OpenRouterAPIKey, cfg.Model.TextModel,
			llm.WithEndpoint(cfg.Model.OpenRouterURL),
			llm.WithRetryConfig(&llm.RetryConfig{
				MaxRetries:     cfg.Model.MaxRetries,
				InitialBackoff: llm.DefaultRetryConfig().InitialBackoff,
				MaxBackoff:     llm.DefaultRetryConfig().MaxBackoff,
			}),
			llm.WithLogger(logger),
		)
	default:
		c, err := geminiClient()
		if err != nil {
			return nil, closers, err
		}
		text = c
	}

	breaker := llm.BreakerConfig{
		Enabled:      cfg.Breaker.Enabled,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
		OpenTimeout:  cfg.Breaker.OpenTimeout,
		HalfOpenMax:  cfg.Breaker.HalfOpenMax,
	}

	deps := adapt.Dependencies{
		Rasterizer: rasterizer,
		Office:     converter,
		Generator:  llm.NewGuardedGenerator(text, breaker, logger, metrics),
		Splitter:   response.NewSplitter(cfg.Protocol.LenientMarkers),
		Analyzer:   readability.New(cfg.Readability.MinTokens),
		Logger:     logger,
		Metrics:    metrics,
	}

	var images domain.ImageGenerator
	switch cfg.Model.ImageProvider {
	case config.ImageProviderOpenAI:
		images = llm.NewOpenAIImageClient(cfg.Model.OpenAIAPIKey, cfg.Model.ImageBaseURL)
	case config.ImageProviderGemini:
		c, err := geminiClient()
		if err != nil {
			return nil, closers, err
		}
		images = c
	}
	if images != nil {
		deps.Images = llm.NewGuardedImageGenerator(images, breaker, logger, metrics)
	}

	svc := adapt.NewService(deps, adapt.Options{
		TextModel:       cfg.Model.TextModel,
		ImageModel:      cfg.Model.ImageModel,
		AdaptationDPI:   cfg.Render.AdaptationDPI,
		IllustrationDPI: cfg.Render.IllustrationDPI,
	})
	return svc, closers, nil
}

type closerList []io.Closer

func (l closerList) Close() error {
	var first error
	for _, c := range l {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
