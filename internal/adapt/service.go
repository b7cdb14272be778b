// Package adapt runs the two teacher-facing pipelines: adapting assessment
// content for a need category and producing a supporting illustration.
package adapt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
	"github.com/incluia/assessment-adapter/internal/pdf"
	"github.com/incluia/assessment-adapter/internal/prompt"
	"github.com/incluia/assessment-adapter/internal/readability"
	"github.com/incluia/assessment-adapter/internal/response"
)

const (
	DefaultAdaptationDPI   = 300
	DefaultIllustrationDPI = 150
)

// Options holds the per-flow model and render settings.
type Options struct {
	TextModel       string
	ImageModel      string
	AdaptationDPI   int
	IllustrationDPI int
}

// Dependencies groups the collaborators of a Service. Office and Images may
// be nil, in which case DOCX uploads and image generation are unavailable.
type Dependencies struct {
	Rasterizer domain.Renderer
	Office     domain.DocumentConverter
	Generator  domain.Generator
	Images     domain.ImageGenerator
	Splitter   *response.Splitter
	Analyzer   *readability.Analyzer
	Logger     *observability.Logger
	Metrics    *observability.Metrics
}

// Input is one teacher request.
type Input struct {
	Need         prompt.NeedCategory
	Instructions string
	Text         string
	Document     *domain.SourceDocument
}

// Service orchestrates rendering, prompt assembly, the model call and
// reply parsing.
type Service struct {
	deps         Dependencies
	opts         Options
	adaptation   *prompt.Assembler
	illustration *prompt.Assembler
	logger       *observability.Logger
}

// NewService creates a new adaptation service
func NewService(deps Dependencies, opts Options) *Service {
	if opts.AdaptationDPI <= 0 {
		opts.AdaptationDPI = DefaultAdaptationDPI
	}
	if opts.IllustrationDPI <= 0 {
		opts.IllustrationDPI = DefaultIllustrationDPI
	}
	if deps.Splitter == nil {
		deps.Splitter = response.NewSplitter(false)
	}
	if deps.Analyzer == nil {
		deps.Analyzer = readability.New(readability.DefaultMinTokens)
	}
	logger := deps.Logger
	if logger == nil {
		logger = observability.Nop()
	}

	return &Service{
		deps:         deps,
		opts:         opts,
		adaptation:   prompt.NewAssembler(prompt.AdaptationFlow),
		illustration: prompt.NewAssembler(prompt.IllustrationFlow),
		logger:       logger.WithComponent("adapt"),
	}
}

// Adapt rewrites the input for its need category and scores the
// readability of the original and the adapted text.
func (s *Service) Adapt(ctx context.Context, in Input, eventCh chan<- domain.StreamEvent) (result *domain.AdaptationResult, err error) {
	defer s.finish("adaptation", time.Now(), eventCh, &err)
	log := s.logger.WithContext(ctx).With().
		Str("operation", "adapt").
		Str("need", in.Need.Slug()).
		Logger()

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventStart,
		Payload: fmt.Sprintf("Adapting content for %s", in.Need.Label()),
	})

	mat, err := s.prepare(ctx, in, s.opts.AdaptationDPI, false, eventCh)
	if err != nil {
		return nil, err
	}

	parts, err := s.adaptation.Assemble(prompt.Request{
		Need:              in.Need,
		ExtraInstructions: in.Instructions,
		Uploaded:          mat.parts,
		RawText:           mat.rawText,
	})
	if err != nil {
		return nil, err
	}

	reply, err := s.generate(ctx, parts, eventCh)
	if err != nil {
		return nil, err
	}

	result, err = s.deps.Splitter.SplitAdaptation(reply)
	if err != nil {
		return nil, err
	}
	if result.Issue != nil {
		s.deps.Metrics.RecordMalformedReply("adaptation")
		log.Warn().Err(result.Issue).Msg("reply did not follow the marker protocol, fallback applied")
	}

	result.OriginalReadability = s.deps.Analyzer.Evaluate(mat.originalText())
	result.AdaptedReadability = s.deps.Analyzer.Evaluate(result.AdaptedContent)

	log.Info().
		Int("parts", len(parts)).
		Int("reply_chars", len(reply)).
		Bool("malformed", result.Issue != nil).
		Msg("adaptation complete")
	return result, nil
}

// Illustrate produces an image prompt, description and justification, then
// asks the image model for the picture. A failed image call is reported in
// the result and does not discard the text sections.
func (s *Service) Illustrate(ctx context.Context, in Input, eventCh chan<- domain.StreamEvent) (result *domain.IllustrationResult, err error) {
	defer s.finish("illustration", time.Now(), eventCh, &err)
	log := s.logger.WithContext(ctx).With().
		Str("operation", "illustrate").
		Str("need", in.Need.Slug()).
		Logger()

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventStart,
		Payload: fmt.Sprintf("Creating an illustration for %s", in.Need.Label()),
	})

	mat, err := s.prepare(ctx, in, s.opts.IllustrationDPI, true, eventCh)
	if err != nil {
		return nil, err
	}

	parts, err := s.illustration.Assemble(prompt.Request{
		Need:              in.Need,
		ExtraInstructions: in.Instructions,
		Uploaded:          mat.parts,
		RawText:           mat.rawText,
	})
	if err != nil {
		return nil, err
	}

	reply, err := s.generate(ctx, parts, eventCh)
	if err != nil {
		return nil, err
	}

	result, err = s.deps.Splitter.SplitIllustration(reply)
	if err != nil {
		return nil, err
	}
	if result.Issue != nil {
		s.deps.Metrics.RecordMalformedReply("illustration")
		log.Warn().Err(result.Issue).Msg("reply did not follow the marker protocol, fallback applied")
	}

	imagePrompt := strings.TrimSpace(result.ImagePrompt)
	if imagePrompt == "" || imagePrompt == response.PromptNotGenerated {
		if result.Issue == nil {
			result.Issue = domain.MalformedResponseError("illustration reply carries no image prompt")
		}
		result.ImageError = domain.MalformedResponseError("no image prompt was produced, image generation skipped")
		return result, nil
	}

	if s.deps.Images == nil {
		result.ImageError = domain.ConfigError("no image model configured", nil)
		return result, nil
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventImageGeneration,
		Payload: "Generating image",
	})
	img, imgErr := s.deps.Images.GenerateImage(ctx, imagePrompt, s.opts.ImageModel)
	if imgErr != nil {
		log.Warn().Err(imgErr).Msg("image generation failed")
		result.ImageError = imgErr
		return result, nil
	}
	result.Image = img

	log.Info().
		Str("image_mime", img.MIMEType).
		Int("image_bytes", len(img.Data)).
		Msg("illustration complete")
	return result, nil
}

// Readability scores a text on its own.
func (s *Service) Readability(text string) domain.ReadabilityOutcome {
	return s.deps.Analyzer.Evaluate(text)
}

// material is the prepared input of one request.
type material struct {
	parts   []domain.ContentPart
	rawText string
	// layerText is the text layer of an uploaded PDF, if any.
	layerText string
}

// originalText is the text whose readability is reported as the original:
// the typed text when present, otherwise the uploaded document's text layer.
func (m material) originalText() string {
	if m.rawText != "" {
		return m.rawText
	}
	return m.layerText
}

// prepare validates the upload against the flow's allow-list and turns it
// into content parts.
func (s *Service) prepare(ctx context.Context, in Input, dpi int, allowImages bool, eventCh chan<- domain.StreamEvent) (material, error) {
	m := material{rawText: strings.TrimSpace(in.Text)}
	doc := in.Document
	if doc == nil {
		return m, nil
	}

	// The allow-list is checked before anything else so a disallowed upload
	// is rejected even when it is empty. Typed text never arrives as an upload.
	switch doc.MediaType {
	case domain.MediaTypePDF, domain.MediaTypeDOCX:
	case domain.MediaTypeJPEG, domain.MediaTypePNG:
		if !allowImages {
			return m, unsupported(doc)
		}
	default:
		return m, unsupported(doc)
	}
	if len(doc.Data) == 0 {
		return m, domain.ValidationError(fmt.Sprintf("uploaded file %s is empty", doc.Name), nil)
	}

	switch doc.MediaType {
	case domain.MediaTypeJPEG, domain.MediaTypePNG:
		m.parts = []domain.ContentPart{domain.ImagePart(string(doc.MediaType), doc.Data)}
		return m, nil

	case domain.MediaTypePDF:
		return s.renderPDF(ctx, m, doc.Data, dpi, eventCh)

	case domain.MediaTypeDOCX:
		if s.deps.Office == nil {
			return m, domain.ConversionError("document conversion is not configured", nil)
		}
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:    domain.EventDocumentRender,
			Payload: fmt.Sprintf("Converting %s to PDF", doc.Name),
		})
		converted, err := s.deps.Office.ConvertToPDF(ctx, doc.Data)
		if err != nil {
			return m, err
		}
		return s.renderPDF(ctx, m, converted, dpi, eventCh)
	}
	return m, unsupported(doc)
}

func (s *Service) renderPDF(ctx context.Context, m material, data []byte, dpi int, eventCh chan<- domain.StreamEvent) (material, error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventDocumentRender,
		Payload: fmt.Sprintf("Rendering pages at %d dpi", dpi),
	})

	pages, err := s.deps.Rasterizer.Render(ctx, data, dpi)
	if err != nil {
		return m, err
	}
	s.deps.Metrics.RecordPages(len(pages))

	for _, p := range pages {
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventPageRendered,
			PageNumber: p.PageNumber,
			Total:      len(pages),
		})
	}
	m.parts = domain.PageParts(pages)

	// Scanned documents have no text layer; readability then reports
	// insufficient text.
	text, err := pdf.ExtractText(data)
	if err != nil {
		s.logger.Debug().Err(err).Msg("no usable text layer")
	}
	m.layerText = strings.TrimSpace(text)
	return m, nil
}

func unsupported(doc *domain.SourceDocument) error {
	return domain.UnsupportedMediaError(fmt.Sprintf("unsupported media type %q for %s", doc.MediaType, doc.Name))
}

// generate calls the text model, forwarding streamed chunks as events when
// the model supports streaming and someone is listening.
func (s *Service) generate(ctx context.Context, parts []domain.ContentPart, eventCh chan<- domain.StreamEvent) (string, error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventModelRequest,
		Payload: "Waiting for the model",
	})

	streamer, ok := s.deps.Generator.(domain.StreamingGenerator)
	if !ok || eventCh == nil {
		return s.deps.Generator.Generate(ctx, parts, s.opts.TextModel)
	}

	chunkCh := make(chan string, 100)
	type outcome struct {
		reply string
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		reply, err := streamer.GenerateStream(ctx, parts, s.opts.TextModel, chunkCh)
		close(chunkCh)
		done <- outcome{reply, err}
	}()

	for chunk := range chunkCh {
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:    domain.EventModelStreaming,
			Payload: chunk,
		})
	}
	res := <-done
	return res.reply, res.err
}

// finish records the pipeline outcome and emits the terminal event.
func (s *Service) finish(flow string, start time.Time, eventCh chan<- domain.StreamEvent, errp *error) {
	duration := time.Since(start)
	if err := *errp; err != nil {
		s.deps.Metrics.RecordPipeline(flow, string(outcomeOf(err)), duration)
		s.emitError(eventCh, err)
		s.logger.Error().Str("flow", flow).Dur("duration", duration).Err(err).Msg("pipeline failed")
		return
	}
	s.deps.Metrics.RecordPipeline(flow, "success", duration)
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventComplete,
		Payload: fmt.Sprintf("Finished %s in %v", flow, duration.Round(time.Millisecond)),
	})
}

func outcomeOf(err error) domain.ErrorType {
	if t := domain.TypeOf(err); t != "" {
		return t
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case eventCh <- event:
	default:
		s.logger.Warn().Str("event", string(event.Type)).Msg("event channel full, dropping event")
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:    domain.EventError,
		Payload: err.Error(),
	})
}
