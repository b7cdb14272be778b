package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
	"github.com/incluia/assessment-adapter/internal/prompt"
)

// Pipeline is the part of adapt.Service the handlers use.
type Pipeline interface {
	Adapt(ctx context.Context, in adapt.Input, eventCh chan<- domain.StreamEvent) (*domain.AdaptationResult, error)
	Illustrate(ctx context.Context, in adapt.Input, eventCh chan<- domain.StreamEvent) (*domain.IllustrationResult, error)
	Readability(text string) domain.ReadabilityOutcome
}

// Handler serves the /api/v1 routes.
type Handler struct {
	pipeline  Pipeline
	logger    *observability.Logger
	maxUpload int64
}

func NewHandler(pipeline Pipeline, logger *observability.Logger, maxUpload int64) *Handler {
	return &Handler{pipeline: pipeline, logger: logger, maxUpload: maxUpload}
}

// NeedDTO describes a need category.
type NeedDTO struct {
	Slug      string `json:"slug"`
	Label     string `json:"label"`
	ShortName string `json:"shortName"`
}

// NeedsResponseDTO lists categories and the quick suggestions of each flow.
type NeedsResponseDTO struct {
	Needs       []NeedDTO           `json:"needs"`
	Suggestions map[string][]string `json:"suggestions"`
}

// MetricDTO is a readability metric with its display label.
type MetricDTO struct {
	Value float64 `json:"value"`
	Band  string  `json:"band"`
	Label string  `json:"label"`
}

// ReadabilityDTO carries either the metrics or the reason they are missing.
type ReadabilityDTO struct {
	ReadingEase      *MetricDTO `json:"readingEase,omitempty"`
	GradeLevel       *MetricDTO `json:"gradeLevel,omitempty"`
	SMOGGrade        *MetricDTO `json:"smogGrade,omitempty"`
	LexicalDiversity *MetricDTO `json:"lexicalDiversity,omitempty"`
	Message          string     `json:"message,omitempty"`
}

// AdaptationResponseDTO is the reply of POST /adaptations.
type AdaptationResponseDTO struct {
	RequestID           string         `json:"requestId"`
	Need                string         `json:"need"`
	AdaptedContent      string         `json:"adaptedContent"`
	Justification       string         `json:"justification"`
	Warning             string         `json:"warning,omitempty"`
	Raw                 string         `json:"raw"`
	OriginalReadability ReadabilityDTO `json:"originalReadability"`
	AdaptedReadability  ReadabilityDTO `json:"adaptedReadability"`
}

// ImageDTO is an inline generated image.
type ImageDTO struct {
	MIMEType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

// IllustrationResponseDTO is the reply of POST /illustrations.
type IllustrationResponseDTO struct {
	RequestID     string    `json:"requestId"`
	Need          string    `json:"need"`
	ImagePrompt   string    `json:"imagePrompt"`
	Description   string    `json:"description"`
	Justification string    `json:"justification"`
	Warning       string    `json:"warning,omitempty"`
	Raw           string    `json:"raw"`
	Image         *ImageDTO `json:"image,omitempty"`
	ImageError    string    `json:"imageError,omitempty"`
}

// ReadabilityRequestDTO is the body of POST /readability.
type ReadabilityRequestDTO struct {
	Text string `json:"text"`
}

// ListNeeds handles GET /needs.
func (h *Handler) ListNeeds(w http.ResponseWriter, r *http.Request) {
	resp := NeedsResponseDTO{
		Suggestions: map[string][]string{
			prompt.AdaptationFlow.Name:   prompt.AdaptationFlow.Suggestions,
			prompt.IllustrationFlow.Name: prompt.IllustrationFlow.Suggestions,
		},
	}
	for _, n := range prompt.AllNeeds() {
		resp.Needs = append(resp.Needs, NeedDTO{
			Slug:      n.Slug(),
			Label:     n.Label(),
			ShortName: prompt.AdaptationFlow.Guidelines.Profile(n).ShortName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Adapt handles POST /adaptations.
func (h *Handler) Adapt(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseInput(w, r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	res, err := h.pipeline.Adapt(r.Context(), in, nil)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AdaptationResponseDTO{
		RequestID:           observability.RequestIDFromContext(r.Context()),
		Need:                in.Need.Slug(),
		AdaptedContent:      res.AdaptedContent,
		Justification:       res.Justification,
		Warning:             errMessage(res.Issue),
		Raw:                 res.Raw,
		OriginalReadability: toReadabilityDTO(res.OriginalReadability),
		AdaptedReadability:  toReadabilityDTO(res.AdaptedReadability),
	})
}

// Illustrate handles POST /illustrations.
func (h *Handler) Illustrate(w http.ResponseWriter, r *http.Request) {
	in, err := h.parseInput(w, r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	res, err := h.pipeline.Illustrate(r.Context(), in, nil)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dto := IllustrationResponseDTO{
		RequestID:     observability.RequestIDFromContext(r.Context()),
		Need:          in.Need.Slug(),
		ImagePrompt:   res.ImagePrompt,
		Description:   res.Description,
		Justification: res.Justification,
		Warning:       errMessage(res.Issue),
		Raw:           res.Raw,
		ImageError:    errMessage(res.ImageError),
	}
	if res.Image != nil {
		dto.Image = &ImageDTO{
			MIMEType: res.Image.MIMEType,
			Base64:   base64.StdEncoding.EncodeToString(res.Image.Data),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// Readability handles POST /readability.
func (h *Handler) Readability(w http.ResponseWriter, r *http.Request) {
	var req ReadabilityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDomainError(w, r, domain.ValidationError("invalid request body", err))
		return
	}
	writeJSON(w, http.StatusOK, toReadabilityDTO(h.pipeline.Readability(req.Text)))
}

// parseInput reads the multipart form: file, text, need, instructions.
func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (adapt.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return adapt.Input{}, domain.ValidationError("upload is too large", err)
		}
		return adapt.Input{}, domain.ValidationError("expected a multipart form", err)
	}

	in := adapt.Input{
		Need:         prompt.ParseNeedCategory(r.FormValue("need")),
		Instructions: r.FormValue("instructions"),
		Text:         r.FormValue("text"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, domain.ValidationError("cannot read uploaded file", err)
	}
	defer file.Close()

	doc, err := readDocument(file, header)
	if err != nil {
		return in, err
	}
	in.Document = doc
	return in, nil
}

func readDocument(file multipart.File, header *multipart.FileHeader) (*domain.SourceDocument, error) {
	mt, ok := domain.MediaTypeFromExtension(filepath.Ext(header.Filename))
	if !ok {
		ct := strings.TrimSpace(strings.Split(header.Header.Get("Content-Type"), ";")[0])
		mt = domain.MediaType(ct)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.IOError("cannot read uploaded file", err)
	}
	return &domain.SourceDocument{Name: header.Filename, MediaType: mt, Data: data}, nil
}

func toReadabilityDTO(o domain.ReadabilityOutcome) ReadabilityDTO {
	if o.Report == nil {
		msg := "readability not available"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		return ReadabilityDTO{Message: msg}
	}
	return ReadabilityDTO{
		ReadingEase:      toMetricDTO(o.Report.ReadingEase),
		GradeLevel:       toMetricDTO(o.Report.GradeLevel),
		SMOGGrade:        toMetricDTO(o.Report.SMOGGrade),
		LexicalDiversity: toMetricDTO(o.Report.LexicalDiversity),
	}
}

func toMetricDTO(m domain.Metric) *MetricDTO {
	return &MetricDTO{Value: m.Value, Band: string(m.Band), Label: m.Band.Label()}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
