package domain

import (
	"strings"
	"time"
)

// MediaType is the declared type of an uploaded document.
type MediaType string

const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypeDOCX MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeJPEG MediaType = "image/jpeg"
	MediaTypePNG  MediaType = "image/png"
	MediaTypeText MediaType = "text/plain"
)

// extensionMediaTypes maps lowercase file extensions to their media type.
var extensionMediaTypes = map[string]MediaType{
	".pdf":  MediaTypePDF,
	".docx": MediaTypeDOCX,
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
	".png":  MediaTypePNG,
	".txt":  MediaTypeText,
}

// MediaTypeFromExtension resolves a file extension (with or without the dot).
func MediaTypeFromExtension(ext string) (MediaType, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	mt, ok := extensionMediaTypes[ext]
	return mt, ok
}

// IsImage reports whether the media type is a raster image.
func (m MediaType) IsImage() bool {
	return m == MediaTypeJPEG || m == MediaTypePNG
}

// SourceDocument is an uploaded file. It is consumed once per request and
// never persisted.
type SourceDocument struct {
	Name      string
	MediaType MediaType
	Data      []byte
}

// PageImage represents a single rendered document page
type PageImage struct {
	PageNumber int // 1-based, in document order
	Data       []byte
	Width      int
	Height     int
}

// PartKind tags the variant held by a ContentPart.
type PartKind int

const (
	PartText PartKind = iota
	PartImage
)

func (k PartKind) String() string {
	switch k {
	case PartText:
		return "text"
	case PartImage:
		return "image"
	default:
		return "unknown"
	}
}

// ContentPart is one element of the ordered material sent to the model:
// either plain text or inline binary data with a MIME type.
type ContentPart struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a plain text part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: PartText, Text: text}
}

// ImagePart builds an inline image part.
func ImagePart(mimeType string, data []byte) ContentPart {
	return ContentPart{Kind: PartImage, MIMEType: mimeType, Data: data}
}

// PageParts converts rendered pages into JPEG image parts, keeping page order.
func PageParts(pages []PageImage) []ContentPart {
	parts := make([]ContentPart, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, ImagePart(string(MediaTypeJPEG), p.Data))
	}
	return parts
}

// AdaptationResult is the parsed output of the text adaptation flow.
type AdaptationResult struct {
	AdaptedContent string
	Justification  string
	Raw            string
	// Issue is a MalformedResponseError when the reply did not follow the
	// marker protocol and a fallback was applied. It is informational.
	Issue error

	OriginalReadability ReadabilityOutcome
	AdaptedReadability  ReadabilityOutcome
}

// GeneratedImage is an image returned by the image model.
type GeneratedImage struct {
	MIMEType string
	Data     []byte
}

// IllustrationResult is the parsed output of the image generation flow.
type IllustrationResult struct {
	ImagePrompt   string
	Description   string
	Justification string
	Raw           string
	Issue         error

	Image *GeneratedImage
	// ImageError is set when the image model failed after a usable prompt
	// was produced; the textual sections remain valid.
	ImageError error
}

// Band is a qualitative readability classification.
type Band string

const (
	BandVeryEasy     Band = "very_easy"
	BandEasy         Band = "easy"
	BandMedium       Band = "medium"
	BandHard         Band = "hard"
	BandEarlyPrimary Band = "early_primary"
	BandLatePrimary  Band = "late_primary"
	BandPrimary      Band = "primary"
	BandSecondary    Band = "secondary"
	BandTertiary     Band = "tertiary"
	BandHigh         Band = "high"
	BandLow          Band = "low"
)

var bandLabels = map[Band]string{
	BandVeryEasy:     "Muito fácil",
	BandEasy:         "Fácil",
	BandMedium:       "Médio",
	BandHard:         "Difícil",
	BandEarlyPrimary: "Fundamental I",
	BandLatePrimary:  "Fundamental II",
	BandPrimary:      "Fundamental",
	BandSecondary:    "Ensino Médio",
	BandTertiary:     "Ensino Superior",
	BandHigh:         "Alta",
	BandLow:          "Baixa",
}

// Label returns the display label shown to teachers.
func (b Band) Label() string {
	if l, ok := bandLabels[b]; ok {
		return l
	}
	return string(b)
}

// Metric is a rounded readability value and its band.
type Metric struct {
	Value float64 `json:"value"`
	Band  Band    `json:"band"`
}

// ReadabilityReport holds the four readability metrics of a text.
type ReadabilityReport struct {
	ReadingEase      Metric `json:"reading_ease"`
	GradeLevel       Metric `json:"grade_level"`
	SMOGGrade        Metric `json:"smog_grade"`
	LexicalDiversity Metric `json:"lexical_diversity"`
}

// ReadabilityOutcome is either a report or the reason none was produced
// (typically an InsufficientTextError).
type ReadabilityOutcome struct {
	Report *ReadabilityReport
	Err    error
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart           EventType = "start"
	EventDocumentRender  EventType = "document_render"
	EventPageRendered    EventType = "page_rendered"
	EventModelRequest    EventType = "model_request"
	EventModelStreaming  EventType = "model_streaming" // Chunk of text
	EventImageGeneration EventType = "image_generation"
	EventError           EventType = "error"
	EventComplete        EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	PageNumber int         `json:"page_number,omitempty"`
	Total      int         `json:"total,omitempty"`
	Payload    interface{} `json:"payload,omitempty"` // Text chunk or status message
	Timestamp  time.Time   `json:"timestamp"`
}
