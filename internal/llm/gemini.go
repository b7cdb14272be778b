package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/incluia/assessment-adapter/internal/domain"
)

const (
	DefaultGeminiTextModel  = "gemini-2.5-flash"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
)

// GeminiClient calls the Gemini API for text replies and image generation.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient opens a Gemini client. Extra options are passed through
// to the underlying API client.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, domain.ConfigError("gemini api key is required", nil)
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, domain.ConfigError("failed to create gemini client", err)
	}
	return &GeminiClient{client: client}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Generate sends the parts as a single user turn, in order, and returns
// the concatenated text of the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, parts []domain.ContentPart, model string) (string, error) {
	if model == "" {
		model = DefaultGeminiTextModel
	}
	resp, err := g.client.GenerativeModel(model).GenerateContent(ctx, toGenaiParts(parts)...)
	if err != nil {
		return "", classify("gemini request failed", err)
	}
	return textFromResponse(resp), nil
}

// GenerateImage asks an image-capable Gemini model for an illustration and
// returns the first inline image of the reply.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string, model string) (*domain.GeneratedImage, error) {
	if model == "" {
		model = DefaultGeminiImageModel
	}
	resp, err := g.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classify("gemini image request failed", err)
	}
	img := imageFromResponse(resp)
	if img == nil {
		return nil, domain.EmptyResponseError("image model returned no image part")
	}
	return img, nil
}

func toGenaiParts(parts []domain.ContentPart) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Kind == domain.PartImage {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func imageFromResponse(resp *genai.GenerateContentResponse) *domain.GeneratedImage {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") && len(blob.Data) > 0 {
				return &domain.GeneratedImage{MIMEType: blob.MIMEType, Data: blob.Data}
			}
		}
	}
	return nil
}
