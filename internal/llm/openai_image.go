package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/incluia/assessment-adapter/internal/domain"
)

const DefaultOpenAIImageModel = "gpt-image-1"

// OpenAIImageClient generates illustrations through an OpenAI-compatible
// images endpoint.
type OpenAIImageClient struct {
	client *openai.Client
}

// NewOpenAIImageClient creates the client. An empty baseURL selects the
// public OpenAI API.
func NewOpenAIImageClient(apiKey, baseURL string) *OpenAIImageClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIImageClient{client: openai.NewClientWithConfig(config)}
}

func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string, model string) (*domain.GeneratedImage, error) {
	if model == "" {
		model = DefaultOpenAIImageModel
	}

	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  model,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	}
	// gpt-image models always answer in base64 and reject the parameter.
	if !strings.HasPrefix(model, "gpt-image") {
		req.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return nil, classify("image request failed", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, domain.EmptyResponseError("image model returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, domain.APIError("image payload is not valid base64", err)
	}
	return &domain.GeneratedImage{MIMEType: http.DetectContentType(data), Data: data}, nil
}
