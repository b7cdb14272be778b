// Package llm holds the generative model clients: an OpenRouter chat client
// with SSE streaming, a Gemini client for text and images, an OpenAI-
// compatible image client and a circuit breaker guarding all of them.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultTextModel     = "google/gemini-2.5-flash"
)

// OpenRouterClient sends content parts to an OpenAI-style chat completions
// endpoint and reads the streamed reply.
type OpenRouterClient struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	retry      *RetryConfig
	logger     *observability.Logger
}

// OpenRouterOption customises an OpenRouterClient.
type OpenRouterOption func(*OpenRouterClient)

// WithEndpoint overrides the chat completions URL.
func WithEndpoint(url string) OpenRouterOption {
	return func(c *OpenRouterClient) { c.endpoint = url }
}

func WithHTTPClient(hc *http.Client) OpenRouterOption {
	return func(c *OpenRouterClient) { c.httpClient = hc }
}

func WithRetryConfig(cfg *RetryConfig) OpenRouterOption {
	return func(c *OpenRouterClient) { c.retry = cfg }
}

func WithLogger(l *observability.Logger) OpenRouterOption {
	return func(c *OpenRouterClient) {
		if l != nil {
			c.logger = l.WithComponent("openrouter")
		}
	}
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image)
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Response is one streamed chunk or a full completion.
type Response struct {
	ID      string     `json:"id"`
	Choices []Choice   `json:"choices"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Delta        Delta  `json:"delta"`
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents a message delta in streaming response
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ErrorBody is the error object OpenRouter sends in place of choices.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOpenRouterClient creates a client. model is used when Generate is
// called with an empty model name.
func NewOpenRouterClient(apiKey, model string, opts ...OpenRouterOption) *OpenRouterClient {
	if model == "" {
		model = DefaultTextModel
	}
	c := &OpenRouterClient{
		apiKey:     apiKey,
		endpoint:   DefaultOpenRouterURL,
		model:      model,
		httpClient: &http.Client{},
		retry:      DefaultRetryConfig(),
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate returns the complete reply.
func (c *OpenRouterClient) Generate(ctx context.Context, parts []domain.ContentPart, model string) (string, error) {
	return c.GenerateStream(ctx, parts, model, nil)
}

// GenerateStream forwards reply chunks to chunkCh as they arrive (when
// non-nil) and returns the full reply.
func (c *OpenRouterClient) GenerateStream(ctx context.Context, parts []domain.ContentPart, model string, chunkCh chan<- string) (string, error) {
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(c.buildRequest(parts, model))
	if err != nil {
		return "", domain.APIError("failed to marshal request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("HTTP-Referer", "https://github.com/incluia/assessment-adapter")
		req.Header.Set("X-Title", "IncluIA")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", classify("openrouter request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", classify("openrouter request failed", &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		})
	}

	var sb strings.Builder
	parser := NewStreamParser(resp.Body)
	for {
		chunk, err := parser.Next()
		if err != nil {
			return "", classify("failed to read reply stream", err)
		}
		if chunk.Content != "" {
			sb.WriteString(chunk.Content)
			if chunkCh != nil {
				select {
				case chunkCh <- chunk.Content:
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
		}
		if chunk.Done {
			break
		}
	}

	return sb.String(), nil
}

// buildRequest keeps the parts in the order given, in a single user message.
func (c *OpenRouterClient) buildRequest(parts []domain.ContentPart, model string) *Request {
	content := make([]ContentPart, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case domain.PartImage:
			content = append(content, ContentPart{
				Type:     "image_url",
				ImageURL: &ImageURL{URL: dataURL(p.MIMEType, p.Data)},
			})
		default:
			content = append(content, ContentPart{Type: "text", Text: p.Text})
		}
	}

	return &Request{
		Model:    model,
		Messages: []Message{{Role: "user", Content: content}},
		Stream:   true,
	}
}

func dataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
