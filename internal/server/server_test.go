package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
	"github.com/incluia/assessment-adapter/internal/prompt"
	"github.com/incluia/assessment-adapter/internal/readability"
)

type fakePipeline struct {
	gotInput adapt.Input
	adapted  *domain.AdaptationResult
	illus    *domain.IllustrationResult
	err      error
}

func (f *fakePipeline) Adapt(ctx context.Context, in adapt.Input, eventCh chan<- domain.StreamEvent) (*domain.AdaptationResult, error) {
	f.gotInput = in
	return f.adapted, f.err
}

func (f *fakePipeline) Illustrate(ctx context.Context, in adapt.Input, eventCh chan<- domain.StreamEvent) (*domain.IllustrationResult, error) {
	f.gotInput = in
	return f.illus, f.err
}

func (f *fakePipeline) Readability(text string) domain.ReadabilityOutcome {
	return readability.New(readability.DefaultMinTokens).Evaluate(text)
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newTestRouter(p Pipeline) http.Handler {
	return NewRouter(p, observability.Nop(), observability.NewMetrics(), Options{})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakePipeline{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsReused(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	newTestRouter(&fakePipeline{}).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakePipeline{})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `incluia_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestListNeeds(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakePipeline{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/needs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp NeedsResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Needs, len(prompt.AllNeeds()))
	assert.Equal(t, prompt.AdaptationFlow.Suggestions, resp.Suggestions["adaptation"])
	assert.Len(t, resp.Suggestions["illustration"], 5)
}

func TestAdapt_Success(t *testing.T) {
	p := &fakePipeline{adapted: &domain.AdaptationResult{
		AdaptedContent: "Texto simples.",
		Justification:  "Frases curtas.",
		Raw:            "Texto simples.\n# Justificativas:\nFrases curtas.",
		OriginalReadability: domain.ReadabilityOutcome{
			Err: domain.InsufficientTextError("too short"),
		},
		AdaptedReadability: domain.ReadabilityOutcome{Report: &domain.ReadabilityReport{
			ReadingEase: domain.Metric{Value: 95, Band: domain.BandVeryEasy},
		}},
	}}
	body, ct := multipartBody(t, map[string]string{"need": "tdah", "text": "Questão 1", "instructions": "Incluir dicas"}, "prova.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adaptations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	newTestRouter(p).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp AdaptationResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "adhd", resp.Need)
	assert.Equal(t, "Texto simples.", resp.AdaptedContent)
	assert.Equal(t, "Frases curtas.", resp.Justification)
	assert.Contains(t, resp.OriginalReadability.Message, "too short")
	require.NotNil(t, resp.AdaptedReadability.ReadingEase)
	assert.Equal(t, "Muito fácil", resp.AdaptedReadability.ReadingEase.Label)
	assert.NotEmpty(t, resp.RequestID)

	assert.Equal(t, prompt.NeedADHD, p.gotInput.Need)
	assert.Equal(t, "Incluir dicas", p.gotInput.Instructions)
	require.NotNil(t, p.gotInput.Document)
	assert.Equal(t, domain.MediaTypePDF, p.gotInput.Document.MediaType)
	assert.Equal(t, []byte("%PDF-1.4"), p.gotInput.Document.Data)
}

func TestIllustrate_EncodesImage(t *testing.T) {
	p := &fakePipeline{illus: &domain.IllustrationResult{
		ImagePrompt:   "maçã",
		Description:   "uma fruta",
		Justification: "concreto",
		Image:         &domain.GeneratedImage{MIMEType: "image/png", Data: []byte{1, 2, 3}},
	}}
	body, ct := multipartBody(t, map[string]string{"text": "Quantas maçãs?"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/illustrations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	newTestRouter(p).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp IllustrationResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Image)
	assert.Equal(t, "AQID", resp.Image.Base64)
	assert.Equal(t, "unspecified", resp.Need)
	assert.Nil(t, p.gotInput.Document)
}

func TestPipelineErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no content", domain.NoContentError("empty"), http.StatusBadRequest},
		{"unsupported", domain.UnsupportedMediaError("zip"), http.StatusUnsupportedMediaType},
		{"document read", domain.DocumentReadError(2, "bad page", nil), http.StatusUnprocessableEntity},
		{"conversion", domain.ConversionError("office failed", nil), http.StatusUnprocessableEntity},
		{"conversion timeout", domain.ConversionTimeoutError("slow", nil), http.StatusGatewayTimeout},
		{"empty reply", domain.EmptyResponseError("nothing"), http.StatusBadGateway},
		{"model unavailable", domain.ModelUnavailableError("busy", nil), http.StatusServiceUnavailable},
		{"api", domain.APIError("bad key", errors.New("401")), http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, map[string]string{"text": "x"}, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/adaptations", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			newTestRouter(&fakePipeline{err: tt.err}).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestModelUnavailableSetsRetryAfter(t *testing.T) {
	body, ct := multipartBody(t, map[string]string{"text": "x"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adaptations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	newTestRouter(&fakePipeline{err: domain.ModelUnavailableError("busy", nil)}).ServeHTTP(rec, req)

	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "model_unavailable", resp["error"])
}

func TestAdapt_RejectsNonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adaptations", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestRouter(&fakePipeline{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdapt_UploadTooLarge(t *testing.T) {
	body, ct := multipartBody(t, nil, "big.pdf", bytes.Repeat([]byte("a"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adaptations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	NewRouter(&fakePipeline{}, nil, nil, Options{MaxUploadBytes: 1024}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadability(t *testing.T) {
	text := strings.Repeat("O gato subiu no muro alto. ", 6)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readability", strings.NewReader(`{"text":"`+text+`"}`))
	rec := httptest.NewRecorder()

	newTestRouter(&fakePipeline{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReadabilityDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.ReadingEase)
	assert.Empty(t, resp.Message)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/readability", strings.NewReader(`{"text":"curto"}`))
	newTestRouter(&fakePipeline{}).ServeHTTP(rec, req)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "at least 20")
}

func TestReadability_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readability", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	newTestRouter(&fakePipeline{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
