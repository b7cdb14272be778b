package pdf

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/pdf/pdftest"
)

func TestRasterizer_RenderPreservesPageOrder(t *testing.T) {
	doc := pdftest.Build(
		pdftest.Page{Width: 100, Height: 150},
		pdftest.Page{Width: 200, Height: 150},
		pdftest.Page{Width: 300, Height: 150},
	)

	r := NewRasterizer(0, nil)
	pages, err := r.Render(context.Background(), doc, 72)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.InDelta(t, (i+1)*100, p.Width, 1, "page %d width", i+1)
		assert.InDelta(t, 150, p.Height, 1)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(p.Data))
		require.NoError(t, err, "page %d is not a JPEG", i+1)
		assert.Equal(t, p.Width, cfg.Width)
	}
}

func TestRasterizer_RenderScalesWithDPI(t *testing.T) {
	doc := pdftest.Build(pdftest.Page{Width: 144, Height: 72})

	pages, err := NewRasterizer(80, nil).Render(context.Background(), doc, 144)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.InDelta(t, 288, pages[0].Width, 1)
	assert.InDelta(t, 144, pages[0].Height, 1)
}

func TestRasterizer_RenderZeroPages(t *testing.T) {
	pages, err := NewRasterizer(0, nil).Render(context.Background(), pdftest.Build(), 72)
	require.NoError(t, err)
	require.NotNil(t, pages)
	assert.Empty(t, pages)
}

func TestRasterizer_RenderRejectsUndecodableInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("PK\x03\x04 this is a zip archive")},
	}

	r := NewRasterizer(DefaultQuality, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := r.Render(context.Background(), tt.data, 72)
			require.Error(t, err)
			assert.Nil(t, pages)
			assert.True(t, domain.IsType(err, domain.ErrorTypeDocumentRead), "got %v", err)
		})
	}
}

func TestRasterizer_RenderValidatesDPI(t *testing.T) {
	doc := pdftest.Build(pdftest.Page{Width: 100, Height: 100})
	r := NewRasterizer(DefaultQuality, nil)

	for _, dpi := range []int{0, -5, MaxDPI + 1} {
		_, err := r.Render(context.Background(), doc, dpi)
		assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), "dpi %d", dpi)
	}
}

func TestRasterizer_RenderHonoursCancellation(t *testing.T) {
	doc := pdftest.Build(pdftest.Page{Width: 100, Height: 100}, pdftest.Page{Width: 100, Height: 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := NewRasterizer(DefaultQuality, nil).Render(ctx, doc, 72)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pages)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateQuality(1))
	assert.NoError(t, v.ValidateQuality(100))
	assert.Error(t, v.ValidateQuality(0))
	assert.Error(t, v.ValidateQuality(101))

	assert.NoError(t, v.ValidateDPI(300))
	assert.Error(t, v.ValidateDPI(0))

	assert.NoError(t, v.ValidateDocument([]byte("\n\n%PDF-1.7\n")))
	assert.Error(t, v.ValidateDocument([]byte("hello")))
}
