// Package pdf rasterizes PDF documents into JPEG page images and reads their
// embedded text layer.
package pdf

import (
	"bytes"
	"context"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// Rasterizer renders PDF pages to JPEG using go-fitz (MuPDF).
type Rasterizer struct {
	quality   int
	validator *Validator
	logger    *observability.Logger
}

// NewRasterizer creates a rasterizer encoding pages at the given JPEG quality.
// A non-positive quality selects DefaultQuality.
func NewRasterizer(quality int, logger *observability.Logger) *Rasterizer {
	if quality <= 0 {
		quality = DefaultQuality
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Rasterizer{
		quality:   quality,
		validator: NewValidator(),
		logger:    logger.WithComponent("rasterizer"),
	}
}

// Render converts every page of the PDF into a JPEG at dpi/72 scale, in page
// order. Either all pages are returned or none: any page that fails to decode
// aborts the whole document with a DocumentReadError naming that page.
func (r *Rasterizer) Render(ctx context.Context, data []byte, dpi int) ([]domain.PageImage, error) {
	if err := r.validator.ValidateDPI(dpi); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateQuality(r.quality); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateDocument(data); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.DocumentReadError(0, "failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		r.logger.Debug().Msg("document has no pages")
		return []domain.PageImage{}, nil
	}

	images := make([]domain.PageImage, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(pageNum, float64(dpi))
		if err != nil {
			return nil, domain.DocumentReadError(pageNum+1, "failed to render page", err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
			return nil, domain.DocumentReadError(pageNum+1, "failed to encode page as JPEG", err)
		}

		bounds := img.Bounds()
		images = append(images, domain.PageImage{
			PageNumber: pageNum + 1,
			Data:       buf.Bytes(),
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}

	r.logger.Debug().
		Int("pages", len(images)).
		Int("dpi", dpi).
		Msg("document rendered")

	return images, nil
}
