package pdf

import (
	"bytes"
	"fmt"

	"github.com/incluia/assessment-adapter/internal/domain"
)

const (
	MinDPI = 1
	MaxDPI = 1200

	// headerWindow is how far into the file the %PDF- marker may appear.
	headerWindow = 1024
)

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for rasterization requests
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDocument checks that data looks like a PDF before it is handed to
// the decoder.
func (v *Validator) ValidateDocument(data []byte) error {
	if len(data) == 0 {
		return domain.DocumentReadError(0, "document is empty", nil)
	}
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if !bytes.Contains(window, pdfMagic) {
		return domain.DocumentReadError(0, "document has no PDF header", nil)
	}
	return nil
}

// ValidateDPI validates the render resolution
func (v *Validator) ValidateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return domain.ValidationError(fmt.Sprintf("dpi must be between %d and %d, got %d", MinDPI, MaxDPI, dpi), nil)
	}
	return nil
}

// ValidateQuality validates image quality parameter
func (v *Validator) ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return domain.ValidationError(fmt.Sprintf("quality must be between 1 and 100, got %d", quality), nil)
	}
	return nil
}
