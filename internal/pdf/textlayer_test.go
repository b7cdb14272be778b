package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/pdf/pdftest"
)

func TestExtractText_ReadsPagesInOrder(t *testing.T) {
	doc := pdftest.Build(
		pdftest.Page{Width: 300, Height: 200, Text: "Primeira questao"},
		pdftest.Page{Width: 300, Height: 200, Text: "Segunda questao"},
	)

	text, err := ExtractText(doc)
	require.NoError(t, err)
	assert.Contains(t, text, "Primeira")
	assert.Contains(t, text, "Segunda")
	assert.Less(t, strings.Index(text, "Primeira"), strings.Index(text, "Segunda"))
}

func TestExtractText_ScannedPageIsEmpty(t *testing.T) {
	text, err := ExtractText(pdftest.Build(pdftest.Page{Width: 100, Height: 100}))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	_, err := ExtractText([]byte("plain text"))
	assert.True(t, domain.IsType(err, domain.ErrorTypeDocumentRead))
}
