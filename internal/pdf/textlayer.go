package pdf

import (
	"bytes"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// ExtractText returns the embedded text layer of a PDF, pages joined by a
// blank line. Scanned documents yield an empty string. Pages whose content
// stream cannot be read are skipped.
func ExtractText(data []byte) (text string, err error) {
	if err := NewValidator().ValidateDocument(data); err != nil {
		return "", err
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = domain.DocumentReadError(0, "failed to parse PDF text layer", fmt.Errorf("%v", rec))
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.DocumentReadError(0, "failed to open PDF", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}
