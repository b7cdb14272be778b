package domain

import "context"

// Renderer turns a document into page images in document order.
type Renderer interface {
	Render(ctx context.Context, data []byte, dpi int) ([]PageImage, error)
}

// DocumentConverter converts a word-processing document into a PDF.
type DocumentConverter interface {
	ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error)
}

// Generator sends an ordered list of content parts to a text model and
// returns its reply.
type Generator interface {
	Generate(ctx context.Context, parts []ContentPart, model string) (string, error)
}

// StreamingGenerator is a Generator that can also forward reply chunks as
// they arrive. The full reply is still returned.
type StreamingGenerator interface {
	Generator
	GenerateStream(ctx context.Context, parts []ContentPart, model string, chunkCh chan<- string) (string, error)
}

// ImageGenerator produces an image from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, model string) (*GeneratedImage, error)
}
