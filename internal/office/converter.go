// Package office converts word-processing documents to PDF through a
// headless office suite and hands the result to the rasterizer.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
)

const (
	DefaultBinary  = "libreoffice"
	DefaultTimeout = 60 * time.Second

	inputName  = "input.docx"
	outputName = "input.pdf"
)

// Options configures the external conversion process.
type Options struct {
	// Binary is the office suite executable, looked up in PATH.
	Binary  string
	Timeout time.Duration
	// TempRoot is the parent of the per-call work directories. Empty means
	// the system default.
	TempRoot string
}

// Converter turns DOCX bytes into page images: DOCX → PDF via the office
// binary, then PDF → JPEG via the rasterizer.
type Converter struct {
	opts       Options
	rasterizer domain.Renderer
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewConverter creates a converter. metrics may be nil.
func NewConverter(opts Options, rasterizer domain.Renderer, logger *observability.Logger, metrics *observability.Metrics) *Converter {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Converter{
		opts:       opts,
		rasterizer: rasterizer,
		logger:     logger.WithComponent("office"),
		metrics:    metrics,
	}
}

// Render converts the document to PDF and rasterizes every page.
func (c *Converter) Render(ctx context.Context, docx []byte, dpi int) ([]domain.PageImage, error) {
	pdfBytes, err := c.ConvertToPDF(ctx, docx)
	if err != nil {
		return nil, err
	}
	return c.rasterizer.Render(ctx, pdfBytes, dpi)
}

// ConvertToPDF runs `<binary> --headless --convert-to pdf --outdir <dir> <file>`
// inside a private work directory that is removed before returning.
func (c *Converter) ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	if len(docx) == 0 {
		return nil, domain.ValidationError("document is empty", nil)
	}
	log := c.logger.WithContext(ctx).WithOperation("convert")

	workDir, err := os.MkdirTemp(c.opts.TempRoot, "incluia-office-*")
	if err != nil {
		return nil, domain.IOError("failed to create work directory", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", workDir).Msg("failed to remove work directory")
		}
	}()

	inputPath := filepath.Join(workDir, inputName)
	if err := os.WriteFile(inputPath, docx, 0o600); err != nil {
		return nil, domain.IOError("failed to write input document", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.opts.Binary,
		"-env:UserInstallation=file://"+filepath.ToSlash(filepath.Join(workDir, "profile")),
		"--headless",
		"--convert-to", "pdf",
		"--outdir", workDir,
		inputPath,
	)
	cmd.Dir = workDir
	// Children that inherit stdout/stderr must not keep Wait blocked after a kill.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	// A done parent context wins over the conversion timeout.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		c.metrics.RecordConversion("timeout")
		log.Warn().Dur("timeout", c.opts.Timeout).Msg("office conversion timed out")
		return nil, domain.ConversionTimeoutError(
			fmt.Sprintf("document conversion exceeded %s", c.opts.Timeout), runCtx.Err())
	}
	if runErr != nil {
		c.metrics.RecordConversion("error")
		return nil, domain.ConversionError(failureMessage("office conversion failed", &stderr), runErr)
	}

	pdfPath := filepath.Join(workDir, outputName)
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		c.metrics.RecordConversion("error")
		return nil, domain.ConversionError(failureMessage("office conversion produced no PDF", &stderr), err)
	}

	c.metrics.RecordConversion("ok")
	log.Debug().
		Dur("elapsed", elapsed).
		Int("bytes", len(pdfBytes)).
		Str("stdout", strings.TrimSpace(stdout.String())).
		Msg("office conversion finished")

	return pdfBytes, nil
}

func failureMessage(prefix string, stderr *bytes.Buffer) string {
	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}
