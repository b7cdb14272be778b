package office

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/pdf"
	"github.com/incluia/assessment-adapter/internal/pdf/pdftest"
)

// writeFakeOffice installs a shell script that stands in for the office binary.
// body runs after $out (the --outdir value) and $in (the last argument) are set.
func writeFakeOffice(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-ins require a POSIX shell")
	}

	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) out="$2"; shift ;;
  esac
  in="$1"
  shift
done
` + body + "\n"

	path := filepath.Join(t.TempDir(), "fake-office")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newTestConverter(t *testing.T, binary string, timeout time.Duration) (*Converter, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "work")
	require.NoError(t, os.MkdirAll(root, 0o755))
	c := NewConverter(Options{Binary: binary, Timeout: timeout, TempRoot: root}, pdf.NewRasterizer(0, nil), nil, nil)
	return c, root
}

func assertNoLeftovers(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "work directory was not cleaned up")
}

func TestConvertToPDF_Success(t *testing.T) {
	bin := writeFakeOffice(t, `name=$(basename "$in" .docx)
printf '%%PDF-1.4 converted' > "$out/$name.pdf"`)
	c, root := newTestConverter(t, bin, 5*time.Second)

	out, err := c.ConvertToPDF(context.Background(), []byte("PK docx bytes"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 converted", string(out))
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_Timeout(t *testing.T) {
	bin := writeFakeOffice(t, `exec sleep 10`)
	c, root := newTestConverter(t, bin, 200*time.Millisecond)

	start := time.Now()
	out, err := c.ConvertToPDF(context.Background(), []byte("PK docx bytes"))

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConversionTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_ParentDeadlineIsNotConversionTimeout(t *testing.T) {
	bin := writeFakeOffice(t, `exec sleep 10`)
	c, root := newTestConverter(t, bin, 30*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := c.ConvertToPDF(ctx, []byte("PK docx bytes"))

	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, domain.IsType(err, domain.ErrorTypeConversionTimeout), "got %v", err)
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_NonZeroExitCarriesStderr(t *testing.T) {
	bin := writeFakeOffice(t, `echo "source file could not be loaded" >&2
exit 3`)
	c, root := newTestConverter(t, bin, 5*time.Second)

	_, err := c.ConvertToPDF(context.Background(), []byte("PK docx bytes"))

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConversion))
	assert.Contains(t, err.Error(), "source file could not be loaded")
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_MissingOutput(t *testing.T) {
	bin := writeFakeOffice(t, `echo "warning: nothing exported" >&2
exit 0`)
	c, root := newTestConverter(t, bin, 5*time.Second)

	_, err := c.ConvertToPDF(context.Background(), []byte("PK docx bytes"))

	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConversion))
	assert.Contains(t, err.Error(), "nothing exported")
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_BinaryNotFound(t *testing.T) {
	c, root := newTestConverter(t, filepath.Join(t.TempDir(), "does-not-exist"), time.Second)

	_, err := c.ConvertToPDF(context.Background(), []byte("PK docx bytes"))

	assert.True(t, domain.IsType(err, domain.ErrorTypeConversion), "got %v", err)
	assertNoLeftovers(t, root)
}

func TestConvertToPDF_EmptyInput(t *testing.T) {
	c, _ := newTestConverter(t, "unused", time.Second)

	_, err := c.ConvertToPDF(context.Background(), nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
}

func TestRender_RasterizesConvertedDocument(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, os.WriteFile(fixture, pdftest.Build(
		pdftest.Page{Width: 120, Height: 100},
		pdftest.Page{Width: 240, Height: 100},
	), 0o644))

	bin := writeFakeOffice(t, `cp "`+fixture+`" "$out/$(basename "$in" .docx).pdf"`)
	c, root := newTestConverter(t, bin, 5*time.Second)

	pages, err := c.Render(context.Background(), []byte("PK docx bytes"), 72)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.InDelta(t, 120, pages[0].Width, 1)
	assert.InDelta(t, 240, pages[1].Width, 1)
	assertNoLeftovers(t, root)
}
