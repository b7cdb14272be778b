package adapt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/pdf/pdftest"
	"github.com/incluia/assessment-adapter/internal/prompt"
	"github.com/incluia/assessment-adapter/internal/response"
)

const longText = "A água do rio corre devagar entre as pedras. As crianças olham os peixes pequenos. " +
	"O sol aquece a margem e os pássaros cantam nas árvores altas. Todos gostam do passeio."

type fakeRenderer struct {
	pages  int
	err    error
	gotDPI int
}

func (f *fakeRenderer) Render(ctx context.Context, data []byte, dpi int) ([]domain.PageImage, error) {
	f.gotDPI = dpi
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.PageImage, f.pages)
	for i := range out {
		out[i] = domain.PageImage{PageNumber: i + 1, Data: []byte{byte(i + 1)}}
	}
	return out, nil
}

type fakeOffice struct {
	pdf   []byte
	err   error
	calls int
}

func (f *fakeOffice) ConvertToPDF(ctx context.Context, docx []byte) ([]byte, error) {
	f.calls++
	return f.pdf, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	got   []domain.ContentPart
}

func (f *fakeGenerator) Generate(ctx context.Context, parts []domain.ContentPart, model string) (string, error) {
	f.got = parts
	return f.reply, f.err
}

type fakeStreamer struct {
	fakeGenerator
	chunks []string
}

func (f *fakeStreamer) GenerateStream(ctx context.Context, parts []domain.ContentPart, model string, chunkCh chan<- string) (string, error) {
	f.got = parts
	for _, c := range f.chunks {
		chunkCh <- c
	}
	return strings.Join(f.chunks, ""), nil
}

type fakeImages struct {
	err       error
	gotPrompt string
}

func (f *fakeImages) GenerateImage(ctx context.Context, p, model string) (*domain.GeneratedImage, error) {
	f.gotPrompt = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GeneratedImage{MIMEType: "image/png", Data: []byte{7}}, nil
}

func newTestService(gen domain.Generator, r *fakeRenderer, office domain.DocumentConverter, images domain.ImageGenerator) *Service {
	deps := Dependencies{Rasterizer: r, Generator: gen}
	if office != nil {
		deps.Office = office
	}
	if images != nil {
		deps.Images = images
	}
	return NewService(deps, Options{})
}

func TestAdapt_TextOnly(t *testing.T) {
	gen := &fakeGenerator{reply: longText + "\n# Justificativas:\nFrases curtas e vocabulário do cotidiano."}
	svc := newTestService(gen, &fakeRenderer{}, nil, nil)

	res, err := svc.Adapt(context.Background(), Input{
		Need: prompt.NeedDyslexia,
		Text: longText,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, longText, res.AdaptedContent)
	assert.Equal(t, "Frases curtas e vocabulário do cotidiano.", res.Justification)
	assert.NoError(t, res.Issue)
	require.NotNil(t, res.OriginalReadability.Report)
	require.NotNil(t, res.AdaptedReadability.Report)

	require.Len(t, gen.got, 3)
	assert.Equal(t, longText, gen.got[1].Text)
	assert.Contains(t, gen.got[2].Text, "Dislexia")
}

func TestAdapt_PDFPagesPrecedeRequest(t *testing.T) {
	doc := pdftest.Build(pdftest.Page{Width: 300, Height: 200, Text: "Questao um"})
	renderer := &fakeRenderer{pages: 2}
	gen := &fakeGenerator{reply: "Questão adaptada.\n# Justificativas:\nMotivo."}
	svc := newTestService(gen, renderer, nil, nil)

	res, err := svc.Adapt(context.Background(), Input{
		Need:     prompt.NeedADHD,
		Document: &domain.SourceDocument{Name: "prova.pdf", MediaType: domain.MediaTypePDF, Data: doc},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultAdaptationDPI, renderer.gotDPI)
	require.Len(t, gen.got, 4)
	assert.Equal(t, domain.PartText, gen.got[0].Kind)
	assert.Equal(t, []byte{1}, gen.got[1].Data)
	assert.Equal(t, []byte{2}, gen.got[2].Data)
	assert.Equal(t, domain.PartText, gen.got[3].Kind)

	// the text layer is too short to score
	assert.Nil(t, res.OriginalReadability.Report)
	assert.True(t, domain.IsType(res.OriginalReadability.Err, domain.ErrorTypeInsufficientText))
}

func TestAdapt_DOCXGoesThroughConverter(t *testing.T) {
	office := &fakeOffice{pdf: pdftest.Build(pdftest.Page{Width: 100, Height: 100})}
	renderer := &fakeRenderer{pages: 1}
	gen := &fakeGenerator{reply: "ok\n# Justificativas:\nok"}
	svc := newTestService(gen, renderer, office, nil)

	_, err := svc.Adapt(context.Background(), Input{
		Document: &domain.SourceDocument{Name: "prova.docx", MediaType: domain.MediaTypeDOCX, Data: []byte("PK")},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, office.calls)
	assert.Len(t, gen.got, 3)
}

func TestAdapt_ConversionFailureAborts(t *testing.T) {
	office := &fakeOffice{err: domain.ConversionTimeoutError("too slow", nil)}
	gen := &fakeGenerator{reply: "never"}
	svc := newTestService(gen, &fakeRenderer{}, office, nil)
	events := make(chan domain.StreamEvent, 20)

	_, err := svc.Adapt(context.Background(), Input{
		Document: &domain.SourceDocument{Name: "a.docx", MediaType: domain.MediaTypeDOCX, Data: []byte("PK")},
	}, events)

	assert.True(t, domain.IsType(err, domain.ErrorTypeConversionTimeout))
	assert.Nil(t, gen.got)

	close(events)
	var last domain.StreamEvent
	for ev := range events {
		last = ev
	}
	assert.Equal(t, domain.EventError, last.Type)
}

func TestAdapt_RejectsImagesAndUnknownTypes(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, &fakeRenderer{}, nil, nil)

	for _, mt := range []domain.MediaType{domain.MediaTypePNG, domain.MediaTypeText, "application/zip"} {
		_, err := svc.Adapt(context.Background(), Input{
			Text:     "questão",
			Document: &domain.SourceDocument{Name: "x", MediaType: mt, Data: []byte{1}},
		}, nil)
		assert.True(t, domain.IsType(err, domain.ErrorTypeUnsupportedMedia), string(mt))
	}
}

func TestAdapt_RejectsTextUploadWithoutCallingModel(t *testing.T) {
	gen := &fakeGenerator{reply: "Conteúdo\n# Justificativas:\nok"}
	svc := newTestService(gen, &fakeRenderer{}, nil, nil)

	_, err := svc.Adapt(context.Background(), Input{
		Document: &domain.SourceDocument{Name: "notes.txt", MediaType: domain.MediaTypeText, Data: []byte("texto enviado")},
	}, nil)

	assert.True(t, domain.IsType(err, domain.ErrorTypeUnsupportedMedia))
	assert.Nil(t, gen.got)
}

func TestPrepare_EmptyUploads(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, &fakeRenderer{}, nil, nil)

	tests := []struct {
		name     string
		flow     func(context.Context, Input) error
		doc      *domain.SourceDocument
		wantType domain.ErrorType
	}{
		{
			name:     "disallowed type",
			flow:     adaptFlow(svc),
			doc:      &domain.SourceDocument{Name: "a.zip", MediaType: "application/zip"},
			wantType: domain.ErrorTypeUnsupportedMedia,
		},
		{
			name:     "image in adaptation",
			flow:     adaptFlow(svc),
			doc:      &domain.SourceDocument{Name: "f.png", MediaType: domain.MediaTypePNG},
			wantType: domain.ErrorTypeUnsupportedMedia,
		},
		{
			name:     "empty pdf",
			flow:     adaptFlow(svc),
			doc:      &domain.SourceDocument{Name: "p.pdf", MediaType: domain.MediaTypePDF},
			wantType: domain.ErrorTypeValidation,
		},
		{
			name:     "empty image in illustration",
			flow:     illustrateFlow(svc),
			doc:      &domain.SourceDocument{Name: "f.png", MediaType: domain.MediaTypePNG},
			wantType: domain.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flow(context.Background(), Input{Text: "q", Document: tt.doc})
			assert.True(t, domain.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func adaptFlow(svc *Service) func(context.Context, Input) error {
	return func(ctx context.Context, in Input) error {
		_, err := svc.Adapt(ctx, in, nil)
		return err
	}
}

func illustrateFlow(svc *Service) func(context.Context, Input) error {
	return func(ctx context.Context, in Input) error {
		_, err := svc.Illustrate(ctx, in, nil)
		return err
	}
}

func TestAdapt_NoContent(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, &fakeRenderer{}, nil, nil)

	_, err := svc.Adapt(context.Background(), Input{Text: "   "}, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeNoContent))
}

func TestAdapt_EmptyReply(t *testing.T) {
	svc := newTestService(&fakeGenerator{reply: "  \n"}, &fakeRenderer{}, nil, nil)

	_, err := svc.Adapt(context.Background(), Input{Text: "questão"}, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEmptyResponse))
}

func TestAdapt_MalformedReplyFallsBack(t *testing.T) {
	svc := newTestService(&fakeGenerator{reply: "Só o conteúdo adaptado."}, &fakeRenderer{}, nil, nil)

	res, err := svc.Adapt(context.Background(), Input{Text: "questão"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Só o conteúdo adaptado.", res.AdaptedContent)
	assert.Equal(t, response.NoJustification, res.Justification)
	assert.True(t, domain.IsType(res.Issue, domain.ErrorTypeMalformedResponse))
}

func TestAdapt_ModelErrorPropagates(t *testing.T) {
	svc := newTestService(&fakeGenerator{err: domain.ModelUnavailableError("busy", nil)}, &fakeRenderer{}, nil, nil)

	_, err := svc.Adapt(context.Background(), Input{Text: "questão"}, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeModelUnavailable))
}

func TestAdapt_StreamsChunksAsEvents(t *testing.T) {
	gen := &fakeStreamer{chunks: []string{"Texto ", "adaptado\n# Justificativas:\n", "porque sim"}}
	svc := newTestService(gen, &fakeRenderer{}, nil, nil)
	events := make(chan domain.StreamEvent, 50)

	res, err := svc.Adapt(context.Background(), Input{Text: "questão"}, events)
	require.NoError(t, err)
	close(events)

	var streamed strings.Builder
	var types []domain.EventType
	for ev := range events {
		types = append(types, ev.Type)
		assert.False(t, ev.Timestamp.IsZero())
		if ev.Type == domain.EventModelStreaming {
			streamed.WriteString(ev.Payload.(string))
		}
	}

	assert.Equal(t, "Texto adaptado", res.AdaptedContent)
	assert.Equal(t, "porque sim", res.Justification)
	assert.Equal(t, "Texto adaptado\n# Justificativas:\nporque sim", streamed.String())
	assert.Equal(t, domain.EventStart, types[0])
	assert.Equal(t, domain.EventComplete, types[len(types)-1])
}

func TestAdapt_FullEventChannelDoesNotBlock(t *testing.T) {
	gen := &fakeGenerator{reply: "a\n# Justificativas:\nb"}
	svc := newTestService(gen, &fakeRenderer{}, nil, nil)
	events := make(chan domain.StreamEvent)

	_, err := svc.Adapt(context.Background(), Input{Text: "questão"}, events)
	assert.NoError(t, err)
}

const illustrationReply = "# Prompt da Imagem:\nUma maçã vermelha sobre a mesa\n" +
	"# Descrição da Imagem:\nImagem simples de uma fruta.\n" +
	"# Justificativas:\nApoio visual concreto."

func TestIllustrate_GeneratesImage(t *testing.T) {
	images := &fakeImages{}
	gen := &fakeGenerator{reply: illustrationReply}
	svc := newTestService(gen, &fakeRenderer{}, nil, images)

	res, err := svc.Illustrate(context.Background(), Input{Need: prompt.NeedAutism, Text: "Quantas maçãs?"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Uma maçã vermelha sobre a mesa", res.ImagePrompt)
	assert.Equal(t, "Imagem simples de uma fruta.", res.Description)
	assert.Equal(t, "Uma maçã vermelha sobre a mesa", images.gotPrompt)
	require.NotNil(t, res.Image)
	assert.Equal(t, "image/png", res.Image.MIMEType)
	assert.NoError(t, res.ImageError)

	require.Len(t, gen.got, 3)
	assert.Equal(t, "Texto original: Quantas maçãs?", gen.got[1].Text)
}

func TestIllustrate_ForwardsUploadedImage(t *testing.T) {
	renderer := &fakeRenderer{}
	gen := &fakeGenerator{reply: illustrationReply}
	svc := newTestService(gen, renderer, nil, &fakeImages{})

	_, err := svc.Illustrate(context.Background(), Input{
		Document: &domain.SourceDocument{Name: "f.png", MediaType: domain.MediaTypePNG, Data: []byte{0x89}},
	}, nil)

	require.NoError(t, err)
	require.Len(t, gen.got, 3)
	assert.Equal(t, "image/png", gen.got[1].MIMEType)
	assert.Equal(t, 0, renderer.gotDPI)
}

func TestIllustrate_PDFUsesLowerDPI(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	svc := newTestService(&fakeGenerator{reply: illustrationReply}, renderer, nil, &fakeImages{})

	_, err := svc.Illustrate(context.Background(), Input{
		Document: &domain.SourceDocument{Name: "p.pdf", MediaType: domain.MediaTypePDF, Data: pdftest.Build(pdftest.Page{Width: 10, Height: 10})},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultIllustrationDPI, renderer.gotDPI)
}

func TestIllustrate_ImageFailureKeepsText(t *testing.T) {
	images := &fakeImages{err: domain.ModelUnavailableError("quota", errors.New("429"))}
	svc := newTestService(&fakeGenerator{reply: illustrationReply}, &fakeRenderer{}, nil, images)

	res, err := svc.Illustrate(context.Background(), Input{Text: "x"}, nil)

	require.NoError(t, err)
	assert.Nil(t, res.Image)
	assert.True(t, domain.IsType(res.ImageError, domain.ErrorTypeModelUnavailable))
	assert.Equal(t, "Apoio visual concreto.", res.Justification)
}

func TestIllustrate_MissingPromptSkipsImage(t *testing.T) {
	images := &fakeImages{}
	reply := "# Prompt da Imagem:\n\n# Descrição da Imagem:\nalgo\n# Justificativas:\nalgo"
	svc := newTestService(&fakeGenerator{reply: reply}, &fakeRenderer{}, nil, images)

	res, err := svc.Illustrate(context.Background(), Input{Text: "x"}, nil)

	require.NoError(t, err)
	assert.Equal(t, response.PromptNotGenerated, res.ImagePrompt)
	assert.True(t, domain.IsType(res.Issue, domain.ErrorTypeMalformedResponse))
	assert.Empty(t, images.gotPrompt)
	assert.Nil(t, res.Image)
}

func TestIllustrate_NoImageModel(t *testing.T) {
	svc := newTestService(&fakeGenerator{reply: illustrationReply}, &fakeRenderer{}, nil, nil)

	res, err := svc.Illustrate(context.Background(), Input{Text: "x"}, nil)

	require.NoError(t, err)
	assert.True(t, domain.IsType(res.ImageError, domain.ErrorTypeConfig))
}

func TestReadability(t *testing.T) {
	svc := newTestService(&fakeGenerator{}, &fakeRenderer{}, nil, nil)

	assert.NotNil(t, svc.Readability(longText).Report)
	assert.True(t, domain.IsType(svc.Readability("curto").Err, domain.ErrorTypeInsufficientText))
}
