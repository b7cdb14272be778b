// Package prompt assembles the ordered material sent to the text model:
// system instruction, uploaded content, raw text and the rendered request
// template for the selected need category.
package prompt

import (
	"strings"
	"text/template"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// Flow bundles the prompt data of one pipeline (adaptation or illustration).
type Flow struct {
	Name              string
	SystemInstruction string
	Guidelines        GuidelineTable
	// NoneProvided replaces blank extra instructions in the template.
	NoneProvided string
	// RawTextPrefix is prepended to the raw text part.
	RawTextPrefix string
	Suggestions   []string

	template *template.Template
}

// AdaptationFlow rewrites assessment items for a need category.
var AdaptationFlow = Flow{
	Name:              "adaptation",
	SystemInstruction: adaptationSystemInstruction,
	Guidelines:        adaptationGuidelines,
	NoneProvided:      "Nenhuma instrução adicional fornecida.",
	Suggestions: []string{
		"Usar exemplos do cotidiano",
		"Aluno não alfabetizado",
		"Não simplificar muito",
		"Simplificar texto de apoio",
		"Incluir dicas",
	},
	template: template.Must(template.New("adaptation").Parse(adaptationTemplate)),
}

// IllustrationFlow produces an image prompt, a description and a
// justification for a supporting illustration.
var IllustrationFlow = Flow{
	Name:              "illustration",
	SystemInstruction: illustrationSystemInstruction,
	Guidelines:        illustrationGuidelines,
	NoneProvided:      "Nenhuma.",
	RawTextPrefix:     "Texto original: ",
	Suggestions: []string{
		"Exemplos do cotidiano",
		"Uso de símbolos",
		"Língua estrangeira",
		"Riqueza em detalhes",
		"Minimalista",
	},
	template: template.Must(template.New("illustration").Parse(illustrationTemplate)),
}

// Request carries the teacher's input for one assembly.
type Request struct {
	Need              NeedCategory
	ExtraInstructions string
	Uploaded          []domain.ContentPart
	RawText           string
}

type templateData struct {
	Label      string
	ShortName  string
	Guidelines string
	Extra      string
}

// Assembler builds model input for a single flow.
type Assembler struct {
	flow Flow
}

func NewAssembler(flow Flow) *Assembler {
	return &Assembler{flow: flow}
}

// Assemble returns the parts in fixed order: system instruction, uploaded
// parts, raw text, rendered template. It fails with NoContentError when
// there is neither uploaded content nor raw text.
func (a *Assembler) Assemble(req Request) ([]domain.ContentPart, error) {
	rawText := strings.TrimSpace(req.RawText)
	if len(req.Uploaded) == 0 && rawText == "" {
		return nil, domain.NoContentError("provide text or upload a file to adapt")
	}

	rendered, err := a.Render(req.Need, req.ExtraInstructions)
	if err != nil {
		return nil, err
	}

	parts := make([]domain.ContentPart, 0, len(req.Uploaded)+3)
	parts = append(parts, domain.TextPart(a.flow.SystemInstruction))
	parts = append(parts, req.Uploaded...)
	if rawText != "" {
		parts = append(parts, domain.TextPart(a.flow.RawTextPrefix+rawText))
	}
	parts = append(parts, domain.TextPart(rendered))
	return parts, nil
}

// Render fills the flow template for a need category.
func (a *Assembler) Render(need NeedCategory, extra string) (string, error) {
	profile := a.flow.Guidelines.Profile(need)

	extra = strings.TrimSpace(extra)
	if extra == "" {
		extra = a.flow.NoneProvided
	}

	var sb strings.Builder
	err := a.flow.template.Execute(&sb, templateData{
		Label:      profile.Category.Label(),
		ShortName:  profile.ShortName,
		Guidelines: profile.Guidelines,
		Extra:      extra,
	})
	if err != nil {
		return "", domain.NewError(domain.ErrorTypeConfig, "failed to render "+a.flow.Name+" template", err)
	}
	return sb.String(), nil
}
