// Package response splits the model's free-text reply into named sections
// using the literal marker lines the model is instructed to emit.
package response

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// Section names a part of a split reply.
type Section string

const (
	SectionContent       Section = "adapted_content"
	SectionImagePrompt   Section = "image_prompt"
	SectionDescription   Section = "description"
	SectionJustification Section = "justification"
)

// Marker lines of the reply protocol.
const (
	MarkerJustification = "# Justificativas:"
	MarkerDescription   = "# Descrição da Imagem:"
	MarkerImagePrompt   = "# Prompt da Imagem:"
)

// Sentinels stored in place of missing sections.
const (
	NoJustification       = "Nenhuma justificativa explícita fornecida pela IA."
	NoAdaptedContent      = "Nenhum conteúdo adaptado fornecido pela IA."
	InspectRawDescription = "Verifique resposta bruta para descrição."
	InspectRawJustify     = "Verifique resposta bruta para justificativas."
	PromptNotGenerated    = "Não gerado."
)

// Step moves the splitter to Section once Marker has been consumed.
type Step struct {
	Marker  string
	Section Section
}

// Layout is an ordered marker sequence. Text before the first marker belongs
// to First; after each Step the remainder belongs to Step.Section.
type Layout struct {
	Name  string
	First Section
	// Lead is a label removed from the first segment, if present.
	Lead  string
	Steps []Step
	// Fallback builds the best-effort sections when any marker is missing
	// or any section is empty.
	Fallback func(raw string, m matcher) map[Section]string
}

// AdaptationLayout: adapted content, "# Justificativas:", justification.
var AdaptationLayout = Layout{
	Name:  "adaptation",
	First: SectionContent,
	Steps: []Step{{Marker: MarkerJustification, Section: SectionJustification}},
	Fallback: func(raw string, m matcher) map[Section]string {
		out := map[Section]string{SectionContent: raw, SectionJustification: NoJustification}
		// Marker present but one side empty.
		if start, end := m.find(raw, MarkerJustification); start >= 0 {
			content := strings.TrimSpace(raw[:start])
			just := strings.TrimSpace(raw[end:])
			out[SectionContent] = orDefault(content, NoAdaptedContent)
			out[SectionJustification] = orDefault(just, NoJustification)
		}
		return out
	},
}

// IllustrationLayout: "# Prompt da Imagem:", prompt, "# Descrição da Imagem:",
// description, "# Justificativas:", justification.
var IllustrationLayout = Layout{
	Name:  "illustration",
	First: SectionImagePrompt,
	Lead:  MarkerImagePrompt,
	Steps: []Step{
		{Marker: MarkerDescription, Section: SectionDescription},
		{Marker: MarkerJustification, Section: SectionJustification},
	},
	Fallback: func(raw string, m matcher) map[Section]string {
		prompt := raw
		if _, end := m.find(raw, MarkerImagePrompt); end >= 0 {
			prompt = raw[end:]
			if i := strings.Index(prompt, "#"); i >= 0 {
				prompt = prompt[:i]
			}
		}
		return map[Section]string{
			SectionImagePrompt:   orDefault(strings.TrimSpace(prompt), PromptNotGenerated),
			SectionDescription:   InspectRawDescription,
			SectionJustification: InspectRawJustify,
		}
	},
}

// Result holds the split sections. Every section of the layout is present
// and non-empty. Issue is a MalformedResponseError when the fallback ran.
type Result struct {
	Sections map[Section]string
	Raw      string
	Issue    error
}

// Get returns a section's text.
func (r *Result) Get(s Section) string {
	return r.Sections[s]
}

// Splitter parses replies. In lenient mode markers are also recognised with
// markdown decorations and in any letter case.
type Splitter struct {
	match matcher
}

func NewSplitter(lenient bool) *Splitter {
	if lenient {
		return &Splitter{match: newLenientMatcher()}
	}
	return &Splitter{match: exactMatcher{}}
}

// Split walks the layout's markers in order. A blank reply fails with
// EmptyResponseError; a malformed one never fails and is reported through
// Result.Issue instead.
func (s *Splitter) Split(reply string, layout Layout) (*Result, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, domain.EmptyResponseError("model returned an empty reply")
	}
	raw := strings.TrimSpace(reply)

	sections, problem := s.walk(raw, layout)
	if problem == "" {
		return &Result{Sections: sections, Raw: raw}, nil
	}

	return &Result{
		Sections: layout.Fallback(raw, s.match),
		Raw:      raw,
		Issue:    domain.MalformedResponseError(fmt.Sprintf("%s reply: %s", layout.Name, problem)),
	}, nil
}

func (s *Splitter) walk(raw string, layout Layout) (map[Section]string, string) {
	sections := make(map[Section]string, len(layout.Steps)+1)
	current := layout.First
	remainder := raw

	for _, step := range layout.Steps {
		start, end := s.match.find(remainder, step.Marker)
		if start < 0 {
			return nil, fmt.Sprintf("marker %q not found", step.Marker)
		}
		sections[current] = remainder[:start]
		remainder = remainder[end:]
		current = step.Section
	}
	sections[current] = remainder

	if layout.Lead != "" {
		sections[layout.First] = s.match.strip(sections[layout.First], layout.Lead)
	}

	for _, name := range layout.order() {
		sections[name] = strings.TrimSpace(sections[name])
		if sections[name] == "" {
			return nil, fmt.Sprintf("section %s is empty", name)
		}
	}
	return sections, ""
}

func (l Layout) order() []Section {
	out := []Section{l.First}
	for _, s := range l.Steps {
		out = append(out, s.Section)
	}
	return out
}

// SplitAdaptation parses a reply of the adaptation flow.
func (s *Splitter) SplitAdaptation(reply string) (*domain.AdaptationResult, error) {
	res, err := s.Split(reply, AdaptationLayout)
	if err != nil {
		return nil, err
	}
	return &domain.AdaptationResult{
		AdaptedContent: res.Get(SectionContent),
		Justification:  res.Get(SectionJustification),
		Raw:            res.Raw,
		Issue:          res.Issue,
	}, nil
}

// SplitIllustration parses a reply of the illustration flow.
func (s *Splitter) SplitIllustration(reply string) (*domain.IllustrationResult, error) {
	res, err := s.Split(reply, IllustrationLayout)
	if err != nil {
		return nil, err
	}
	return &domain.IllustrationResult{
		ImagePrompt:   res.Get(SectionImagePrompt),
		Description:   res.Get(SectionDescription),
		Justification: res.Get(SectionJustification),
		Raw:           res.Raw,
		Issue:         res.Issue,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// matcher locates marker occurrences. find returns the byte span of the
// first occurrence or (-1, -1).
type matcher interface {
	find(text, marker string) (start, end int)
	strip(text, marker string) string
}

type exactMatcher struct{}

func (exactMatcher) find(text, marker string) (int, int) {
	i := strings.Index(text, marker)
	if i < 0 {
		return -1, -1
	}
	return i, i + len(marker)
}

func (exactMatcher) strip(text, marker string) string {
	return strings.ReplaceAll(text, marker, "")
}

// lenientMatcher accepts "## Justificativas:", "**Justificativas:**",
// "JUSTIFICATIVAS" alone on a line and similar decorations.
type lenientMatcher struct {
	patterns map[string]*regexp.Regexp
}

func newLenientMatcher() *lenientMatcher {
	m := &lenientMatcher{patterns: make(map[string]*regexp.Regexp)}
	for _, marker := range []string{MarkerJustification, MarkerDescription, MarkerImagePrompt} {
		m.patterns[marker] = lenientPattern(marker)
	}
	return m
}

func lenientPattern(marker string) *regexp.Regexp {
	label := strings.TrimSuffix(strings.TrimPrefix(marker, "# "), ":")
	const deco = `(?:\*\*|__)?`
	return regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?` + deco + `[ \t]*` + regexp.QuoteMeta(label) +
		`[ \t]*` + deco + `[ \t]*(?::[ \t]*` + deco + `|$)`)
}

func (m *lenientMatcher) pattern(marker string) *regexp.Regexp {
	if re, ok := m.patterns[marker]; ok {
		return re
	}
	return lenientPattern(marker)
}

func (m *lenientMatcher) find(text, marker string) (int, int) {
	loc := m.pattern(marker).FindStringIndex(text)
	if loc == nil {
		return -1, -1
	}
	return loc[0], loc[1]
}

func (m *lenientMatcher) strip(text, marker string) string {
	return m.pattern(marker).ReplaceAllString(text, "")
}
