package prompt

import "strings"

// NeedCategory is a student's special educational need (NEE). The set is
// closed; anything unrecognised resolves to NeedUnspecified.
type NeedCategory int

const (
	NeedUnspecified NeedCategory = iota
	NeedAutism
	NeedADHD
	NeedIntellectual
	NeedVisual
	NeedHearing
	NeedDyslexia
	NeedDyscalculia
	NeedGifted
)

type needInfo struct {
	slug    string
	label   string
	aliases []string
}

var needs = [...]needInfo{
	NeedUnspecified:  {"unspecified", "Não especificado", []string{"nao especificado", "none", "nee"}},
	NeedAutism:       {"autism", "Transtorno do Espectro Autista (TEA)", []string{"tea", "asd", "autismo"}},
	NeedADHD:         {"adhd", "Transtorno do Déficit de Atenção com Hiperatividade (TDAH)", []string{"tdah"}},
	NeedIntellectual: {"intellectual", "Deficiência Intelectual", []string{"di", "intellectual disability"}},
	NeedVisual:       {"visual", "Deficiência Visual", []string{"dv", "visual impairment"}},
	NeedHearing:      {"hearing", "Deficiência Auditiva", []string{"da", "hearing impairment"}},
	NeedDyslexia:     {"dyslexia", "Dislexia", nil},
	NeedDyscalculia:  {"dyscalculia", "Discalculia", nil},
	NeedGifted:       {"gifted", "Altas Habilidades/Superdotação", []string{"ah/sd", "giftedness", "superdotacao"}},
}

// AllNeeds lists every category in display order.
func AllNeeds() []NeedCategory {
	out := make([]NeedCategory, len(needs))
	for i := range needs {
		out[i] = NeedCategory(i)
	}
	return out
}

func (c NeedCategory) valid() bool {
	return c >= 0 && int(c) < len(needs)
}

// Slug is the stable identifier used on the command line and in the API.
func (c NeedCategory) Slug() string {
	if !c.valid() {
		return needs[NeedUnspecified].slug
	}
	return needs[c].slug
}

// Label is the full Portuguese name shown to teachers and used in prompts.
func (c NeedCategory) Label() string {
	if !c.valid() {
		return needs[NeedUnspecified].label
	}
	return needs[c].label
}

func (c NeedCategory) String() string { return c.Slug() }

// ParseNeedCategory resolves a slug, a display label or a known alias,
// ignoring case and surrounding space. It never fails.
func ParseNeedCategory(s string) NeedCategory {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return NeedUnspecified
	}
	for i, n := range needs {
		if key == n.slug || key == strings.ToLower(n.label) {
			return NeedCategory(i)
		}
		for _, a := range n.aliases {
			if key == a {
				return NeedCategory(i)
			}
		}
	}
	return NeedUnspecified
}

// NeedProfile is the guideline record of one category within a flow.
type NeedProfile struct {
	Category   NeedCategory
	ShortName  string
	Guidelines string
}

// GuidelineTable maps categories to profiles. Lookups of missing categories
// return the NeedUnspecified entry.
type GuidelineTable map[NeedCategory]NeedProfile

// Profile returns the profile for c, falling back to NeedUnspecified.
func (t GuidelineTable) Profile(c NeedCategory) NeedProfile {
	if p, ok := t[c]; ok {
		return p
	}
	return t[NeedUnspecified]
}

// AppendSuggestion adds a quick suggestion to the teacher's extra
// instructions, comma separated.
func AppendSuggestion(current, suggestion string) string {
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return current
	}
	if strings.TrimSpace(current) == "" {
		return suggestion
	}
	return current + ", " + suggestion
}
