// Package readability computes reading-ease, grade-level and lexical
// diversity metrics and classifies each into a qualitative band.
package readability

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/incluia/assessment-adapter/internal/domain"
)

// DefaultMinTokens is the shortest text, in whitespace tokens, that is scored.
const DefaultMinTokens = 20

// Analyzer scores texts of at least MinTokens whitespace tokens.
type Analyzer struct {
	MinTokens int
}

// New returns an analyzer; a non-positive minTokens selects DefaultMinTokens.
func New(minTokens int) *Analyzer {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	return &Analyzer{MinTokens: minTokens}
}

// Analyze scores text with the default analyzer.
func Analyze(text string) (*domain.ReadabilityReport, error) {
	return New(DefaultMinTokens).Analyze(text)
}

// Analyze returns the four metrics, each rounded to two decimals and banded.
// Short texts yield InsufficientTextError and no report.
func (a *Analyzer) Analyze(text string) (*domain.ReadabilityReport, error) {
	tokens := strings.Fields(text)
	if len(tokens) < a.MinTokens {
		return nil, domain.InsufficientTextError(
			fmt.Sprintf("text has %d words, at least %d are needed for readability analysis", len(tokens), a.MinTokens))
	}

	s := measure(text)

	ease := round2(206.835 - 1.015*s.wordsPerSentence() - 84.6*s.syllablesPerWord())
	grade := round2(0.39*s.wordsPerSentence() + 11.8*s.syllablesPerWord() - 15.59)
	smog := round2(s.smog())
	diversity := round2(lexicalDiversity(tokens))

	return &domain.ReadabilityReport{
		ReadingEase:      domain.Metric{Value: ease, Band: ReadingEaseBand(ease)},
		GradeLevel:       domain.Metric{Value: grade, Band: GradeLevelBand(grade)},
		SMOGGrade:        domain.Metric{Value: smog, Band: SMOGBand(smog)},
		LexicalDiversity: domain.Metric{Value: diversity, Band: LexicalDiversityBand(diversity)},
	}, nil
}

// Evaluate wraps Analyze into an outcome value.
func (a *Analyzer) Evaluate(text string) domain.ReadabilityOutcome {
	report, err := a.Analyze(text)
	return domain.ReadabilityOutcome{Report: report, Err: err}
}

type stats struct {
	words         int
	sentences     int
	syllables     int
	polysyllables int
}

func (s stats) wordsPerSentence() float64 {
	return float64(s.words) / float64(s.sentences)
}

func (s stats) syllablesPerWord() float64 {
	if s.words == 0 {
		return 0
	}
	return float64(s.syllables) / float64(s.words)
}

// smog is 0 for texts with fewer than three sentences.
func (s stats) smog() float64 {
	if s.sentences < 3 {
		return 0
	}
	return 1.043*math.Sqrt(float64(s.polysyllables)*(30/float64(s.sentences))) + 3.1291
}

func measure(text string) stats {
	words := lexicon(text)
	st := stats{words: len(words), sentences: countSentences(text)}
	for _, w := range words {
		n := countSyllables(w)
		st.syllables += n
		if n >= 3 {
			st.polysyllables++
		}
	}
	return st
}

// lexicon returns the whitespace tokens with punctuation removed, dropping
// tokens that were punctuation only.
func lexicon(text string) []string {
	var words []string
	for _, tok := range strings.Fields(text) {
		w := strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, tok)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

var sentencePattern = regexp.MustCompile(`\b[^.!?]+[.!?]*`)

// countSentences counts sentences of more than two words, at least one.
func countSentences(text string) int {
	n := 0
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if len(lexicon(s)) > 2 {
			n++
		}
	}
	if n < 1 {
		return 1
	}
	return n
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiouyáàâãéêíóôõúü", r)
}

// countSyllables approximates syllables as vowel groups, at least one per
// word that contains a letter.
func countSyllables(word string) int {
	groups := 0
	prevVowel := false
	hasLetter := false
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		v := isVowel(r)
		if v && !prevVowel {
			groups++
		}
		prevVowel = v
	}
	if groups == 0 && hasLetter {
		return 1
	}
	return groups
}

// lexicalDiversity is distinct tokens over total tokens, case-sensitive and
// punctuation-inclusive.
func lexicalDiversity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	return float64(len(seen)) / float64(len(tokens))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
