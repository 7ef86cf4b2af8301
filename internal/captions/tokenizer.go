package captions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceTokenizer splits free text into sentences
type SentenceTokenizer interface {
	Name() string
	Sentences(text string) []string
}

// PunktTokenizer is the language-aware splitter (English Punkt model)
type PunktTokenizer struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktTokenizer loads the bundled English model
func NewPunktTokenizer() (tok *PunktTokenizer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("punkt model: %v", r)
		}
	}()

	t, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("punkt model: %w", err)
	}
	return &PunktTokenizer{tok: t}, nil
}

// Name identifies the engine in logs and previews
func (p *PunktTokenizer) Name() string { return "punkt" }

// Sentences returns trimmed, non-empty sentences. Each Punkt sentence is split
// again on the regex boundary so initials like "A. B." never merge.
func (p *PunktTokenizer) Sentences(text string) []string {
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		out = append(out, RegexTokenizer{}.Sentences(s.Text)...)
	}
	return out
}

// boundary is terminal punctuation, whitespace, then an upper-case letter or digit
var boundary = regexp.MustCompile(`[.!?]\s+[A-Z0-9]`)

// RegexTokenizer is the deterministic fallback splitter
type RegexTokenizer struct{}

// Name identifies the engine in logs and previews
func (RegexTokenizer) Name() string { return "regex" }

// Sentences splits after terminal punctuation that is followed by whitespace
// and a capital letter or digit
func (RegexTokenizer) Sentences(text string) []string {
	var out []string
	start := 0
	for _, m := range boundary.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : m[0]+1]); s != "" {
			out = append(out, s)
		}
		// next sentence begins at the capital/digit
		start = m[1] - 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// DetectTokenizer picks the preferred engine once: Punkt when it loads, else regex
func DetectTokenizer() (SentenceTokenizer, error) {
	p, err := NewPunktTokenizer()
	if err != nil {
		return RegexTokenizer{}, err
	}
	return p, nil
}
