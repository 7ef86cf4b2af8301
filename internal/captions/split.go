// Package captions turns a free-text description into a fixed number of
// caption strings: a hook followed by evenly bucketed detail captions.
package captions

import (
	"fmt"
	"strings"
)

// MaxWords is the longest caption before it is clipped
const MaxWords = 8

// Ellipsis marks a clipped caption
const Ellipsis = "…"

// Split returns exactly n captions for text. Caption 0 is the upper-cased
// first sentence; the remaining sentences are spread over n-1 slots.
func Split(text string, n int, tok SentenceTokenizer) []string {
	return SplitWords(text, n, MaxWords, tok)
}

// SplitWords is Split with a custom word limit
func SplitWords(text string, n, maxWords int, tok SentenceTokenizer) []string {
	if n < 1 {
		return nil
	}
	if tok == nil {
		tok = RegexTokenizer{}
	}
	if maxWords < 1 {
		maxWords = MaxWords
	}

	text = strings.TrimSpace(text)
	if text == "" {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("CAPTION %d", i+1)
		}
		return out
	}

	sentences := tok.Sentences(text)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i, s := range sentences {
		sentences[i] = strings.ToUpper(stripTrailingPunct(s))
	}

	captions := make([]string, 0, n)
	captions = append(captions, sentences[0])
	rest := sentences[1:]
	slots := n - 1

	switch {
	case slots == 0:
	case len(rest) <= slots:
		captions = append(captions, rest...)
	default:
		bucket := float64(len(rest)) / float64(slots)
		for i := 0; i < slots; i++ {
			start := int(float64(i) * bucket)
			end := max(int(float64(i+1)*bucket), start+1)
			captions = append(captions, strings.Join(rest[start:end], " "))
		}
	}
	for len(captions) < n {
		captions = append(captions, "")
	}

	for i, c := range captions {
		captions[i] = clipWords(c, maxWords)
	}
	return captions
}

func stripTrailingPunct(s string) string {
	return strings.TrimRight(strings.TrimRight(s, ".!?"), " \t\n")
}

func clipWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ") + Ellipsis
}

// Describe labels captions for previews: the hook first, then numbered details
func Describe(captions []string) []string {
	out := make([]string, len(captions))
	for i, c := range captions {
		tag := "hook"
		if i > 0 {
			tag = fmt.Sprintf("detail %d", i)
		}
		out[i] = fmt.Sprintf("%d [%s] %s", i+1, tag, c)
	}
	return out
}
