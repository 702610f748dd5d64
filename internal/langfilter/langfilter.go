// Package langfilter screens candidate text for the snapshot pipeline.
// The check is a heuristic, not a language identifier: it rejects text
// containing non-Latin script characters, then accepts text that either
// matches enough common English/technical vocabulary or is short enough
// to be a title.
package langfilter

import (
	"strings"
	"unicode"

	"github.com/devpath/resourced/internal/resource"
)

const (
	// MaxTitleLen and MaxSnippetLen are the normalized field budgets.
	MaxTitleLen   = 80
	MaxSnippetLen = 150

	// Text shorter than this is accepted without a vocabulary check.
	shortTextLen = 50

	// Fraction of words that must match the vocabulary list.
	vocabRatio = 0.10
)

// Heuristic decides whether a piece of candidate text is acceptable.
// Swap the implementation for a real language-ID library without
// touching the pipeline.
type Heuristic interface {
	Acceptable(text string) bool
}

// English is the default Heuristic.
type English struct{}

// blockedScripts are ranges whose presence rejects text outright.
var blockedScripts = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Cyrillic,
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Devanagari,
	unicode.Thai,
	unicode.Bengali,
	unicode.Tamil,
}

// vocabulary mixes common English function words with the technical
// terms that dominate educational resource titles.
var vocabulary = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "from": true,
	"by": true, "at": true, "is": true, "are": true, "your": true, "you": true,
	"how": true, "what": true, "why": true, "when": true, "this": true,
	"that": true, "into": true, "using": true, "build": true, "building": true,
	"learn": true, "learning": true, "guide": true, "tutorial": true,
	"course": true, "introduction": true, "intro": true, "free": true,
	"complete": true, "beginner": true, "beginners": true, "advanced": true,
	"getting": true, "started": true, "step": true, "best": true,
	"practices": true, "modern": true, "examples": true, "example": true,
	"code": true, "coding": true, "programming": true, "developer": true,
	"development": true, "software": true, "web": true, "app": true,
	"application": true, "api": true, "data": true, "database": true,
	"server": true, "frontend": true, "backend": true, "fullstack": true,
	"javascript": true, "typescript": true, "python": true, "java": true,
	"golang": true, "rust": true, "html": true, "css": true, "sql": true,
	"react": true, "node": true, "docker": true, "kubernetes": true,
	"linux": true, "git": true, "cloud": true, "mobile": true,
	"android": true, "ios": true, "swift": true, "kotlin": true,
	"flutter": true, "testing": true, "debugging": true, "performance": true,
	"security": true, "design": true, "patterns": true, "architecture": true,
	"framework": true, "library": true, "tools": true, "projects": true,
	"project": true, "interactive": true, "exercises": true, "practice": true,
	"official": true, "documentation": true, "docs": true, "reference": true,
}

// Acceptable reports whether text passes the blocklist and vocabulary
// screens. Empty text is acceptable; emptiness is for the pipeline to
// judge, not the filter.
func (English) Acceptable(text string) bool {
	for _, r := range text {
		for _, script := range blockedScripts {
			if unicode.Is(script, r) {
				return false
			}
		}
	}

	runes := []rune(text)
	if len(runes) < shortTextLen {
		return true
	}

	words := tokenize(text)
	if len(words) == 0 {
		return false
	}
	hits := 0
	for _, w := range words {
		if vocabulary[w] {
			hits++
		}
	}
	return float64(hits)/float64(len(words)) > vocabRatio
}

// Normalize truncates a resource's title and snippet to their budgets,
// appending an ellipsis marker when text was cut.
func Normalize(r resource.Resource) resource.Resource {
	r.Title = truncate(r.Title, MaxTitleLen)
	r.Snippet = truncate(r.Snippet, MaxSnippetLen)
	return r
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
