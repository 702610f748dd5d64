package langfilter

import (
	"strings"
	"testing"

	"github.com/devpath/resourced/internal/resource"
)

func TestAcceptableShortTitles(t *testing.T) {
	h := English{}
	tests := []string{
		"A Tour of Go",
		"SQLBolt",
		"Zxqv Wbfk Qjd", // gibberish, but short titles pass by default
		"",
	}
	for _, text := range tests {
		if !h.Acceptable(text) {
			t.Errorf("Acceptable(%q) = false, want true", text)
		}
	}
}

func TestRejectsBlockedScripts(t *testing.T) {
	h := English{}
	tests := []string{
		"JavaScriptの完全ガイド",
		"Учебник по программированию",
		"파이썬 튜토리얼",
		"دليل البرمجة",
		"Go语言入门教程",
	}
	for _, text := range tests {
		if h.Acceptable(text) {
			t.Errorf("Acceptable(%q) = true, want false", text)
		}
	}
}

func TestRejectsBlockedScriptEvenWhenShort(t *testing.T) {
	h := English{}
	// Under the short-text threshold, but the blocklist runs first.
	if h.Acceptable("入門") {
		t.Error("expected blocked script to reject regardless of length")
	}
}

func TestVocabularyRatio(t *testing.T) {
	h := English{}

	long := "Learn how to build a complete web application with modern JavaScript and a bit of patience"
	if !h.Acceptable(long) {
		t.Errorf("expected English sentence to pass: %q", long)
	}

	// Long Latin-script text with no recognizable vocabulary.
	gibberish := strings.Repeat("zxqv wbfk qjdr mntp ", 4)
	if h.Acceptable(gibberish) {
		t.Errorf("expected gibberish to fail: %q", gibberish)
	}
}

func TestNormalizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	r := Normalize(resource.Resource{Title: long, Snippet: long})

	if got := len([]rune(r.Title)); got != MaxTitleLen {
		t.Errorf("title length = %d, want %d", got, MaxTitleLen)
	}
	if !strings.HasSuffix(r.Title, "...") {
		t.Error("expected truncated title to end with ellipsis")
	}
	if got := len([]rune(r.Snippet)); got != MaxSnippetLen {
		t.Errorf("snippet length = %d, want %d", got, MaxSnippetLen)
	}
	if !strings.HasSuffix(r.Snippet, "...") {
		t.Error("expected truncated snippet to end with ellipsis")
	}
}

func TestNormalizeLeavesShortFieldsAlone(t *testing.T) {
	r := Normalize(resource.Resource{Title: "Short", Snippet: "Also short"})
	if r.Title != "Short" || r.Snippet != "Also short" {
		t.Errorf("unexpected mutation: %+v", r)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	// Multi-byte runes must not be split.
	in := strings.Repeat("é", 100)
	got := truncate(in, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("expected 10 runes, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}
