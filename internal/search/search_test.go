package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/langfilter"
	"github.com/devpath/resourced/internal/resource"
)

func answerServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, langfilter.English{}, zap.NewNop())
}

func fullAnswer() map[string]any {
	return map[string]any{
		"Heading":      "Go (programming language)",
		"AbstractText": "Go is a statically typed, compiled language designed at Google.",
		"AbstractURL":  "https://en.wikipedia.org/wiki/Go_(programming_language)",
		"RelatedTopics": []map[string]any{
			{"Text": "Goroutines - Lightweight threads managed by the Go runtime.", "FirstURL": "https://example.com/goroutines"},
			{"Text": "Go modules - Dependency management for Go projects.", "FirstURL": "https://example.com/modules"},
			{"Text": "A third topic that should be cut by the cap.", "FirstURL": "https://example.com/third"},
		},
		"Results": []map[string]any{
			{"Text": "Go by Example - Hands-on introduction using annotated programs.", "FirstURL": "https://gobyexample.com"},
		},
	}
}

func TestFetchExtractsAllSections(t *testing.T) {
	c := answerServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fullAnswer())
	})

	got, err := c.Fetch(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// 1 abstract + 2 related (capped) + 1 general result
	if len(got) != 4 {
		t.Fatalf("expected 4 resources, got %d: %+v", len(got), got)
	}

	abstract := got[0]
	if abstract.Type != resource.Documentation || abstract.Difficulty != resource.Intermediate {
		t.Errorf("abstract should be documentation/intermediate, got %s/%s", abstract.Type, abstract.Difficulty)
	}
	if abstract.Source != sourceLabel {
		t.Errorf("expected source %q, got %q", sourceLabel, abstract.Source)
	}

	related := got[1]
	if related.Type != resource.WebResource || related.Difficulty != resource.Beginner {
		t.Errorf("related topic should be web-resource/beginner, got %s/%s", related.Type, related.Difficulty)
	}
	if related.Title != "Goroutines" {
		t.Errorf("expected split title, got %q", related.Title)
	}
}

func TestFetchHandlesMissingFields(t *testing.T) {
	c := answerServer(t, func(w http.ResponseWriter, r *http.Request) {
		// No abstract, no results, one related topic missing its URL.
		json.NewEncoder(w).Encode(map[string]any{
			"RelatedTopics": []map[string]any{{"Text": "Orphaned text"}},
		})
	})

	got, err := c.Fetch(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no resources from an empty answer, got %d", len(got))
	}
}

func TestFetchSkipsNonEnglishAbstract(t *testing.T) {
	c := answerServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Heading":     "Go言語",
			"AbstractURL": "https://example.com/go",
		})
	})

	got, err := c.Fetch(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected non-English abstract to be skipped, got %d resources", len(got))
	}
}

func TestFetchCapsQueriesAtThree(t *testing.T) {
	var calls atomic.Int32
	c := answerServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{})
	})

	_, err := c.Fetch(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := calls.Load(); got != maxQueries {
		t.Errorf("expected %d queries, got %d", maxQueries, got)
	}
}

func TestFetchIsolatesQueryFailures(t *testing.T) {
	var calls atomic.Int32
	c := answerServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(fullAnswer())
	})

	got, err := c.Fetch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) == 0 {
		t.Error("expected the surviving query to contribute resources")
	}
}

func TestFetchTimesOut(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, "{}")
	}))
	t.Cleanup(slow.Close)

	c := New(slow.URL, 50*time.Millisecond, langfilter.English{}, zap.NewNop())
	got, err := c.Fetch(context.Background(), []string{"golang"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected nothing from a timed-out query, got %d", len(got))
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		in          string
		wantTitle   string
		wantSnippet string
	}{
		{"Title - A description", "Title", "A description"},
		{"No separator here", "No separator here", "No separator here"},
		{"A - B - C", "A", "B - C"},
	}
	for _, tt := range tests {
		title, snippet := splitText(tt.in)
		if title != tt.wantTitle || snippet != tt.wantSnippet {
			t.Errorf("splitText(%q) = (%q, %q), want (%q, %q)",
				tt.in, title, snippet, tt.wantTitle, tt.wantSnippet)
		}
	}
}
