// Package search queries an instant-answer service when the curated and
// feed tiers under-supply a category. The service's JSON is consumed
// defensively: absent fields mean "nothing there", never an error.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devpath/resourced/internal/langfilter"
	"github.com/devpath/resourced/internal/resource"
)

const (
	maxQueries       = 3
	maxRelatedTopics = 2
	maxWebResults    = 2

	sourceLabel = "fallback-search"
)

type answerDoc struct {
	Heading        string    `json:"Heading"`
	AbstractText   string    `json:"AbstractText"`
	AbstractURL    string    `json:"AbstractURL"`
	AbstractSource string    `json:"AbstractSource"`
	RelatedTopics  []docItem `json:"RelatedTopics"`
	Results        []docItem `json:"Results"`
}

type docItem struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

type Client struct {
	endpoint  string
	timeout   time.Duration
	heuristic langfilter.Heuristic
	client    *http.Client
	log       *zap.Logger
}

func New(endpoint string, timeout time.Duration, h langfilter.Heuristic, log *zap.Logger) *Client {
	return &Client{
		endpoint:  endpoint,
		timeout:   timeout,
		heuristic: h,
		client:    &http.Client{},
		log:       log,
	}
}

// Fetch issues one query per keyword (first three keywords, each padded
// into a learning-oriented phrase) and merges whatever comes back. Each
// query has its own timeout and its failure never aborts the others.
func (c *Client) Fetch(ctx context.Context, keywords []string) ([]resource.Resource, error) {
	if len(keywords) > maxQueries {
		keywords = keywords[:maxQueries]
	}

	var (
		mu  sync.Mutex
		out []resource.Resource
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQueries)

	for _, kw := range keywords {
		kw := kw
		g.Go(func() error {
			results, err := c.query(ctx, kw+" tutorial guide documentation")
			if err != nil {
				c.log.Warn("fallback search query failed",
					zap.String("keyword", kw),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			out = append(out, results...)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return out, nil
}

func (c *Client) query(ctx context.Context, q string) ([]resource.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	vals := u.Query()
	vals.Set("q", q)
	vals.Set("format", "json")
	vals.Set("no_html", "1")
	u.RawQuery = vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var doc answerDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding answer: %w", err)
	}
	return c.extract(doc), nil
}

// extract pulls the abstract, related topics and general web results
// out of one answer document. Missing sections are simply skipped.
func (c *Client) extract(doc answerDoc) []resource.Resource {
	var out []resource.Resource

	if doc.Heading != "" && doc.AbstractURL != "" && c.heuristic.Acceptable(doc.Heading) {
		out = append(out, resource.Resource{
			Title:      doc.Heading,
			Link:       doc.AbstractURL,
			Snippet:    doc.AbstractText,
			Type:       resource.Documentation,
			Difficulty: resource.Intermediate,
			Free:       true,
			Source:     sourceLabel,
		})
	}

	out = append(out, items(doc.RelatedTopics, maxRelatedTopics, resource.Beginner)...)
	out = append(out, items(doc.Results, maxWebResults, resource.Intermediate)...)
	return out
}

func items(list []docItem, limit int, difficulty resource.Difficulty) []resource.Resource {
	var out []resource.Resource
	for _, it := range list {
		if len(out) >= limit {
			break
		}
		if it.Text == "" || it.FirstURL == "" {
			continue
		}
		title, snippet := splitText(it.Text)
		out = append(out, resource.Resource{
			Title:      title,
			Link:       it.FirstURL,
			Snippet:    snippet,
			Type:       resource.WebResource,
			Difficulty: difficulty,
			Free:       true,
			Source:     sourceLabel,
		})
	}
	return out
}

// splitText divides an instant-answer item's "Title - description"
// text into the two snapshot fields. Without a separator, the whole
// text serves as both.
func splitText(text string) (title, snippet string) {
	if idx := strings.Index(text, " - "); idx > 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+3:])
	}
	return text, text
}
