// Package feeds pulls candidate resources out of syndication feeds.
package feeds

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/resource"
)

// perFeedCap bounds how many items one feed may contribute.
const perFeedCap = 5

type Adapter struct {
	parser  *gofeed.Parser
	timeout time.Duration
	log     *zap.Logger
}

func New(timeout time.Duration, log *zap.Logger) *Adapter {
	return &Adapter{
		parser:  gofeed.NewParser(),
		timeout: timeout,
		log:     log,
	}
}

// Fetch consults each feed concurrently and returns items whose title
// matches at least one keyword. A feed that times out, returns a bad
// status, or fails to parse contributes nothing; it never aborts the
// other feeds.
func (a *Adapter) Fetch(ctx context.Context, feedList []config.Feed, keywords []string) ([]resource.Resource, error) {
	var (
		mu  sync.Mutex
		out []resource.Resource
		wg  sync.WaitGroup
	)

	for _, f := range feedList {
		wg.Add(1)
		go func(f config.Feed) {
			defer wg.Done()
			items, err := a.fetchOne(ctx, f, keywords)
			if err != nil {
				a.log.Warn("feed fetch failed",
					zap.String("feed", f.ID),
					zap.Error(err))
				return
			}
			mu.Lock()
			out = append(out, items...)
			mu.Unlock()
		}(f)
	}

	wg.Wait()
	return out, nil
}

func (a *Adapter) fetchOne(ctx context.Context, f config.Feed, keywords []string) ([]resource.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	parsed, err := a.parser.ParseURLWithContext(f.URL, ctx)
	if err != nil {
		return nil, err
	}

	var out []resource.Resource
	for _, item := range parsed.Items {
		if len(out) >= perFeedCap {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		if !matchesKeyword(item.Title, keywords) {
			continue
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		r := resource.Resource{
			Title:      strings.TrimSpace(item.Title),
			Link:       item.Link,
			Snippet:    stripHTML(desc),
			Type:       resource.BlogPost,
			Difficulty: resource.Intermediate,
			Free:       true,
			Verified:   true,
			Source:     f.ID,
		}
		if item.Author != nil {
			r.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			r.Published = item.PublishedParsed
		}
		out = append(out, r)
	}
	return out, nil
}

func matchesKeyword(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
