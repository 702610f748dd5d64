// Package pipeline generates a category's resource snapshot by walking
// the sourcing tiers: curated seed, feed escalation, fallback search
// escalation, then a finalize pass that filters, dedupes, shuffles and
// pads to the target count.
package pipeline

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/curated"
	"github.com/devpath/resourced/internal/langfilter"
	"github.com/devpath/resourced/internal/resource"
)

// FeedSource supplies feed-tier candidates for a category.
type FeedSource interface {
	Fetch(ctx context.Context, feeds []config.Feed, keywords []string) ([]resource.Resource, error)
}

// SearchSource supplies fallback-search-tier candidates.
type SearchSource interface {
	Fetch(ctx context.Context, keywords []string) ([]resource.Resource, error)
}

type Pipeline struct {
	cfg       *config.Config
	curated   *curated.Store
	feeds     FeedSource
	search    SearchSource
	heuristic langfilter.Heuristic
	log       *zap.Logger

	// shuffle randomizes final ordering to avoid source bias. Injected
	// so tests can pin ordering.
	shuffle func([]resource.Resource)
}

func New(cfg *config.Config, store *curated.Store, feeds FeedSource, search SearchSource, log *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		curated:   store,
		feeds:     feeds,
		search:    search,
		heuristic: langfilter.English{},
		log:       log,
		shuffle: func(rs []resource.Resource) {
			rand.Shuffle(len(rs), func(i, j int) {
				rs[i], rs[j] = rs[j], rs[i]
			})
		},
	}
}

// SetShuffle replaces the ordering step. Test hook.
func (p *Pipeline) SetShuffle(fn func([]resource.Resource)) {
	p.shuffle = fn
}

// SetHeuristic replaces the acceptability heuristic.
func (p *Pipeline) SetHeuristic(h langfilter.Heuristic) {
	p.heuristic = h
}

// Generate runs the full tier sequence for one category. It never
// fails: adapter errors degrade to zero candidates from that tier, and
// the absolute worst case is the curated base output.
//
// Escalation decisions intentionally compare raw, pre-filter candidate
// counts against the thresholds; filtering happens only in finalize.
func (p *Pipeline) Generate(ctx context.Context, cat config.Category) resource.CategorySnapshot {
	// Seed
	candidates := p.curated.Base(cat.Key)

	// Escalate1: feeds
	if len(candidates) < p.cfg.FeedThresholdFor(cat) {
		fetched, err := p.feeds.Fetch(ctx, p.cfg.FeedsFor(cat), cat.Keywords)
		if err != nil {
			p.log.Warn("feed tier failed, continuing without it",
				zap.String("category", cat.Key),
				zap.Error(err))
		} else {
			candidates = append(candidates, fetched...)
		}
	}

	// Escalate2: fallback search
	if len(candidates) < p.cfg.SearchThresholdFor(cat) {
		found, err := p.search.Fetch(ctx, cat.Keywords)
		if err != nil {
			p.log.Warn("search tier failed, continuing without it",
				zap.String("category", cat.Key),
				zap.Error(err))
		} else {
			candidates = append(candidates, found...)
		}
	}

	return p.finalize(cat, candidates)
}

func (p *Pipeline) finalize(cat config.Category, candidates []resource.Resource) resource.CategorySnapshot {
	target := p.cfg.TargetCount()

	kept := make([]resource.Resource, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.Link == "" || seen[c.Link] {
			continue
		}
		if !p.heuristic.Acceptable(c.Title) || !p.heuristic.Acceptable(c.Snippet) {
			continue
		}
		seen[c.Link] = true
		kept = append(kept, langfilter.Normalize(c))
	}

	p.shuffle(kept)

	if len(kept) > target {
		kept = kept[:target]
	}

	var prov resource.Provenance
	for _, r := range kept {
		switch r.Source {
		case "curated":
			prov.Curated++
		case "fallback-search":
			prov.Search++
		default:
			prov.Feeds++
		}
	}

	// Pad from the supplemental pool. Running it dry is the one case
	// where a snapshot may come up short.
	if len(kept) < target {
		for _, s := range p.curated.Supplemental(cat.Key) {
			if len(kept) >= target {
				break
			}
			if s.Link == "" || seen[s.Link] {
				continue
			}
			if !p.heuristic.Acceptable(s.Title) || !p.heuristic.Acceptable(s.Snippet) {
				continue
			}
			seen[s.Link] = true
			kept = append(kept, langfilter.Normalize(s))
			prov.Padded++
		}
	}

	return resource.CategorySnapshot{
		Category:    cat.Key,
		Resources:   kept,
		GeneratedAt: time.Now(),
		Provenance:  prov,
	}
}
