package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/curated"
	"github.com/devpath/resourced/internal/feeds"
	"github.com/devpath/resourced/internal/langfilter"
	"github.com/devpath/resourced/internal/pipeline"
	"github.com/devpath/resourced/internal/search"
	"github.com/devpath/resourced/internal/snapshot"
)

// buildService wires the full sourcing stack: curated store, adapters,
// pipeline, persistence and the snapshot service.
func buildService(cfg *config.Config, log *zap.Logger) (*snapshot.Service, *snapshot.Store, error) {
	cur, err := curated.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading curated dataset: %w", err)
	}

	store, err := snapshot.OpenStore(dbPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening snapshot store: %w", err)
	}

	timeout := cfg.FetchTimeoutDuration()
	pipe := pipeline.New(
		cfg,
		cur,
		feeds.New(timeout, log),
		search.New(cfg.SearchURL(), timeout, langfilter.English{}, log),
		log,
	)

	return snapshot.NewService(cfg, pipe, store, cur, log), store, nil
}
