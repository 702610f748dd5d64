// Package snapshot owns the in-memory snapshot cache and its refresh
// lifecycle. Reads are served from memory within the TTL; a cold read
// generates synchronously; the scheduler regenerates everything on a
// fixed interval.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/curated"
	"github.com/devpath/resourced/internal/langfilter"
	"github.com/devpath/resourced/internal/resource"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrRefreshInFlight = errors.New("refresh already in flight")
)

// refreshConcurrency bounds how many categories regenerate at once so
// a refresh cycle cannot saturate outbound network capacity.
const refreshConcurrency = 4

// Generator produces a snapshot for one category. Satisfied by
// pipeline.Pipeline.
type Generator interface {
	Generate(ctx context.Context, cat config.Category) resource.CategorySnapshot
}

// Service is the single owner of cached snapshots. Construct one at
// startup and hand it to the read-path handlers and the scheduler.
type Service struct {
	cfg     *config.Config
	gen     Generator
	store   *Store // optional persistence; may be nil
	curated *curated.Store
	ttl     time.Duration
	log     *zap.Logger

	mu    sync.RWMutex
	snaps map[string]resource.CategorySnapshot

	group     singleflight.Group
	refreshMu sync.Mutex
}

func NewService(cfg *config.Config, gen Generator, store *Store, cur *curated.Store, log *zap.Logger) *Service {
	s := &Service{
		cfg:     cfg,
		gen:     gen,
		store:   store,
		curated: cur,
		ttl:     cfg.RefreshDuration(),
		log:     log,
		snaps:   make(map[string]resource.CategorySnapshot),
	}
	s.warm()
	return s
}

// warm seeds the in-memory cache from persisted snapshots. Staleness
// is fine; the TTL check at read time decides whether to regenerate.
func (s *Service) warm() {
	if s.store == nil {
		return
	}
	persisted, err := s.store.LoadAll()
	if err != nil {
		s.log.Warn("loading persisted snapshots failed", zap.Error(err))
		return
	}
	for _, snap := range persisted {
		if _, ok := s.cfg.CategoryByKey(snap.Category); !ok {
			continue
		}
		s.snaps[snap.Category] = snap
	}
	if len(persisted) > 0 {
		s.log.Info("warmed snapshot cache from disk", zap.Int("categories", len(s.snaps)))
	}
}

// Snapshot returns the cached snapshot for a category, generating it
// synchronously on a cold start or after TTL expiry. It only errors on
// an unknown category; generation itself cannot fail.
func (s *Service) Snapshot(ctx context.Context, key string) (resource.CategorySnapshot, error) {
	cat, ok := s.cfg.CategoryByKey(key)
	if !ok {
		return resource.CategorySnapshot{}, ErrUnknownCategory
	}

	if snap, ok := s.fresh(key); ok {
		return snap, nil
	}

	// Concurrent cold readers of the same category share one generation.
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		if snap, ok := s.fresh(key); ok {
			return snap, nil
		}
		snap := s.generate(ctx, cat)
		s.put(snap)
		return snap, nil
	})
	return v.(resource.CategorySnapshot), nil
}

// All returns snapshots for every configured category, generating any
// that are cold or expired.
func (s *Service) All(ctx context.Context) map[string]resource.CategorySnapshot {
	out := make(map[string]resource.CategorySnapshot, len(s.cfg.Categories))
	for _, cat := range s.cfg.Categories {
		snap, err := s.Snapshot(ctx, cat.Key)
		if err != nil {
			continue
		}
		out[cat.Key] = snap
	}
	return out
}

// RefreshAll regenerates every category. At most one refresh runs per
// process; overlapping calls return ErrRefreshInFlight. On any
// unexpected failure the prior snapshots stay in place.
func (s *Service) RefreshAll(ctx context.Context) (result map[string]resource.CategorySnapshot, err error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInFlight
	}
	defer s.refreshMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("refresh cycle panicked; retaining prior snapshots", zap.Any("panic", r))
			result, err = nil, errors.New("refresh cycle failed")
		}
	}()

	var mu sync.Mutex
	result = make(map[string]resource.CategorySnapshot, len(s.cfg.Categories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, cat := range s.cfg.Categories {
		cat := cat
		g.Go(func() error {
			snap := s.generate(ctx, cat)
			s.put(snap)
			mu.Lock()
			result[cat.Key] = snap
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if s.store != nil {
		if err := s.store.SetLastRefresh(); err != nil {
			s.log.Warn("recording last refresh failed", zap.Error(err))
		}
	}
	return result, nil
}

// generate runs the pipeline with a safety net: a panicking generation
// keeps the prior snapshot if one exists, and degrades to the curated
// base output on a true cold start.
func (s *Service) generate(ctx context.Context, cat config.Category) (snap resource.CategorySnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("generation panicked",
				zap.String("category", cat.Key),
				zap.Any("panic", r))
			if prev, ok := s.cached(cat.Key); ok {
				snap = prev
				return
			}
			snap = s.curatedFallback(cat.Key)
		}
	}()
	return s.gen.Generate(ctx, cat)
}

func (s *Service) curatedFallback(key string) resource.CategorySnapshot {
	base := s.curated.Base(key)
	for i := range base {
		base[i] = langfilter.Normalize(base[i])
	}
	return resource.CategorySnapshot{
		Category:    key,
		Resources:   base,
		GeneratedAt: time.Now(),
		Provenance:  resource.Provenance{Curated: len(base)},
	}
}

func (s *Service) cached(key string) (resource.CategorySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[key]
	return snap, ok
}

func (s *Service) fresh(key string) (resource.CategorySnapshot, bool) {
	snap, ok := s.cached(key)
	if !ok || time.Since(snap.GeneratedAt) >= s.ttl {
		return resource.CategorySnapshot{}, false
	}
	return snap, true
}

// put replaces a category's snapshot atomically and persists it
// best-effort. Snapshots are never mutated in place.
func (s *Service) put(snap resource.CategorySnapshot) {
	s.mu.Lock()
	s.snaps[snap.Category] = snap
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(snap); err != nil {
			s.log.Warn("persisting snapshot failed",
				zap.String("category", snap.Category),
				zap.Error(err))
		}
	}
}
