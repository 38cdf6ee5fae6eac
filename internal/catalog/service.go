// Package catalog answers catalog queries: search by title and category,
// single lookups and the category list.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/cache"
	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/metrics"
	"github.com/agenthands/automationvault/internal/store"
)

const allKey = "catalog:all"

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrNotFound    = fmt.Errorf("automation %w", common.ErrNotFound)
)

type Service struct {
	store store.CatalogStore
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewService returns a catalog service. With ttl > 0 the unfiltered catalog
// is cached and filtered in process; otherwise every search goes to the
// store.
func NewService(s store.CatalogStore, c cache.Cache, ttl time.Duration, log *zap.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: s, cache: c, ttl: ttl, log: log}
}

// Search returns the automations matching q, newest first.
func (s *Service) Search(ctx context.Context, q model.CatalogQuery) ([]model.Automation, error) {
	if s.ttl <= 0 {
		list, err := s.store.ListAutomations(ctx, q)
		if err != nil {
			return nil, s.fetchFailed(err)
		}
		return nonNil(list), nil
	}

	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Automation, 0, len(all))
	for _, a := range all {
		if q.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Automation, error) {
	a, err := s.store.GetAutomation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.fetchFailed(err)
	}
	return a, nil
}

// Categories lists the distinct category labels in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if s.ttl <= 0 {
		cats, err := s.store.Categories(ctx)
		if err != nil {
			return nil, s.fetchFailed(err)
		}
		if cats == nil {
			cats = []string{}
		}
		return cats, nil
	}

	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	cats := []string{}
	for _, a := range all {
		if a.Category == "" {
			continue
		}
		if _, ok := seen[a.Category]; !ok {
			seen[a.Category] = struct{}{}
			cats = append(cats, a.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// Invalidate drops the cached catalog so the next search reads the store.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, allKey); err != nil {
		s.log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *Service) all(ctx context.Context) ([]model.Automation, error) {
	var cached []model.Automation
	ok, err := s.cache.Get(ctx, allKey, &cached)
	switch {
	case err != nil:
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn("catalog cache read failed", zap.Error(err))
	case ok:
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
	}

	list, err := s.store.ListAutomations(ctx, model.CatalogQuery{})
	if err != nil {
		return nil, s.fetchFailed(err)
	}
	list = nonNil(list)

	if err := s.cache.Set(ctx, allKey, list, s.ttl); err != nil {
		s.log.Warn("catalog cache write failed", zap.Error(err))
	}
	return list, nil
}

func (s *Service) fetchFailed(err error) error {
	s.log.Error("catalog fetch failed", zap.Error(err))
	return fmt.Errorf("%w: %v", ErrFetchFailed, err)
}

func nonNil(list []model.Automation) []model.Automation {
	if list == nil {
		return []model.Automation{}
	}
	return list
}
