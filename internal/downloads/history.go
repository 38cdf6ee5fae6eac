package downloads

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/cache"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

// History serves a user's download list, cached per user.
type History struct {
	ledger store.DownloadLedger
	cache  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

func NewHistory(ledger store.DownloadLedger, c cache.Cache, ttl time.Duration, log *zap.Logger) *History {
	if c == nil {
		c = cache.Noop{}
	}
	return &History{ledger: ledger, cache: c, ttl: ttl, log: log}
}

func historyKey(userID string) string {
	return "downloads:" + userID
}

// List returns the user's downloads newest first with their automations.
func (h *History) List(ctx context.Context, userID string) ([]model.Download, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	var cached []model.Download
	if ok, err := h.cache.Get(ctx, historyKey(userID), &cached); err != nil {
		h.log.Warn("download history cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	list, err := h.ledger.ListDownloads(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Download{}
	}

	if err := h.cache.Set(ctx, historyKey(userID), list, h.ttl); err != nil {
		h.log.Warn("download history cache write failed", zap.Error(err))
	}
	return list, nil
}

func (h *History) Invalidate(ctx context.Context, userID string) {
	if err := h.cache.Delete(ctx, historyKey(userID)); err != nil {
		h.log.Warn("failed to invalidate download history", zap.String("user_id", userID), zap.Error(err))
	}
}
