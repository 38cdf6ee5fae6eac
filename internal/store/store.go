// Package store persists the catalog, the download ledger and user profiles.
// Two backends implement Store: GormStore (Postgres or SQLite) and
// GraphStore (Memgraph over Bolt).
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/driver"
)

var (
	ErrNotFound  = fmt.Errorf("record %w", common.ErrNotFound)
	ErrDuplicate = fmt.Errorf("duplicate record: %w", common.ErrConflict)
)

type CatalogStore interface {
	// ListAutomations returns matching automations newest first.
	ListAutomations(ctx context.Context, q model.CatalogQuery) ([]model.Automation, error)
	GetAutomation(ctx context.Context, id string) (*model.Automation, error)
	CreateAutomation(ctx context.Context, a *model.Automation) error
	// IncrementDownloads adds one to the counter without a read-modify-write.
	IncrementDownloads(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}

type DownloadLedger interface {
	// InsertDownload returns ErrDuplicate when the user already holds a
	// record for the automation.
	InsertDownload(ctx context.Context, d *model.Download) error
	ListDownloads(ctx context.Context, userID string) ([]model.Download, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfileName(ctx context.Context, userID, name string) (*model.Profile, error)
	SetSubscription(ctx context.Context, userID string, status model.SubscriptionStatus) error
}

type Store interface {
	CatalogStore
	DownloadLedger
	ProfileStore

	Migrate(ctx context.Context) error
	Close() error
}

// Open connects the backend named by cfg.Store.Driver and migrates it when
// auto_migrate is set.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.Store.Driver {
	case "postgres", "sqlite":
		s, err = OpenGorm(cfg.Store, log)
	case "memgraph":
		var d *driver.MemgraphDriver
		d, err = driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log)
		if err == nil {
			s = NewGraphStore(d)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	if cfg.Store.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// IsDuplicate reports whether err is a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
