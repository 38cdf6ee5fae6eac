package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/core/model"
)

type GormStore struct {
	db *gorm.DB
}

// OpenGorm opens a Postgres or SQLite database depending on cfg.Driver.
func OpenGorm(cfg config.StoreConfig, log *zap.Logger) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: &GormZapLogger{
			ZapLogger:                 log,
			LogLevel:                  gormLogger.Warn,
			SlowThreshold:             200 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
		},
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Connected to database", zap.String("driver", cfg.Driver))
	return NewGormStore(db), nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Automation{}, &model.Profile{}, &model.Download{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListAutomations(ctx context.Context, q model.CatalogQuery) ([]model.Automation, error) {
	tx := s.db.WithContext(ctx).Model(&model.Automation{})
	// SQLite's LOWER folds ASCII only, so non-ASCII searches are matched in
	// Go with the same folding as CatalogQuery.Matches.
	foldInGo := q.Search != "" && !isASCII(q.Search)
	if q.Search != "" && !foldInGo {
		tx = tx.Where("LOWER(title) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}
	if c := q.CategoryFilter(); c != "" {
		tx = tx.Where("category = ?", c)
	}

	var out []model.Automation
	if err := tx.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	if !foldInGo {
		return out, nil
	}
	matched := out[:0]
	for _, a := range out {
		if q.Matches(a) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (s *GormStore) GetAutomation(ctx context.Context, id string) (*model.Automation, error) {
	var a model.Automation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *GormStore) CreateAutomation(ctx context.Context, a *model.Automation) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) IncrementDownloads(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Automation{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.db.WithContext(ctx).
		Model(&model.Automation{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &cats).Error
	return cats, err
}

func (s *GormStore) InsertDownload(ctx context.Context, d *model.Download) error {
	return translate(s.db.WithContext(ctx).Omit("Automation").Create(d).Error)
}

func (s *GormStore) ListDownloads(ctx context.Context, userID string) ([]model.Download, error) {
	var out []model.Download
	err := s.db.WithContext(ctx).
		Preload("Automation").
		Where("user_id = ?", userID).
		Order("download_date DESC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpsertProfileName(ctx context.Context, userID, name string) (*model.Profile, error) {
	p := model.Profile{ID: userID, Name: name, SubscriptionStatus: model.SubscriptionFree}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *GormStore) SetSubscription(ctx context.Context, userID string, status model.SubscriptionStatus) error {
	p := model.Profile{ID: userID, SubscriptionStatus: status}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscription_status", "updated_at"}),
	}).Create(&p).Error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// isUniqueViolation falls back to the driver message when the dialect does
// not translate the error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "sqlstate 23505")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
