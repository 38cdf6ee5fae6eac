package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

// CatalogInvalidator is satisfied by catalog.Service.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	classifier *Classifier
	store      store.CatalogStore
	catalog    CatalogInvalidator
	log        *zap.Logger
	now        func() time.Time
}

func NewService(classifier *Classifier, s store.CatalogStore, catalog CatalogInvalidator, log *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		store:      s,
		catalog:    catalog,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Analyze(ctx context.Context, doc map[string]any) (model.Analysis, error) {
	return s.classifier.Classify(ctx, doc)
}

// Ingest classifies doc and inserts it as a new automation with no rating
// and no downloads.
func (s *Service) Ingest(ctx context.Context, doc map[string]any) (*model.Automation, error) {
	analysis, err := s.classifier.Classify(ctx, doc)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}

	a := &model.Automation{
		ID:           uuid.NewString(),
		Title:        analysis.Title,
		Description:  analysis.Description,
		Category:     analysis.Category,
		Difficulty:   analysis.Difficulty,
		Tags:         datatypes.JSONSlice[string](analysis.Tags),
		Rating:       0,
		Downloads:    0,
		WorkflowJSON: datatypes.JSON(payload),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateAutomation(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	s.log.Info("workflow added to catalog",
		zap.String("automation_id", a.ID),
		zap.String("title", a.Title),
		zap.String("category", a.Category),
	)
	return a, nil
}
