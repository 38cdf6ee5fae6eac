package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"gorm.io/datatypes"

	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/driver"
)

// GraphStore keeps automations and profiles as nodes and downloads as
// DOWNLOADED edges from a User node. Timestamps are stored as Unix
// milliseconds.
type GraphStore struct {
	driver driver.GraphDriver
}

func NewGraphStore(d driver.GraphDriver) *GraphStore {
	return &GraphStore{driver: d}
}

func (s *GraphStore) Migrate(ctx context.Context) error {
	return s.driver.BuildIndices(ctx)
}

func (s *GraphStore) Close() error {
	return s.driver.Close(context.Background())
}

func (s *GraphStore) ListAutomations(ctx context.Context, q model.CatalogQuery) ([]model.Automation, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.ListAutomationsQuery, map[string]interface{}{
		"search":   q.Search,
		"category": q.CategoryFilter(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Automation, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, automationFromRecord(rec))
	}
	return out, nil
}

func (s *GraphStore) GetAutomation(ctx context.Context, id string) (*model.Automation, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.GetAutomationQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, ErrNotFound
	}
	a := automationFromRecord(res.Records[0])
	return &a, nil
}

func (s *GraphStore) CreateAutomation(ctx context.Context, a *model.Automation) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)

	_, err := s.driver.ExecuteQuery(ctx, driver.SaveAutomationQuery, map[string]interface{}{
		"id":            a.ID,
		"title":         a.Title,
		"description":   a.Description,
		"category":      a.Category,
		"difficulty":    string(a.Difficulty),
		"tags":          tags,
		"rating":        a.Rating,
		"downloads":     a.Downloads,
		"workflow_json": string(a.WorkflowJSON),
		"file_url":      a.FileURL,
		"created_at":    a.CreatedAt.UnixMilli(),
	})
	return err
}

func (s *GraphStore) IncrementDownloads(ctx context.Context, id string) error {
	res, err := s.driver.ExecuteQuery(ctx, driver.IncrementDownloadsQuery, map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GraphStore) Categories(ctx context.Context) ([]string, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.CategoriesQuery, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, getString(rec, "category"))
	}
	return out, nil
}

func (s *GraphStore) InsertDownload(ctx context.Context, d *model.Download) error {
	if d.DownloadDate.IsZero() {
		d.DownloadDate = time.Now().UTC()
	}
	res, err := s.driver.ExecuteQuery(ctx, driver.InsertDownloadQuery, map[string]interface{}{
		"id":            d.ID,
		"user_id":       d.UserID,
		"automation_id": d.AutomationID,
		"download_date": d.DownloadDate.UnixMilli(),
	})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return ErrNotFound
	}
	if created, _ := res.Records[0].Get("created"); created != true {
		return fmt.Errorf("%w: user %s already holds automation %s", ErrDuplicate, d.UserID, d.AutomationID)
	}
	return nil
}

func (s *GraphStore) ListDownloads(ctx context.Context, userID string) ([]model.Download, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.ListDownloadsQuery, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, err
	}

	out := make([]model.Download, 0, len(res.Records))
	for _, rec := range res.Records {
		a := automationFromRecord(rec)
		out = append(out, model.Download{
			ID:           getString(rec, "download_id"),
			UserID:       userID,
			AutomationID: a.ID,
			DownloadDate: getTime(rec, "download_date"),
			Automation:   &a,
		})
	}
	return out, nil
}

func (s *GraphStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.GetProfileQuery, map[string]interface{}{"id": userID})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, ErrNotFound
	}
	return profileFromRecord(res.Records[0]), nil
}

func (s *GraphStore) UpsertProfileName(ctx context.Context, userID, name string) (*model.Profile, error) {
	res, err := s.driver.ExecuteQuery(ctx, driver.UpsertProfileNameQuery, map[string]interface{}{
		"id":             userID,
		"name":           name,
		"default_status": string(model.SubscriptionFree),
		"updated_at":     time.Now().UTC().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, ErrNotFound
	}
	return profileFromRecord(res.Records[0]), nil
}

func (s *GraphStore) SetSubscription(ctx context.Context, userID string, status model.SubscriptionStatus) error {
	_, err := s.driver.ExecuteQuery(ctx, driver.SetSubscriptionQuery, map[string]interface{}{
		"id":         userID,
		"status":     string(status),
		"updated_at": time.Now().UTC().UnixMilli(),
	})
	return err
}

func automationFromRecord(rec *neo4j.Record) model.Automation {
	a := model.Automation{
		ID:          getString(rec, "id"),
		Title:       getString(rec, "title"),
		Description: getString(rec, "description"),
		Category:    getString(rec, "category"),
		Difficulty:  model.Difficulty(getString(rec, "difficulty")),
		Tags:        datatypes.JSONSlice[string](getStrings(rec, "tags")),
		Rating:      getFloat(rec, "rating"),
		Downloads:   getInt(rec, "downloads"),
		FileURL:     getString(rec, "file_url"),
		CreatedAt:   getTime(rec, "created_at"),
	}
	if raw := getString(rec, "workflow_json"); raw != "" {
		a.WorkflowJSON = datatypes.JSON(raw)
	}
	return a
}

func profileFromRecord(rec *neo4j.Record) *model.Profile {
	return &model.Profile{
		ID:                 getString(rec, "id"),
		Name:               getString(rec, "name"),
		SubscriptionStatus: model.SubscriptionStatus(getString(rec, "subscription_status")),
		UpdatedAt:          getTime(rec, "updated_at"),
	}
}

func getString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func getStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	list, _ := v.([]interface{})
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func getFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func getTime(rec *neo4j.Record, key string) time.Time {
	ms := getInt(rec, key)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
