package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

type MockProfiles struct {
	Profiles map[string]*model.Profile
	Err      error
}

func (m *MockProfiles) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfiles) UpsertProfileName(ctx context.Context, userID, name string) (*model.Profile, error) {
	if m.Profiles == nil {
		m.Profiles = map[string]*model.Profile{}
	}
	p, ok := m.Profiles[userID]
	if !ok {
		p = &model.Profile{ID: userID, SubscriptionStatus: model.SubscriptionFree}
		m.Profiles[userID] = p
	}
	p.Name = name
	cp := *p
	return &cp, nil
}

func (m *MockProfiles) SetSubscription(ctx context.Context, userID string, status model.SubscriptionStatus) error {
	return nil
}

type MockDownloads struct {
	Items []model.Download
	Err   error
}

func (m *MockDownloads) List(ctx context.Context, userID string) ([]model.Download, error) {
	return m.Items, m.Err
}

func TestProfileDefaultsToFree(t *testing.T) {
	svc := NewService(&MockProfiles{}, &MockDownloads{})
	p, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, model.SubscriptionFree, p.SubscriptionStatus)

	_, err = svc.Profile(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestProfileStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&MockProfiles{Err: boom}, &MockDownloads{})
	_, err := svc.Profile(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestUpdateName(t *testing.T) {
	profiles := &MockProfiles{}
	svc := NewService(profiles, &MockDownloads{})

	p, err := svc.UpdateName(context.Background(), "u1", "  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)

	_, err = svc.UpdateName(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, common.ErrPrecondition)
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var list []model.Download
	dates := []time.Time{
		now.Add(-time.Hour),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		list = append(list, model.Download{ID: string(rune('a' + i)), DownloadDate: d})
	}

	svc := NewService(&MockProfiles{Profiles: map[string]*model.Profile{
		"u1": {ID: "u1", SubscriptionStatus: "pro"},
	}}, &MockDownloads{Items: list})

	stats, err := svc.Dashboard(context.Background(), "u1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DownloadsThisMonth)
	assert.Equal(t, 6, stats.TotalDownloads)
	assert.Equal(t, "pro", stats.Subscription)
	require.Len(t, stats.RecentDownloads, 5)
	assert.Equal(t, "a", stats.RecentDownloads[0].ID)
}

func TestDashboardFreeLabel(t *testing.T) {
	svc := NewService(&MockProfiles{}, &MockDownloads{})
	stats, err := svc.Dashboard(context.Background(), "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Free", stats.Subscription)
	assert.Equal(t, 0, stats.TotalDownloads)
	assert.NotNil(t, stats.RecentDownloads)
}
