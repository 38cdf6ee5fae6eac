// Package account serves the signed-in user's profile and dashboard.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

const (
	recentDownloads = 5
	maxNameLength   = 100
)

var (
	ErrUnauthenticated = fmt.Errorf("sign in required: %w", common.ErrUnauthenticated)
	ErrInvalidName     = fmt.Errorf("name must be 1 to %d characters: %w", maxNameLength, common.ErrPrecondition)
)

// DownloadLister is satisfied by downloads.History.
type DownloadLister interface {
	List(ctx context.Context, userID string) ([]model.Download, error)
}

type Service struct {
	profiles  store.ProfileStore
	downloads DownloadLister
}

func NewService(profiles store.ProfileStore, downloads DownloadLister) *Service {
	return &Service{profiles: profiles, downloads: downloads}
}

// Profile returns the stored profile, or a free default for users that
// never saved one.
func (s *Service) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.Profile{ID: userID, SubscriptionStatus: model.SubscriptionFree}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.SubscriptionStatus == "" {
		p.SubscriptionStatus = model.SubscriptionFree
	}
	return p, nil
}

func (s *Service) UpdateName(ctx context.Context, userID, name string) (*model.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxNameLength {
		return nil, ErrInvalidName
	}
	return s.profiles.UpsertProfileName(ctx, userID, name)
}

// Dashboard summarizes the user's downloads. now decides the calendar month
// counted as "this month".
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (*model.DashboardStats, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.downloads.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalDownloads: len(list),
		Subscription:   subscriptionLabel(p.SubscriptionStatus),
	}
	for _, d := range list {
		dd := d.DownloadDate.In(now.Location())
		if dd.Year() == now.Year() && dd.Month() == now.Month() {
			stats.DownloadsThisMonth++
		}
	}

	recent := list
	if len(recent) > recentDownloads {
		recent = recent[:recentDownloads]
	}
	stats.RecentDownloads = append([]model.Download{}, recent...)
	return stats, nil
}

func subscriptionLabel(s model.SubscriptionStatus) string {
	if s == "" || s == model.SubscriptionFree {
		return "Free"
	}
	return string(s)
}
