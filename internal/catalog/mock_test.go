package catalog

import (
	"context"

	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

// MockCatalogStore filters its fixture the way a database would.
type MockCatalogStore struct {
	Automations []model.Automation
	Err         error
	ListCalls   int
	Queries     []model.CatalogQuery
}

func (m *MockCatalogStore) ListAutomations(ctx context.Context, q model.CatalogQuery) ([]model.Automation, error) {
	m.ListCalls++
	m.Queries = append(m.Queries, q)
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Automation
	for _, a := range m.Automations {
		if q.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockCatalogStore) GetAutomation(ctx context.Context, id string) (*model.Automation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, a := range m.Automations {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockCatalogStore) CreateAutomation(ctx context.Context, a *model.Automation) error {
	m.Automations = append([]model.Automation{*a}, m.Automations...)
	return m.Err
}

func (m *MockCatalogStore) IncrementDownloads(ctx context.Context, id string) error {
	return m.Err
}

func (m *MockCatalogStore) Categories(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []string{"Sales", "Support"}, nil
}
