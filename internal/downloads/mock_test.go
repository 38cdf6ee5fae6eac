package downloads

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/store"
)

type MockSigner struct {
	Err error
}

func (m *MockSigner) SignGet(ctx context.Context, bucket, key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Signature=sig", bucket, key), nil
}

type MockMaterializer struct {
	Err   error
	Calls int
}

func (m *MockMaterializer) Materialize(ctx context.Context, a *model.Automation) (*File, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return &File{Name: Slug(a.Title) + ".json", Content: []byte("{}")}, nil
}

// brokenCounter fails every counter increment and delegates the rest.
type brokenCounter struct {
	store.CatalogStore
}

func (b brokenCounter) IncrementDownloads(ctx context.Context, id string) error {
	return errors.New("deadlock detected")
}

// countingLedger records how often the ledger is touched.
type countingLedger struct {
	store.DownloadLedger
	Inserts int
	Lists   int
}

func (c *countingLedger) InsertDownload(ctx context.Context, d *model.Download) error {
	c.Inserts++
	return c.DownloadLedger.InsertDownload(ctx, d)
}

func (c *countingLedger) ListDownloads(ctx context.Context, userID string) ([]model.Download, error) {
	c.Lists++
	return c.DownloadLedger.ListDownloads(ctx, userID)
}
