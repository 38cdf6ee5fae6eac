package downloads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "ai-customer-support-bot", Slug("AI Customer Support Bot"))
	assert.Equal(t, "lead-gen-2-0", Slug("  Lead Gen 2.0!! "))
	assert.Equal(t, "automation", Slug("???"))
	assert.Equal(t, "café-sync", Slug("Café Sync"))
}

func TestMaterializeS3(t *testing.T) {
	m := NewMaterializer(&MockSigner{})
	f, err := m.Materialize(context.Background(), &model.Automation{Title: "Lead Router", FileURL: "s3://vault/flows/lead.json"})
	require.NoError(t, err)
	assert.True(t, f.IsRedirect())
	assert.Equal(t, "https://vault.s3.amazonaws.com/flows/lead.json?X-Amz-Signature=sig", f.URL)

	_, err = NewMaterializer(nil).Materialize(context.Background(), &model.Automation{FileURL: "s3://vault/flows/lead.json"})
	assert.ErrorIs(t, err, common.ErrMisconfigured)

	signErr := errors.New("expired credentials")
	_, err = NewMaterializer(&MockSigner{Err: signErr}).Materialize(context.Background(), &model.Automation{FileURL: "s3://vault/k"})
	assert.ErrorIs(t, err, signErr)
}

func TestMaterializeHTTP(t *testing.T) {
	m := NewMaterializer(nil)
	f, err := m.Materialize(context.Background(), &model.Automation{Title: "X", FileURL: "https://cdn.example.com/x.json"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.json", f.URL)

	_, err = m.Materialize(context.Background(), &model.Automation{FileURL: "ftp://example.com/x.json"})
	assert.Error(t, err)
}

func TestMaterializeInlineJSON(t *testing.T) {
	m := NewMaterializer(nil)
	f, err := m.Materialize(context.Background(), &model.Automation{Title: "Inline Flow", WorkflowJSON: datatypes.JSON(`{"nodes":[]}`)})
	require.NoError(t, err)
	assert.False(t, f.IsRedirect())
	assert.Equal(t, "inline-flow.json", f.Name)
	assert.Equal(t, "application/json", f.ContentType)
	assert.JSONEq(t, `{"nodes":[]}`, string(f.Content))

	_, err = m.Materialize(context.Background(), &model.Automation{Title: "Empty"})
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = m.Materialize(context.Background(), &model.Automation{WorkflowJSON: datatypes.JSON(`{broken`)})
	assert.Error(t, err)
}
