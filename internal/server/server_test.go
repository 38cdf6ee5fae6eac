package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/moogar0880/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/agenthands/automationvault/internal/app"
	"github.com/agenthands/automationvault/internal/billing"
	"github.com/agenthands/automationvault/internal/cache"
	"github.com/agenthands/automationvault/internal/config"
	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/llm"
	"github.com/agenthands/automationvault/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockGateway struct {
	created []billing.SessionParams
}

func (m *mockGateway) FindCustomer(ctx context.Context, email string) (string, error) {
	return "", nil
}

func (m *mockGateway) CreateSession(ctx context.Context, p billing.SessionParams) (*billing.Session, error) {
	m.created = append(m.created, p)
	return &billing.Session{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil
}

func (m *mockGateway) GetSession(ctx context.Context, id string) (*billing.Session, error) {
	return &billing.Session{ID: id, Status: "complete", CustomerEmail: "ada@example.com",
		Metadata: map[string]string{"plan": "pro", "userId": "user-1"}}, nil
}

type testEnv struct {
	app     *app.App
	store   *store.GormStore
	llm     *llm.MockLLM
	gateway *mockGateway
	router  *gin.Engine
	token   string
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Billing.StripeSecretKey = "sk_test"
	cfg.Cache.CatalogTTLSec = 0
	for _, m := range mutate {
		m(cfg)
	}

	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", time.Now().UnixNano())
	s, err := store.OpenGorm(config.StoreConfig{Driver: "sqlite", DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	mock := &llm.MockLLM{}
	gw := &mockGateway{}
	a := app.Build(cfg, zap.NewNop(), s, cache.Noop{}, nil, mock, mock, gw)

	token, err := a.Verifier.Sign("user-1", "ada@example.com", time.Hour)
	require.NoError(t, err)

	return &testEnv{
		app:     a,
		store:   s,
		llm:     mock,
		gateway: gw,
		router:  NewServer(a).SetupRouter(),
		token:   token,
	}
}

func (e *testEnv) seed(t *testing.T, title, category string) *model.Automation {
	t.Helper()
	a := &model.Automation{
		ID:           uuid.NewString(),
		Title:        title,
		Category:     category,
		Difficulty:   model.DifficultyBeginner,
		WorkflowJSON: datatypes.JSON(`{"name":"` + title + `","nodes":[]}`),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateAutomation(context.Background(), a))
	return a
}

func (e *testEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, problems.ProblemMediaType, w.Header().Get("Content-Type"))
	var p map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = env.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "automationvault_http_requests_total")
}

func TestListAutomations(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "AI Customer Support Bot", "Customer Service")
	env.seed(t, "Invoice Processing", "Finance")

	w := env.do(http.MethodGet, "/api/automations?search=support&category=all", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Automations []model.Automation `json:"automations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Automations, 1)
	assert.Equal(t, "AI Customer Support Bot", body.Automations[0].Title)

	w = env.do(http.MethodGet, "/api/automations/categories", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":["Customer Service","Finance"]}`, w.Body.String())
}

func TestGetAutomationNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/automations/missing", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, "not_found", p["type"])
	assert.Equal(t, "/api/automations/missing", p["instance"])
}

func TestDownloadFlow(t *testing.T) {
	env := newTestEnv(t)
	a := env.seed(t, "Lead Scoring", "Sales")
	path := "/api/automations/" + a.ID + "/download"

	w := env.do(http.MethodPost, path, "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, path, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Automation downloaded successfully.", body["notice"])
	assert.Equal(t, "Lead Scoring", body["content"].(map[string]any)["name"])

	got, err := env.store.GetAutomation(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Downloads)

	w = env.do(http.MethodPost, path, "", true)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_downloaded", decodeProblem(t, w)["type"])

	w = env.do(http.MethodGet, "/api/downloads", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Downloads []model.Download `json:"downloads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Downloads, 1)
	assert.Equal(t, a.ID, hist.Downloads[0].AutomationID)
}

func TestDownloadAttachment(t *testing.T) {
	env := newTestEnv(t)
	a := env.seed(t, "Lead Scoring", "Sales")

	w := env.do(http.MethodPost, "/api/automations/"+a.ID+"/download?format=attachment", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="lead-scoring.json"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), `"name": "Lead Scoring"`)
}

func TestGenerateWorkflow(t *testing.T) {
	env := newTestEnv(t)

	env.llm.Response = `Here you go: {"name":"Lead Router","nodes":[],"connections":{}}`
	w := env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":"route leads"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Lead Router", body["workflow"].(map[string]any)["name"])
	assert.Equal(t, `{"name":"Lead Router","nodes":[],"connections":{}}`, body["rawJson"])

	env.llm.Response = "Sure, use a webhook."
	w = env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":"how?","isChat":true}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"Sure, use a webhook."}`, w.Body.String())

	env.llm.Response = "no json here"
	w = env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":"route leads"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":""}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateWorkflowUpstreamErrors(t *testing.T) {
	env := newTestEnv(t)

	env.llm.Err = &common.UpstreamError{Service: "claude", Status: 529, Body: "overloaded"}
	w := env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":"route leads"}`, true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "529 - overloaded")

	env.llm.Err = fmt.Errorf("claude: %w", common.ErrMisconfigured)
	w = env.do(http.MethodPost, "/api/workflows/generate", `{"problemDescription":"route leads"}`, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "misconfigured", decodeProblem(t, w)["type"])
}

func TestIngestAndAnalyze(t *testing.T) {
	env := newTestEnv(t)
	env.llm.Response = `{"title":"Slack Alerts","description":"Posts alerts.","category":"Marketing","difficulty":"beginner","tags":["slack"]}`

	doc := `{"workflowJson":{"name":"Alerts","nodes":[{"name":"Slack","type":"n8n-nodes-base.slack"}]}}`
	w := env.do(http.MethodPost, "/api/workflows/analyze", doc, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Slack Alerts"`)

	w = env.do(http.MethodPost, "/api/automations", doc, true)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Automation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Slack Alerts", created.Title)
	assert.Zero(t, created.Downloads)

	w = env.do(http.MethodPost, "/api/automations", `{"workflowJson":{"name":"No nodes"}}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/api/workflows/analyze", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestModelFailures(t *testing.T) {
	env := newTestEnv(t)
	doc := `{"workflowJson":{"name":"Alerts","nodes":[{"name":"Slack","type":"n8n-nodes-base.slack"}]}}`

	env.llm.Err = &common.UpstreamError{Service: "anthropic", Status: 529, Body: "overloaded"}
	w := env.do(http.MethodPost, "/api/automations", doc, true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, "upstream_error", p["type"])
	assert.Equal(t, "anthropic API error: 529 - overloaded", p["detail"])

	env.llm.Err = fmt.Errorf("claude api key: %w", common.ErrMisconfigured)
	w = env.do(http.MethodPost, "/api/automations", doc, true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "misconfigured", decodeProblem(t, w)["type"])

	list, err := env.store.ListAutomations(context.Background(), model.CatalogQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProfileAndDashboard(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/profile", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription_status":"free"`)

	w = env.do(http.MethodPatch, "/api/profile", `{"name":"  "}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPatch, "/api/profile", `{"name":"Ada"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ada"`)

	w = env.do(http.MethodGet, "/api/dashboard", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription":"Free"`)
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	env.llm.Response = "Start with a webhook trigger."

	w := env.do(http.MethodPost, "/api/chat", `{"message":"where do I start?"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sender":"assistant"`)
	assert.Contains(t, w.Body.String(), "Start with a webhook trigger.")

	w = env.do(http.MethodGet, "/api/chat/greeting", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI automation assistant")
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"plan":"pro"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://vault.test")
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://checkout.test/cs_1"}`, w.Body.String())
	require.Len(t, env.gateway.created, 1)
	assert.Equal(t, "user-1", env.gateway.created[0].Metadata["userId"])
	assert.Equal(t, "ada@example.com", env.gateway.created[0].CustomerEmail)
	assert.True(t, strings.HasPrefix(env.gateway.created[0].SuccessURL, "https://vault.test/payment-success"))

	w = env.do(http.MethodPost, "/api/checkout", `{"plan":"gold"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/checkout/verify", `{"sessionId":"cs_1"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"verified":true,"customerEmail":"ada@example.com"}`, w.Body.String())

	p, err := env.store.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatus("pro"), p.SubscriptionStatus)
}

func TestCheckoutBindingErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/checkout", `{"plan":"pro","userEmail":"not-an-email"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p := decodeProblem(t, w)
	assert.Equal(t, "validation_error", p["type"])
	assert.Equal(t, "userEmail must be a valid email address", p["detail"])

	w = env.do(http.MethodPost, "/api/checkout", `{"userEmail":"ada@example.com"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "plan is required", decodeProblem(t, w)["detail"])

	w = env.do(http.MethodPost, "/api/checkout", `{"plan":`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decodeProblem(t, w)["detail"])

	assert.Empty(t, env.gateway.created)
}

func TestCheckoutWithoutStripeKey(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Billing.StripeSecretKey = "" })

	w := env.do(http.MethodPost, "/api/checkout", `{"plan":"pro"}`, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "misconfigured", decodeProblem(t, w)["type"])
	assert.Empty(t, env.gateway.created)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Server.CORS = []string{"https://vault.test"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/automations", nil)
	req.Header.Set("Origin", "https://vault.test")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://vault.test", w.Header().Get("Access-Control-Allow-Origin"))
}
