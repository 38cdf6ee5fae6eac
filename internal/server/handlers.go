package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/automationvault/internal/assistant"
	"github.com/agenthands/automationvault/internal/auth"
	"github.com/agenthands/automationvault/internal/billing"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/downloads"
	"github.com/agenthands/automationvault/internal/generator"
	"github.com/agenthands/automationvault/internal/intake"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListAutomations(c *gin.Context) {
	var q model.CatalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "invalid query")
		return
	}

	list, err := s.app.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"automations": list})
}

func (s *Server) Categories(c *gin.Context) {
	cats, err := s.app.Catalog.Categories(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (s *Server) GetAutomation(c *gin.Context) {
	a, err := s.app.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type WorkflowRequest struct {
	WorkflowJSON json.RawMessage `json:"workflowJson" binding:"required"`
}

func (s *Server) bindWorkflow(c *gin.Context) (map[string]any, bool) {
	var req WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Workflow JSON is required")
		return nil, false
	}
	doc, err := intake.ParseDocument(req.WorkflowJSON)
	if err != nil {
		s.handleError(c, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) IngestAutomation(c *gin.Context) {
	doc, ok := s.bindWorkflow(c)
	if !ok {
		return
	}
	a, err := s.app.Intake.Ingest(c.Request.Context(), doc)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) AnalyzeWorkflow(c *gin.Context) {
	doc, ok := s.bindWorkflow(c)
	if !ok {
		return
	}
	analysis, err := s.app.Intake.Analyze(c.Request.Context(), doc)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

type downloadResponse struct {
	*downloads.Result
	Content json.RawMessage `json:"content,omitempty"`
}

// Download records the download. With ?format=attachment the file itself is
// returned, as a redirect for remote files.
func (s *Server) Download(c *gin.Context) {
	res, err := s.app.Recorder.Record(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	if c.Query("format") == "attachment" && res.File != nil {
		if res.File.IsRedirect() {
			c.Redirect(http.StatusFound, res.File.URL)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.File.Name))
		c.Data(http.StatusOK, res.File.ContentType, res.File.Content)
		return
	}

	out := downloadResponse{Result: res}
	if res.File != nil && !res.File.IsRedirect() {
		out.Content = res.File.Content
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ListDownloads(c *gin.Context) {
	list, err := s.app.History.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloads": list})
}

func (s *Server) Dashboard(c *gin.Context) {
	stats, err := s.app.Account.Dashboard(c.Request.Context(), auth.UserID(c), time.Now().UTC())
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) GetProfile(c *gin.Context) {
	p, err := s.app.Account.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := s.app.Account.UpdateName(c.Request.Context(), auth.UserID(c), req.Name)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) GenerateWorkflow(c *gin.Context) {
	var req generator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	res, err := s.app.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	if req.IsChat {
		c.JSON(http.StatusOK, gin.H{"response": res.Response})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": res.Workflow.Document, "rawJson": res.Workflow.Raw})
}

func (s *Server) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	msg, err := s.app.Assistant.Reply(c.Request.Context(), req)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (s *Server) Greeting(c *gin.Context) {
	msg, err := s.app.Assistant.Greeting(c.Request.Context(), c.Query("automation"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

type CheckoutRequest struct {
	Plan      string `json:"plan" binding:"required"`
	UserEmail string `json:"userEmail" binding:"omitempty,email"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingDetail(err, "invalid request body"))
		return
	}

	creq := billing.CheckoutRequest{
		Plan:      req.Plan,
		UserEmail: req.UserEmail,
		Origin:    s.origin(c),
	}
	if id, ok := auth.FromGin(c); ok {
		creq.UserID = id.UserID
		if creq.UserEmail == "" {
			creq.UserEmail = id.Email
		}
	}

	url, err := s.app.Billing.CreateCheckout(c.Request.Context(), creq)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type VerifyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func (s *Server) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "sessionId is required")
		return
	}
	v, err := s.app.Billing.VerifyPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// origin is the browser origin for checkout return URLs, falling back to the
// configured public URL.
func (s *Server) origin(c *gin.Context) string {
	if o := c.GetHeader("Origin"); o != "" {
		return strings.TrimRight(o, "/")
	}
	return strings.TrimRight(s.app.Config.Server.PublicURL, "/")
}
