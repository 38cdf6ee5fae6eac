// Package assistant answers chat questions about automations, through the
// LLM when one is configured and with scripted answers otherwise.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/generator"
)

const generalGreeting = "Hello! I'm your AI automation assistant. I can help you understand how different automations work, " +
	"suggest the best ones for your needs, and guide you through implementation. What can I help you with today?"

var ErrEmptyMessage = fmt.Errorf("message is required: %w", common.ErrPrecondition)

// AutomationGetter is satisfied by catalog.Service.
type AutomationGetter interface {
	Get(ctx context.Context, id string) (*model.Automation, error)
}

type ChatRequest struct {
	Message      string              `json:"message"`
	AutomationID string              `json:"automationId"`
	BusinessType string              `json:"businessType"`
	History      []model.ChatMessage `json:"history"`
}

type Service struct {
	proxy   *generator.Proxy
	catalog AutomationGetter
	live    bool
	log     *zap.Logger
	now     func() time.Time
}

// NewService returns an assistant. With live false every reply is scripted.
func NewService(proxy *generator.Proxy, catalog AutomationGetter, live bool, log *zap.Logger) *Service {
	return &Service{
		proxy:   proxy,
		catalog: catalog,
		live:    live,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Greeting returns the opening message, naming the automation when one is
// selected.
func (s *Service) Greeting(ctx context.Context, automationID string) (model.ChatMessage, error) {
	if automationID == "" {
		return s.message(generalGreeting), nil
	}
	a, err := s.catalog.Get(ctx, automationID)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return s.message(fmt.Sprintf("Hi! I'm here to help you understand and implement the %q automation. What would you like to know?", a.Title)), nil
}

func (s *Service) Reply(ctx context.Context, req ChatRequest) (model.ChatMessage, error) {
	if strings.TrimSpace(req.Message) == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	var a *model.Automation
	if req.AutomationID != "" {
		var err error
		if a, err = s.catalog.Get(ctx, req.AutomationID); err != nil {
			return model.ChatMessage{}, err
		}
	}

	if !s.live {
		return s.message(scriptedReply(req.Message, a)), nil
	}

	res, err := s.proxy.Generate(ctx, generator.Request{
		ProblemDescription: req.Message,
		BusinessType:       req.BusinessType,
		Context:            generator.FormatAutomationContext(a),
		IsChat:             true,
		History:            req.History,
	})
	if err != nil {
		return model.ChatMessage{}, err
	}
	return s.message(strings.TrimSpace(res.Response)), nil
}

func (s *Service) message(content string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    model.SenderAssistant,
		Content:   content,
		Timestamp: s.now(),
	}
}
