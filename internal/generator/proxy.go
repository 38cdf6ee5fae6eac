// Package generator turns a problem description into either a chat reply or
// an importable n8n workflow by prompting the configured LLM.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/llm"
)

const (
	workflowMaxTokens = 4000
	chatMaxTokens     = 1000
)

var (
	ErrEmptyProblem = fmt.Errorf("problem description is required: %w", common.ErrPrecondition)
	ErrInvalidJSON  = fmt.Errorf("generated workflow is not valid JSON: %w", common.ErrDataShape)
)

type Request struct {
	ProblemDescription string              `json:"problemDescription"`
	BusinessType       string              `json:"businessType"`
	Complexity         string              `json:"complexity"`
	Context            string              `json:"context"`
	IsChat             bool                `json:"isChat"`
	History            []model.ChatMessage `json:"history"`
}

// Result carries Response in chat mode and Workflow otherwise.
type Result struct {
	Response string
	Workflow *model.GeneratedWorkflow
}

type Proxy struct {
	llm llm.LLMClient
	log *zap.Logger
}

func NewProxy(client llm.LLMClient, log *zap.Logger) *Proxy {
	return &Proxy{llm: client, log: log}
}

func (p *Proxy) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.ProblemDescription) == "" {
		return nil, ErrEmptyProblem
	}

	if req.IsChat {
		text, err := p.call(ctx, BuildChatPrompt(req), chatMaxTokens, "chat")
		if err != nil {
			return nil, err
		}
		return &Result{Response: text}, nil
	}

	text, err := p.call(ctx, BuildWorkflowPrompt(req), workflowMaxTokens, "workflow")
	if err != nil {
		return nil, err
	}

	wf, err := ParseWorkflow(text)
	if err != nil {
		p.log.Warn("generated workflow rejected",
			zap.String("prompt_version", PromptVersion),
			zap.Int("response_chars", len(text)),
		)
		return nil, err
	}
	return &Result{Workflow: wf}, nil
}

func (p *Proxy) call(ctx context.Context, prompt string, maxTokens int, mode string) (string, error) {
	text, err := p.llm.Generate(ctx, prompt, llm.WithMaxTokens(maxTokens))
	if err != nil {
		if errors.Is(err, common.ErrMisconfigured) {
			p.log.Error("LLM API key not configured", zap.String("mode", mode))
		} else {
			p.log.Error("LLM call failed", zap.String("mode", mode), zap.Error(err))
		}
		return "", err
	}
	return text, nil
}

// ParseWorkflow parses model output as a JSON object. The only repair is a
// retry on the first-brace to last-brace substring; Raw is the text that
// parsed.
func ParseWorkflow(text string) (*model.GeneratedWorkflow, error) {
	raw := strings.TrimSpace(text)
	if doc, ok := decodeObject(raw); ok {
		return model.NewGeneratedWorkflow(doc, raw), nil
	}

	if sub, ok := common.ExtractJSONObject(text); ok {
		if doc, ok := decodeObject(sub); ok {
			return model.NewGeneratedWorkflow(doc, sub), nil
		}
	}
	return nil, ErrInvalidJSON
}

func decodeObject(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}
