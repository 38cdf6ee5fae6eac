package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/agenthands/automationvault/internal/core/common"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := buildOptions(opts)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: o.MaxTokens,
	})
	if err != nil {
		return "", claudeError(err)
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", &common.UpstreamError{Service: "claude", Status: http.StatusOK, Body: "no content received"}
}

func claudeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &common.UpstreamError{Service: "claude", Status: reqErr.StatusCode, Body: err.Error()}
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return &common.UpstreamError{Service: "claude", Body: fmt.Sprintf("%s: %s", apiErr.Type, apiErr.Message)}
	}

	return &common.UpstreamError{Service: "claude", Body: err.Error()}
}
