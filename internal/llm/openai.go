package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/agenthands/automationvault/internal/core/common"
)

type OpenAIClient struct {
	client  *openai.Client
	model   string
	service string
}

func NewOpenAIClient(apiKey string, model string, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		service: "openai",
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := buildOptions(opts)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: o.MaxTokens,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", c.wrapError(err)
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", &common.UpstreamError{Service: c.service, Status: http.StatusOK, Body: "no response choices"}
}

func (c *OpenAIClient) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &common.UpstreamError{Service: c.service, Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &common.UpstreamError{Service: c.service, Status: reqErr.HTTPStatusCode, Body: err.Error()}
	}

	return &common.UpstreamError{Service: c.service, Body: err.Error()}
}
