package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/agenthands/automationvault/internal/core/common"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := buildOptions(opts)

	model := c.client.GenerativeModel(c.model)
	model.SetMaxOutputTokens(int32(o.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", geminiError(err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}

	return "", &common.UpstreamError{Service: "gemini", Status: http.StatusOK, Body: "no response candidates or content"}
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func geminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &common.UpstreamError{Service: "gemini", Status: gErr.Code, Body: gErr.Message}
	}
	return &common.UpstreamError{Service: "gemini", Body: err.Error()}
}
