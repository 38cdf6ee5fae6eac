package llm

import (
	"context"
)

const defaultMaxTokens = 1000

type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

type GenerateOptions struct {
	MaxTokens int
}

type GenerateOption func(*GenerateOptions)

// WithMaxTokens bounds the size of the generated output.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

func buildOptions(opts []GenerateOption) GenerateOptions {
	o := GenerateOptions{MaxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
