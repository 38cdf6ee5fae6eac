package llm

import (
	"context"
	"fmt"

	"github.com/agenthands/automationvault/internal/core/common"
)

// Unconfigured stands in for a provider whose API key is missing.
type Unconfigured struct {
	Provider string
}

func (u *Unconfigured) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	return "", fmt.Errorf("%s api key: %w", u.Provider, common.ErrMisconfigured)
}

// IsConfigured reports whether c can reach a provider.
func IsConfigured(c LLMClient) bool {
	if c == nil {
		return false
	}
	_, missing := c.(*Unconfigured)
	return !missing
}
