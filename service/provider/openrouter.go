package provider

import (
	"context"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterAdapter 复用 OpenAI 的流语义，仅接入点不同
type OpenRouterAdapter struct {
	inner *OpenAIAdapter
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	return &OpenRouterAdapter{inner: NewOpenAIAdapter(cfg)}
}

func (a *OpenRouterAdapter) SupportsToolCalling() bool {
	return true
}

func (a *OpenRouterAdapter) StreamChat(ctx context.Context, messages []Message, tools []ToolDefinition) (Stream, error) {
	return a.inner.StreamChat(ctx, messages, tools)
}
