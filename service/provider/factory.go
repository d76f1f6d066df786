package provider

import (
	"fmt"

	"vanta-agent-backend/model"
)

// New 按存储的供应商枚举选择适配器变体
func New(providerType string, cfg Config) (Adapter, error) {
	switch providerType {
	case model.ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case model.ProviderGemini:
		return NewGeminiAdapter(cfg), nil
	case model.ProviderGroq:
		return NewGroqAdapter(cfg), nil
	case model.ProviderOpenRouter:
		return NewOpenRouterAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVariant, providerType)
	}
}

// AvailableModels 各供应商可选模型清单，供控制台下拉使用
func AvailableModels(providerType string) []string {
	switch providerType {
	case model.ProviderOpenAI:
		return []string{
			"gpt-4-turbo-preview",
			"gpt-4",
			"gpt-3.5-turbo",
			"gpt-4o",
			"gpt-4o-mini",
		}
	case model.ProviderGemini:
		return []string{
			"gemini-1.5-pro",
			"gemini-1.5-flash",
			"gemini-1.0-pro",
			"gemini-pro-vision",
		}
	case model.ProviderGroq:
		return []string{
			"llama-3.1-70b-versatile",
			"llama-3.1-8b-instant",
			"mixtral-8x7b-32768",
			"gemma-7b-it",
		}
	case model.ProviderOpenRouter:
		return []string{
			"anthropic/claude-3-opus",
			"anthropic/claude-3-sonnet",
			"meta-llama/llama-3.1-70b-instruct",
			"google/gemini-pro",
			"openai/gpt-4o",
		}
	default:
		return nil
	}
}

// ProviderTypes 全部受支持的供应商枚举
func ProviderTypes() []string {
	return []string{
		model.ProviderOpenAI,
		model.ProviderGemini,
		model.ProviderGroq,
		model.ProviderOpenRouter,
	}
}
