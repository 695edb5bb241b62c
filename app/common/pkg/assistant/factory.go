package assistant

import (
	"context"
	"fmt"
	"strings"
)

// 支持的模型提供方
const (
	ProviderNone   = ""
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewCompleter 根据配置创建模型实例。
// 未配置提供方或缺少 API Key 时返回 nil，调用方应全部走关键词应答。
func NewCompleter(ctx context.Context, opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == ProviderNone || opts.APIKey == "" {
		return nil, nil
	}

	switch provider {
	case ProviderOpenAI:
		c, err := NewOpenAICompleter(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderGemini:
		c, err := NewGeminiCompleter(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}
