package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/assistant"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
)

// NewAssistant 按配置初始化承保助手，未配置模型时只提供关键词应答
func NewAssistant(c *conf.Assistant, logger log.Logger) (*assistant.Service, error) {
	helper := log.NewHelper(logger)
	if c == nil {
		helper.Warn("assistant not configured, using keyword fallback only")
		return assistant.NewService(nil, nil), nil
	}

	completer, err := assistant.NewCompleter(context.Background(), assistant.Options{
		Provider:    c.Provider,
		BaseURL:     c.BaseUrl,
		APIKey:      c.ApiKey,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   int(c.MaxTokens),
	})
	if err != nil {
		helper.Errorf("Failed to init assistant model: %v", err)
		return nil, err
	}
	if completer == nil {
		helper.Warn("assistant provider or api key missing, using keyword fallback only")
	} else {
		helper.Infof("assistant enabled: provider=%s model=%s", c.Provider, c.Model)
	}

	return assistant.NewService(completer, assistant.NewLimiter(int(c.Rpm), int(c.Qps))), nil
}
