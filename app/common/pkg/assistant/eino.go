package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoCompleter 基于 eino ChatModel 的实现，兼容 OpenAI 协议的服务均可使用
type EinoCompleter struct {
	chatModel model.BaseChatModel
}

// NewEinoCompleter 包装已有的 ChatModel
func NewEinoCompleter(cm model.BaseChatModel) *EinoCompleter {
	return &EinoCompleter{chatModel: cm}
}

// NewOpenAICompleter 创建 OpenAI 兼容的模型
func NewOpenAICompleter(ctx context.Context, opts Options) (*EinoCompleter, error) {
	opts = opts.withDefaults()
	temperature := opts.Temperature
	maxTokens := opts.MaxTokens
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     opts.BaseURL,
		APIKey:      opts.APIKey,
		Model:       opts.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewEinoCompleter(cm), nil
}

// Complete 实现 Completer
func (c *EinoCompleter) Complete(ctx context.Context, system string, history []Message, message string) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{Role: schema.System, Content: system})
	for _, m := range history {
		role := schema.Assistant
		if m.Sender == SenderUser {
			role = schema.User
		}
		messages = append(messages, &schema.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: message})

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
