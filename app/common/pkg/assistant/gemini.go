package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel 未配置模型时使用
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiCompleter 基于 Google GenAI SDK 的实现
type GeminiCompleter struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiCompleter 创建 Gemini 模型
func NewGeminiCompleter(ctx context.Context, opts Options) (*GeminiCompleter, error) {
	opts = opts.withDefaults()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	name := opts.Model
	if name == "" {
		name = DefaultGeminiModel
	}
	return &GeminiCompleter{
		client: client,
		model:  name,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(opts.Temperature),
			MaxOutputTokens: int32(opts.MaxTokens),
		},
	}, nil
}

// Complete 实现 Completer
func (c *GeminiCompleter) Complete(ctx context.Context, system string, history []Message, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleModel)
		if m.Sender == SenderUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	cfg := *c.config
	cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
