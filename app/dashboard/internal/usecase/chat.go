package usecase

import (
	"context"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/assistant"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

// ChatUseCase 承保助手对话
type ChatUseCase struct {
	assistant  *assistant.Service
	guidelines repo.GuidelineRepo
	defaults   []string
	log        *log.Helper
}

// NewChatUseCase 创建对话业务逻辑实例，c.Guidelines 按行拆分为默认规则
func NewChatUseCase(svc *assistant.Service, guidelines repo.GuidelineRepo, c *conf.Assistant, logger log.Logger) *ChatUseCase {
	uc := &ChatUseCase{assistant: svc, guidelines: guidelines, log: log.NewHelper(logger)}
	if c != nil {
		for _, line := range strings.Split(c.Guidelines, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				uc.defaults = append(uc.defaults, line)
			}
		}
	}
	return uc
}

// Chat 回答提问；读取用户规则失败时只使用默认规则
func (uc *ChatUseCase) Chat(ctx context.Context, userID string, req *assistant.Request) *assistant.Reply {
	rules := append([]string(nil), uc.defaults...)
	if uc.guidelines != nil {
		list, err := uc.guidelines.ListGuidelines(ctx, userID)
		if err != nil {
			uc.log.Warnf("failed to load guidelines for %s: %v", userID, err)
		}
		for _, g := range list {
			rules = append(rules, g.Rules...)
		}
	}
	return uc.assistant.Chat(ctx, req, rules...)
}
