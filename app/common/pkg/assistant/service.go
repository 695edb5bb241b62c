package assistant

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/optimate/optimate/app/common/pkg/logger"
)

var errNotConfigured = errors.New("llm provider not configured")

// Service 对话服务：限流后调用模型，任何失败都退回关键词应答
type Service struct {
	completer Completer
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewService 创建对话服务，completer 为 nil 时只使用关键词应答
func NewService(completer Completer, limiter *rate.Limiter) *Service {
	return &Service{completer: completer, limiter: limiter, now: time.Now}
}

// NewLimiter 按每分钟请求数和突发量创建限流器
func NewLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// Enabled 是否配置了模型
func (s *Service) Enabled() bool {
	return s.completer != nil
}

// Chat 回答一次提问，guidelines 会追加到系统提示词中
func (s *Service) Chat(ctx context.Context, req *Request, guidelines ...string) *Reply {
	text, err := s.complete(ctx, req, guidelines)
	if err != nil {
		logger.Log.Warnf("assistant fallback: %v", err)
		return &Reply{
			Response:  Fallback(req.Message, req.PolicyContext),
			Timestamp: s.now(),
			Fallback:  true,
		}
	}
	return &Reply{Response: text, Timestamp: s.now()}
}

func (s *Service) complete(ctx context.Context, req *Request, guidelines []string) (string, error) {
	if s.completer == nil {
		return "", errNotConfigured
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return s.completer.Complete(ctx, SystemPrompt(req.PolicyContext, guidelines...), req.Messages, req.Message)
}
