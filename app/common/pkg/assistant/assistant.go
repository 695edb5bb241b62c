// Package assistant 实现承保助手：构建提示词、调用大模型，失败时退回关键词应答。
package assistant

import (
	"context"
	"time"
)

// 发送方
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message 对话历史中的一条消息
type Message struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// PolicyContext 当前正在讨论的保单
type PolicyContext struct {
	AccountName      string   `json:"accountName,omitempty"`
	LineOfBusiness   string   `json:"lineOfBusiness,omitempty"`
	Premium          float64  `json:"premium,omitempty"`
	AppetiteScore    *float64 `json:"appetiteScore,omitempty"`
	State            string   `json:"state,omitempty"`
	BusinessType     string   `json:"businessType,omitempty"`
	ConstructionType string   `json:"constructionType,omitempty"`
	TIV              float64  `json:"tiv,omitempty"`
	Status           string   `json:"status,omitempty"`
	WhySurfaced      []string `json:"whySurfaced,omitempty"`
}

// Request 对话请求
type Request struct {
	Message       string         `json:"message"`
	PolicyContext *PolicyContext `json:"policyContext,omitempty"`
	Messages      []Message      `json:"messages,omitempty"`
}

// Reply 对话应答，Fallback 表示由关键词应答生成
type Reply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Fallback  bool      `json:"fallback,omitempty"`
}

// Completer 大模型补全接口
type Completer interface {
	Complete(ctx context.Context, system string, history []Message, message string) (string, error)
}

// Options 模型参数
type Options struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// 默认采样参数，偏向事实性回答
const (
	DefaultTemperature = 0.15
	DefaultMaxTokens   = 500
)

func (o Options) withDefaults() Options {
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
