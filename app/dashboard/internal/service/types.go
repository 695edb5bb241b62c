package service

import (
	"time"

	"github.com/optimate/optimate/app/common/pkg/query"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// ProfileRequest 创建或更新用户档案
type ProfileRequest struct {
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	Preferences   map[string]any        `json:"preferences"`
	PendingSignup *domain.PendingSignup `json:"pendingSignup"`
}

type RecentSearchRequest struct {
	Query string `json:"query"`
}

type RecentSearchesReply struct {
	Searches []string `json:"searches"`
}

type SubmissionRequest struct {
	ID string `json:"id"`
}

// UpdateSubmissionRequest 修改 appetite 评分与状态
type UpdateSubmissionRequest struct {
	ID             string `json:"id"`
	AppetiteScore  int    `json:"appetiteScore"`
	AppetiteStatus string `json:"appetiteStatus"`
	Status         string `json:"status"`
}

// PortfolioReply 查询结果页和汇总指标
type PortfolioReply struct {
	query.Result
	Summary  query.Summary `json:"summary"`
	LoadedAt time.Time     `json:"loadedAt"`
}

// ReduceRequest 在客户端当前查询上应用一次 action
type ReduceRequest struct {
	Query  query.Query `json:"query"`
	Action string      `json:"action"`
	Value  string      `json:"value"`
	Page   int         `json:"page"`
}

// ReduceReply 变更后的查询及其结果
type ReduceReply struct {
	PortfolioReply
	Query query.Query `json:"query"`
}

type SuggestRequest struct {
	Q string `json:"q"`
}

type SuggestReply struct {
	Suggestions []query.Suggestion `json:"suggestions"`
}

type HeatmapRequest struct {
	Field       string  `json:"field"`
	Sensitivity float64 `json:"sensitivity"`
}

type ReloadReply struct {
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loadedAt"`
}

type GuidelineRequest struct {
	Title       string         `json:"title"`
	Rules       []string       `json:"rules"`
	Preferences map[string]any `json:"preferences"`
}

type ImportGuidelineRequest struct {
	URL string `json:"url"`
}

type GuidelinesReply struct {
	Guidelines []*domain.Guideline `json:"guidelines"`
}
