package repo

import (
	"context"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// SubmissionRepo 提交仓库接口
type SubmissionRepo interface {
	// ListSubmissions 按创建时间列出用户的提交
	ListSubmissions(ctx context.Context, userID string) ([]*domain.Submission, error)
	// GetSubmission 获取单个提交，不存在时返回 SUBMISSION_NOT_FOUND
	GetSubmission(ctx context.Context, userID, submissionID string) (*domain.Submission, error)
	// CreateSubmission 保存新提交
	CreateSubmission(ctx context.Context, s *domain.Submission) error
	// UpdateAppetite 修改评分与状态并返回更新后的提交
	UpdateAppetite(ctx context.Context, userID, submissionID string, u domain.AppetiteUpdate) (*domain.Submission, error)
}
