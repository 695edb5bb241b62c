package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
	"github.com/optimate/optimate/app/dashboard/internal/seed"
)

// SubmissionUseCase 用户提交的业务逻辑
type SubmissionUseCase struct {
	repo repo.SubmissionRepo
	log  *log.Helper
	now  func() time.Time
}

// NewSubmissionUseCase 创建提交业务逻辑实例
func NewSubmissionUseCase(repo repo.SubmissionRepo, logger log.Logger) *SubmissionUseCase {
	return &SubmissionUseCase{repo: repo, log: log.NewHelper(logger), now: time.Now}
}

// List 列出用户的提交，第一次访问时写入示例数据
func (uc *SubmissionUseCase) List(ctx context.Context, userID string) ([]*domain.Submission, error) {
	list, err := uc.repo.ListSubmissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}

	samples, err := seed.Samples()
	if err != nil {
		uc.log.Errorf("failed to load sample submissions: %v", err)
		return list, nil
	}
	for _, s := range samples {
		if _, err := uc.Create(ctx, userID, s); err != nil {
			return nil, fmt.Errorf("seed submissions: %w", err)
		}
	}
	uc.log.Infof("seeded %d sample submissions for %s", len(samples), userID)
	return uc.repo.ListSubmissions(ctx, userID)
}

// Get 获取单个提交
func (uc *SubmissionUseCase) Get(ctx context.Context, userID, submissionID string) (*domain.Submission, error) {
	return uc.repo.GetSubmission(ctx, userID, submissionID)
}

// Create 保存新提交，分配 submissionId 并补全派生字段
func (uc *SubmissionUseCase) Create(ctx context.Context, userID string, in *policy.Submission) (*domain.Submission, error) {
	if in == nil || strings.TrimSpace(in.Client) == "" {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "client is required")
	}
	if in.AppetiteScore < 0 || in.AppetiteScore > 100 {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "appetiteScore must be between 0 and 100")
	}

	now := uc.now()
	s := &domain.Submission{Submission: *in.Clone(), UserID: userID}
	s.SubmissionID = newSubmissionID(now)
	s.CreatedAt = now
	if s.AppetiteStatus == "" {
		s.AppetiteStatus = policy.AppetiteStatus(float64(s.AppetiteScore) / 100)
	}
	if s.Recommendation == "" {
		s.Recommendation = policy.Recommendation(s.AppetiteScore)
	}
	if s.Company == "" {
		s.Company = s.Client
	}
	if s.Premium == "" && s.PremiumValue > 0 {
		s.Premium = policy.FormatPremium(s.PremiumValue)
	}
	if s.WhySurfaced == nil {
		s.WhySurfaced = []string{}
	}
	if s.MissingInfo == nil {
		s.MissingInfo = []string{}
	}

	if err := uc.repo.CreateSubmission(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateAppetite 修改评分与状态；appetiteStatus 为空时按分数推导
func (uc *SubmissionUseCase) UpdateAppetite(ctx context.Context, userID, submissionID string, u domain.AppetiteUpdate) (*domain.Submission, error) {
	if u.AppetiteScore < 0 || u.AppetiteScore > 100 {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "appetiteScore must be between 0 and 100")
	}
	switch u.AppetiteStatus {
	case "":
		u.AppetiteStatus = policy.AppetiteStatus(float64(u.AppetiteScore) / 100)
	case policy.AppetiteGood, policy.AppetiteMissing, policy.AppetitePoor:
	default:
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "unknown appetiteStatus "+u.AppetiteStatus)
	}
	return uc.repo.UpdateAppetite(ctx, userID, submissionID, u)
}

// newSubmissionID 生成形如 sub_<毫秒时间戳>_<9位随机串> 的编号
func newSubmissionID(now time.Time) string {
	r := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("sub_%d_%s", now.UnixMilli(), r[:9])
}
