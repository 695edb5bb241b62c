package usecase

import (
	"context"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/optimate/optimate/app/common/pkg/guideline"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

// GuidelineImporter 从网页导入承保规则
type GuidelineImporter interface {
	Import(ctx context.Context, rawURL string) (*guideline.Imported, error)
}

// GuidelineUseCase 承保规则的业务逻辑
type GuidelineUseCase struct {
	repo     repo.GuidelineRepo
	importer GuidelineImporter
	log      *log.Helper
}

// NewGuidelineUseCase 创建承保规则业务逻辑实例
func NewGuidelineUseCase(repo repo.GuidelineRepo, importer GuidelineImporter, logger log.Logger) *GuidelineUseCase {
	return &GuidelineUseCase{repo: repo, importer: importer, log: log.NewHelper(logger)}
}

// List 列出用户的规则
func (uc *GuidelineUseCase) List(ctx context.Context, userID string) ([]*domain.Guideline, error) {
	return uc.repo.ListGuidelines(ctx, userID)
}

// Create 保存一组规则，标题和规则不能同时为空
func (uc *GuidelineUseCase) Create(ctx context.Context, userID, title string, rules []string, preferences map[string]any) (*domain.Guideline, error) {
	cleaned := make([]string, 0, len(rules))
	for _, r := range rules {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	title = strings.TrimSpace(title)
	if title == "" && len(cleaned) == 0 {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "title or rules are required")
	}
	return uc.save(ctx, &domain.Guideline{
		UserID:      userID,
		Title:       title,
		Rules:       cleaned,
		Preferences: preferences,
	})
}

// Import 抓取网页提取规则并保存
func (uc *GuidelineUseCase) Import(ctx context.Context, userID, rawURL string) (*domain.Guideline, error) {
	imported, err := uc.importer.Import(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		uc.log.Warnf("guideline import failed [%s]: %v", rawURL, err)
		return nil, kerrors.BadRequest("GUIDELINE_IMPORT_FAILED", err.Error())
	}
	return uc.save(ctx, &domain.Guideline{
		UserID: userID,
		Title:  imported.Title,
		Rules:  imported.Rules,
		Source: imported.Source,
	})
}

func (uc *GuidelineUseCase) save(ctx context.Context, g *domain.Guideline) (*domain.Guideline, error) {
	g.GuidelineID = "gl_" + uuid.NewString()
	if g.Preferences == nil {
		g.Preferences = map[string]any{}
	}
	if err := uc.repo.CreateGuideline(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
