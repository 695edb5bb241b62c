package repo

import (
	"context"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// GuidelineRepo 承保规则仓库接口
type GuidelineRepo interface {
	ListGuidelines(ctx context.Context, userID string) ([]*domain.Guideline, error)
	CreateGuideline(ctx context.Context, g *domain.Guideline) error
}
