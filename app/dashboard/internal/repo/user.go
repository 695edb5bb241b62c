package repo

import (
	"context"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// UserRepo 用户仓库接口
type UserRepo interface {
	// GetUser 获取用户，不存在时返回 USER_NOT_FOUND
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// CreateUser 创建用户，已存在时返回 false
	CreateUser(ctx context.Context, u *domain.User) (bool, error)
	// UpdateUser 更新姓名、邮箱与偏好
	UpdateUser(ctx context.Context, u *domain.User) error
	// SaveRecentSearches 覆盖保存最近搜索
	SaveRecentSearches(ctx context.Context, userID string, searches []string) error
}
