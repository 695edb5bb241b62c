package usecase

import (
	"context"
	"strings"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/query"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

// UserUseCase 用户档案与最近搜索
type UserUseCase struct {
	repo repo.UserRepo
	log  *log.Helper
}

// NewUserUseCase 创建用户业务逻辑实例
func NewUserUseCase(repo repo.UserRepo, logger log.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, log: log.NewHelper(logger)}
}

// Get 获取当前用户档案
func (uc *UserUseCase) Get(ctx context.Context, userID string) (*domain.User, error) {
	return uc.repo.GetUser(ctx, userID)
}

// Ensure 用户不存在时创建，已存在时返回现有档案。
// 注册时暂存的资料只写入一次：档案已存在但尚未记录 signedUpAt 时合并进去。
func (uc *UserUseCase) Ensure(ctx context.Context, s *domain.Session, name, email string, pending *domain.PendingSignup) (*domain.User, error) {
	u, err := uc.repo.GetUser(ctx, s.Sub)
	if err == nil {
		if pending == nil || signedUp(u) {
			return u, nil
		}
		applyPending(u, pending)
		if err := uc.repo.UpdateUser(ctx, u); err != nil {
			return nil, err
		}
		uc.log.Infof("applied pending signup to user profile %s", s.Sub)
		return uc.repo.GetUser(ctx, s.Sub)
	}
	if !kerrors.IsNotFound(err) {
		return nil, err
	}

	u = &domain.User{
		UserID:         s.Sub,
		Name:           firstNonEmpty(name, s.Name),
		Email:          firstNonEmpty(email, s.Email),
		Preferences:    map[string]any{},
		RecentSearches: []string{},
	}
	if pending != nil {
		applyPending(u, pending)
	}

	created, err := uc.repo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if created {
		uc.log.Infof("created user profile %s", s.Sub)
	}
	return uc.repo.GetUser(ctx, s.Sub)
}

func signedUp(u *domain.User) bool {
	_, ok := u.Preferences["signedUpAt"]
	return ok
}

// applyPending 写入注册资料并记录 signedUpAt，缺省时取当前时间
func applyPending(u *domain.User, pending *domain.PendingSignup) {
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	u.Name = firstNonEmpty(pending.Name, u.Name)
	u.Email = firstNonEmpty(pending.Email, u.Email)
	if pending.RulePreferences != "" {
		u.Preferences["rulePreferences"] = pending.RulePreferences
	}
	at := pending.SignedUpAt
	if at.IsZero() {
		at = time.Now()
	}
	u.Preferences["signedUpAt"] = at.UTC().Format("2006-01-02T15:04:05Z")
}

// Update 修改姓名、邮箱和偏好，空值保留原值
func (uc *UserUseCase) Update(ctx context.Context, userID, name, email string, preferences map[string]any) (*domain.User, error) {
	u, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Name = firstNonEmpty(name, u.Name)
	u.Email = firstNonEmpty(email, u.Email)
	if preferences != nil {
		u.Preferences = preferences
	}
	if err := uc.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return uc.repo.GetUser(ctx, userID)
}

// RecentSearches 最近搜索，用户不存在时为空
func (uc *UserUseCase) RecentSearches(ctx context.Context, userID string) (query.RecentSearches, error) {
	u, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		if kerrors.IsNotFound(err) {
			return query.RecentSearches{}, nil
		}
		return nil, err
	}
	return query.RecentSearches(u.RecentSearches), nil
}

// PushRecentSearch 记录一次搜索
func (uc *UserUseCase) PushRecentSearch(ctx context.Context, userID, q string) (query.RecentSearches, error) {
	if strings.TrimSpace(q) == "" {
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "query is required")
	}
	return uc.modifyRecent(ctx, userID, func(r query.RecentSearches) query.RecentSearches { return r.Push(q) })
}

// RemoveRecentSearch 删除一条最近搜索
func (uc *UserUseCase) RemoveRecentSearch(ctx context.Context, userID, q string) (query.RecentSearches, error) {
	return uc.modifyRecent(ctx, userID, func(r query.RecentSearches) query.RecentSearches { return r.Remove(q) })
}

// ClearRecentSearches 清空最近搜索
func (uc *UserUseCase) ClearRecentSearches(ctx context.Context, userID string) (query.RecentSearches, error) {
	return uc.modifyRecent(ctx, userID, func(r query.RecentSearches) query.RecentSearches { return r.Clear() })
}

func (uc *UserUseCase) modifyRecent(ctx context.Context, userID string, fn func(query.RecentSearches) query.RecentSearches) (query.RecentSearches, error) {
	u, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := fn(query.RecentSearches(u.RecentSearches))
	if err := uc.repo.SaveRecentSearches(ctx, userID, next); err != nil {
		return nil, err
	}
	return next, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
