package data

import (
	"context"
	"database/sql"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/goccy/go-json"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

type userRepo struct {
	data *Data
	log  *log.Helper
}

func NewUserRepo(data *Data, logger log.Logger) repo.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *userRepo) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := r.data.db.QueryRowContext(ctx, r.data.rebind(
		`SELECT user_id, name, email, preferences, recent_searches, created_at, updated_at FROM users WHERE user_id = ?`),
		userID)

	var (
		u                    domain.User
		prefs, recent        string
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.UserID, &u.Name, &u.Email, &prefs, &recent, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kerrors.NotFound("USER_NOT_FOUND", "user not found")
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
		r.log.Warnf("invalid preferences for user %s: %v", userID, err)
	}
	if err := json.Unmarshal([]byte(recent), &u.RecentSearches); err != nil {
		r.log.Warnf("invalid recent searches for user %s: %v", userID, err)
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	if u.RecentSearches == nil {
		u.RecentSearches = []string{}
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *domain.User) (bool, error) {
	prefs, err := marshalMap(u.Preferences)
	if err != nil {
		return false, err
	}
	recent, err := marshalList(u.RecentSearches)
	if err != nil {
		return false, err
	}

	now := r.data.timestamp()
	res, err := r.data.db.ExecContext(ctx, r.data.rebind(
		`INSERT INTO users (user_id, name, email, preferences, recent_searches, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (user_id) DO NOTHING`),
		u.UserID, u.Name, u.Email, prefs, recent, now, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, u *domain.User) error {
	prefs, err := marshalMap(u.Preferences)
	if err != nil {
		return err
	}
	res, err := r.data.db.ExecContext(ctx, r.data.rebind(
		`UPDATE users SET name = ?, email = ?, preferences = ?, updated_at = ? WHERE user_id = ?`),
		u.Name, u.Email, prefs, r.data.timestamp(), u.UserID)
	if err != nil {
		return err
	}
	return requireAffected(res, kerrors.NotFound("USER_NOT_FOUND", "user not found"))
}

func (r *userRepo) SaveRecentSearches(ctx context.Context, userID string, searches []string) error {
	recent, err := marshalList(searches)
	if err != nil {
		return err
	}
	res, err := r.data.db.ExecContext(ctx, r.data.rebind(
		`UPDATE users SET recent_searches = ?, updated_at = ? WHERE user_id = ?`),
		recent, r.data.timestamp(), userID)
	if err != nil {
		return err
	}
	return requireAffected(res, kerrors.NotFound("USER_NOT_FOUND", "user not found"))
}

func marshalMap(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func marshalList(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
