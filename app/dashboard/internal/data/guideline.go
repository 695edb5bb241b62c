package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/goccy/go-json"

	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/repo"
)

type guidelineRepo struct {
	data *Data
	log  *log.Helper
}

func NewGuidelineRepo(data *Data, logger log.Logger) repo.GuidelineRepo {
	return &guidelineRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *guidelineRepo) ListGuidelines(ctx context.Context, userID string) ([]*domain.Guideline, error) {
	rows, err := r.data.db.QueryContext(ctx, r.data.rebind(
		`SELECT guideline_id, title, rules, preferences, source, created_at, updated_at
		FROM guidelines WHERE user_id = ? ORDER BY created_at ASC, guideline_id ASC`),
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Guideline, 0)
	for rows.Next() {
		var (
			g                    = &domain.Guideline{UserID: userID}
			rules, prefs         string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&g.GuidelineID, &g.Title, &rules, &prefs, &g.Source, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(rules), &g.Rules); err != nil {
			r.log.Warnf("invalid rules for guideline %s: %v", g.GuidelineID, err)
		}
		if err := json.Unmarshal([]byte(prefs), &g.Preferences); err != nil {
			r.log.Warnf("invalid preferences for guideline %s: %v", g.GuidelineID, err)
		}
		if g.Rules == nil {
			g.Rules = []string{}
		}
		if g.Preferences == nil {
			g.Preferences = map[string]any{}
		}
		g.CreatedAt = parseTime(createdAt)
		g.UpdatedAt = parseTime(updatedAt)
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *guidelineRepo) CreateGuideline(ctx context.Context, g *domain.Guideline) error {
	rules, err := marshalList(g.Rules)
	if err != nil {
		return err
	}
	prefs, err := marshalMap(g.Preferences)
	if err != nil {
		return err
	}
	now := r.data.now()
	g.CreatedAt, g.UpdatedAt = now, now

	_, err = r.data.db.ExecContext(ctx, r.data.rebind(
		`INSERT INTO guidelines (user_id, guideline_id, title, rules, preferences, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		g.UserID, g.GuidelineID, g.Title, rules, prefs, g.Source, formatTime(now), formatTime(now))
	return err
}
