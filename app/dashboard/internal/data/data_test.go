package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	db, err := sql.Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	d, err := newData(db, DriverSQLite)
	require.NoError(t, err)

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	d.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return d
}

func TestRebind(t *testing.T) {
	d := &Data{driver: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", d.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	d.driver = DriverSQLite
	assert.Equal(t, "a = ?", d.rebind("a = ?"))
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(newTestData(t), log.DefaultLogger)

	_, err := r.GetUser(ctx, "auth0|1")
	assert.Equal(t, "USER_NOT_FOUND", kerrors.Reason(err))

	created, err := r.CreateUser(ctx, &domain.User{UserID: "auth0|1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = r.CreateUser(ctx, &domain.User{UserID: "auth0|1", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created, "existing user must not be overwritten")

	u, err := r.GetUser(ctx, "auth0|1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Empty(t, u.RecentSearches)
	assert.NotNil(t, u.Preferences)

	u.Preferences = map[string]any{"rulePreferences": "no frame"}
	require.NoError(t, r.UpdateUser(ctx, u))
	require.NoError(t, r.SaveRecentSearches(ctx, "auth0|1", []string{"acme", "texas"}))

	u, err = r.GetUser(ctx, "auth0|1")
	require.NoError(t, err)
	assert.Equal(t, "no frame", u.Preferences["rulePreferences"])
	assert.Equal(t, []string{"acme", "texas"}, u.RecentSearches)
	assert.True(t, u.UpdatedAt.After(u.CreatedAt))

	err = r.SaveRecentSearches(ctx, "missing", nil)
	assert.Equal(t, "USER_NOT_FOUND", kerrors.Reason(err))
}

func TestSubmissionRepo(t *testing.T) {
	ctx := context.Background()
	r := NewSubmissionRepo(newTestData(t), log.DefaultLogger)

	for _, id := range []string{"sub_b", "sub_a"} {
		require.NoError(t, r.CreateSubmission(ctx, &domain.Submission{
			UserID: "u1",
			Submission: policy.Submission{
				SubmissionID:   id,
				Client:         "Client " + id,
				AppetiteScore:  50,
				AppetiteStatus: policy.AppetiteGood,
				Status:         "Review Required",
				DetailedInfo:   &policy.DetailedInfo{Industry: "Retail"},
			},
		}))
	}

	list, err := r.ListSubmissions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sub_b", list[0].SubmissionID, "ordered by creation time")
	assert.Equal(t, "Retail", list[0].DetailedInfo.Industry)

	other, err := r.ListSubmissions(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = r.GetSubmission(ctx, "u2", "sub_a")
	assert.Equal(t, "SUBMISSION_NOT_FOUND", kerrors.Reason(err))

	updated, err := r.UpdateAppetite(ctx, "u1", "sub_a", domain.AppetiteUpdate{
		AppetiteScore: 15, AppetiteStatus: policy.AppetitePoor, Status: "Declined",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.AppetiteScore)

	got, err := r.GetSubmission(ctx, "u1", "sub_a")
	require.NoError(t, err)
	assert.Equal(t, policy.AppetitePoor, got.AppetiteStatus)
	assert.Equal(t, "Declined", got.Status)
	assert.Equal(t, "Client sub_a", got.Client)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	_, err = r.UpdateAppetite(ctx, "u1", "nope", domain.AppetiteUpdate{})
	assert.Equal(t, "SUBMISSION_NOT_FOUND", kerrors.Reason(err))
}

func TestGuidelineRepo(t *testing.T) {
	ctx := context.Background()
	r := NewGuidelineRepo(newTestData(t), log.DefaultLogger)

	require.NoError(t, r.CreateGuideline(ctx, &domain.Guideline{
		UserID: "u1", GuidelineID: "g1", Title: "Property", Rules: []string{"TIV over 10M"},
	}))
	require.NoError(t, r.CreateGuideline(ctx, &domain.Guideline{
		UserID: "u1", GuidelineID: "g2", Title: "Imported", Source: "https://example.com/rules",
	}))

	list, err := r.ListGuidelines(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"TIV over 10M"}, list[0].Rules)
	assert.Equal(t, []string{}, list[1].Rules)
	assert.Equal(t, "https://example.com/rules", list[1].Source)
}
