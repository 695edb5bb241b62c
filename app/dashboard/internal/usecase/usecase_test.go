package usecase

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/optimate/optimate/app/common/pkg/assistant"
	"github.com/optimate/optimate/app/common/pkg/guideline"
	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/common/pkg/query"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
)

// mockUserRepo 模拟用户仓库
type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*domain.User{}}
}

func (m *mockUserRepo) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, kerrors.NotFound("USER_NOT_FOUND", "user not found")
	}
	c := *u
	c.RecentSearches = append([]string{}, u.RecentSearches...)
	return &c, nil
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *domain.User) (bool, error) {
	if _, ok := m.users[u.UserID]; ok {
		return false, nil
	}
	c := *u
	m.users[u.UserID] = &c
	return true, nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u *domain.User) error {
	if _, ok := m.users[u.UserID]; !ok {
		return kerrors.NotFound("USER_NOT_FOUND", "user not found")
	}
	c := *u
	m.users[u.UserID] = &c
	return nil
}

func (m *mockUserRepo) SaveRecentSearches(ctx context.Context, userID string, searches []string) error {
	u, ok := m.users[userID]
	if !ok {
		return kerrors.NotFound("USER_NOT_FOUND", "user not found")
	}
	u.RecentSearches = append([]string{}, searches...)
	return nil
}

// mockSubmissionRepo 模拟提交仓库
type mockSubmissionRepo struct {
	items []*domain.Submission
}

func (m *mockSubmissionRepo) ListSubmissions(ctx context.Context, userID string) ([]*domain.Submission, error) {
	var out []*domain.Submission
	for _, s := range m.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepo) GetSubmission(ctx context.Context, userID, submissionID string) (*domain.Submission, error) {
	for _, s := range m.items {
		if s.UserID == userID && s.SubmissionID == submissionID {
			return s, nil
		}
	}
	return nil, kerrors.NotFound("SUBMISSION_NOT_FOUND", "submission not found")
}

func (m *mockSubmissionRepo) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	m.items = append(m.items, s)
	return nil
}

func (m *mockSubmissionRepo) UpdateAppetite(ctx context.Context, userID, submissionID string, u domain.AppetiteUpdate) (*domain.Submission, error) {
	s, err := m.GetSubmission(ctx, userID, submissionID)
	if err != nil {
		return nil, err
	}
	s.AppetiteScore, s.AppetiteStatus = u.AppetiteScore, u.AppetiteStatus
	if u.Status != "" {
		s.Status = u.Status
	}
	return s, nil
}

// mockGuidelineRepo 模拟规则仓库
type mockGuidelineRepo struct {
	items []*domain.Guideline
	err   error
}

func (m *mockGuidelineRepo) ListGuidelines(ctx context.Context, userID string) ([]*domain.Guideline, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Guideline
	for _, g := range m.items {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGuidelineRepo) CreateGuideline(ctx context.Context, g *domain.Guideline) error {
	m.items = append(m.items, g)
	return nil
}

func TestUserUseCase_Ensure(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepo()
	uc := NewUserUseCase(r, log.DefaultLogger)
	s := &domain.Session{Sub: "auth0|1", Name: "Session Name", Email: "s@example.com"}

	u, err := uc.Ensure(ctx, s, "", "", &domain.PendingSignup{
		Name:            "Ada Lovelace",
		RulePreferences: "avoid frame construction",
		SignedUpAt:      time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.Name)
	assert.Equal(t, "s@example.com", u.Email)
	assert.Equal(t, "avoid frame construction", u.Preferences["rulePreferences"])
	assert.Equal(t, "2025-02-01T12:00:00Z", u.Preferences["signedUpAt"])

	again, err := uc.Ensure(ctx, s, "Other", "other@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", again.Name, "existing profile is returned unchanged")
}

func TestUserUseCase_EnsureAfterLogin(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepo()
	uc := NewUserUseCase(r, log.DefaultLogger)
	s := &domain.Session{Sub: "auth0|2", Name: "Idp Name", Email: "idp@example.com"}

	// 登录回调先创建档案
	u, err := uc.Ensure(ctx, s, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Idp Name", u.Name)
	assert.NotContains(t, u.Preferences, "signedUpAt")

	// 首次打开面板时提交注册资料
	u, err = uc.Ensure(ctx, s, "", "", &domain.PendingSignup{
		Name:            "Ada",
		RulePreferences: "avoid frame",
		SignedUpAt:      time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "idp@example.com", u.Email)
	assert.Equal(t, "avoid frame", u.Preferences["rulePreferences"])
	assert.Equal(t, "2025-03-04T05:06:07Z", u.Preferences["signedUpAt"])

	// 注册资料只写入一次
	u, err = uc.Ensure(ctx, s, "", "", &domain.PendingSignup{Name: "Someone Else", RulePreferences: "other"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "avoid frame", u.Preferences["rulePreferences"])
}

func TestUserUseCase_Update(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepo()
	uc := NewUserUseCase(r, log.DefaultLogger)

	_, err := uc.Update(ctx, "missing", "x", "", nil)
	assert.True(t, kerrors.IsNotFound(err))

	_, err = uc.Ensure(ctx, &domain.Session{Sub: "u1", Name: "A", Email: "a@example.com"}, "", "", nil)
	require.NoError(t, err)

	u, err := uc.Update(ctx, "u1", "", "b@example.com", map[string]any{"theme": "dark"})
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, "b@example.com", u.Email)
	assert.Equal(t, "dark", u.Preferences["theme"])
}

func TestUserUseCase_RecentSearches(t *testing.T) {
	ctx := context.Background()
	uc := NewUserUseCase(newMockUserRepo(), log.DefaultLogger)

	recent, err := uc.RecentSearches(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = uc.Ensure(ctx, &domain.Session{Sub: "u1"}, "", "", nil)
	require.NoError(t, err)

	for _, q := range []string{"a", "b", "c", "d", "e", "f", "c"} {
		_, err = uc.PushRecentSearch(ctx, "u1", q)
		require.NoError(t, err)
	}
	recent, err = uc.RecentSearches(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, query.RecentSearches{"c", "f", "e", "d", "b"}, recent)

	_, err = uc.PushRecentSearch(ctx, "u1", "  ")
	assert.Equal(t, "INVALID_ARGUMENT", kerrors.Reason(err))

	recent, err = uc.RemoveRecentSearch(ctx, "u1", "f")
	require.NoError(t, err)
	assert.Equal(t, query.RecentSearches{"c", "e", "d", "b"}, recent)

	recent, err = uc.ClearRecentSearches(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSubmissionUseCase_ListSeedsSamples(t *testing.T) {
	ctx := context.Background()
	r := &mockSubmissionRepo{}
	uc := NewSubmissionUseCase(r, log.DefaultLogger)

	list, err := uc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "TechCorp Industries", list[0].Client)
	for _, s := range list {
		assert.Regexp(t, `^sub_\d+_[0-9a-f]{9}$`, s.SubmissionID)
		assert.Equal(t, "u1", s.UserID)
	}

	list, err = uc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 3, "samples are only seeded once")
}

func TestSubmissionUseCase_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	r := &mockSubmissionRepo{}
	uc := NewSubmissionUseCase(r, log.DefaultLogger)

	_, err := uc.Create(ctx, "u1", &policy.Submission{})
	assert.Equal(t, "INVALID_ARGUMENT", kerrors.Reason(err))

	s, err := uc.Create(ctx, "u1", &policy.Submission{Client: "Acme", AppetiteScore: 72, PremiumValue: 1_500_000})
	require.NoError(t, err)
	assert.Equal(t, policy.AppetiteGood, s.AppetiteStatus)
	assert.Equal(t, policy.RecommendApprove, s.Recommendation)
	assert.Equal(t, "Acme", s.Company)
	assert.Equal(t, "$1.5M", s.Premium)
	assert.NotNil(t, s.WhySurfaced)

	updated, err := uc.UpdateAppetite(ctx, "u1", s.SubmissionID, domain.AppetiteUpdate{AppetiteScore: 10, Status: "Declined"})
	require.NoError(t, err)
	assert.Equal(t, policy.AppetitePoor, updated.AppetiteStatus)
	assert.Equal(t, "Declined", updated.Status)

	_, err = uc.UpdateAppetite(ctx, "u1", s.SubmissionID, domain.AppetiteUpdate{AppetiteScore: 101})
	assert.Equal(t, "INVALID_ARGUMENT", kerrors.Reason(err))

	_, err = uc.UpdateAppetite(ctx, "u1", s.SubmissionID, domain.AppetiteUpdate{AppetiteScore: 50, AppetiteStatus: "maybe"})
	assert.Equal(t, "INVALID_ARGUMENT", kerrors.Reason(err))

	_, err = uc.Get(ctx, "u2", s.SubmissionID)
	assert.Equal(t, "SUBMISSION_NOT_FOUND", kerrors.Reason(err))
}

// mockFeed 模拟数据源
type mockFeed struct {
	raws []*policy.RawPolicy
	doc  *heatmap.Document
	err  error
}

func (m *mockFeed) Load(ctx context.Context) []*policy.RawPolicy { return m.raws }

func (m *mockFeed) Heatmap(ctx context.Context) (*heatmap.Document, error) { return m.doc, m.err }

func rawFixture() []*policy.RawPolicy {
	return []*policy.RawPolicy{
		{ID: 1, AccountName: "Acme Holdings", Score: 0.9, TotalPremium: 1_200_000, TIV: 50e6, PrimaryRiskState: "CA",
			LineOfBusiness: "COMMERCIAL PROPERTY", ConstructionType: "Masonry", OldestBuilding: 1990,
			ExpirationDate: "2099-01-01", RenewalOrNewBusiness: "RENEWAL", Winnability: 0.8},
		{ID: 2, AccountName: "Blue Harbor", Score: 0.4, TotalPremium: 300_000, TIV: 5e6, PrimaryRiskState: "NY",
			LineOfBusiness: "GENERAL LIABILITY", ConstructionType: "Frame", OldestBuilding: 1940,
			ExpirationDate: "2099-01-01", RenewalOrNewBusiness: "NEW_BUSINESS", Winnability: 0.3},
		{ID: 3, AccountName: "Cedar Works", Score: 0.2, TotalPremium: 7_000_000, TIV: 80e6, PrimaryRiskState: "CA",
			LineOfBusiness: "COMMERCIAL PROPERTY", ConstructionType: "Steel", OldestBuilding: 2005,
			ExpirationDate: "2099-01-01", RenewalOrNewBusiness: "RENEWAL", Winnability: 0.6},
	}
}

func TestPortfolioUseCase_Query(t *testing.T) {
	uc := NewPortfolioUseCase(&mockFeed{raws: rawFixture()}, log.DefaultLogger)

	result, summary := uc.Query(query.Query{})
	assert.Equal(t, 0, result.Total, "empty before the first load")
	assert.Equal(t, 1, result.TotalPages)
	assert.Empty(t, summary.Top3)

	snap := uc.Reload(context.Background())
	require.Len(t, snap.Items, 3)

	result, summary = uc.Query(query.Query{Region: query.RegionNA, PageSize: 1, Sort: query.SortPremium})
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(3), result.Items[0].ID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.InAppetite)

	result, _ = uc.Query(query.Query{Text: "harbor"})
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Blue Harbor", result.Items[0].Client)
}

func TestPortfolioUseCase_SuggestAndExport(t *testing.T) {
	uc := NewPortfolioUseCase(&mockFeed{raws: rawFixture()}, log.DefaultLogger)
	uc.Reload(context.Background())

	got := uc.Suggest(query.RecentSearches{"acme"}, "ac")
	require.NotEmpty(t, got)
	assert.Equal(t, "acme", got[0].Text)

	var buf bytes.Buffer
	require.NoError(t, uc.Export(&buf, query.Query{Text: "cedar"}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Submissions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cedar Works", rows[1][1])
}

func TestPortfolioUseCase_Heatmap(t *testing.T) {
	feed := &mockFeed{raws: rawFixture(), err: errors.New("not configured")}
	uc := NewPortfolioUseCase(feed, log.DefaultLogger)
	uc.Reload(context.Background())

	r := uc.Heatmap(context.Background(), heatmap.FieldPolicyCount, 1)
	ids := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		ids = append(ids, row.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"CA", "NY"}, ids)
	assert.Equal(t, 2.0, r.Legend.Max)

	feed.err = nil
	feed.doc = &heatmap.Document{States: []heatmap.State{{ID: "TX", Name: "Texas", PolicyCount: 9}}}
	r = uc.Heatmap(context.Background(), heatmap.FieldPolicyCount, 1)
	require.Len(t, r.Rows, 1)
	assert.Equal(t, "TX", r.Rows[0].ID)
}

func TestPortfolioUseCase_Plot(t *testing.T) {
	uc := NewPortfolioUseCase(&mockFeed{raws: rawFixture()}, log.DefaultLogger)
	uc.Reload(context.Background())

	p := uc.Plot()
	assert.Len(t, p.LossVsTIV, 3)
	assert.NotEmpty(t, p.Radar)
}

// recordingCompleter 记录收到的系统提示词
type recordingCompleter struct {
	system string
}

func (c *recordingCompleter) Complete(ctx context.Context, system string, history []assistant.Message, message string) (string, error) {
	c.system = system
	return "ok", nil
}

func TestChatUseCase_Chat(t *testing.T) {
	rc := &recordingCompleter{}
	repo := &mockGuidelineRepo{items: []*domain.Guideline{
		{UserID: "u1", Rules: []string{"No coastal frame risks"}},
		{UserID: "u2", Rules: []string{"Other user rule"}},
	}}
	uc := NewChatUseCase(assistant.NewService(rc, nil), repo, &conf.Assistant{Guidelines: "TIV above 10M\n\n"}, log.DefaultLogger)

	reply := uc.Chat(context.Background(), "u1", &assistant.Request{Message: "Should we write this?"})
	assert.Equal(t, "ok", reply.Response)
	assert.False(t, reply.Fallback)
	assert.Contains(t, rc.system, "TIV above 10M")
	assert.Contains(t, rc.system, "No coastal frame risks")
	assert.NotContains(t, rc.system, "Other user rule")

	repo.err = errors.New("db down")
	reply = uc.Chat(context.Background(), "u1", &assistant.Request{Message: "hi"})
	assert.Equal(t, "ok", reply.Response)
}

func TestChatUseCase_Fallback(t *testing.T) {
	uc := NewChatUseCase(assistant.NewService(nil, nil), &mockGuidelineRepo{}, nil, log.DefaultLogger)
	reply := uc.Chat(context.Background(), "u1", &assistant.Request{Message: "what is the premium?"})
	assert.True(t, reply.Fallback)
	assert.NotEmpty(t, reply.Response)
}

// mockImporter 模拟规则导入
type mockImporter struct {
	imported *guideline.Imported
	err      error
}

func (m *mockImporter) Import(ctx context.Context, rawURL string) (*guideline.Imported, error) {
	return m.imported, m.err
}

func TestGuidelineUseCase(t *testing.T) {
	ctx := context.Background()
	repo := &mockGuidelineRepo{}
	im := &mockImporter{imported: &guideline.Imported{Title: "Property", Rules: []string{"Sprinklered"}, Source: "https://example.com"}}
	uc := NewGuidelineUseCase(repo, im, log.DefaultLogger)

	_, err := uc.Create(ctx, "u1", " ", []string{"", "  "}, nil)
	assert.Equal(t, "INVALID_ARGUMENT", kerrors.Reason(err))

	g, err := uc.Create(ctx, "u1", "Mine", []string{" Masonry only "}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Masonry only"}, g.Rules)
	assert.Regexp(t, `^gl_`, g.GuidelineID)

	g, err = uc.Import(ctx, "u1", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", g.Source)

	im.err = errors.New("boom")
	_, err = uc.Import(ctx, "u1", "https://example.com")
	assert.Equal(t, "GUIDELINE_IMPORT_FAILED", kerrors.Reason(err))

	list, err := uc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
