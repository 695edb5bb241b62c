package service

import (
	"bytes"
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/appetite"
	"github.com/optimate/optimate/app/common/pkg/assistant"
	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/common/pkg/query"
	"github.com/optimate/optimate/app/dashboard/internal/domain"
	"github.com/optimate/optimate/app/dashboard/internal/usecase"
)

// DashboardService 仪表盘 HTTP 接口的实现
type DashboardService struct {
	ucUser       *usecase.UserUseCase
	ucSubmission *usecase.SubmissionUseCase
	ucPortfolio  *usecase.PortfolioUseCase
	ucGuideline  *usecase.GuidelineUseCase
	ucChat       *usecase.ChatUseCase
	log          *log.Helper
}

func NewDashboardService(
	ucUser *usecase.UserUseCase,
	ucSubmission *usecase.SubmissionUseCase,
	ucPortfolio *usecase.PortfolioUseCase,
	ucGuideline *usecase.GuidelineUseCase,
	ucChat *usecase.ChatUseCase,
	logger log.Logger,
) *DashboardService {
	return &DashboardService{
		ucUser:       ucUser,
		ucSubmission: ucSubmission,
		ucPortfolio:  ucPortfolio,
		ucGuideline:  ucGuideline,
		ucChat:       ucChat,
		log:          log.NewHelper(logger),
	}
}

func currentSession(ctx context.Context) (*domain.Session, error) {
	s, ok := usecase.SessionFromContext(ctx)
	if !ok {
		return nil, errors.Unauthorized("UNAUTHORIZED", "unauthorized")
	}
	return s, nil
}

func (s *DashboardService) GetProfile(ctx context.Context, _ *ProfileRequest) (*domain.User, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucUser.Get(ctx, sess.Sub)
}

func (s *DashboardService) CreateProfile(ctx context.Context, req *ProfileRequest) (*domain.User, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucUser.Ensure(ctx, sess, req.Name, req.Email, req.PendingSignup)
}

func (s *DashboardService) UpdateProfile(ctx context.Context, req *ProfileRequest) (*domain.User, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucUser.Update(ctx, sess.Sub, req.Name, req.Email, req.Preferences)
}

func (s *DashboardService) ListRecentSearches(ctx context.Context, _ *RecentSearchRequest) (*RecentSearchesReply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.ucUser.RecentSearches(ctx, sess.Sub)
	if err != nil {
		return nil, err
	}
	return &RecentSearchesReply{Searches: recent}, nil
}

func (s *DashboardService) PushRecentSearch(ctx context.Context, req *RecentSearchRequest) (*RecentSearchesReply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.ucUser.PushRecentSearch(ctx, sess.Sub, req.Query)
	if err != nil {
		return nil, err
	}
	return &RecentSearchesReply{Searches: recent}, nil
}

// DeleteRecentSearch 指定 query 时删除一条，否则清空
func (s *DashboardService) DeleteRecentSearch(ctx context.Context, req *RecentSearchRequest) (*RecentSearchesReply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	var recent query.RecentSearches
	if req.Query != "" {
		recent, err = s.ucUser.RemoveRecentSearch(ctx, sess.Sub, req.Query)
	} else {
		recent, err = s.ucUser.ClearRecentSearches(ctx, sess.Sub)
	}
	if err != nil {
		return nil, err
	}
	return &RecentSearchesReply{Searches: recent}, nil
}

func (s *DashboardService) ListSubmissions(ctx context.Context, _ *SubmissionRequest) ([]*domain.Submission, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucSubmission.List(ctx, sess.Sub)
}

func (s *DashboardService) CreateSubmission(ctx context.Context, req *policy.Submission) (*domain.Submission, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucSubmission.Create(ctx, sess.Sub, req)
}

func (s *DashboardService) GetSubmission(ctx context.Context, req *SubmissionRequest) (*domain.Submission, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucSubmission.Get(ctx, sess.Sub, req.ID)
}

func (s *DashboardService) UpdateSubmission(ctx context.Context, req *UpdateSubmissionRequest) (*domain.Submission, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucSubmission.UpdateAppetite(ctx, sess.Sub, req.ID, domain.AppetiteUpdate{
		AppetiteScore:  req.AppetiteScore,
		AppetiteStatus: req.AppetiteStatus,
		Status:         req.Status,
	})
}

func (s *DashboardService) QueryPortfolio(ctx context.Context, req *query.Query) (*PortfolioReply, error) {
	result, summary := s.ucPortfolio.Query(*req)
	return &PortfolioReply{Result: result, Summary: summary, LoadedAt: s.ucPortfolio.Snapshot().LoadedAt}, nil
}

// ReducePortfolio 应用过滤、翻页等 action 后重新查询，过滤条件变化时回到第一页
func (s *DashboardService) ReducePortfolio(ctx context.Context, req *ReduceRequest) (*ReduceReply, error) {
	kind, ok := query.ParseActionKind(req.Action)
	if !ok {
		return nil, errors.BadRequest("INVALID_ARGUMENT", "unknown action: "+req.Action)
	}
	q := query.Reduce(req.Query, query.Action{Kind: kind, Value: req.Value, Page: req.Page}).Normalized()
	reply, err := s.QueryPortfolio(ctx, &q)
	if err != nil {
		return nil, err
	}
	return &ReduceReply{PortfolioReply: *reply, Query: q}, nil
}

func (s *DashboardService) Suggest(ctx context.Context, req *SuggestRequest) (*SuggestReply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.ucUser.RecentSearches(ctx, sess.Sub)
	if err != nil {
		s.log.Warnf("failed to load recent searches: %v", err)
		recent = nil
	}
	return &SuggestReply{Suggestions: s.ucPortfolio.Suggest(recent, req.Q)}, nil
}

// ExportPortfolio 返回 XLSX 文件内容
func (s *DashboardService) ExportPortfolio(ctx context.Context, req *query.Query) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.ucPortfolio.Export(&buf, *req); err != nil {
		s.log.Errorf("export failed: %v", err)
		return nil, errors.InternalServer("EXPORT_FAILED", "export failed")
	}
	return buf.Bytes(), nil
}

func (s *DashboardService) Plot(ctx context.Context, _ *query.Query) (*appetite.Plot, error) {
	p := s.ucPortfolio.Plot()
	return &p, nil
}

func (s *DashboardService) ReloadPortfolio(ctx context.Context, _ *query.Query) (*ReloadReply, error) {
	snap := s.ucPortfolio.Reload(ctx)
	return &ReloadReply{Count: len(snap.Raws), LoadedAt: snap.LoadedAt}, nil
}

func (s *DashboardService) Heatmap(ctx context.Context, req *HeatmapRequest) (*heatmap.Rendered, error) {
	if req.Sensitivity < 0 || req.Sensitivity > 1 {
		return nil, errors.BadRequest("INVALID_ARGUMENT", "sensitivity must be between 0 and 1")
	}
	r := s.ucPortfolio.Heatmap(ctx, req.Field, req.Sensitivity)
	return &r, nil
}

func (s *DashboardService) ListGuidelines(ctx context.Context, _ *GuidelineRequest) (*GuidelinesReply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.ucGuideline.List(ctx, sess.Sub)
	if err != nil {
		return nil, err
	}
	return &GuidelinesReply{Guidelines: list}, nil
}

func (s *DashboardService) CreateGuideline(ctx context.Context, req *GuidelineRequest) (*domain.Guideline, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucGuideline.Create(ctx, sess.Sub, req.Title, req.Rules, req.Preferences)
}

func (s *DashboardService) ImportGuideline(ctx context.Context, req *ImportGuidelineRequest) (*domain.Guideline, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.ucGuideline.Import(ctx, sess.Sub, req.URL)
}

func (s *DashboardService) Chat(ctx context.Context, req *assistant.Request) (*assistant.Reply, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if req.Message == "" {
		return nil, errors.BadRequest("INVALID_ARGUMENT", "message is required")
	}
	return s.ucChat.Chat(ctx, sess.Sub, req), nil
}
