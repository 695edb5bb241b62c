package server

import (
	"github.com/google/wire"

	"github.com/optimate/optimate/app/common/pkg/feed"
	"github.com/optimate/optimate/app/common/pkg/guideline"
	"github.com/optimate/optimate/app/dashboard/internal/data"
	"github.com/optimate/optimate/app/dashboard/internal/service"
	"github.com/optimate/optimate/app/dashboard/internal/usecase"
)

// ProviderSet 是仪表盘服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewFeedServer,
	NewFeedClient,
	NewGuidelineImporter,
	NewAssistant,

	// Data providers
	data.NewData,
	data.NewUserRepo,
	data.NewSubmissionRepo,
	data.NewGuidelineRepo,

	// UseCase providers
	usecase.NewUserUseCase,
	usecase.NewSubmissionUseCase,
	usecase.NewPortfolioUseCase,
	usecase.NewGuidelineUseCase,
	usecase.NewChatUseCase,
	usecase.NewSessionUseCase,
	wire.Bind(new(usecase.FeedSource), new(*feed.Client)),
	wire.Bind(new(usecase.GuidelineImporter), new(*guideline.Importer)),

	// Service providers
	service.NewDashboardService,
	service.NewAuthService,
)
