package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/feed"
	"github.com/optimate/optimate/app/common/pkg/guideline"
	"github.com/optimate/optimate/app/dashboard/internal/conf"
	"github.com/optimate/optimate/app/dashboard/internal/usecase"
)

// NewFeedClient 创建保单数据源客户端
func NewFeedClient(c *conf.Feed) *feed.Client {
	if c == nil {
		c = &conf.Feed{}
	}
	return feed.NewClient(c.Source, c.HeatmapSource, parseDuration(c.Timeout, 0))
}

// NewGuidelineImporter 创建承保规则导入器
func NewGuidelineImporter(c *conf.Feed) *guideline.Importer {
	if c == nil {
		return guideline.NewImporter(0)
	}
	return guideline.NewImporter(parseDuration(c.Timeout, 0))
}

// FeedServer 定时刷新组合快照，作为 kratos 的一个 transport.Server 运行
type FeedServer struct {
	poller *feed.Poller
	log    *log.Helper

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFeedServer 创建数据源轮询服务
func NewFeedServer(c *conf.Feed, client *feed.Client, uc *usecase.PortfolioUseCase, logger log.Logger) *FeedServer {
	interval := feed.DefaultInterval
	if c != nil {
		interval = parseDuration(c.Interval, feed.DefaultInterval)
	}
	return &FeedServer{
		poller: feed.NewPoller(client, interval, uc.Set),
		log:    log.NewHelper(logger),
	}
}

// Start 阻塞运行轮询，直到 ctx 取消或调用 Stop
func (s *FeedServer) Start(ctx context.Context) error {
	s.mu.Lock()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	s.log.Info("feed poller started")
	defer close(done)
	s.poller.Run(ctx)
	return nil
}

// Stop 停止轮询并等待当前一次拉取结束
func (s *FeedServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		s.log.Info("feed poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
