package usecase

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/optimate/optimate/app/common/pkg/appetite"
	"github.com/optimate/optimate/app/common/pkg/export"
	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/policy"
	"github.com/optimate/optimate/app/common/pkg/query"
)

// FeedSource 保单数据源
type FeedSource interface {
	Load(ctx context.Context) []*policy.RawPolicy
	Heatmap(ctx context.Context) (*heatmap.Document, error)
}

// Snapshot 某一时刻的数据源快照，发布后只读
type Snapshot struct {
	Raws     []*policy.RawPolicy
	Items    []*policy.Submission
	LoadedAt time.Time
}

// PortfolioUseCase 基于数据源快照的查询、汇总、导出和图表
type PortfolioUseCase struct {
	source FeedSource
	snap   atomic.Pointer[Snapshot]
	now    func() time.Time
	log    *log.Helper
}

// NewPortfolioUseCase 创建组合查询实例，初始快照为空
func NewPortfolioUseCase(source FeedSource, logger log.Logger) *PortfolioUseCase {
	uc := &PortfolioUseCase{source: source, now: time.Now, log: log.NewHelper(logger)}
	uc.snap.Store(&Snapshot{Raws: []*policy.RawPolicy{}, Items: []*policy.Submission{}})
	return uc
}

// Set 用新的原始数据替换快照
func (uc *PortfolioUseCase) Set(raws []*policy.RawPolicy) {
	now := uc.now()
	if raws == nil {
		raws = []*policy.RawPolicy{}
	}
	uc.snap.Store(&Snapshot{
		Raws:     raws,
		Items:    policy.Normalize(raws, now),
		LoadedAt: now,
	})
	uc.log.Debugf("portfolio snapshot updated: %d policies", len(raws))
}

// Reload 立即拉取一次数据源并返回新快照
func (uc *PortfolioUseCase) Reload(ctx context.Context) *Snapshot {
	uc.Set(uc.source.Load(ctx))
	return uc.Snapshot()
}

// Snapshot 当前快照
func (uc *PortfolioUseCase) Snapshot() *Snapshot {
	return uc.snap.Load()
}

// Query 执行查询管道，汇总指标基于全部命中项
func (uc *PortfolioUseCase) Query(q query.Query) (query.Result, query.Summary) {
	q = q.Normalized()
	matched := query.Match(uc.Snapshot().Items, q)
	return query.PageOf(matched, q), query.Summarize(matched)
}

// Suggest 输入联想
func (uc *PortfolioUseCase) Suggest(recent query.RecentSearches, text string) []query.Suggestion {
	return query.Suggest(uc.Snapshot().Items, recent, text)
}

// Export 把全部命中项写为 XLSX
func (uc *PortfolioUseCase) Export(w io.Writer, q query.Query) error {
	return export.WriteSubmissions(w, query.Match(uc.Snapshot().Items, q.Normalized()))
}

// Plot 图表数据
func (uc *PortfolioUseCase) Plot() appetite.Plot {
	return appetite.BuildPlot(uc.Snapshot().Raws)
}

// Heatmap 渲染热力图；热力图数据源不可用时由当前快照按州聚合
func (uc *PortfolioUseCase) Heatmap(ctx context.Context, field string, sensitivity float64) heatmap.Rendered {
	var states []heatmap.State
	doc, err := uc.source.Heatmap(ctx)
	if err != nil || doc == nil || len(doc.States) == 0 {
		if err != nil {
			uc.log.Debugf("heatmap source unavailable, aggregating snapshot: %v", err)
		}
		states = heatmap.Aggregate(uc.Snapshot().Raws)
	} else {
		states = doc.States
	}
	return heatmap.Build(states, field, sensitivity)
}
