package feed

import (
	"context"
	"time"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// DefaultInterval 默认刷新间隔
const DefaultInterval = 30 * time.Second

// Loader 拉取一次数据
type Loader interface {
	Load(ctx context.Context) []*policy.RawPolicy
}

// Poller 按固定间隔拉取数据源并回调，同一时刻只有一次拉取在进行
type Poller struct {
	loader   Loader
	interval time.Duration
	onUpdate func([]*policy.RawPolicy)
}

// NewPoller 创建轮询器
func NewPoller(loader Loader, interval time.Duration, onUpdate func([]*policy.RawPolicy)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{loader: loader, interval: interval, onUpdate: onUpdate}
}

// Run 立即拉取一次，然后按间隔拉取，直到 ctx 取消
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	list := p.loader.Load(ctx)
	if ctx.Err() != nil {
		return
	}
	p.onUpdate(list)
}
