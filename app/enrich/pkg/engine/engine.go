package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/optimate/optimate/app/common/pkg/appetite"
	"github.com/optimate/optimate/app/common/pkg/config"
	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/logger"
	"github.com/optimate/optimate/app/common/pkg/policy"
)

// DefaultJustifyTop 默认为排名前几的保单生成说明
const DefaultJustifyTop = 5

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second
)

// Engine 离线评分引擎
type Engine struct {
	cfg       *config.Config
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
	sleep     func(time.Duration)
}

// NewEngine 创建引擎实例，未配置 API Key 时不初始化 LLM
func NewEngine(cfg *config.Config) (*Engine, error) {
	var cm model.BaseChatModel
	if cfg.LLM.APIKey != "" {
		temperature := float32(0.2)
		chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		cm = chatModel
	}
	return NewEngineWithModel(cfg, cm), nil
}

// NewEngineWithModel 使用给定的模型创建引擎
func NewEngineWithModel(cfg *config.Config, cm model.BaseChatModel) *Engine {
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := max(cfg.Concurrency.QPS, 1)
	return &Engine{
		cfg:       cfg,
		chatModel: cm,
		limiter:   rate.NewLimiter(limit, burst),
		sleep:     time.Sleep,
	}
}

// ScoreOptions 评分选项
type ScoreOptions struct {
	Justify bool
	Top     int
}

// Score 为每张保单打分并按账户聚合。
// 传入的保单会被写入相关度与风险分，Justify 时为排名靠前的保单生成说明。
func (e *Engine) Score(ctx context.Context, raws []*policy.RawPolicy, opts ScoreOptions) (*policy.Feed, error) {
	ranked := make([]*policy.RawPolicy, 0, len(raws))
	for _, p := range raws {
		if p == nil {
			continue
		}
		p.Relevance = math.Round(appetite.Score(p)*10) / 1000
		p.RiskScore = appetite.RiskScore(p)
		ranked = append(ranked, p)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].ID < ranked[j].ID
	})
	logger.Log.Infof("已为 %d 张保单打分", len(ranked))

	if opts.Justify {
		if err := e.justifyTop(ctx, ranked, opts.Top); err != nil {
			return nil, err
		}
	}
	return appetite.BuildFeed(ranked), nil
}

func (e *Engine) justifyTop(ctx context.Context, ranked []*policy.RawPolicy, top int) error {
	if e.chatModel == nil {
		return fmt.Errorf("justification requires llm.api_key")
	}
	if top <= 0 {
		top = DefaultJustifyTop
	}
	top = min(top, len(ranked))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.cfg.Concurrency.QPS, 1))
	for _, p := range ranked[:top] {
		g.Go(func() error {
			points, err := e.justify(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Log.Errorf("生成保单说明失败 [%d]: %v", p.ID, err)
				return nil
			}
			p.JustificationPoints = points
			logger.Log.Debugf("保单 [%d] 说明: %v", p.ID, points)
			return nil
		})
	}
	return g.Wait()
}

// policyDoc 提示词中的保单字段，顺序固定
type policyDoc struct {
	PolicyID       int64   `yaml:"PolicyID"`
	LineOfBusiness string  `yaml:"LineOfBusiness"`
	State          string  `yaml:"State"`
	TIV            float64 `yaml:"TIV"`
	Premium        float64 `yaml:"Premium"`
	LossValue      float64 `yaml:"LossValue"`
	Construction   string  `yaml:"Construction"`
	BuildingYear   int     `yaml:"BuildingYear"`
	Winnability    float64 `yaml:"Winnability"`
}

// RenderPolicy 把保单渲染为 YAML
func RenderPolicy(p *policy.RawPolicy) (string, error) {
	out, err := yaml.Marshal(policyDoc{
		PolicyID:       p.ID,
		LineOfBusiness: p.LineOfBusiness,
		State:          p.PrimaryRiskState,
		TIV:            p.TIV,
		Premium:        p.TotalPremium,
		LossValue:      float64(p.LossValue),
		Construction:   p.ConstructionType,
		BuildingYear:   p.OldestBuilding,
		Winnability:    p.Winnability,
	})
	return string(out), err
}

type justification struct {
	Points []string `json:"points"`
}

func (e *Engine) justify(ctx context.Context, p *policy.RawPolicy) ([]string, error) {
	doc, err := RenderPolicy(p)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(`Guidelines:
%s

Policy:
%s
Return a JSON object with key "points" containing an array of short bullet points
explaining why this policy aligns or does not align with the guidelines.`, e.cfg.Guidelines, doc)

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "You are an underwriting assistant. Only output JSON."},
			{Role: schema.User, Content: prompt},
		}

		resp, err := e.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					e.sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		content := StripFence(resp.Content)
		var j justification
		if err := json.Unmarshal([]byte(content), &j); err != nil || len(j.Points) == 0 {
			// 无法解析时保留原文作为唯一一条说明
			if content == "" {
				lastErr = fmt.Errorf("empty completion")
				continue
			}
			return []string{content}, nil
		}
		return j.Points, nil
	}
	return nil, lastErr
}

// StripFence 去掉模型输出外层的 ``` 代码块标记
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Heatmap 由账户文档按州聚合
func Heatmap(feed *policy.Feed) *heatmap.Document {
	return &heatmap.Document{States: heatmap.Aggregate(policy.Flatten(feed))}
}
