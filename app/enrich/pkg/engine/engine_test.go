package engine

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimate/optimate/app/common/pkg/config"
	"github.com/optimate/optimate/app/common/pkg/feed"
	"github.com/optimate/optimate/app/common/pkg/policy"
)

// scriptedModel 根据保单 ID 返回预设应答
type scriptedModel struct {
	mu      sync.Mutex
	calls   map[string]int
	respond func(prompt string, call int) (string, error)
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	prompt := input[len(input)-1].Content
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[prompt]++
	n := m.calls[prompt]
	m.mu.Unlock()

	text, err := m.respond(prompt, n)
	if err != nil {
		return nil, err
	}
	return &schema.Message{Role: schema.Assistant, Content: text}, nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Concurrency = config.ConcurrencyConfig{QPS: 2, RPM: 60_000}
	return cfg
}

func fixture() []*policy.RawPolicy {
	return []*policy.RawPolicy{
		{ID: 1, AccountName: "Low Co", LineOfBusiness: "AUTO", TIV: 1e6, TotalPremium: 1e5, LossValue: 9e4,
			ConstructionType: "Frame", OldestBuilding: 1930, PrimaryRiskState: "NY", Winnability: 0.1},
		{ID: 2, AccountName: "Top Co", LineOfBusiness: "COMMERCIAL PROPERTY", TIV: 120e6, TotalPremium: 2e6, LossValue: 1e5,
			ConstructionType: "Fire Resistive", OldestBuilding: 2010, PrimaryRiskState: "TX", Winnability: 0.9},
		{ID: 3, AccountName: "Top Co", LineOfBusiness: "COMMERCIAL PROPERTY", TIV: 40e6, TotalPremium: 5e5, LossValue: 2e5,
			ConstructionType: "Masonry", OldestBuilding: 1975, PrimaryRiskState: "CA", Winnability: 0.6},
	}
}

func TestEngine_Score(t *testing.T) {
	e := NewEngineWithModel(testConfig(), nil)
	raws := fixture()

	feed, err := e.Score(context.Background(), raws, ScoreOptions{})
	require.NoError(t, err)
	require.Len(t, feed.Accounts, 2)

	assert.Greater(t, raws[1].Relevance, raws[2].Relevance)
	assert.Greater(t, raws[2].Relevance, raws[0].Relevance)
	for _, p := range raws {
		assert.LessOrEqual(t, p.Relevance, 1.0)
		assert.Greater(t, p.RiskScore, 0.0)
	}

	top := feed.Accounts["Top Co"]
	require.NotNil(t, top)
	assert.Len(t, top.Policies, 2)
	assert.Equal(t, "Top Co", top.Policies["2"].AccountName)
	assert.NotZero(t, top.WeightedScore)

	list := policy.Flatten(feed)
	require.Len(t, list, 3)
	assert.Equal(t, int64(2), list[0].ID, "flattened feed ranks by the aggregated score")
}

func TestEngine_Justify(t *testing.T) {
	m := &scriptedModel{respond: func(prompt string, call int) (string, error) {
		switch {
		case strings.Contains(prompt, "PolicyID: 2"):
			if call == 1 {
				return "", errors.New("status 429: too many requests")
			}
			return "```json\n{\"points\": [\"Fire resistive\", \"Priority state TX\"]}\n```", nil
		case strings.Contains(prompt, "PolicyID: 3"):
			return "Masonry is acceptable.", nil
		default:
			return "", errors.New("boom")
		}
	}}
	e := NewEngineWithModel(testConfig(), m)
	var slept []time.Duration
	var mu sync.Mutex
	e.sleep = func(d time.Duration) {
		mu.Lock()
		slept = append(slept, d)
		mu.Unlock()
	}

	raws := fixture()
	_, err := e.Score(context.Background(), raws, ScoreOptions{Justify: true, Top: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fire resistive", "Priority state TX"}, raws[1].JustificationPoints)
	assert.Equal(t, []string{"Masonry is acceptable."}, raws[2].JustificationPoints)
	assert.Empty(t, raws[0].JustificationPoints, "failed policy keeps no points")
	assert.Equal(t, []time.Duration{baseDelay}, slept)
}

func TestEngine_JustifyRequiresModel(t *testing.T) {
	e := NewEngineWithModel(testConfig(), nil)
	_, err := e.Score(context.Background(), fixture(), ScoreOptions{Justify: true})
	assert.Error(t, err)
}

func TestEngine_JustifyGivesUpAfterRetries(t *testing.T) {
	m := &scriptedModel{respond: func(string, int) (string, error) {
		return "", errors.New("429 Too Many Requests")
	}}
	e := NewEngineWithModel(testConfig(), m)
	e.sleep = func(time.Duration) {}

	_, err := e.justify(context.Background(), fixture()[0])
	assert.ErrorContains(t, err, "429")
	assert.Equal(t, maxRetries+1, m.calls[firstPrompt(m)])
}

func firstPrompt(m *scriptedModel) string {
	for k := range m.calls {
		return k
	}
	return ""
}

func TestRenderPolicy(t *testing.T) {
	doc, err := RenderPolicy(fixture()[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "PolicyID: 2", lines[0])
	assert.Equal(t, "State: TX", lines[2])
	assert.True(t, strings.HasPrefix(lines[8], "Winnability:"))
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFence("```{\"a\":1}```"))
	assert.Equal(t, "plain", StripFence("  plain "))
}

func TestHeatmap(t *testing.T) {
	e := NewEngineWithModel(testConfig(), nil)
	feed, err := e.Score(context.Background(), fixture(), ScoreOptions{})
	require.NoError(t, err)

	doc := Heatmap(feed)
	require.Len(t, doc.States, 3)
	assert.Equal(t, "US-CA", doc.States[0].ID)
	assert.Equal(t, 1, doc.States[0].PolicyCount)
}

func TestEngine_ScoreSampleExport(t *testing.T) {
	data, err := os.ReadFile("../../testdata/raw.json")
	require.NoError(t, err)
	raws, err := feed.DecodeRaw(data)
	require.NoError(t, err)
	require.Len(t, raws, 17)

	doc, err := NewEngineWithModel(testConfig(), nil).Score(context.Background(), raws, ScoreOptions{})
	require.NoError(t, err)
	assert.Len(t, doc.Accounts, 10)

	out, err := feed.Encode(doc)
	require.NoError(t, err)
	back, err := feed.Decode(out)
	require.NoError(t, err)
	assert.Len(t, back, 17)
}
