package appetite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

func goodPolicy() *policy.RawPolicy {
	return &policy.RawPolicy{
		ID:               1,
		AccountName:      "Acme",
		LineOfBusiness:   "COMMERCIAL PROPERTY",
		EffectiveDate:    "2025-01-01",
		ExpirationDate:   "2026-01-01",
		TIV:              100_000_000,
		ConstructionType: "Fire Resistive",
		OldestBuilding:   2010,
		TotalPremium:     100_000,
		LossValue:        10_000,
		Winnability:      0.5,
		PrimaryRiskState: "CA",
	}
}

func TestInAppetite(t *testing.T) {
	ok, reasons := InAppetite(goodPolicy())
	assert.True(t, ok)
	assert.Empty(t, reasons)

	p := goodPolicy()
	p.ConstructionType = "Frame"
	p.TIV = 5_000_000
	p.LossValue = 90_000
	ok, reasons = InAppetite(p)
	assert.False(t, ok)
	assert.Len(t, reasons, 3)

	p = goodPolicy()
	p.OldestBuilding = 1949
	p.ExpirationDate = ""
	ok, reasons = InAppetite(p)
	assert.False(t, ok)
	assert.Len(t, reasons, 2)
}

func TestPartition(t *testing.T) {
	bad := goodPolicy()
	bad.ID = 2
	bad.LineOfBusiness = "AUTO"
	in, out := Partition([]*policy.RawPolicy{goodPolicy(), bad})
	require.Len(t, in, 1)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)
}

func TestScore(t *testing.T) {
	// 20 + 15 + 15 + 10 + 20 + 10
	assert.Equal(t, 90.0, Score(goodPolicy()))

	p := goodPolicy()
	p.LineOfBusiness = "AUTO"
	p.TIV = 50_000_000
	p.ConstructionType = "Masonry"
	p.OldestBuilding = 1985
	p.LossValue = 40_000
	p.Winnability = 80
	// 0 + 7.5 + 9 + 7 + 14 + 16
	assert.Equal(t, 53.5, Score(p))

	assert.Equal(t, 0.0, Score(&policy.RawPolicy{}))
}

func TestRiskScore(t *testing.T) {
	p := goodPolicy()
	p.TIV = 50_000_000
	p.OldestBuilding = 2025
	p.LossValue = 0
	p.Winnability = 1
	assert.Equal(t, 100.0, RiskScore(p))

	p.PrimaryRiskState = "NY"
	assert.Equal(t, 95.0, RiskScore(p))

	empty := RiskScore(&policy.RawPolicy{})
	// 0 + 0 + 0.3*15 + 10 + 5 + 2.5
	assert.Equal(t, 22.0, empty)
}

func TestAggregateAccount(t *testing.T) {
	a := goodPolicy()
	a.Relevance = 0.8
	a.TotalPremium = 300
	a.LossValue = 0
	b := goodPolicy()
	b.ID = 2
	b.Relevance = 0.4
	b.TotalPremium = 100
	b.LossValue = 0

	acc := AggregateAccount("Acme", []*policy.RawPolicy{a, b})
	assert.Equal(t, 0.6, acc.AvgScore)
	assert.Equal(t, 0.8, acc.MaxScore)
	assert.Equal(t, 0.7, acc.WeightedScore)
	require.Len(t, acc.Policies, 2)
	assert.Equal(t, 0.75, acc.Policies["1"].Score)
	assert.Equal(t, 0.55, acc.Policies["2"].Score)
	assert.Equal(t, acc.Policies["1"].RiskScore, acc.AvgRiskScore)
	assert.Equal(t, 0.0, a.Score, "input must not change")

	empty := AggregateAccount("None", nil)
	assert.Empty(t, empty.Policies)
}

func TestBuildFeed(t *testing.T) {
	a := goodPolicy()
	b := goodPolicy()
	b.ID = 2
	b.AccountName = "Blue"
	feed := BuildFeed([]*policy.RawPolicy{a, b, nil})
	require.Len(t, feed.Accounts, 2)
	assert.Contains(t, feed.Accounts["Blue"].Policies, "2")

	flat := policy.Flatten(feed)
	assert.Len(t, flat, 2)
}

func TestRadar(t *testing.T) {
	a := goodPolicy()
	b := goodPolicy()
	b.TIV = 1_000_000
	b.PrimaryRiskState = "NY"
	b.ConstructionType = "Frame"

	got := Radar([]*policy.RawPolicy{a, b})
	assert.Equal(t, []Criterion{
		{"TIV", 0.5},
		{"Loss Ratio", 1},
		{"Construction", 0.5},
		{"Year Built", 1},
		{"State", 0.5},
	}, got)

	for _, c := range Radar(nil) {
		assert.Equal(t, 0.0, c.Score)
	}
}

func TestBuildPlot(t *testing.T) {
	a := goodPolicy()
	a.ID = 3
	a.Winnability = 0.9
	b := goodPolicy()
	b.ID = 1
	b.LossValue = 50_000
	b.Winnability = 0.1

	plot := BuildPlot([]*policy.RawPolicy{a, b})
	assert.Equal(t, int64(1), plot.RiskBars[0].ID)
	assert.Equal(t, int64(3), plot.LossVsTIV[0].ID)
	assert.Equal(t, int64(1), plot.WinVsRisk[0].ID)
	assert.Equal(t, 100.0, plot.LossVsTIV[0].TIVMillions)
	assert.Len(t, plot.Radar, 5)
}
