package appetite

import (
	"math"
	"strings"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// ReferenceYear 计算建筑年限的基准年份
const ReferenceYear = 2025

// Score 加权偏好评分（0-100）：
// 业务线 20，TIV 15，建筑结构 15，建筑年份 10，赔付率 20，成交概率 20
func Score(p *policy.RawPolicy) float64 {
	var score float64

	if strings.EqualFold(strings.TrimSpace(p.LineOfBusiness), TargetLine) {
		score += 20
	}

	score += math.Min(15, p.TIV/100_000_000*15)

	ct := strings.ToLower(p.ConstructionType)
	switch {
	case strings.Contains(ct, "fire resistive"):
		score += 15
	case strings.Contains(ct, "non-combustible"):
		score += 15 * 0.8
	case strings.Contains(ct, "masonry"):
		score += 15 * 0.6
	case strings.Contains(ct, "frame"):
		score += 15 * 0.3
	}

	year := p.OldestBuilding
	if year == 0 {
		year = 1900
	}
	switch {
	case year >= 2000:
		score += 10
	case year >= 1980:
		score += 10 * 0.7
	case year >= 1950:
		score += 10 * 0.5
	}

	switch lr := p.LossRatio(); {
	case lr < 0.3:
		score += 20
	case lr < 0.5:
		score += 20 * 0.7
	case lr < 0.7:
		score += 20 * 0.4
	}

	w := p.Winnability
	if w > 1 {
		w /= 100
	}
	score += w * 20

	return round(score, 2)
}

// RiskScore 加权风险评分（0-100，越高越好）：
// 赔付率 35，TIV 对数 25，建筑结构 15，建筑年限 10，州 10，成交概率 5
func RiskScore(p *policy.RawPolicy) float64 {
	lossComponent := 1 - math.Min(1, p.LossRatio()/MaxLossRatio)
	tivNorm := math.Min(1, math.Log(math.Max(p.TIV, 1))/math.Log(50_000_000))

	var construction float64
	ct := strings.ToLower(strings.TrimSpace(p.ConstructionType))
	switch {
	case strings.Contains(ct, "fire resistive"), strings.Contains(ct, "non-combustible"):
		construction = 1
	case strings.Contains(ct, "masonry"), strings.Contains(ct, "mixed"):
		construction = 0.5
	case ct != "":
		construction = 0.2
	default:
		construction = 0.3
	}

	year := p.OldestBuilding
	if year == 0 {
		year = ReferenceYear
	}
	age := math.Max(0, 1-float64(ReferenceYear-year)/100)

	state := 0.5
	if PreferredState(p.PrimaryRiskState) {
		state = 1
	}

	w := p.Winnability
	switch {
	case w == 0:
		w = 0.5
	case w > 1:
		w = math.Min(1, w/100)
	}

	risk := 0.35*lossComponent + 0.25*tivNorm + 0.15*construction + 0.10*age + 0.10*state + 0.05*w
	return round(risk*100, 2)
}

// PreferredState 是否为优先承保的州
func PreferredState(state string) bool {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "CA", "TX":
		return true
	}
	return false
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
