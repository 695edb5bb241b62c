package appetite

import (
	"sort"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// Criterion 雷达图上的一个维度，Score 为满足该条件的保单占比
type Criterion struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// Point 散点图上的一张保单
type Point struct {
	ID           int64   `json:"id"`
	TIV          float64 `json:"tiv"`
	TIVMillions  float64 `json:"tivMillions"`
	Premium      float64 `json:"premium"`
	RiskScore    float64 `json:"risk_score"`
	Winnability  float64 `json:"winnability"`
	LossRatio    float64 `json:"loss_ratio"`
	Year         int     `json:"year"`
	Construction string  `json:"construction"`
	State        string  `json:"state"`
}

// Plot 组合图表数据
type Plot struct {
	LossVsTIV []Point     `json:"lossVsTiv"`
	RiskBars  []Point     `json:"riskBars"`
	WinVsRisk []Point     `json:"winVsRisk"`
	Radar     []Criterion `json:"radar"`
}

// Radar 五个偏好维度的满足率
func Radar(policies []*policy.RawPolicy) []Criterion {
	checks := []struct {
		subject string
		ok      func(*policy.RawPolicy) bool
	}{
		{"TIV", func(p *policy.RawPolicy) bool { return p.TIV > MinTIV }},
		{"Loss Ratio", func(p *policy.RawPolicy) bool { return p.LossRatio() < MaxLossRatio }},
		{"Construction", func(p *policy.RawPolicy) bool {
			return p.ConstructionType == "Fire Resistive" || p.ConstructionType == "Non-Combustible"
		}},
		{"Year Built", func(p *policy.RawPolicy) bool { return p.OldestBuilding > MinBuildingYear }},
		{"State", func(p *policy.RawPolicy) bool { return PreferredState(p.PrimaryRiskState) }},
	}

	out := make([]Criterion, 0, len(checks))
	for _, c := range checks {
		var score float64
		if len(policies) > 0 {
			n := 0
			for _, p := range policies {
				if c.ok(p) {
					n++
				}
			}
			score = float64(n) / float64(len(policies))
		}
		out = append(out, Criterion{Subject: c.subject, Score: score})
	}
	return out
}

// Scatter 每张保单一个点，保持输入顺序
func Scatter(policies []*policy.RawPolicy) []Point {
	out := make([]Point, 0, len(policies))
	for _, p := range policies {
		out = append(out, Point{
			ID:           p.ID,
			TIV:          p.TIV,
			TIVMillions:  round(p.TIV/1_000_000, 2),
			Premium:      p.TotalPremium,
			RiskScore:    p.RiskScore,
			Winnability:  p.Winnability,
			LossRatio:    p.LossRatio(),
			Year:         p.OldestBuilding,
			Construction: p.ConstructionType,
			State:        p.PrimaryRiskState,
		})
	}
	return out
}

// BuildPlot 生成绘图页所需的全部序列
func BuildPlot(policies []*policy.RawPolicy) Plot {
	points := Scatter(policies)

	byLoss := append([]Point(nil), points...)
	sort.SliceStable(byLoss, func(i, j int) bool { return byLoss[i].LossRatio < byLoss[j].LossRatio })

	byID := append([]Point(nil), points...)
	sort.SliceStable(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	byWin := append([]Point(nil), points...)
	sort.SliceStable(byWin, func(i, j int) bool { return byWin[i].Winnability < byWin[j].Winnability })

	return Plot{LossVsTIV: byLoss, RiskBars: byID, WinVsRisk: byWin, Radar: Radar(policies)}
}
