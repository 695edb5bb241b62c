package heatmap

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// 可选的着色字段
const (
	FieldAvgScore     = "avg_score"
	FieldAvgRiskScore = "avg_risk_score"
	FieldPolicyCount  = "policy_count"
)

// State 单个州的聚合数据，与 heatmap.json 的格式一致
type State struct {
	ID           string  `json:"id" yaml:"id"`
	State        string  `json:"state" yaml:"state"`
	Name         string  `json:"name" yaml:"name"`
	AvgScore     float64 `json:"avg_score" yaml:"avg_score"`
	AvgRiskScore float64 `json:"avg_risk_score" yaml:"avg_risk_score"`
	PolicyCount  int     `json:"policy_count" yaml:"policy_count"`
}

// Document heatmap.json 文档
type Document struct {
	States []State `json:"states"`
}

// Row 渲染用的行
type Row struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	RawValue     float64 `json:"rawValue"`
	DisplayValue string  `json:"displayValue"`
}

// Legend 图例区间，使用原始值
type Legend struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Rendered 一次渲染的结果
type Rendered struct {
	Field       string  `json:"field"`
	Sensitivity float64 `json:"sensitivity"`
	Rows        []Row   `json:"rows"`
	Legend      Legend  `json:"legend"`
}

// Aggregate 按主要风险州聚合保单，结果按州代码排序
func Aggregate(policies []*policy.RawPolicy) []State {
	type acc struct {
		score, risk float64
		n           int
	}
	by := make(map[string]*acc)
	for _, p := range policies {
		if p == nil {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(p.PrimaryRiskState))
		if code == "" {
			continue
		}
		a, ok := by[code]
		if !ok {
			a = &acc{}
			by[code] = a
		}
		a.score += p.RelevanceScore()
		a.risk += p.RiskScore
		a.n++
	}

	out := make([]State, 0, len(by))
	for code, a := range by {
		out = append(out, State{
			ID:           "US-" + code,
			State:        code,
			Name:         StateName(code),
			AvgScore:     round(a.score/float64(a.n), 4),
			AvgRiskScore: round(a.risk/float64(a.n), 2),
			PolicyCount:  a.n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Build 取出 field 对应的值并做对比度增强。
// avg_score 按百分比展示；未知字段按 avg_risk_score 处理。
func Build(states []State, field string, sensitivity float64) Rendered {
	switch field {
	case FieldAvgScore, FieldAvgRiskScore, FieldPolicyCount:
	default:
		field = FieldAvgRiskScore
	}

	raw := make([]float64, len(states))
	rows := make([]Row, len(states))
	for i, s := range states {
		var v float64
		switch field {
		case FieldAvgScore:
			v = s.AvgScore * 100
		case FieldAvgRiskScore:
			v = s.AvgRiskScore
		case FieldPolicyCount:
			v = float64(s.PolicyCount)
		}
		raw[i] = v
		rows[i] = Row{ID: s.ID, Name: s.Name, RawValue: v, DisplayValue: display(field, v)}
	}

	values := Transform(raw, sensitivity)
	for i := range rows {
		rows[i].Value = values[i]
	}

	var legend Legend
	if lo, hi, ok := bounds(raw); ok {
		legend = Legend{Min: lo, Max: hi}
	}
	return Rendered{Field: field, Sensitivity: sensitivity, Rows: rows, Legend: legend}
}

func display(field string, v float64) string {
	if field == FieldAvgScore {
		return fmt.Sprintf("%.1f%%", v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
