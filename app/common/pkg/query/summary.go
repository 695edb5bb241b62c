package query

import "github.com/optimate/optimate/app/common/pkg/policy"

// Summary 仪表盘顶部的汇总指标
type Summary struct {
	Total             int                  `json:"total"`
	InAppetite        int                  `json:"inAppetite"`
	AtSLARisk         int                  `json:"atSlaRisk"`
	TotalPremiumTop10 float64              `json:"totalPremiumTop10"`
	TotalPremiumLabel string               `json:"totalPremiumLabel"`
	Top3              []*policy.Submission `json:"top3"`
}

// Summarize 计算汇总指标：appetite ≥80 视为符合偏好，SLA 进度 ≥70 视为有风险
func Summarize(list []*policy.Submission) Summary {
	s := Summary{Total: len(list)}
	for i, v := range list {
		if v.AppetiteScore >= 80 {
			s.InAppetite++
		}
		if v.SLAProgress >= 70 {
			s.AtSLARisk++
		}
		if i < 10 {
			s.TotalPremiumTop10 += v.PremiumValue
		}
	}
	s.TotalPremiumLabel = policy.FormatPremium(s.TotalPremiumTop10)
	s.Top3 = list[:min(3, len(list))]
	return s
}
