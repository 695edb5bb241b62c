package appetite

import (
	"sort"
	"strconv"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// AggregateAccount 按账户汇总保单评分。
// 每张保单的 score 为自身相关度与账户保费加权分的均值，并补上风险评分。
// 传入的保单不会被修改。
func AggregateAccount(name string, policies []*policy.RawPolicy) *policy.Account {
	acc := &policy.Account{Name: name, Policies: make(map[string]*policy.RawPolicy, len(policies))}
	if len(policies) == 0 {
		return acc
	}

	var sum, top, weighted, premiums float64
	for i, p := range policies {
		r := p.Relevance
		sum += r
		if i == 0 || r > top {
			top = r
		}
		weighted += r * p.TotalPremium
		premiums += p.TotalPremium
	}
	avg := sum / float64(len(policies))
	wavg := avg
	if premiums > 0 {
		wavg = weighted / premiums
	}

	var riskSum, riskWeighted float64
	for _, p := range policies {
		c := *p
		c.AccountName = name
		c.Score = round((p.Relevance+wavg)/2, 3)
		c.RiskScore = RiskScore(p)
		riskSum += c.RiskScore
		pr := p.TotalPremium
		if pr == 0 {
			pr = 1
		}
		riskWeighted += c.RiskScore * pr
		acc.Policies[strconv.FormatInt(p.ID, 10)] = &c
	}
	avgRisk := riskSum / float64(len(policies))
	weightedRisk := avgRisk
	if premiums > 0 {
		weightedRisk = riskWeighted / premiums
	}

	acc.AvgScore = round(avg, 3)
	acc.MaxScore = round(top, 3)
	acc.WeightedScore = round(wavg, 3)
	acc.AvgRiskScore = round(avgRisk, 2)
	acc.WeightedRiskScore = round(weightedRisk, 2)
	return acc
}

// BuildFeed 按账户名分组并聚合，返回完整的数据源文档
func BuildFeed(policies []*policy.RawPolicy) *policy.Feed {
	groups := make(map[string][]*policy.RawPolicy)
	var order []string
	for _, p := range policies {
		if p == nil {
			continue
		}
		if _, ok := groups[p.AccountName]; !ok {
			order = append(order, p.AccountName)
		}
		groups[p.AccountName] = append(groups[p.AccountName], p)
	}
	sort.Strings(order)

	feed := &policy.Feed{Accounts: make(map[string]*policy.Account, len(order))}
	for _, name := range order {
		feed.Accounts[name] = AggregateAccount(name, groups[name])
	}
	return feed
}
