package query

import (
	"strings"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// 区域
const (
	RegionNA    = "na"
	RegionOther = "other"
)

// 经纪商分类
const (
	BrokerMarsh  = "marsh"
	BrokerAon    = "aon"
	BrokerWillis = "willis"
	BrokerOther  = "other"
)

// 保费区间
const (
	PremiumSmall  = "small"
	PremiumMedium = "medium"
	PremiumLarge  = "large"
)

// 评分区间
const (
	ScoreHigh   = "high"
	ScoreMedium = "medium"
	ScoreLow    = "low"
)

var northAmerica = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {}, "PR": {},
}

// brokerKeys 按优先级匹配
var brokerKeys = [...]struct{ needle, key string }{
	{"marsh", BrokerMarsh},
	{"aon", BrokerAon},
	{"willis", BrokerWillis},
}

// RegionOf 州代码所属区域
func RegionOf(state string) string {
	if _, ok := northAmerica[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return RegionNA
	}
	return RegionOther
}

// BrokerOf 经纪商名称所属分类
func BrokerOf(name string) string {
	lower := strings.ToLower(name)
	for _, b := range brokerKeys {
		if strings.Contains(lower, b.needle) {
			return b.key
		}
	}
	return BrokerOther
}

// PremiumBracketOf 保费所属区间，[1M, 5M] 为 medium
func PremiumBracketOf(v float64) string {
	switch {
	case v < 1_000_000:
		return PremiumSmall
	case v <= 5_000_000:
		return PremiumMedium
	default:
		return PremiumLarge
	}
}

// ScoreBandOf appetite 分数所属区间
func ScoreBandOf(appetiteScore int) string {
	s := float64(appetiteScore) / 100
	switch {
	case s >= 0.6:
		return ScoreHigh
	case s >= 0.3:
		return ScoreMedium
	default:
		return ScoreLow
	}
}

func businessKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "new", "new business", "new-business", "new_business":
		return "new"
	}
	return v
}

// Filter 返回满足所有启用维度的提交，保持原有顺序
func Filter(list []*policy.Submission, q Query) []*policy.Submission {
	out := make([]*policy.Submission, 0, len(list))
	for _, s := range list {
		if keep(s, q) {
			out = append(out, s)
		}
	}
	return out
}

func keep(s *policy.Submission, q Query) bool {
	if active(q.Appetite) && !strings.EqualFold(s.AppetiteStatus, strings.TrimSpace(q.Appetite)) {
		return false
	}
	if active(q.Region) && RegionOf(s.State) != strings.ToLower(strings.TrimSpace(q.Region)) {
		return false
	}
	if active(q.Broker) && BrokerOf(s.Broker) != strings.ToLower(strings.TrimSpace(q.Broker)) {
		return false
	}
	if active(q.Premium) && PremiumBracketOf(s.PremiumValue) != strings.ToLower(strings.TrimSpace(q.Premium)) {
		return false
	}
	if active(q.ScoreBand) && ScoreBandOf(s.AppetiteScore) != strings.ToLower(strings.TrimSpace(q.ScoreBand)) {
		return false
	}
	if active(q.Business) && businessKey(s.BusinessType) != businessKey(q.Business) {
		return false
	}
	return true
}
