// Package appetite 实现承保偏好的规则筛选、评分、风险评分与账户聚合。
package appetite

import (
	"strings"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// 偏好阈值
const (
	TargetLine       = "COMMERCIAL PROPERTY"
	MinTIV           = 10_000_000
	MinBuildingYear  = 1950
	MaxLossRatio     = 0.7
	ExcludedBuilding = "Frame"
)

// InAppetite 检查保单是否满足全部偏好规则，返回未满足的原因
func InAppetite(p *policy.RawPolicy) (bool, []string) {
	var reasons []string
	if !strings.EqualFold(strings.TrimSpace(p.LineOfBusiness), TargetLine) {
		reasons = append(reasons, "line of business is not commercial property")
	}
	if p.EffectiveDate == "" || p.ExpirationDate == "" {
		reasons = append(reasons, "missing effective or expiration date")
	}
	if p.TIV < MinTIV {
		reasons = append(reasons, "TIV below $10M")
	}
	if strings.EqualFold(strings.TrimSpace(p.ConstructionType), ExcludedBuilding) {
		reasons = append(reasons, "frame construction")
	}
	if p.OldestBuilding != 0 && p.OldestBuilding < MinBuildingYear {
		reasons = append(reasons, "oldest building built before 1950")
	}
	if p.LossRatio() >= MaxLossRatio {
		reasons = append(reasons, "loss ratio at or above 0.7")
	}
	return len(reasons) == 0, reasons
}

// Partition 按规则把保单分成符合与不符合两组，保持原有顺序
func Partition(policies []*policy.RawPolicy) (in, out []*policy.RawPolicy) {
	for _, p := range policies {
		if ok, _ := InAppetite(p); ok {
			in = append(in, p)
		} else {
			out = append(out, p)
		}
	}
	return in, out
}
