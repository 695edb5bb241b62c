package policy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Brokers 按输入顺序轮换分配给保单的经纪人
var Brokers = []string{
	"Marsh & McLennan",
	"Aon Risk Solutions",
	"Willis Towers Watson",
	"Gallagher",
	"Brown & Brown",
}

var productByLine = map[string]string{
	"GENERAL LIABILITY":      "General Liability",
	"WORKERS COMPENSATION":   "Workers' Compensation",
	"COMMERCIAL PROPERTY":    "Commercial Property",
	"CYBER LIABILITY":        "Cyber Liability",
	"PROFESSIONAL LIABILITY": "Professional Liability",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate 解析数据源中的日期字符串，按 UTC 处理
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SLA 计算到期倒计时文案和 0-100 的紧迫度
func SLA(expiration, now time.Time) (string, int) {
	days := int(math.Ceil(float64(expiration.Sub(now)) / float64(24*time.Hour)))

	switch {
	case days <= 0:
		return "Expired", 100
	case days <= 7:
		return fmt.Sprintf("%dd left", days), 85
	case days <= 30:
		return fmt.Sprintf("%dd left", days), 60
	}

	progress := 100 - days*2
	if progress < 20 {
		progress = 20
	}
	months, rest := days/30, days%30
	if months > 0 {
		return fmt.Sprintf("%dm %dd", months, rest), progress
	}
	return fmt.Sprintf("%dd", rest), progress
}

// AppetiteStatus 将 0-1 的分数映射为 appetite 状态。
// 0.3 到 0.8 之间沿用 good，与线上行为保持一致。
func AppetiteStatus(score float64) string {
	if score >= 0.8 {
		return AppetiteGood
	}
	if score < 0.3 {
		return AppetitePoor
	}
	return AppetiteGood
}

// Recommendation 根据百分制 appetite 分给出结论
func Recommendation(appetiteScore int) string {
	if appetiteScore >= 70 {
		return RecommendApprove
	}
	return RecommendDecline
}

// FormatPremium 以 $X.XM 或 $XK 的形式展示保费
func FormatPremium(premium float64) string {
	v := decimal.NewFromFloat(premium)
	if premium >= 1_000_000 {
		return "$" + v.Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "M"
	}
	return "$" + v.Div(decimal.NewFromInt(1_000)).StringFixed(0) + "K"
}

// FormatMillions 以一位小数的百万单位展示金额
func FormatMillions(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "M"
}

// Product 将业务线映射为产品名称，未知业务线原样返回
func Product(lineOfBusiness string) string {
	if p, ok := productByLine[lineOfBusiness]; ok {
		return p
	}
	return lineOfBusiness
}

// AppetiteScore 将源分数换算为 0-100 的 appetite 分
func AppetiteScore(p *RawPolicy) int {
	if p.Score != 0 {
		return int(math.Round(p.Score * 100))
	}
	if p.Winnability > 1 {
		return int(math.Round(p.Winnability))
	}
	return int(math.Round(p.Winnability * 100))
}

// NormalizeOne 把单条原始保单转换为展示用的提交记录，index 决定经纪人轮换
func NormalizeOne(p *RawPolicy, index int, now time.Time) *Submission {
	timer, progress := "Expired", 100
	if exp, ok := ParseDate(p.ExpirationDate); ok {
		timer, progress = SLA(exp, now)
	}

	score := AppetiteScore(p)
	product := Product(p.LineOfBusiness)

	status, businessType := "Review Required", "New"
	if p.IsRenewal() {
		status, businessType = "Under Review", "Renewal"
	}

	// 只有缺少该字段时才补默认理由，显式的空列表保持为空
	var why []string
	if p.JustificationPoints != nil {
		why = make([]string, len(p.JustificationPoints))
		copy(why, p.JustificationPoints)
	} else {
		why = []string{
			fmt.Sprintf("High TIV of %s indicates substantial coverage", FormatMillions(p.TIV)),
			fmt.Sprintf("%s construction from %d", p.ConstructionType, p.OldestBuilding),
			fmt.Sprintf("Located in %s - priority state", p.PrimaryRiskState),
		}
	}

	s := &Submission{
		ID:             p.ID,
		Client:         p.AccountName,
		Broker:         Brokers[index%len(Brokers)],
		Premium:        FormatPremium(p.TotalPremium),
		PremiumValue:   p.TotalPremium,
		AppetiteScore:  score,
		AppetiteStatus: AppetiteStatus(float64(score) / 100),
		SLATimer:       timer,
		SLAProgress:    progress,
		Status:         status,
		Company:        p.AccountName,
		Product:        product,
		Coverage:       FormatMillions(p.TIV) + " " + product,
		LineOfBusiness: cases.Title(language.English).String(p.LineOfBusiness),
		State:          p.PrimaryRiskState,
		BusinessType:   businessType,
		WhySurfaced:    why,
		MissingInfo:    []string{},
		Recommendation: Recommendation(score),
		RiskScore:      p.RiskScore,
		TIV:            p.TIV,
		DetailedInfo: &DetailedInfo{
			SubmissionDate: p.EffectiveDate,
			ExpirationDate: p.ExpirationDate,
			Location:       p.PrimaryRiskState,
		},
	}
	if created, ok := ParseDate(p.CreatedAt); ok {
		s.CreatedAt = created
	}
	return s
}

// Normalize 逐条转换，输出与输入等长且保持顺序。
// 输入不含 nil：Flatten、FromGrouped 和 feed 解码已经过滤掉空记录。
func Normalize(raws []*RawPolicy, now time.Time) []*Submission {
	out := make([]*Submission, len(raws))
	for i, p := range raws {
		out[i] = NormalizeOne(p, i, now)
	}
	return out
}
