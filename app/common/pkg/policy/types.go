package policy

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Amount 兼容字符串与数字两种写法的金额字段（如 loss_value）
type Amount float64

// UnmarshalJSON 实现 json.Unmarshaler
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*a = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// Reference LLM 生成的参考资料
type Reference struct {
	Point string `json:"point" yaml:"point"`
	Link  string `json:"link" yaml:"link"`
}

// RawPolicy 数据源中的原始保单记录，只读
type RawPolicy struct {
	ID                   int64       `json:"id"`
	TIV                  float64     `json:"tiv"`
	CreatedAt            string      `json:"created_at"`
	LossValue            Amount      `json:"loss_value"`
	Winnability          float64     `json:"winnability"`
	AccountName          string      `json:"account_name"`
	TotalPremium         float64     `json:"total_premium"`
	EffectiveDate        string      `json:"effective_date"`
	ExpirationDate       string      `json:"expiration_date"`
	OldestBuilding       int         `json:"oldest_building"`
	LineOfBusiness       string      `json:"line_of_business"`
	ConstructionType     string      `json:"construction_type"`
	PrimaryRiskState     string      `json:"primary_risk_state"`
	RenewalOrNewBusiness string      `json:"renewal_or_new_business"`
	Score                float64     `json:"score,omitempty"`
	RiskScore            float64     `json:"risk_score,omitempty"`
	Relevance            float64     `json:"cohere_relevance,omitempty"`
	JustificationPoints  []string    `json:"justification_points,omitempty"`
	References           []Reference `json:"references,omitempty"`
}

// RelevanceScore 排序用的相关度：优先 score，缺失时退回 winnability
func (p *RawPolicy) RelevanceScore() float64 {
	if p.Score != 0 {
		return p.Score
	}
	return p.Winnability
}

// LossRatio 赔付率，保费缺失时按 1 处理
func (p *RawPolicy) LossRatio() float64 {
	if p.TotalPremium <= 0 {
		return 1
	}
	return float64(p.LossValue) / p.TotalPremium
}

// IsRenewal 是否为续保业务
func (p *RawPolicy) IsRenewal() bool {
	return strings.EqualFold(p.RenewalOrNewBusiness, "RENEWAL")
}

// Account 按客户聚合的保单及评分
type Account struct {
	Name              string                `json:"-"`
	Policies          map[string]*RawPolicy `json:"policies"`
	AvgScore          float64               `json:"avg_score"`
	MaxScore          float64               `json:"max_score"`
	WeightedScore     float64               `json:"weighted_score"`
	AvgRiskScore      float64               `json:"avg_risk_score"`
	WeightedRiskScore float64               `json:"weighted_risk_score"`
}

// Feed 数据源返回的完整文档
type Feed struct {
	Accounts map[string]*Account `json:"accounts"`
}

// GroupedAccount 旧版数据源的分组格式
type GroupedAccount struct {
	AccountName string       `json:"account_name"`
	Records     []*RawPolicy `json:"records"`
}

// DetailedInfo 提交详情页展示的扩展信息
type DetailedInfo struct {
	SubmissionDate string   `json:"submissionDate,omitempty" yaml:"submissionDate"`
	ExpirationDate string   `json:"expirationDate,omitempty" yaml:"expirationDate"`
	Industry       string   `json:"industry,omitempty" yaml:"industry"`
	Employees      string   `json:"employees,omitempty" yaml:"employees"`
	Revenue        string   `json:"revenue,omitempty" yaml:"revenue"`
	Location       string   `json:"location,omitempty" yaml:"location"`
	RiskFactors    []string `json:"riskFactors,omitempty" yaml:"riskFactors"`
	PreviousClaims string   `json:"previousClaims,omitempty" yaml:"previousClaims"`
}

// Appetite 状态
const (
	AppetiteGood    = "good"
	AppetiteMissing = "missing"
	AppetitePoor    = "poor"
)

// 推荐结论
const (
	RecommendApprove     = "Approve"
	RecommendDecline     = "Decline"
	RecommendRequestInfo = "Request Info"
)

// Submission 面向展示的提交记录，由 RawPolicy 派生
type Submission struct {
	ID             int64         `json:"id" yaml:"id"`
	SubmissionID   string        `json:"submissionId,omitempty" yaml:"submissionId"`
	Client         string        `json:"client" yaml:"client"`
	Broker         string        `json:"broker" yaml:"broker"`
	Premium        string        `json:"premium" yaml:"premium"`
	PremiumValue   float64       `json:"premiumValue" yaml:"premiumValue"`
	AppetiteScore  int           `json:"appetiteScore" yaml:"appetiteScore"`
	AppetiteStatus string        `json:"appetiteStatus" yaml:"appetiteStatus"`
	SLATimer       string        `json:"slaTimer" yaml:"slaTimer"`
	SLAProgress    int           `json:"slaProgress" yaml:"slaProgress"`
	Status         string        `json:"status" yaml:"status"`
	Company        string        `json:"company" yaml:"company"`
	Product        string        `json:"product" yaml:"product"`
	Coverage       string        `json:"coverage" yaml:"coverage"`
	LineOfBusiness string        `json:"lineOfBusiness" yaml:"lineOfBusiness"`
	State          string        `json:"state" yaml:"state"`
	BusinessType   string        `json:"businessType" yaml:"businessType"`
	WhySurfaced    []string      `json:"whySurfaced" yaml:"whySurfaced"`
	MissingInfo    []string      `json:"missingInfo" yaml:"missingInfo"`
	Recommendation string        `json:"recommendation" yaml:"recommendation"`
	RiskScore      float64       `json:"riskScore,omitempty" yaml:"riskScore"`
	TIV            float64       `json:"tiv,omitempty" yaml:"tiv"`
	CreatedAt      time.Time     `json:"createdAt,omitempty" yaml:"-"`
	DetailedInfo   *DetailedInfo `json:"detailedInfo,omitempty" yaml:"detailedInfo"`
}

// Clone 返回深拷贝，派生列表不共享切片
func (s *Submission) Clone() *Submission {
	c := *s
	c.WhySurfaced = append([]string(nil), s.WhySurfaced...)
	c.MissingInfo = append([]string(nil), s.MissingInfo...)
	if s.DetailedInfo != nil {
		d := *s.DetailedInfo
		d.RiskFactors = append([]string(nil), s.DetailedInfo.RiskFactors...)
		c.DetailedInfo = &d
	}
	return &c
}

var _ json.Unmarshaler = (*Amount)(nil)
