package domain

import "time"

// Guideline 用户自定义的承保规则
type Guideline struct {
	UserID      string         `json:"userId"`
	GuidelineID string         `json:"guidelineId"`
	Title       string         `json:"title"`
	Rules       []string       `json:"rules"`
	Preferences map[string]any `json:"preferences"`
	Source      string         `json:"source,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
