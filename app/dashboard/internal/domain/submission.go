package domain

import (
	"time"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// Submission 用户名下保存的提交
type Submission struct {
	policy.Submission
	UserID    string    `json:"userId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppetiteUpdate 可修改的评估字段，Status 为空时保留原值
type AppetiteUpdate struct {
	AppetiteScore  int
	AppetiteStatus string
	Status         string
}
