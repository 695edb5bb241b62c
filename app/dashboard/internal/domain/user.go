package domain

import "time"

// Session 已登录用户的身份信息
type Session struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// User 用户档案
type User struct {
	UserID         string         `json:"userId"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Preferences    map[string]any `json:"preferences"`
	RecentSearches []string       `json:"recentSearches"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// PendingSignup 注册时填写、首次登录后才写入的资料
type PendingSignup struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	RulePreferences string    `json:"rulePreferences"`
	SignedUpAt      time.Time `json:"signedUpAt"`
}
