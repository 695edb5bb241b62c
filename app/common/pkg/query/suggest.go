package query

import (
	"strings"
	"unicode/utf8"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// MaxSuggestions 下拉建议上限
const MaxSuggestions = 8

// 建议类型
const (
	SuggestionRecent = "recent"
	SuggestionField  = "suggestion"
)

// Suggestion 搜索框下拉建议
type Suggestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type suggestField struct {
	category string
	limit    int
	counted  bool
	get      func(*policy.Submission) string
}

var suggestFields = [...]suggestField{
	{"Client", 5, true, func(s *policy.Submission) string { return s.Client }},
	{"State", 5, true, func(s *policy.Submission) string { return s.State }},
	{"Line of Business", 5, true, func(s *policy.Submission) string { return s.LineOfBusiness }},
	{"Broker", 5, true, func(s *policy.Submission) string { return s.Broker }},
	{"Premium", 3, false, func(s *policy.Submission) string { return s.Premium }},
	{"Status", 0, true, func(s *policy.Submission) string { return s.Status }},
}

// Suggest 生成搜索建议：短查询先给出匹配的最近搜索，
// 再按字段给出包含查询词的去重取值
func Suggest(list []*policy.Submission, recent RecentSearches, text string) []Suggestion {
	if len(list) == 0 {
		return []Suggestion{}
	}

	text = strings.TrimSpace(text)
	lowerText := strings.ToLower(text)
	seen := make(map[string]struct{})
	out := make([]Suggestion, 0, MaxSuggestions)

	if utf8.RuneCountInString(text) <= 2 {
		for _, r := range recent {
			lower := strings.ToLower(r)
			if text != "" && !strings.Contains(lower, lowerText) {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, Suggestion{ID: SuggestionRecent + "-" + r, Text: r, Type: SuggestionRecent})
		}
	}

	if text != "" {
		for _, f := range suggestFields {
			for _, v := range distinct(list, f.get, f.limit) {
				lower := strings.ToLower(v)
				if _, dup := seen[lower]; dup || !strings.Contains(lower, lowerText) {
					continue
				}
				seen[lower] = struct{}{}
				sg := Suggestion{ID: SuggestionField + "-" + v, Text: v, Type: SuggestionField, Category: f.category}
				if f.counted {
					sg.Count = count(list, f.get, v)
				}
				out = append(out, sg)
			}
		}
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// distinct 按出现顺序取前 limit 个不同取值，limit 为 0 表示不限
func distinct(list []*policy.Submission, get func(*policy.Submission) string, limit int) []string {
	var out []string
	set := make(map[string]struct{})
	for _, s := range list {
		v := get(s)
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func count(list []*policy.Submission, get func(*policy.Submission) string, v string) int {
	n := 0
	for _, s := range list {
		if get(s) == v {
			n++
		}
	}
	return n
}
