package query

import (
	"sort"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

// 排序键
const (
	SortRelevance = "relevance"
	SortScore     = "score"
	SortPremium   = "premium"
	SortTIV       = "tiv"
	SortRisk      = "risk"
	SortDate      = "date"
)

// Result 一次查询的结果页
type Result struct {
	Items      []*policy.Submission `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// Paginate 返回第 page 页（从 1 开始）及总页数。
// 总页数至少为 1；越界页返回空切片，不做夹取。
func Paginate[T any](list []T, page, pageSize int) ([]T, int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages := (len(list) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if page < 1 || start >= len(list) {
		return []T{}, totalPages
	}
	end := min(start+pageSize, len(list))
	return list[start:end], totalPages
}

// Sort 按排序键降序稳定排序，返回新切片；relevance 或未知键保持输入顺序
func Sort(list []*policy.Submission, key string) []*policy.Submission {
	out := append([]*policy.Submission(nil), list...)

	var less func(a, b *policy.Submission) bool
	switch key {
	case SortScore:
		less = func(a, b *policy.Submission) bool { return a.AppetiteScore > b.AppetiteScore }
	case SortPremium:
		less = func(a, b *policy.Submission) bool { return a.PremiumValue > b.PremiumValue }
	case SortTIV:
		less = func(a, b *policy.Submission) bool { return a.TIV > b.TIV }
	case SortRisk:
		less = func(a, b *policy.Submission) bool { return a.RiskScore > b.RiskScore }
	case SortDate:
		less = func(a, b *policy.Submission) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Match 依次执行搜索、过滤和排序，返回全部命中项
func Match(list []*policy.Submission, q Query) []*policy.Submission {
	return Sort(Filter(Search(list, q.Text), q), q.Sort)
}

// Run 依次执行搜索、过滤、排序和分页
func Run(list []*policy.Submission, q Query) Result {
	q = q.Normalized()
	return PageOf(Match(list, q), q)
}

// PageOf 对已命中的列表分页
func PageOf(matched []*policy.Submission, q Query) Result {
	q = q.Normalized()
	items, totalPages := Paginate(matched, q.Page, q.PageSize)
	return Result{
		Items:      items,
		Total:      len(matched),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}
}
