package query

import "strings"

// MaxRecentSearches 最近搜索保留条数
const MaxRecentSearches = 5

// RecentSearches 最近搜索，新的在前
type RecentSearches []string

// Push 把 q 移到最前并截断到上限，空白查询忽略
func (r RecentSearches) Push(q string) RecentSearches {
	q = strings.TrimSpace(q)
	if q == "" {
		return r
	}
	out := make(RecentSearches, 0, MaxRecentSearches)
	out = append(out, q)
	for _, v := range r {
		if v == q {
			continue
		}
		if len(out) == MaxRecentSearches {
			break
		}
		out = append(out, v)
	}
	return out
}

// Remove 删除一条记录
func (r RecentSearches) Remove(q string) RecentSearches {
	out := make(RecentSearches, 0, len(r))
	for _, v := range r {
		if v != q {
			out = append(out, v)
		}
	}
	return out
}

// Clear 清空
func (r RecentSearches) Clear() RecentSearches {
	return RecentSearches{}
}
