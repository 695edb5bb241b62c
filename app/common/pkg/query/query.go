// Package query 实现提交列表的搜索、过滤、排序与分页。
// 所有函数都是纯函数，不修改输入列表。
package query

import "strings"

// DefaultPageSize 列表默认每页条数
const DefaultPageSize = 10

// All 表示该维度不做限制
const All = "all"

// Query 列表页的筛选与分页状态，按值传递
type Query struct {
	Text      string `json:"q"`
	Appetite  string `json:"appetite"`
	Region    string `json:"region"`
	Broker    string `json:"broker"`
	Premium   string `json:"premium"`
	ScoreBand string `json:"score"`
	Business  string `json:"business"`
	Sort      string `json:"sort"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

// Normalized 补全缺省的页码和每页条数
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// ActionKind 状态变更类型
type ActionKind int

const (
	SetText ActionKind = iota
	SetAppetite
	SetRegion
	SetBroker
	SetPremium
	SetScoreBand
	SetBusiness
	SetSort
	SetPage
	Reset
)

var actionNames = map[string]ActionKind{
	"text":     SetText,
	"appetite": SetAppetite,
	"region":   SetRegion,
	"broker":   SetBroker,
	"premium":  SetPremium,
	"score":    SetScoreBand,
	"business": SetBusiness,
	"sort":     SetSort,
	"page":     SetPage,
	"reset":    Reset,
}

// ParseActionKind 按名称解析 action，名称与 Query 的 json 字段一致
func ParseActionKind(name string) (ActionKind, bool) {
	k, ok := actionNames[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Action 一次状态变更
type Action struct {
	Kind  ActionKind
	Value string
	Page  int
}

// Reduce 根据 action 返回新的 Query。
// 搜索词或任一过滤维度变化时页码回到 1，避免停留在越界的空页。
func Reduce(q Query, a Action) Query {
	switch a.Kind {
	case SetText:
		q.Text = a.Value
	case SetAppetite:
		q.Appetite = a.Value
	case SetRegion:
		q.Region = a.Value
	case SetBroker:
		q.Broker = a.Value
	case SetPremium:
		q.Premium = a.Value
	case SetScoreBand:
		q.ScoreBand = a.Value
	case SetBusiness:
		q.Business = a.Value
	case SetSort:
		q.Sort = a.Value
		return q
	case SetPage:
		q.Page = a.Page
		return q
	case Reset:
		return Query{Page: 1, PageSize: q.PageSize, Sort: q.Sort}
	default:
		return q
	}
	q.Page = 1
	return q
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}
