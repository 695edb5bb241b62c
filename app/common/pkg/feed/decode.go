package feed

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/policy"
)

// ErrEmpty 文档为空
var ErrEmpty = errors.New("empty feed document")

// ErrNoAccounts 文档中既没有 accounts 也没有 grouped_accounts
var ErrNoAccounts = errors.New("feed document has neither accounts nor grouped_accounts")

// document 数据源文档的两种对象格式
type document struct {
	Accounts        map[string]*policy.Account `json:"accounts"`
	GroupedAccounts []policy.GroupedAccount    `json:"grouped_accounts"`
}

// Decode 解析数据源文档，返回按相关度排序的保单。
// 支持 {"accounts": {...}}、{"grouped_accounts": [...]} 与直接的分组数组三种格式。
func Decode(data []byte) ([]*policy.RawPolicy, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if data[0] == '[' {
		var groups []policy.GroupedAccount
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("decode grouped feed: %w", err)
		}
		return policy.Flatten(policy.FromGrouped(groups)), nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	switch {
	case doc.Accounts != nil:
		return policy.Flatten(&policy.Feed{Accounts: doc.Accounts}), nil
	case doc.GroupedAccounts != nil:
		return policy.Flatten(policy.FromGrouped(doc.GroupedAccounts)), nil
	default:
		return nil, ErrNoAccounts
	}
}

// DecodeRaw 解析未打分的原始导出：{"output":[{"data":[...]}]} 或直接的数组
func DecodeRaw(data []byte) ([]*policy.RawPolicy, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if data[0] == '[' {
		var list []*policy.RawPolicy
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode raw policies: %w", err)
		}
		return compact(list), nil
	}

	var doc struct {
		Output []struct {
			Data []*policy.RawPolicy `json:"data"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode raw export: %w", err)
	}
	var out []*policy.RawPolicy
	for _, o := range doc.Output {
		out = append(out, compact(o.Data)...)
	}
	return out, nil
}

// compact 去掉 null 记录
func compact(list []*policy.RawPolicy) []*policy.RawPolicy {
	out := list[:0]
	for _, p := range list {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// DecodeHeatmap 解析 heatmap.json
func DecodeHeatmap(data []byte) (*heatmap.Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	var doc heatmap.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode heatmap: %w", err)
	}
	return &doc, nil
}

// Encode 以缩进格式输出文档
func Encode(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "    ")
}
