package policy

import (
	"sort"
	"strconv"
)

// Flatten 将按客户分组的保单展开为单一列表，并按相关度降序排列
func Flatten(feed *Feed) []*RawPolicy {
	if feed == nil {
		return nil
	}

	var all []*RawPolicy
	for name, acc := range feed.Accounts {
		if acc == nil {
			continue
		}
		acc.Name = name
		for _, p := range acc.Policies {
			if p == nil {
				continue
			}
			if p.AccountName == "" {
				p.AccountName = name
			}
			all = append(all, p)
		}
	}
	SortByRelevance(all)
	return all
}

// FromGrouped 将旧版 grouped_accounts 格式转换为 Feed
func FromGrouped(groups []GroupedAccount) *Feed {
	feed := &Feed{Accounts: make(map[string]*Account, len(groups))}
	for _, g := range groups {
		acc, ok := feed.Accounts[g.AccountName]
		if !ok {
			acc = &Account{Name: g.AccountName, Policies: make(map[string]*RawPolicy)}
			feed.Accounts[g.AccountName] = acc
		}
		for _, p := range g.Records {
			if p == nil {
				continue
			}
			acc.Policies[policyKey(p)] = p
		}
	}
	return feed
}

// SortByRelevance 相关度降序，相同时按 ID 升序保证结果稳定
func SortByRelevance(list []*RawPolicy) {
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := list[i].RelevanceScore(), list[j].RelevanceScore()
		if ri != rj {
			return ri > rj
		}
		return list[i].ID < list[j].ID
	})
}

func policyKey(p *RawPolicy) string {
	return strconv.FormatInt(p.ID, 10)
}
