package query

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/optimate/optimate/app/common/pkg/policy"
)

type folder struct {
	c cases.Caser
}

func newFolder() *folder {
	return &folder{c: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.c.String(norm.NFKC.String(s))
}

func (f *folder) contains(s, term string) bool {
	return s != "" && strings.Contains(f.fold(s), term)
}

// Search 对列表做不区分大小写的子串搜索，任一字段命中即保留。
// 空白查询原样返回输入列表。
func Search(list []*policy.Submission, text string) []*policy.Submission {
	if strings.TrimSpace(text) == "" {
		return list
	}

	f := newFolder()
	term := f.fold(strings.TrimSpace(text))
	out := make([]*policy.Submission, 0, len(list))
	for _, s := range list {
		if matches(f, s, term) {
			out = append(out, s)
		}
	}
	return out
}

func matches(f *folder, s *policy.Submission, term string) bool {
	short := [...]string{
		s.Client, s.Broker, s.Company, s.Product, s.LineOfBusiness, s.State,
		s.BusinessType, s.Status, s.Premium, s.Coverage, s.Recommendation, s.AppetiteStatus,
	}
	for _, v := range short {
		if f.contains(v, term) {
			return true
		}
	}

	for _, list := range [...][]string{s.WhySurfaced, s.MissingInfo} {
		for _, v := range list {
			if f.contains(v, term) {
				return true
			}
		}
	}

	if d := s.DetailedInfo; d != nil {
		detail := [...]string{
			d.Industry, d.Location, d.Employees, d.Revenue, d.PreviousClaims,
			d.SubmissionDate, d.ExpirationDate,
		}
		for _, v := range detail {
			if f.contains(v, term) {
				return true
			}
		}
	}

	return strings.Contains(strconv.FormatInt(s.ID, 10), term) ||
		strings.Contains(strconv.Itoa(s.AppetiteScore), term)
}
