// Package guideline 从网页导入承保规则。
package guideline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// MaxRules 单次导入保留的规则条数
const MaxRules = 50

const maxPage = 8 << 20

// ErrNoRules 页面中没有可用的规则
var ErrNoRules = errors.New("no rules found")

// Imported 导入结果
type Imported struct {
	Title  string   `json:"title"`
	Rules  []string `json:"rules"`
	Source string   `json:"source"`
}

// Importer 规则导入器
type Importer struct {
	client *http.Client
}

// NewImporter 创建导入器
func NewImporter(timeout time.Duration) *Importer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Importer{client: &http.Client{Timeout: timeout}}
}

// Import 抓取页面，优先取正文中的列表项作为规则，没有列表时按行拆分正文
func (im *Importer) Import(ctx context.Context, rawURL string) (*Imported, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid guideline url: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch guideline page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch guideline page: status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPage))
	if err != nil {
		return nil, fmt.Errorf("read guideline page: %w", err)
	}
	return Parse(page, u)
}

// Parse 从页面 HTML 中提取标题与规则
func Parse(page []byte, u *url.URL) (*Imported, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// 正文提取失败时仍可使用列表项
	var title, text string
	if article, err := readability.FromReader(bytes.NewReader(page), u); err == nil {
		title, text = article.Title, article.TextContent
	}

	if strings.TrimSpace(text) == "" {
		text = doc.Find("body").Text()
	}

	rules := listRules(doc)
	if len(rules) == 0 {
		rules = lineRules(text)
	}
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = u.Host
	}
	return &Imported{Title: title, Rules: rules, Source: u.String()}, nil
}

// listRules 收集正文区域中的列表项，跳过导航与页脚
func listRules(doc *goquery.Document) []string {
	root := doc.Find("main, article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var rules []string
	seen := make(map[string]struct{})
	root.Find("li").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("nav, footer, header").Length() > 0 {
			return
		}
		rules = appendRule(rules, seen, s.Text())
	})
	return rules
}

func lineRules(text string) []string {
	var rules []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		rules = appendRule(rules, seen, line)
	}
	return rules
}

func appendRule(rules []string, seen map[string]struct{}, text string) []string {
	if len(rules) >= MaxRules {
		return rules
	}
	rule := strings.Join(strings.Fields(text), " ")
	rule = strings.TrimLeft(rule, "-*• ")
	if len(rule) < 3 {
		return rules
	}
	if _, ok := seen[strings.ToLower(rule)]; ok {
		return rules
	}
	seen[strings.ToLower(rule)] = struct{}{}
	return append(rules, rule)
}
