// Package feed 读取评分后的保单数据源与热力图文档，并支持定时刷新。
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/optimate/optimate/app/common/pkg/heatmap"
	"github.com/optimate/optimate/app/common/pkg/logger"
	"github.com/optimate/optimate/app/common/pkg/policy"
)

const maxBody = 64 << 20

// Client 数据源客户端，source 可以是 http(s) 地址或本地文件路径
type Client struct {
	source        string
	heatmapSource string
	client        *http.Client
}

// NewClient 创建数据源客户端
func NewClient(source, heatmapSource string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		source:        source,
		heatmapSource: heatmapSource,
		client:        &http.Client{Timeout: timeout},
	}
}

// Fetch 拉取并解析保单数据源
func (c *Client) Fetch(ctx context.Context) ([]*policy.RawPolicy, error) {
	data, err := c.read(ctx, c.source)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Load 与 Fetch 相同，但失败时记录日志并返回空列表
func (c *Client) Load(ctx context.Context) []*policy.RawPolicy {
	list, err := c.Fetch(ctx)
	if err != nil {
		logger.Log.Errorf("加载数据源失败 [%s]: %v", c.source, err)
		return []*policy.RawPolicy{}
	}
	return list
}

// Heatmap 拉取热力图文档
func (c *Client) Heatmap(ctx context.Context) (*heatmap.Document, error) {
	if c.heatmapSource == "" {
		return nil, fmt.Errorf("heatmap source not configured")
	}
	data, err := c.read(ctx, c.heatmapSource)
	if err != nil {
		return nil, err
	}
	return DecodeHeatmap(data)
}

func (c *Client) read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("feed source not configured")
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("read feed file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
