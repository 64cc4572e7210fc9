// Package notion 读取待处理文章并回写状态。
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL     = "https://api.notion.com/v1"
	DefaultVersion     = "2022-06-28"
	defaultHTTPTimeout = 30 * time.Second
)

// ErrUnauthorized 表示令牌无效或集成未被授权访问数据库。
var ErrUnauthorized = errors.New("notion: 未授权")

// Config 是客户端参数。
type Config struct {
	Token          string
	BaseURL        string
	Version        string
	StatusProperty string
	ReadyStatus    string
	DoneStatus     string
}

// Client 访问 Notion REST API。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient 构造客户端，空字段使用默认值。
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.StatusProperty == "" {
		cfg.StatusProperty = "Status"
	}
	if cfg.ReadyStatus == "" {
		cfg.ReadyStatus = "Ready"
	}
	if cfg.DoneStatus == "" {
		cfg.DoneStatus = "Done"
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError 携带非 2xx 响应的状态码与响应体。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notion: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Unwrap 让 401 可以用 errors.Is(err, ErrUnauthorized) 判断。
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type queryRequest struct {
	Filter      queryFilter `json:"filter"`
	StartCursor string      `json:"start_cursor,omitempty"`
}

type queryFilter struct {
	Property string      `json:"property"`
	Status   statusMatch `json:"status"`
}

type statusMatch struct {
	Equals string `json:"equals"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// FetchReady 返回状态为 Ready 的全部文章，自动翻页。
func (c *Client) FetchReady(ctx context.Context, databaseID string) ([]Article, error) {
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		return nil, errors.New("notion: database id 不能为空")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "databases", databaseID, "query")
	if err != nil {
		return nil, fmt.Errorf("notion: 构造 URL 失败: %w", err)
	}

	var articles []Article
	cursor := ""
	for {
		req := queryRequest{
			Filter: queryFilter{
				Property: c.cfg.StatusProperty,
				Status:   statusMatch{Equals: c.cfg.ReadyStatus},
			},
			StartCursor: cursor,
		}
		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
			return nil, err
		}
		for _, page := range resp.Results {
			articles = append(articles, page.Article())
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return articles, nil
}

// MarkDone 把页面状态更新为 Done。
func (c *Client) MarkDone(ctx context.Context, pageID string) error {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return errors.New("notion: page id 不能为空")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "pages", pageID)
	if err != nil {
		return fmt.Errorf("notion: 构造 URL 失败: %w", err)
	}
	payload := map[string]any{
		"properties": map[string]any{
			c.cfg.StatusProperty: map[string]any{
				"status": map[string]string{"name": c.cfg.DoneStatus},
			},
		},
	}
	return c.do(ctx, http.MethodPatch, endpoint, payload, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	if c.cfg.Token == "" {
		return fmt.Errorf("notion: 缺少 token: %w", ErrUnauthorized)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notion: 编码请求失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("notion: 创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", c.cfg.Version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion: 请求 %s 失败: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notion: 读取响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("notion: 解析响应失败: %w", err)
	}
	return nil
}
