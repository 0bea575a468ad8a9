package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/avast/retry-go/v4"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/tidwall/gjson"
)

const tavilyTimeout = 20 * time.Second

// ErrMissingKey 未配置 Tavily 密钥
var ErrMissingKey = errors.New("tavily api key is not set")

// TavilySearcher Tavily REST 搜索
type TavilySearcher struct {
	cfg conf.TavilyConfig
	cli *client.Client
}

type tavilyReq struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// NewTavilySearcher 创建实例，缺少密钥时仍可创建，搜索时报错
func NewTavilySearcher(cfg conf.TavilyConfig) (*TavilySearcher, error) {
	if cfg.APIKey == "" {
		slog.Error("NewTavilySearcher failed, TAVILY_API_KEY not set, web search will not work")
	}
	cli, err := client.NewClient(client.WithDialTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &TavilySearcher{cfg: cfg, cli: cli}, nil
}

// Search 网络搜索，5xx 与网络错误会重试
func (t *TavilySearcher) Search(ctx context.Context, query string) (string, error) {
	if t.cfg.APIKey == "" {
		return "", ErrMissingKey
	}

	body, err := json.Marshal(tavilyReq{Query: query, MaxResults: t.cfg.MaxResults})
	if err != nil {
		return "", err
	}

	var result string
	err = retry.Do(
		func() error {
			out, err := t.do(ctx, body)
			if err != nil {
				return err
			}
			result = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(t.cfg.Retries+1),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Error("Search failed, tavily attempt = %d, err = %+v", n+1, err)
		}),
	)
	if err != nil {
		return "", err
	}
	return result, nil
}

// do 发起一次请求
func (t *TavilySearcher) do(ctx context.Context, body []byte) (string, error) {
	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(strings.TrimRight(t.cfg.BaseURL, "/") + "/search")
	req.SetMethod(hconsts.MethodPost)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.SetBody(body)

	if err := t.cli.DoTimeout(ctx, req, resp, tavilyTimeout); err != nil {
		return "", err
	}

	status := resp.StatusCode()
	if status >= 500 {
		return "", fmt.Errorf("tavily status %d", status)
	}
	if status != hconsts.StatusOK {
		return "", retry.Unrecoverable(fmt.Errorf("tavily status %d: %s", status, resp.Body()))
	}
	return FormatResults(resp.Body()), nil
}

// FormatResults 将 Tavily 返回整理为文本，无结果时返回空串
func FormatResults(raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return ""
	}
	parsed := gjson.ParseBytes(raw)

	var b strings.Builder
	if answer := strings.TrimSpace(parsed.Get("answer").String()); answer != "" {
		b.WriteString(answer)
		b.WriteString("\n")
	}
	parsed.Get("results").ForEach(func(_, item gjson.Result) bool {
		content := strings.TrimSpace(item.Get("content").String())
		if content == "" {
			return true
		}
		fmt.Fprintf(&b, "- %s (%s)\n  %s\n", item.Get("title").String(), item.Get("url").String(), content)
		return true
	})
	return strings.TrimSpace(b.String())
}
