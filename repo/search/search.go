package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/repo/mcp"
)

// Searcher 网络搜索服务，返回文本形式的搜索结果
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// New 按配置创建搜索服务
func New(cfg conf.SearchConfig) (Searcher, error) {
	switch cfg.Provider {
	case "mcp":
		return NewMCPSearcher(cfg.MCPToolSuffix), nil
	case "tavily", "":
		return NewTavilySearcher(cfg.Tavily)
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// MCPSearcher 调用名字以指定后缀结尾的 MCP 工具
type MCPSearcher struct {
	suffix string
}

// NewMCPSearcher 创建实例
func NewMCPSearcher(suffix string) *MCPSearcher {
	return &MCPSearcher{suffix: suffix}
}

// Search 网络搜索
func (m *MCPSearcher) Search(ctx context.Context, query string) (string, error) {
	searchTool, err := mcp.FindInvokableTool(ctx, m.suffix)
	if err != nil {
		slog.Error("Search failed, find mcp search tool err = %+v", err)
		return "", err
	}

	argsJSON, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return "", err
	}

	result, err := searchTool.InvokableRun(ctx, string(argsJSON))
	if err != nil {
		slog.Error("Search failed, invokable run err = %+v", err)
		return "", err
	}
	slog.Debug("Search debug, mcp result length = %d, query = %s", len(result), query)
	return result, nil
}
