package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// MCP 传输类型
const (
	transportStdio = "stdio"
	transportSSE   = "sse"
)

var (
	mcpServer map[string]client.MCPClient // MCP服务端客户端管理
)

// ServerConfig 服务端配置接口
type ServerConfig interface {
	GetType() string
}

// STDIOServerConfig STDIO服务端配置
type STDIOServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// GetType 获取服务端类型
func (s STDIOServerConfig) GetType() string {
	return transportStdio
}

// SSEServerConfig SSE服务端配置
type SSEServerConfig struct {
	Url     string   `json:"url"`
	Headers []string `json:"headers,omitempty"`
}

// GetType 获取服务端类型
func (s SSEServerConfig) GetType() string {
	return transportSSE
}

// MCPTool MCP工具包装器
type MCPTool struct {
	cli         client.MCPClient      // MCP客户端
	toolName    string                // 工具名称
	toolDesc    string                // 工具描述
	inputSchema mcpgo.ToolInputSchema // 输入参数Schema
}

// Info 获取工具信息
func (t *MCPTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params, err := convertMCPSchemaToEinoParams(t.inputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to convert schema: %w", err)
	}

	return &schema.ToolInfo{
		Name:        t.toolName,
		Desc:        t.toolDesc,
		ParamsOneOf: params,
	}, nil
}

// InvokableRun 可调用运行，文本内容按行拼接返回
func (t *MCPTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	// 解析JSON参数
	var paramsMap map[string]any
	if err := json.Unmarshal([]byte(argumentsInJSON), &paramsMap); err != nil {
		return "", fmt.Errorf("failed to unmarshal params: %w", err)
	}

	// 调用MCP工具
	callReq := mcpgo.CallToolRequest{}
	callReq.Params.Name = t.toolName
	callReq.Params.Arguments = paramsMap

	resp, err := t.cli.CallTool(ctx, callReq)
	if err != nil {
		return "", fmt.Errorf("MCP tool call failed: %w", err)
	}

	if resp.IsError {
		if len(resp.Content) > 0 {
			return "", fmt.Errorf("MCP tool error: %s", contentText(resp.Content[0]))
		}
		return "", fmt.Errorf("MCP tool error: unknown error")
	}
	return joinContent(resp.Content)
}

// joinContent 文本内容直接拼接，其余内容序列化为 JSON
func joinContent(contents []mcpgo.Content) (string, error) {
	out := ""
	for i, c := range contents {
		if i > 0 {
			out += "\n"
		}
		if text, ok := textOf(c); ok {
			out += text
			continue
		}
		b, err := json.Marshal(c)
		if err != nil {
			return "", fmt.Errorf("failed to marshal response: %w", err)
		}
		out += string(b)
	}
	return out, nil
}

func contentText(c mcpgo.Content) string {
	if text, ok := textOf(c); ok {
		return text
	}
	return fmt.Sprintf("%v", c)
}

func textOf(c mcpgo.Content) (string, bool) {
	switch v := c.(type) {
	case mcpgo.TextContent:
		return v.Text, true
	case *mcpgo.TextContent:
		return v.Text, true
	}
	return "", false
}
