package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// InitMcpServer 初始化MCP服务端，未配置服务时直接返回
func InitMcpServer() (err error) {
	servers := conf.GetCfg().MCP.Servers
	if len(servers) == 0 {
		slog.Info("InitMcpServer info, no mcp server configured")
		return nil
	}
	mcpServer, err = createMcpClients(toServerConfigs(servers))
	if err != nil {
		return err
	}
	return nil
}

// Close 关闭所有MCP客户端
func Close() {
	for name, c := range mcpServer {
		if err := c.Close(); err != nil {
			slog.Error("Close failed, name = %s, err = %+v", name, err)
		}
	}
}

// toServerConfigs 配置了 url 的按 SSE 连接，否则按 stdio 启动
func toServerConfigs(servers map[string]conf.MCPServerConfig) map[string]ServerConfig {
	out := make(map[string]ServerConfig, len(servers))
	for name, server := range servers {
		if server.URL != "" {
			out[name] = SSEServerConfig{Url: server.URL, Headers: server.Headers}
			continue
		}
		out[name] = STDIOServerConfig{
			Command: server.Command,
			Args:    server.Args,
			Env:     server.Env,
		}
	}
	return out
}

// createMcpClients 创建MCP客户端
func createMcpClients(servers map[string]ServerConfig) (map[string]client.MCPClient, error) {
	clients := make(map[string]client.MCPClient)

	for name, server := range servers {
		var mcpClient client.MCPClient
		var err error

		slog.Debug("createMcpClients debug, load mcp client = %+v, mcp type = %+v", name, server.GetType())
		if server.GetType() == transportSSE {
			sseConfig := server.(SSEServerConfig)

			options := []transport.ClientOption{}
			if sseConfig.Headers != nil {
				options = append(options, transport.WithHeaders(parseHeaders(sseConfig.Headers)))
			}

			var sseClient *client.Client
			sseClient, err = client.NewSSEMCPClient(sseConfig.Url, options...)
			if err == nil {
				err = sseClient.Start(context.Background())
				mcpClient = sseClient
			}
		} else {
			stdioConfig := server.(STDIOServerConfig)
			var env []string
			for k, v := range stdioConfig.Env {
				env = append(env, fmt.Sprintf("%s=%s", k, v))
			}
			mcpClient, err = client.NewStdioMCPClient(
				stdioConfig.Command,
				env,
				stdioConfig.Args...)

			slog.Debug("createMcpClients debug, load mcp stdio client = %+v, command = %s, args = %+v", name, stdioConfig.Command, stdioConfig.Args)
		}
		if err != nil {
			closeAll(clients)
			slog.Error("createMcpClients error, name = %+v, err = %+v", name, err)
			return nil, fmt.Errorf("failed to create MCP client for %s: %w", name, err)
		}

		if err = initialize(mcpClient); err != nil {
			_ = mcpClient.Close()
			closeAll(clients)
			slog.Error("createMcpClients error, name = %+v, err = %+v", name, err)
			return nil, fmt.Errorf("failed to initialize MCP client for %s: %w", name, err)
		}

		clients[name] = mcpClient
	}

	return clients, nil
}

// initialize 握手，30 秒超时
func initialize(mcpClient client.MCPClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{
		Name:    "funeral-claim-go",
		Version: "0.1.0",
	}
	initRequest.Params.Capabilities = mcpgo.ClientCapabilities{}

	_, err := mcpClient.Initialize(ctx, initRequest)
	return err
}

// parseHeaders 解析 "Key: Value" 形式的请求头
func parseHeaders(raw []string) map[string]string {
	headers := make(map[string]string)
	for _, header := range raw {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}

func closeAll(clients map[string]client.MCPClient) {
	for _, c := range clients {
		_ = c.Close()
	}
}

var (
	// 工具缓存相关变量
	cachedTools []tool.BaseTool // 缓存的MCP工具
	toolsOnce   sync.Once       // 确保工具只被初始化一次
	toolsErr    error           // 初始化工具时的错误
)

// GetMCPTools 获取所有MCP工具
func GetMCPTools(ctx context.Context) ([]tool.BaseTool, error) {
	toolsOnce.Do(func() {
		cachedTools, toolsErr = loadMCPTools(ctx)
	})
	return cachedTools, toolsErr
}

// FindInvokableTool 按名字后缀查找可调用工具
func FindInvokableTool(ctx context.Context, suffix string) (tool.InvokableTool, error) {
	toolList, err := GetMCPTools(ctx)
	if err != nil {
		return nil, err
	}
	for _, mcpTool := range toolList {
		toolInfo, err := mcpTool.Info(ctx)
		if err != nil {
			slog.Error("FindInvokableTool failed, get tool info err = %+v", err)
			continue
		}
		if !strings.HasSuffix(toolInfo.Name, suffix) {
			continue
		}
		if invokable, ok := mcpTool.(tool.InvokableTool); ok {
			return invokable, nil
		}
	}
	return nil, fmt.Errorf("no mcp tool with suffix %q", suffix)
}

// loadMCPTools 加载所有MCP工具
func loadMCPTools(ctx context.Context) ([]tool.BaseTool, error) {
	var allTools []tool.BaseTool

	for serverName, mcpClient := range mcpServer {
		slog.Debug("loadMCPTools debug, Loading tools from MCP server = %s", serverName)

		toolsResp, err := mcpClient.ListTools(ctx, mcpgo.ListToolsRequest{})
		if err != nil {
			slog.Error("loadMCPTools failed, listing tools from %s, err = %v", serverName, err)
			continue
		}

		for _, mcpTool := range toolsResp.Tools {
			allTools = append(allTools, &MCPTool{
				cli:         mcpClient,
				toolName:    mcpTool.Name,
				toolDesc:    mcpTool.Description,
				inputSchema: mcpTool.InputSchema,
			})
			slog.Debug("loadMCPTools debug, Added tool: %s", mcpTool.Name)
		}
	}

	slog.Debug("loadMCPTools debug, Total tools loaded: %d", len(allTools))
	return allTools, nil
}

// convertMCPSchemaToEinoParams 将MCP的InputSchema转换为eino的ParamsOneOf
func convertMCPSchemaToEinoParams(inputSchema mcpgo.ToolInputSchema) (*schema.ParamsOneOf, error) {
	schemaBytes, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input schema: %w", err)
	}

	var schemaMap map[string]interface{}
	if err := json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}

	// 缺少 type 时补齐
	if _, hasType := schemaMap["type"]; !hasType {
		if _, hasAnyOf := schemaMap["anyOf"]; !hasAnyOf {
			schemaMap["type"] = "object"
		}
	}
	if properties, ok := schemaMap["properties"].(map[string]interface{}); ok {
		for _, propValue := range properties {
			if propMap, ok := propValue.(map[string]interface{}); ok {
				if _, hasType := propMap["type"]; !hasType {
					if _, hasAnyOf := propMap["anyOf"]; !hasAnyOf {
						propMap["type"] = "string"
					}
				}
			}
		}
	}

	fixedSchemaBytes, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fixed schema: %w", err)
	}

	var openAPISchema openapi3.Schema
	if err := json.Unmarshal(fixedSchemaBytes, &openAPISchema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to OpenAPI schema: %w", err)
	}
	return schema.NewParamsOneOfByOpenAPIV3(&openAPISchema), nil
}
