package conf

// MCPServerConfig MCP服务器配置
type MCPServerConfig struct {
	Command string            `yaml:"command" mapstructure:"command"`             // MCP服务器启动命令
	Args    []string          `yaml:"args" mapstructure:"args"`                   // 命令行参数列表
	Env     map[string]string `yaml:"env,omitempty" mapstructure:"env,omitempty"` // 环境变量映射，可选配置
	URL     string            `yaml:"url,omitempty" mapstructure:"url,omitempty"` // SSE 服务地址，配置后按 SSE 方式连接
	Headers []string          `yaml:"headers,omitempty" mapstructure:"headers"`   // SSE 请求头，格式 "Key: Value"
}

// MCPConfig MCP配置
type MCPConfig struct {
	Servers map[string]MCPServerConfig `yaml:"servers" mapstructure:"servers"` // MCP服务器配置映射，key为服务器名称
}

// Model 单个模型配置
type Model struct {
	ModelID string `yaml:"model_id" mapstructure:"model_id" validate:"required"` // 模型ID
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`                     // 模型服务的基础URL地址
	APIKey  string `yaml:"api_key" mapstructure:"api_key" validate:"required"`   // 模型服务的API密钥
}

// EmbeddingModel 向量模型配置，为空的字段沿用默认模型
type EmbeddingModel struct {
	ModelID string `yaml:"model_id" mapstructure:"model_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
}

// ModelConfig 模型配置
type ModelConfig struct {
	DefaultModel Model          `yaml:"default_model" mapstructure:"default_model"` // 默认使用的对话模型
	Embedding    EmbeddingModel `yaml:"embedding" mapstructure:"embedding"`         // 知识库向量模型
}

// TavilyConfig Tavily 搜索配置
type TavilyConfig struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults int    `yaml:"max_results" mapstructure:"max_results"`
	Retries    uint   `yaml:"retries" mapstructure:"retries"`
}

// SearchConfig 网络搜索配置
type SearchConfig struct {
	Provider      string       `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=tavily mcp"` // tavily | mcp
	Tavily        TavilyConfig `yaml:"tavily" mapstructure:"tavily"`
	MCPToolSuffix string       `yaml:"mcp_tool_suffix" mapstructure:"mcp_tool_suffix"` // MCP 搜索工具名后缀
}

// RAGConfig 政策知识库配置
type RAGConfig struct {
	PersistDir    string   `yaml:"persist_dir" mapstructure:"persist_dir"`       // 向量库持久化目录
	PolicyDir     string   `yaml:"policy_dir" mapstructure:"policy_dir"`         // 政策文档目录
	Collection    string   `yaml:"collection" mapstructure:"collection"`         // 集合名称
	TopK          int      `yaml:"top_k" mapstructure:"top_k"`                   // 检索条数
	ChunkSize     int      `yaml:"chunk_size" mapstructure:"chunk_size"`         // 切片长度
	ChunkOverlap  int      `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`   // 切片重叠长度
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`             // 走知识库的关键词
	IngestCommand []string `yaml:"ingest_command" mapstructure:"ingest_command"` // 外部重建命令，为空时进程内重建
}

// EvidenceConfig 证据文件配置
type EvidenceConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`             // 证据文件目录
	Tesseract string `yaml:"tesseract" mapstructure:"tesseract"` // tesseract 可执行文件
	Lang      string `yaml:"lang" mapstructure:"lang"`           // OCR 语言
}

// RedisConfig redis 连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Backend        string      `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=memory redis"` // memory | redis
	TTLMinutes     int         `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`                                 // 会话空闲过期时间
	CleanupMinutes int         `yaml:"cleanup_minutes" mapstructure:"cleanup_minutes"`                         // 过期清理周期
	MaxSessions    int         `yaml:"max_sessions" mapstructure:"max_sessions"`                               // 最大会话数
	Redis          RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// SettingConfig 应用运行配置
type SettingConfig struct {
	LLMTimeoutSeconds int    `yaml:"llm_timeout_seconds" mapstructure:"llm_timeout_seconds"` // 单次模型调用的最长等待时间
	TonePrompt        string `yaml:"tone_prompt" mapstructure:"tone_prompt"`                 // 回复语气前缀
	MaxLimitToken     int    `yaml:"max_limit_token" mapstructure:"max_limit_token"`         // 历史对话最大token数
	LogFile           string `yaml:"log_file" mapstructure:"log_file"`
	LogLevel          string `yaml:"log_level" mapstructure:"log_level"`
}

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	MCP      MCPConfig      `yaml:"mcp" mapstructure:"mcp"`     // MCP服务相关配置
	Model    ModelConfig    `yaml:"model" mapstructure:"model"` // 大语言模型相关配置
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	RAG      RAGConfig      `yaml:"rag" mapstructure:"rag"`
	Evidence EvidenceConfig `yaml:"evidence" mapstructure:"evidence"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Setting  SettingConfig  `yaml:"setting" mapstructure:"setting"` // 应用运行时配置参数
}
