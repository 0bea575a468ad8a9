package conf

// DefaultKeywords 默认走知识库的关键词
var DefaultKeywords = []string{
	"policy", "dwp", "regulation", "benefit", "funeral",
	"payment", "document", "claim", "eligibility",
}

// applyDefaults 补齐未配置的默认值
func applyDefaults(c *AppConfig) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5050"
	}

	// 向量模型沿用默认模型的地址与密钥
	if c.Model.Embedding.ModelID == "" {
		c.Model.Embedding.ModelID = "text-embedding-3-small"
	}
	if c.Model.Embedding.BaseURL == "" {
		c.Model.Embedding.BaseURL = c.Model.DefaultModel.BaseURL
	}
	if c.Model.Embedding.APIKey == "" {
		c.Model.Embedding.APIKey = c.Model.DefaultModel.APIKey
	}

	if c.Search.Provider == "" {
		c.Search.Provider = "tavily"
	}
	if c.Search.Tavily.BaseURL == "" {
		c.Search.Tavily.BaseURL = "https://api.tavily.com"
	}
	if c.Search.Tavily.MaxResults <= 0 {
		c.Search.Tavily.MaxResults = 5
	}
	if c.Search.Tavily.Retries == 0 {
		c.Search.Tavily.Retries = 2
	}
	if c.Search.MCPToolSuffix == "" {
		c.Search.MCPToolSuffix = "search"
	}

	if c.RAG.PersistDir == "" {
		c.RAG.PersistDir = "data/chroma_db"
	}
	if c.RAG.PolicyDir == "" {
		c.RAG.PolicyDir = "data/policy_docs"
	}
	if c.RAG.Collection == "" {
		c.RAG.Collection = "dwp_policy"
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 3
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		c.RAG.ChunkOverlap = min(200, c.RAG.ChunkSize/5)
	}
	if len(c.RAG.Keywords) == 0 {
		c.RAG.Keywords = DefaultKeywords
	}

	if c.Evidence.Dir == "" {
		c.Evidence.Dir = "data/shared-evidence"
	}
	if c.Evidence.Tesseract == "" {
		c.Evidence.Tesseract = "tesseract"
	}
	if c.Evidence.Lang == "" {
		c.Evidence.Lang = "eng"
	}

	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 24 * 60
	}
	if c.Session.CleanupMinutes <= 0 {
		c.Session.CleanupMinutes = 10
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = 10000
	}
	if c.Session.Redis.Prefix == "" {
		c.Session.Redis.Prefix = "funeral-claim:session:"
	}

	if c.Setting.LLMTimeoutSeconds <= 0 {
		c.Setting.LLMTimeoutSeconds = 30
	}
	if c.Setting.MaxLimitToken <= 0 {
		c.Setting.MaxLimitToken = 3000
	}
	if c.Setting.LogFile == "" {
		c.Setting.LogFile = "logs/app.log"
	}
	if c.Setting.LogLevel == "" {
		c.Setting.LogLevel = "debug"
	}
}
