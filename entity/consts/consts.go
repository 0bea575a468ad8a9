package consts

const (
	GraphName = "funeral_claim_agent" // 代理图名称，用于标识整个对话流程
)

// 对话流程阶段名字
const (
	DecideSearch     = "decide_search"     // 判断是否需要联网搜索
	PerformSearch    = "perform_search"    // 执行联网搜索
	GenerateResponse = "generate_response" // 生成回复
)

// GetStageNameList 返回阶段列表，顺序即执行顺序
func GetStageNameList() []string {
	return []string{
		DecideSearch,
		PerformSearch,
		GenerateResponse,
	}
}

// Source 回答来源
type Source string

const (
	SourceRAG        Source = "RAG"         // 政策知识库
	SourceAgentGraph Source = "AGENT_GRAPH" // 通用对话 + 联网搜索
)

// DocumentType 证据文档类型
type DocumentType string

const (
	DeathCertificate  DocumentType = "death_certificate"
	FuneralInvoice    DocumentType = "funeral_invoice"
	BenefitLetter     DocumentType = "benefit_letter"
	RelationshipProof DocumentType = "relationship_proof"
	Generic           DocumentType = "generic"
)

// ErrorKind 阶段失败类型
type ErrorKind string

const (
	KindSearch   ErrorKind = "search"   // 联网搜索失败或无结果
	KindGenerate ErrorKind = "generate" // 生成回复失败
	KindRAG      ErrorKind = "rag"      // 知识库回答失败
	KindTimeout  ErrorKind = "timeout"  // 模型调用超时
	KindAgent    ErrorKind = "agent"    // 对话流程整体失败
	KindForm     ErrorKind = "form"     // 表单检查失败
)

// 哨兵文本
const (
	SearchErrorPrefix  = "[Web search error:"
	SearchNoResults    = "No results returned from search service"
	GenerateEmpty      = "[GEN_RESP LLM returned no response]"
	RAGTimeout         = "[RAG LLM timed out]"
	RAGEmpty           = "[RAG LLM returned no response]"
	AgentEmpty         = "[Web agent returned no response]"
	CheckFormEmpty     = "[Check form LLM returned no response]"
	NoInput            = "[Error: No input provided]"
	KnowledgeNotLoaded = "RAG database not loaded. Please ingest documents."
	AssistantLabel     = "Assistant:"
)

// SessionHeader 客户端自带会话标识时使用的请求头
const SessionHeader = "X-Session-ID"
