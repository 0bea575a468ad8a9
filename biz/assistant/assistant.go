package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/hildam/funeral-claim-go/agent/selector"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/session"
	"github.com/hildam/funeral-claim-go/repo/template"
)

// ErrEmptyInput 请求缺少输入
var ErrEmptyInput = errors.New("no input provided")

// KnowledgeBase 政策知识库
type KnowledgeBase interface {
	// Available 已加载且有已索引的切片
	Available() bool
	Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error)
}

// AgentRunner 对话流程
type AgentRunner interface {
	Run(ctx context.Context, state *model.ConversationState, opts ...compose.Option) (*model.ConversationState, error)
}

// Assistant 一轮对话的编排：选择来源，知识库回答或对话流程，最后写回会话
type Assistant struct {
	selector *selector.Selector
	agent    AgentRunner
	kb       KnowledgeBase
	llm      llm.Completer
	sessions session.Store
	topK     int
}

// Option 依赖
type Option struct {
	Selector *selector.Selector
	Agent    AgentRunner
	KB       KnowledgeBase
	LLM      llm.Completer // 已带等待上限
	Sessions session.Store
	TopK     int
}

// NewAssistant 创建实例
func NewAssistant(opt Option) *Assistant {
	topK := opt.TopK
	if topK <= 0 {
		topK = 3
	}
	return &Assistant{
		selector: opt.Selector,
		agent:    opt.Agent,
		kb:       opt.KB,
		llm:      opt.LLM,
		sessions: opt.Sessions,
		topK:     topK,
	}
}

// Chat 处理一轮对话。同一会话的请求串行执行；
// 知识库检索失败或无结果时在同一轮降级到对话流程
func (a *Assistant) Chat(ctx context.Context, sessionKey, input string, opts ...compose.Option) (*model.ChatResp, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	unlock := a.sessions.Lock(sessionKey)
	defer unlock()

	// 历史读取失败时本轮照常回答，但不写回，避免覆盖已有记录
	history, err := a.sessions.Get(ctx, sessionKey)
	persist := err == nil
	if !persist {
		slog.Error("Chat failed, load session = %s, skip save, err = %+v", sessionKey, err)
	}

	available := a.kbAvailable()
	source := a.selector.Select(input, available)
	slog.Info("Chat info, session = %s, kb_available = %v, source = %s", sessionKey, available, source)

	if source == consts.SourceRAG {
		resp, fallback := a.chatRAG(ctx, input)
		if fallback == "" {
			if persist {
				a.save(ctx, sessionKey, model.AppendTurn(history, input, resp.Response))
			}
			metrics.ChatTurn(string(consts.SourceRAG))
			return resp, nil
		}
		slog.Info("Chat info, rag fallback to agent graph, reason = %s", fallback)
		metrics.RAGFallback(fallback)
	}

	state, err := a.agent.Run(ctx, &model.ConversationState{Input: input, History: history}, opts...)
	if err != nil {
		slog.Error("Chat failed, agent graph err = %+v", err)
	}
	if persist {
		a.save(ctx, sessionKey, state.History)
	}
	metrics.ChatTurn(string(consts.SourceAgentGraph))

	resp := &model.ChatResp{
		Response: state.Response,
		Source:   consts.SourceAgentGraph,
		Searched: state.NeedSearch,
	}
	if state.Failure != nil {
		resp.ErrorKind = state.Failure.Kind
	}
	return resp, nil
}

// chatRAG 知识库回答；fallback 非空表示需要降级及原因
func (a *Assistant) chatRAG(ctx context.Context, input string) (resp *model.ChatResp, fallback string) {
	docs, err := a.kb.Retrieve(ctx, input, retriever.WithTopK(a.topK))
	if err != nil {
		slog.Error("chatRAG failed, similarity search err = %+v", err)
		return nil, "retrieval_error"
	}
	if len(docs) == 0 {
		return nil, "no_chunks"
	}

	answer, failure := a.complete(ctx, template.RAG, map[string]any{
		"context": joinContext(docs),
		"input":   input,
	}, ragFailure)

	resp = &model.ChatResp{Response: answer, Source: consts.SourceRAG}
	if failure != nil {
		resp.ErrorKind = failure.Kind
	}
	return resp, ""
}

// AskPolicy 只用知识库回答，不读写会话
func (a *Assistant) AskPolicy(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if !a.kbAvailable() {
		return consts.KnowledgeNotLoaded, nil
	}

	docs, err := a.kb.Retrieve(ctx, input, retriever.WithTopK(a.topK))
	if err != nil {
		slog.Error("AskPolicy failed, similarity search err = %+v", err)
		return model.NewRAGError(err).Message, nil
	}
	answer, _ := a.complete(ctx, template.RAG, map[string]any{
		"context": joinContext(docs),
		"input":   input,
	}, ragFailure)
	return answer, nil
}

// CheckForm 按政策检查表单问答，知识库可用时附带相关政策
func (a *Assistant) CheckForm(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyInput
	}

	policy := ""
	if a.kbAvailable() {
		docs, err := a.kb.Retrieve(ctx, content, retriever.WithTopK(a.topK))
		if err != nil {
			slog.Error("CheckForm failed, similarity search err = %+v", err)
		}
		policy = joinContext(docs)
	}

	answer, _ := a.complete(ctx, template.CheckForm, map[string]any{
		"context": policy,
		"content": content,
	}, formFailure)
	return answer, nil
}

// complete 渲染提示词并调用一次模型，失败时返回哨兵文本
func (a *Assistant) complete(ctx context.Context, promptName string, vars map[string]any, onFail func(err error) *model.StageError) (string, *model.StageError) {
	prompt, err := template.Render(ctx, promptName, vars)
	if err != nil {
		failure := onFail(err)
		return failure.Message, failure
	}

	answer, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("complete failed, prompt = %s, err = %+v", promptName, err)
		failure := onFail(err)
		metrics.StageFailure(promptName, string(failure.Kind))
		return failure.Message, failure
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		slog.Error("complete failed, prompt = %s, completion returned empty response", promptName)
		failure := onFail(nil)
		metrics.StageFailure(promptName, string(failure.Kind))
		return failure.Message, failure
	}
	return answer, nil
}

// ragFailure err 为 nil 表示空回答
func ragFailure(err error) *model.StageError {
	switch {
	case err == nil:
		return model.NewEmptyRAG()
	case errors.Is(err, llm.ErrTimeout):
		return model.NewRAGTimeout()
	default:
		return model.NewRAGError(err)
	}
}

func formFailure(err error) *model.StageError {
	if err == nil {
		return model.NewEmptyCheckForm()
	}
	return model.NewCheckFormError(err)
}

func (a *Assistant) kbAvailable() bool {
	return a.kb != nil && a.kb.Available()
}

// save 写回会话，失败只记录日志
func (a *Assistant) save(ctx context.Context, key, history string) {
	if err := a.sessions.Put(ctx, key, history); err != nil {
		slog.Error("save failed, session = %s, err = %+v", key, err)
	}
}

// joinContext 切片内容以空行分隔
func joinContext(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
