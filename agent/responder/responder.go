package responder

import (
	"context"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/hildam/funeral-claim-go/agent/comm"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/template"
)

// responderImpl 生成本轮回复
type responderImpl struct {
	llm       llm.Completer // llm模型服务
	tone      string        // 语气前缀
	maxTokens int           // 送入模型的历史 token 上限
}

// NewResponder 创建实例
func NewResponder(completer llm.Completer, tone string, maxTokens int) *responderImpl {
	return &responderImpl{llm: completer, tone: tone, maxTokens: maxTokens}
}

// NewGraphNode 创建图节点
func (r *responderImpl) NewGraphNode(ctx context.Context) (key string, node *compose.Lambda, nameOption compose.GraphAddNodeOpt) {
	return consts.GenerateResponse, compose.InvokableLambda(r.Invoke), compose.WithNodeName(consts.GenerateResponse)
}

// Invoke 搜索失败时直接返回哨兵文本；否则调用一次模型，并把本轮问答追加到历史
func (r *responderImpl) Invoke(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	if state.HasSearchError() {
		slog.Info("generate_response info, search failed, return sentinel = %s", state.SearchResults)
		state.Response = state.SearchResults
		state.Failure = state.SearchErr
		state.AppendTurn(state.Response)
		return state, nil
	}

	prompt, err := template.Render(ctx, template.Generate, map[string]any{
		"tone":           r.tone,
		"history":        comm.TrimHistory(state.History, r.maxTokens),
		"input":          state.Input,
		"search_results": state.SearchResults,
	})
	if err != nil {
		r.fail(state, model.NewGenerateError(err))
		return state, nil
	}

	response, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Error("generate_response failed, completion err = %+v", err)
		r.fail(state, model.NewGenerateError(err))
		return state, nil
	}

	response = CleanResponse(response)
	if response == "" {
		slog.Error("generate_response failed, completion returned empty response")
		r.fail(state, model.NewEmptyGenerate())
		return state, nil
	}

	state.Response = response
	state.AppendTurn(response)
	return state, nil
}

// fail 写入失败哨兵并记录到历史
func (r *responderImpl) fail(state *model.ConversationState, stageErr *model.StageError) {
	metrics.StageFailure(consts.GenerateResponse, string(stageErr.Kind))
	state.Failure = stageErr
	state.Response = stageErr.Message
	state.AppendTurn(state.Response)
}

// CleanResponse 去掉模型回显的 "Assistant:" 前缀
func CleanResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, consts.AssistantLabel)
	return strings.TrimSpace(response)
}
