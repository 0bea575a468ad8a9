package agent

import (
	"context"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/hildam/funeral-claim-go/agent/decider"
	"github.com/hildam/funeral-claim-go/agent/responder"
	"github.com/hildam/funeral-claim-go/agent/searcher"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/search"
)

// Agent 对话流程中的一个阶段
type Agent interface {
	// NewGraphNode 获取阶段节点
	NewGraphNode(ctx context.Context) (key string, node *compose.Lambda, nameOption compose.GraphAddNodeOpt)
}

// Deps 构建对话流程所需的外部服务
type Deps struct {
	LLM       llm.Completer   // 文本补全服务
	Search    search.Searcher // 联网搜索服务
	Tone      string          // 语气前缀
	MaxTokens int             // 送入模型的历史 token 上限
}

// Router 编译后的对话流程，每轮对话执行一次
type Router struct {
	runnable compose.Runnable[*model.ConversationState, *model.ConversationState]
}

// BuildAgentGraph 构建 decide_search -> perform_search -> generate_response 的线性流程
func BuildAgentGraph(ctx context.Context, deps Deps) (*Router, error) {
	if deps.LLM == nil || deps.Search == nil {
		return nil, fmt.Errorf("BuildAgentGraph failed, completer and searcher are required")
	}

	graph := compose.NewGraph[*model.ConversationState, *model.ConversationState]()

	// 阶段实例，顺序与 consts.GetStageNameList 一致
	stages := []Agent{
		decider.NewDecider(deps.LLM),
		searcher.NewSearcher(deps.Search),
		responder.NewResponder(deps.LLM, deps.Tone, deps.MaxTokens),
	}

	names := consts.GetStageNameList()
	for i, stage := range stages {
		key, node, nameOption := stage.NewGraphNode(ctx)
		if key != names[i] {
			slog.Error("Agent key mismatch: expected %s, got %s", names[i], key)
			return nil, fmt.Errorf("agent key mismatch: expected %s, got %s", names[i], key)
		}
		if err := graph.AddLambdaNode(key, node, nameOption); err != nil {
			return nil, fmt.Errorf("add node %s: %w", key, err)
		}
	}

	// 阶段间无条件流转
	prev := compose.START
	for _, name := range append(names, compose.END) {
		if err := graph.AddEdge(prev, name); err != nil {
			return nil, fmt.Errorf("add edge %s -> %s: %w", prev, name, err)
		}
		prev = name
	}

	runnable, err := graph.Compile(ctx, compose.WithGraphName(consts.GraphName))
	if err != nil {
		slog.Error("BuildAgentGraph failed, err = %v", err)
		return nil, err
	}
	return &Router{runnable: runnable}, nil
}

// Run 执行一轮对话；流程本身出错时同样返回带哨兵回复的状态
func (r *Router) Run(ctx context.Context, state *model.ConversationState, opts ...compose.Option) (*model.ConversationState, error) {
	input := *state
	out, err := r.runnable.Invoke(ctx, &input, opts...)
	if err != nil {
		slog.Error("Run failed, agent graph err = %+v", err)
		metrics.StageFailure(consts.GraphName, string(consts.KindAgent))
		return failed(state, model.NewAgentError(err)), err
	}
	if out == nil || out.Response == "" {
		slog.Error("Run failed, agent graph returned no response")
		metrics.StageFailure(consts.GraphName, string(consts.KindAgent))
		return failed(state, model.NewEmptyAgent()), nil
	}
	return out, nil
}

// failed 以调用前的状态为基础写入哨兵回复
func failed(state *model.ConversationState, stageErr *model.StageError) *model.ConversationState {
	out := *state
	out.Response = stageErr.Message
	out.Failure = stageErr
	out.AppendTurn(out.Response)
	return &out
}
