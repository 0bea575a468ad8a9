package decider

import (
	"context"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/template"
)

// deciderImpl 判断本轮问题是否需要联网搜索
type deciderImpl struct {
	llm llm.Completer // llm模型服务
}

// NewDecider 创建实例
func NewDecider(completer llm.Completer) *deciderImpl {
	return &deciderImpl{llm: completer}
}

// NewGraphNode 创建图节点
func (d *deciderImpl) NewGraphNode(ctx context.Context) (key string, node *compose.Lambda, nameOption compose.GraphAddNodeOpt) {
	return consts.DecideSearch, compose.InvokableLambda(d.Invoke), compose.WithNodeName(consts.DecideSearch)
}

// Invoke 询问模型是否需要搜索，回答中出现 "yes" 才搜索，调用失败按不搜索处理
func (d *deciderImpl) Invoke(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	state.NeedSearch = false

	question, err := template.Render(ctx, template.Decide, map[string]any{"input": state.Input})
	if err != nil {
		slog.Error("Invoke failed, render decide prompt err = %+v", err)
		metrics.StageFailure(consts.DecideSearch, "prompt")
		return state, nil
	}

	decision, err := d.llm.Complete(ctx, question)
	if err != nil {
		slog.Error("Invoke failed, decide search completion err = %+v", err)
		metrics.StageFailure(consts.DecideSearch, "completion")
		return state, nil
	}

	state.NeedSearch = NeedSearch(decision)
	slog.Info("decide_search info, need_search = %v, decision = %s", state.NeedSearch, decision)
	return state, nil
}

// NeedSearch 回答中出现 "yes"（不区分大小写）即需要搜索
func NeedSearch(decision string) bool {
	return strings.Contains(strings.ToLower(decision), "yes")
}
