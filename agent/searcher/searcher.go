package searcher

import (
	"context"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/search"
)

// searcherImpl 联网搜索
type searcherImpl struct {
	search search.Searcher // 搜索服务
}

// NewSearcher 创建实例
func NewSearcher(s search.Searcher) *searcherImpl {
	return &searcherImpl{search: s}
}

// NewGraphNode 创建图节点
func (s *searcherImpl) NewGraphNode(ctx context.Context) (key string, node *compose.Lambda, nameOption compose.GraphAddNodeOpt) {
	return consts.PerformSearch, compose.InvokableLambda(s.Invoke), compose.WithNodeName(consts.PerformSearch)
}

// Invoke 仅在需要时搜索；无结果或出错时写入哨兵文本，不中断流程
func (s *searcherImpl) Invoke(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	slog.Info("perform_search info, need_search = %v", state.NeedSearch)
	if !state.NeedSearch {
		slog.Debug("perform_search debug, web search not needed")
		return state, nil
	}

	results, err := s.search.Search(ctx, state.Input)
	switch {
	case err != nil:
		slog.Error("perform_search failed, web search err = %+v", err)
		state.SearchErr = model.NewSearchError(err.Error())
	case strings.TrimSpace(results) == "":
		slog.Error("perform_search failed, no results returned from search service")
		state.SearchErr = model.NewSearchError(consts.SearchNoResults)
	default:
		slog.Debug("perform_search debug, results = %s", results)
		state.SearchResults = results
		return state, nil
	}

	metrics.StageFailure(consts.PerformSearch, string(state.SearchErr.Kind))
	state.SearchResults = state.SearchErr.Message
	return state, nil
}
