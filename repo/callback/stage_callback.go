package callback

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/google/uuid"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
)

// StageEventName SSE 事件名
const StageEventName = "stage"

// StageCallback 对话流程阶段回调，记录阶段日志并推送阶段事件
type StageCallback struct {
	Session string                 // 会话标识
	SSE     *sse.Writer            // SSE写入器，为空时不推送
	Out     chan *model.StageEvent // 输出通道，为空时不推送
}

var _ callbacks.Handler = (*StageCallback)(nil)

// NewStageCallback 创建实例
func NewStageCallback(session string, w *sse.Writer) *StageCallback {
	return &StageCallback{Session: session, SSE: w}
}

// isStage 只处理三个阶段节点，忽略图本身及其他组件
func isStage(info *callbacks.RunInfo) bool {
	return info != nil && slices.Contains(consts.GetStageNameList(), info.Name)
}

// push 推送阶段事件，SSE 写失败只记日志
func (cb *StageCallback) push(ev *model.StageEvent) {
	if cb.SSE != nil {
		data, err := json.Marshal(ev)
		if err != nil {
			slog.Error("push failed, marshal event err = %+v, event = %+v", err, ev)
			return
		}
		if err = cb.SSE.WriteEvent(ev.ID, StageEventName, data); err != nil {
			slog.Error("push failed, write sse event err = %+v, session = %s", err, cb.Session)
		}
	}
	if cb.Out != nil {
		cb.Out <- ev
	}
}

// OnStart 阶段开始
func (cb *StageCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if isStage(info) {
		slog.Debug("OnStart debug, session = %s, stage = %s", cb.Session, info.Name)
	}
	return ctx
}

// OnEnd 阶段结束，按阶段输出的状态生成事件
func (cb *StageCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !isStage(info) {
		return ctx
	}
	state, ok := output.(*model.ConversationState)
	if !ok || state == nil {
		slog.Error("OnEnd failed, unexpected output type %T, stage = %s", output, info.Name)
		return ctx
	}

	ev := &model.StageEvent{
		ID:         uuid.New().String(),
		Session:    cb.Session,
		Stage:      info.Name,
		NeedSearch: state.NeedSearch,
	}
	switch info.Name {
	case consts.PerformSearch:
		if state.SearchErr != nil {
			ev.Failed, ev.ErrorKind = true, state.SearchErr.Kind
		}
	case consts.GenerateResponse:
		if state.Failure != nil {
			ev.Failed, ev.ErrorKind = true, state.Failure.Kind
		}
	}
	slog.Info("OnEnd info, session = %s, stage = %s, need_search = %v, failed = %v", cb.Session, info.Name, ev.NeedSearch, ev.Failed)
	cb.push(ev)
	return ctx
}

// OnError 阶段或整图失败
func (cb *StageCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	slog.Error("OnError failed, session = %s, node = %s, err = %+v", cb.Session, name, err)
	return ctx
}

// OnStartWithStreamInput 流程不使用流式输入，直接关闭
func (cb *StageCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

// OnEndWithStreamOutput 流程不使用流式输出，直接关闭
func (cb *StageCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}
