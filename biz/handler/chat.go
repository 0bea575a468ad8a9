package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/hildam/funeral-claim-go/biz/assistant"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/callback"
)

// MessageEventName 流式接口最后推送的回复事件
const MessageEventName = "message"

// Chat 一轮对话
func (h *Handler) Chat(ctx context.Context, c *app.RequestContext) {
	var req model.ChatReq
	if err := c.BindJSON(&req); err != nil {
		slog.Error("Chat failed, bind request err = %+v", err)
		c.JSON(hconsts.StatusBadRequest, model.ChatResp{Response: consts.NoInput})
		return
	}

	resp, err := h.assistant.Chat(ctx, sessionKey(c), req.Input)
	if errors.Is(err, assistant.ErrEmptyInput) {
		c.JSON(hconsts.StatusBadRequest, model.ChatResp{Response: consts.NoInput})
		return
	}
	if err != nil {
		slog.Error("Chat failed, err = %+v", err)
		c.JSON(hconsts.StatusInternalServerError, utils.H{"response": err.Error()})
		return
	}
	c.JSON(hconsts.StatusOK, resp)
}

// ChatStream 一轮对话，先推送各阶段事件，最后推送回复
func (h *Handler) ChatStream(ctx context.Context, c *app.RequestContext) {
	var req model.ChatReq
	if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		c.JSON(hconsts.StatusBadRequest, model.ChatResp{Response: consts.NoInput})
		return
	}

	key := sessionKey(c)
	w := sse.NewWriter(c)
	defer w.Close()

	resp, err := h.assistant.Chat(ctx, key, req.Input, compose.WithCallbacks(callback.NewStageCallback(key, w)))
	if err != nil {
		slog.Error("ChatStream failed, session = %s, err = %+v", key, err)
		resp = &model.ChatResp{Response: consts.NoInput}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("ChatStream failed, marshal response err = %+v", err)
		return
	}
	if err = w.WriteEvent("", MessageEventName, data); err != nil {
		slog.Error("ChatStream failed, write sse event err = %+v", err)
	}
}
