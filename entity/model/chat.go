package model

import "github.com/hildam/funeral-claim-go/entity/consts"

// ChatReq 对话请求
type ChatReq struct {
	Input string `json:"input"`
}

// ChatResp 对话响应，失败时 Response 为哨兵文本，ErrorKind 标明失败类型
type ChatResp struct {
	Response  string           `json:"response"`
	Source    consts.Source    `json:"source,omitempty"`
	Searched  bool             `json:"searched"`
	ErrorKind consts.ErrorKind `json:"error_kind,omitempty"`
}

// CheckFormReq 表单检查请求
type CheckFormReq struct {
	Content string `json:"content"`
}

// StageEvent 流式接口推送的阶段事件
type StageEvent struct {
	ID         string           `json:"id"`
	Session    string           `json:"session"`
	Stage      string           `json:"stage"`
	NeedSearch bool             `json:"need_search"`
	Failed     bool             `json:"failed"`
	ErrorKind  consts.ErrorKind `json:"error_kind,omitempty"`
}
