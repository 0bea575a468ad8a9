package model

import (
	"fmt"
	"strings"

	"github.com/hildam/funeral-claim-go/entity/consts"
)

// ConversationState 单轮对话状态，在三个阶段间依次传递
type ConversationState struct {
	// 用户本轮输入
	Input string `json:"input"`
	// 历史对话，"You:"/"Assistant:" 交替，只追加
	History string `json:"history"`

	// decide_search 写入
	NeedSearch bool `json:"need_search"`

	// perform_search 写入，失败时为哨兵文本
	SearchResults string      `json:"search_results"`
	SearchErr     *StageError `json:"search_err,omitempty"`

	// generate_response 写入
	Response string      `json:"response"`
	Failure  *StageError `json:"failure,omitempty"`
}

// HasSearchError 搜索结果是否为失败哨兵
func (s *ConversationState) HasSearchError() bool {
	return s.SearchErr != nil || strings.Contains(s.SearchResults, consts.SearchErrorPrefix)
}

// AppendTurn 追加一轮问答到历史
func (s *ConversationState) AppendTurn(answer string) {
	s.History = AppendTurn(s.History, s.Input, answer)
}

// AppendTurn 返回追加一轮问答后的历史
func AppendTurn(history, input, answer string) string {
	return history + fmt.Sprintf("\nYou: %s\nAssistant: %s", input, answer)
}

// StageError 阶段失败结果，Message 即展示给用户的哨兵文本
type StageError struct {
	Kind    consts.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (e *StageError) Error() string {
	return e.Message
}

// NewSearchError 联网搜索失败
func NewSearchError(detail string) *StageError {
	return &StageError{Kind: consts.KindSearch, Message: fmt.Sprintf("%s %s]", consts.SearchErrorPrefix, detail)}
}

// NewGenerateError 生成回复失败
func NewGenerateError(err error) *StageError {
	return &StageError{Kind: consts.KindGenerate, Message: fmt.Sprintf("[GEN_RESP LLM error: %v]", err)}
}

// NewEmptyGenerate 生成回复为空
func NewEmptyGenerate() *StageError {
	return &StageError{Kind: consts.KindGenerate, Message: consts.GenerateEmpty}
}

// NewRAGError 知识库回答失败
func NewRAGError(err error) *StageError {
	return &StageError{Kind: consts.KindRAG, Message: fmt.Sprintf("[RAG LLM error: %v]", err)}
}

// NewRAGTimeout 知识库回答超时
func NewRAGTimeout() *StageError {
	return &StageError{Kind: consts.KindTimeout, Message: consts.RAGTimeout}
}

// NewEmptyRAG 知识库回答为空
func NewEmptyRAG() *StageError {
	return &StageError{Kind: consts.KindRAG, Message: consts.RAGEmpty}
}

// NewAgentError 对话流程失败
func NewAgentError(err error) *StageError {
	return &StageError{Kind: consts.KindAgent, Message: fmt.Sprintf("[Web agent error: %v]", err)}
}

// NewEmptyAgent 对话流程无输出
func NewEmptyAgent() *StageError {
	return &StageError{Kind: consts.KindAgent, Message: consts.AgentEmpty}
}

// NewCheckFormError 表单检查失败
func NewCheckFormError(err error) *StageError {
	return &StageError{Kind: consts.KindForm, Message: fmt.Sprintf("[Check form LLM error: %v]", err)}
}

// NewEmptyCheckForm 表单检查无输出
func NewEmptyCheckForm() *StageError {
	return &StageError{Kind: consts.KindForm, Message: consts.CheckFormEmpty}
}
