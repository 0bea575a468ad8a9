package selector

import (
	"strings"
	"unicode"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/consts"
)

// Selector 根据关键词决定回答来源
type Selector struct {
	keywords map[string]struct{}
}

// NewSelector 创建实例，关键词不区分大小写
func NewSelector(keywords []string) *Selector {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			set[kw] = struct{}{}
		}
	}
	return &Selector{keywords: set}
}

// Select 知识库不可用时总是走对话流程；否则命中任一关键词走知识库
func (s *Selector) Select(input string, kbAvailable bool) consts.Source {
	if !kbAvailable {
		return consts.SourceAgentGraph
	}
	for _, token := range Tokenize(input) {
		if s.match(token) {
			slog.Debug("Select debug, keyword hit = %s", token)
			return consts.SourceRAG
		}
	}
	return consts.SourceAgentGraph
}

// match 完全匹配或复数形式匹配
func (s *Selector) match(token string) bool {
	if _, ok := s.keywords[token]; ok {
		return true
	}
	if singular, ok := strings.CutSuffix(token, "s"); ok {
		_, hit := s.keywords[singular]
		return hit
	}
	return false
}

// Tokenize 按非字母数字切分并转小写
func Tokenize(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
