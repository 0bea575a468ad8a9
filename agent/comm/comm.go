package comm

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/HildaM/logs/slog"
	"github.com/tiktoken-go/tokenizer"
)

const turnMarker = "\nYou: "

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens 统计文本 token 数，编码器不可用时按 4 字符 1 token 估算
func CountTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.ForModel(tokenizer.GPT4)
		if err != nil {
			slog.Error("CountTokens failed, load tokenizer err = %+v", err)
			return
		}
		codec = c
	})
	if codec == nil {
		return len(text) / 4
	}

	n, err := codec.Count(text)
	if err != nil {
		slog.Debug("CountTokens debug, count err = %+v", err)
		return len(text) / 4
	}
	return n
}

// SplitTurns 按 "You:" 切分历史，每段为一轮问答
func SplitTurns(history string) []string {
	var turns []string
	rest := history
	for {
		idx := strings.Index(rest[min(len(rest), 1):], turnMarker)
		if idx < 0 {
			if rest != "" {
				turns = append(turns, rest)
			}
			return turns
		}
		idx++ // 偏移首字符
		turns = append(turns, rest[:idx])
		rest = rest[idx:]
	}
}

// TrimHistory 丢弃最早的若干轮，使历史不超过 maxTokens
func TrimHistory(history string, maxTokens int) string {
	if maxTokens <= 0 || CountTokens(history) <= maxTokens {
		return history
	}

	turns := SplitTurns(history)
	for len(turns) > 1 {
		turns = turns[1:]
		kept := strings.Join(turns, "")
		if CountTokens(kept) <= maxTokens {
			slog.Debug("TrimHistory debug, kept %d turns, max limit token is %d", len(turns), maxTokens)
			return kept
		}
	}

	// 最近一轮仍然超限, 取后半段部分的最新信息
	last := turns[0]
	limit := maxTokens * 4
	if len(last) > limit {
		// 从字符边界截断，避免切开多字节字符
		start := len(last) - limit
		for start < len(last) && !utf8.RuneStart(last[start]) {
			start++
		}
		last = last[start:]
	}
	return last
}
