package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/HildaM/logs/slog"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/tidwall/gjson"
)

var (
	// ErrTimeout 模型调用超过等待上限
	ErrTimeout = errors.New("completion timed out")
	// ErrEmptyCompletion 模型没有返回消息
	ErrEmptyCompletion = errors.New("completion returned no message")
)

// Completer 文本补全服务，prompt 进，文本出
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc 函数适配 Completer
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete 调用函数本身
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ChatCompleter 基于 eino ChatModel 的补全实现
type ChatCompleter struct {
	model einomodel.BaseChatModel
}

// NewChatCompleter 创建实例
func NewChatCompleter(m einomodel.BaseChatModel) *ChatCompleter {
	return &ChatCompleter{model: m}
}

// Complete 单条用户消息调用模型
func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", ErrEmptyCompletion
	}
	return UnwrapContent(msg.Content), nil
}

// UnwrapContent 兼容 {"content": "..."} 形式的返回，其余原样返回
func UnwrapContent(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return raw
	}

	obj := gjson.Parse(trimmed)
	keys := 0
	obj.ForEach(func(_, _ gjson.Result) bool {
		keys++
		return true
	})
	content := obj.Get("content")
	if keys == 1 && content.Type == gjson.String {
		return content.String()
	}
	return raw
}

type completion struct {
	text string
	err  error
}

// timeoutCompleter 限时等待，超时后放弃本次调用
type timeoutCompleter struct {
	next    Completer
	timeout time.Duration
}

// WithTimeout 为补全调用加上等待上限，超时返回 ErrTimeout
func WithTimeout(next Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return next
	}
	return &timeoutCompleter{next: next, timeout: timeout}
}

// Complete 在独立协程中调用，超时直接返回
func (t *timeoutCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 缓冲为 1，放弃后协程仍可写入并退出
	done := make(chan completion, 1)
	go func() {
		text, err := t.next.Complete(callCtx, prompt)
		done <- completion{text: text, err: err}
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.text, r.err
	case <-timer.C:
		slog.Error("Complete failed, completion timed out after %v", t.timeout)
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SchemaCompleters 按名字缓存结构化输出模型，创建失败时退回普通模型
type SchemaCompleters struct {
	cfg      conf.Model
	timeout  time.Duration
	fallback Completer

	mu    sync.Mutex
	cache map[string]Completer
}

// NewSchemaCompleters 创建实例
func NewSchemaCompleters(cfg conf.Model, timeout time.Duration, fallback Completer) *SchemaCompleters {
	return &SchemaCompleters{
		cfg:      cfg,
		timeout:  timeout,
		fallback: fallback,
		cache:    make(map[string]Completer),
	}
}

// ForFields 获取约束了指定字段的补全服务
func (s *SchemaCompleters) ForFields(ctx context.Context, name string, fields []string) Completer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok {
		return c
	}
	m, err := NewExtractModel(ctx, s.cfg, name, fields)
	if err != nil {
		slog.Error("ForFields failed, fall back to plain model, name = %s, err = %+v", name, err)
		return s.fallback
	}
	c := WithTimeout(NewChatCompleter(m), s.timeout)
	s.cache[name] = c
	return c
}
