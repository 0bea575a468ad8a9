package template

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// 提示词名字
const (
	Decide    = "decide"
	Generate  = "generate"
	RAG       = "rag"
	CheckForm = "check_form"
	Extract   = "extract"
)

//go:embed prompts/*.md
var prompts embed.FS

// GetPromptTemplate 加载并返回一个提示模板
func GetPromptTemplate(ctx context.Context, promptName string) (string, error) {
	content, err := prompts.ReadFile(fmt.Sprintf("prompts/%s.md", promptName))
	if err != nil {
		msg := fmt.Errorf("GetPromptTemplate failed, read template file, err: %w", err)
		slog.Error(msg.Error())
		return "", msg
	}
	return strings.TrimRight(string(content), "\n"), nil
}

// Render 使用 Go 模板语法渲染提示词，变量需全部给出
func Render(ctx context.Context, promptName string, variables map[string]any) (string, error) {
	tpl, err := GetPromptTemplate(ctx, promptName)
	if err != nil {
		return "", err
	}

	promptTemp := prompt.FromMessages(schema.GoTemplate, schema.UserMessage(tpl))
	msgs, err := promptTemp.Format(ctx, variables)
	if err != nil {
		slog.Error("Render failed, format prompt template fail, name = %s, err = %+v", promptName, err)
		return "", err
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("prompt %s rendered no message", promptName)
	}
	return msgs[0].Content, nil
}
