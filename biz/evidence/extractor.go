package evidence

import (
	"context"
	"errors"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/template"
	"github.com/tidwall/gjson"
)

// ErrMalformed 模型回答不是 JSON 对象
var ErrMalformed = errors.New("malformed extraction output")

// ModelProvider 按证据类型提供结构化输出模型
type ModelProvider interface {
	ForFields(ctx context.Context, name string, fields []string) llm.Completer
}

// Extractor 调用模型抽取字段
type Extractor struct {
	models ModelProvider
}

// NewExtractor 创建实例
func NewExtractor(models ModelProvider) *Extractor {
	return &Extractor{models: models}
}

// Run 抽取指定字段；任何失败都只记录日志并返回空结果
func (e *Extractor) Run(ctx context.Context, rawText string, docType consts.DocumentType, fields []string) map[string]model.FieldValue {
	prompt, err := template.Render(ctx, template.Extract, map[string]any{
		"schema":        FormSchema,
		"document_type": string(docType),
		"fields":        strings.Join(fields, ", "),
		"text":          rawText,
	})
	if err != nil {
		slog.Error("Run failed, render extract prompt err = %+v", err)
		return map[string]model.FieldValue{}
	}

	answer, err := e.models.ForFields(ctx, string(docType), fields).Complete(ctx, prompt)
	if err != nil {
		slog.Error("Run failed, extraction completion, document_type = %s, err = %+v", docType, err)
		return map[string]model.FieldValue{}
	}

	values, err := ParseFieldValues(answer)
	if err != nil {
		slog.Error("Run failed, parse extraction output, document_type = %s, err = %+v, output = %s", docType, err, answer)
		return map[string]model.FieldValue{}
	}
	slog.Debug("Run debug, document_type = %s, extracted %d fields", docType, len(values))
	return values
}

// ParseFieldValues 解析模型回答：去掉代码块标记，取最外层对象，
// 每个字段可以是 {value, reasoning} 对象，也可以直接是取值
func ParseFieldValues(answer string) (map[string]model.FieldValue, error) {
	body := stripFences(answer)
	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, ErrMalformed
	}
	body = body[start : end+1]
	if !gjson.Valid(body) {
		return nil, ErrMalformed
	}

	out := make(map[string]model.FieldValue)
	gjson.Parse(body).ForEach(func(key, value gjson.Result) bool {
		fv := model.FieldValue{Value: value.Value()}
		if value.IsObject() && value.Get("value").Exists() {
			fv = model.FieldValue{
				Value:     value.Get("value").Value(),
				Reasoning: value.Get("reasoning").String(),
			}
		}
		out[key.String()] = fv
		return true
	})
	return out, nil
}

// stripFences 去掉 ```json ... ``` 包裹
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
