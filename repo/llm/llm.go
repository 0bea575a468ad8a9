package llm

import (
	"context"
	"fmt"

	openai3 "github.com/cloudwego/eino-ext/libs/acl/openai"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/entity/model"
)

// extractTemperature 抽取任务使用较低温度
var extractTemperature float32 = 0.1

// NewChatModel 创建Chat模型
func NewChatModel(ctx context.Context, cfg conf.Model) (*openai.ChatModel, error) {
	llm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   cfg.ModelID,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		slog.Error("NewChatModel failed, err: %v", err)
		return nil, err
	}
	return llm, nil
}

// NewExtractModel 创建字段抽取模型，输出被约束为 {字段名: {value, reasoning}} 的 JSON 对象
func NewExtractModel(ctx context.Context, cfg conf.Model, name string, fields []string) (*openai.ChatModel, error) {
	extractSchema, err := FieldsSchema(fields)
	if err != nil {
		return nil, err
	}

	llm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:       cfg.ModelID,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Temperature: &extractTemperature,
		// 抽取模型响应格式
		ResponseFormat: &openai3.ChatCompletionResponseFormat{
			Type: openai3.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai3.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Strict: false,
				Schema: extractSchema,
			},
		},
	})
	if err != nil {
		slog.Error("NewExtractModel failed, name = %s, err: %v", name, err)
		return nil, err
	}
	return llm, nil
}

// FieldsSchema 构造字段抽取的 JSON schema，每个字段都是 FieldAnswer 结构
func FieldsSchema(fields []string) (*openapi3.Schema, error) {
	answerRef, err := openapi3gen.NewSchemaRefForValue(&model.FieldAnswer{}, nil)
	if err != nil {
		return nil, fmt.Errorf("generate field schema: %w", err)
	}
	answerRef.Value.Nullable = true

	obj := openapi3.NewObjectSchema()
	for _, field := range fields {
		obj.Properties[field] = answerRef
	}
	return obj, nil
}
