package model

import "github.com/hildam/funeral-claim-go/entity/consts"

// FieldValue 模型抽取出的单个字段，Value 为 nil 表示未找到
type FieldValue struct {
	Value     any    `json:"value"`
	Reasoning string `json:"reasoning,omitempty"`
}

// FieldAnswer 用于生成结构化输出 schema 的字段形态
type FieldAnswer struct {
	Value     string `json:"value"`
	Reasoning string `json:"reasoning"`
}

// DocumentRecord 单个证据文件的处理记录，只在一次抽取内存活
type DocumentRecord struct {
	Filename        string                `json:"filename"`
	RawText         string                `json:"-"`
	DocumentType    consts.DocumentType   `json:"document_type"`
	ExtractedFields map[string]FieldValue `json:"extracted_fields"`
}

// FieldSource 表单字段的来源
type FieldSource struct {
	Document     string              `json:"document"`
	DocumentType consts.DocumentType `json:"document_type"`
	SourceField  string              `json:"source_field"`
	Value        any                 `json:"value"`
	Reasoning    string              `json:"reasoning,omitempty"`
}

// FieldConflict 多个证据文件给出不同取值的字段
type FieldConflict struct {
	Field   string        `json:"field"`
	Sources []FieldSource `json:"sources"`
}

// DocumentSummary 单个证据文件的处理结果
type DocumentSummary struct {
	Filename     string              `json:"filename"`
	DocumentType consts.DocumentType `json:"document_type,omitempty"`
	FieldCount   int                 `json:"field_count"`
	Error        string              `json:"error,omitempty"`
}

// ClaimExtraction 一批证据文件汇总后的表单字段
type ClaimExtraction struct {
	Fields     map[string]any         `json:"fields"`     // 后处理的文件覆盖先处理的
	Provenance map[string]FieldSource `json:"provenance"` // 当前取值的来源
	Conflicts  []FieldConflict        `json:"conflicts"`  // 取值不一致的字段
	Documents  []DocumentSummary      `json:"documents"`
}

// OCRMetadata 文件元信息
type OCRMetadata struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

// OCRResult 文件文本抽取结果
type OCRResult struct {
	Success    bool         `json:"success"`
	Metadata   *OCRMetadata `json:"metadata,omitempty"`
	Text       string       `json:"text,omitempty"`
	TextLength int          `json:"text_length"`
	Error      string       `json:"error,omitempty"`
}

// ExtractReq 表单抽取请求
type ExtractReq struct {
	Files []string `json:"files"`
}
