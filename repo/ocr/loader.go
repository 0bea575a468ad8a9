package ocr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// Loader 以 eino document.Loader 的形式提供文件文本
type Loader struct {
	extractor *Extractor
}

// NewLoader 创建实例
func NewLoader(extractor *Extractor) *Loader {
	return &Loader{extractor: extractor}
}

// Load 读取单个文件，source 元信息记录文件名
func (l *Loader) Load(ctx context.Context, src document.Source, opts ...document.LoaderOption) ([]*schema.Document, error) {
	if !Supported(filepath.Ext(src.URI)) {
		return nil, nil
	}
	text, err := l.extractor.ExtractText(ctx, src.URI)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []*schema.Document{{
		ID:      filepath.Base(src.URI),
		Content: text,
		MetaData: map[string]any{
			"source": filepath.Base(src.URI),
		},
	}}, nil
}
