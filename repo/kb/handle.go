package kb

import (
	"context"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/philippgille/chromem-go"
)

// Handle 只读的政策知识库，整体替换，不做原地修改
type Handle struct {
	collection *chromem.Collection
	generation string
	topK       int
}

var _ retriever.Retriever = (*Handle)(nil)

// NewHandle 包装已打开的集合
func NewHandle(collection *chromem.Collection, generation string, topK int) *Handle {
	if topK <= 0 {
		topK = 3
	}
	return &Handle{collection: collection, generation: generation, topK: topK}
}

// DocumentCount 已索引的切片数，0 表示不可用
func (h *Handle) DocumentCount() int {
	if h == nil || h.collection == nil {
		return 0
	}
	return h.collection.Count()
}

// Generation 当前索引版本
func (h *Handle) Generation() string {
	if h == nil {
		return ""
	}
	return h.generation
}

// Retrieve 相似度检索，条数不超过已索引切片数；无结果不是错误
func (h *Handle) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	count := h.DocumentCount()
	if count == 0 {
		return nil, nil
	}

	topK := h.topK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	n := h.topK
	if options.TopK != nil && *options.TopK > 0 {
		n = *options.TopK
	}
	n = min(n, count)

	results, err := h.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		slog.Error("Retrieve failed, query knowledge base err = %+v", err)
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	docs := make([]*schema.Document, 0, len(results))
	for _, r := range results {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		doc := &schema.Document{ID: r.ID, Content: r.Content, MetaData: meta}
		docs = append(docs, doc.WithScore(float64(r.Similarity)))
	}
	slog.Debug("Retrieve debug, query = %s, hits = %d", query, len(docs))
	return docs, nil
}
