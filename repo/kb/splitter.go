package kb

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter 按段落、行、词递归切分文本，相邻切片保留重叠
type Splitter struct {
	size    int
	overlap int
}

var _ document.Transformer = (*Splitter)(nil)

// NewSplitter 创建实例
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// Transform 切分文档，切片继承原文档元信息并记录序号
func (s *Splitter) Transform(ctx context.Context, src []*schema.Document, opts ...document.TransformerOption) ([]*schema.Document, error) {
	var out []*schema.Document
	for _, doc := range src {
		for i, chunk := range s.SplitText(doc.Content) {
			meta := make(map[string]any, len(doc.MetaData)+1)
			for k, v := range doc.MetaData {
				meta[k] = v
			}
			meta["chunk"] = i
			out = append(out, &schema.Document{
				ID:       fmt.Sprintf("%s#%d", doc.ID, i),
				Content:  chunk,
				MetaData: meta,
			})
		}
	}
	return out, nil
}

// SplitText 切分单段文本
func (s *Splitter) SplitText(text string) []string {
	return s.split(text, defaultSeparators)
}

func (s *Splitter) split(text string, separators []string) []string {
	// 选出文本中存在的第一个分隔符
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep, rest = candidate, separators[i+1:]
			break
		}
	}

	var (
		chunks []string
		good   []string
	)
	for _, piece := range splitKeep(text, sep) {
		if len(piece) <= s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
			continue
		}
		chunks = append(chunks, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good, sep)...)
	}
	return chunks
}

// merge 把小片段拼成不超过 size 的切片，新切片以上一切片末尾不超过 overlap 的片段开头
func (s *Splitter) merge(pieces []string, sep string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)
	joinedLen := func(n int) int {
		if len(current) == 0 {
			return n
		}
		return total + len(sep) + n
	}
	for _, p := range pieces {
		if len(current) > 0 && joinedLen(len(p)) > s.size {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// 从头丢弃，直到剩余部分不超过 overlap 且能放下新片段
			for len(current) > 0 && (total > s.overlap || joinedLen(len(p)) > s.size) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= len(sep)
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += len(sep)
		}
		current = append(current, p)
		total += len(p)
	}
	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeep 按分隔符切分并丢弃空片段；空分隔符按字符切分
func splitKeep(text, sep string) []string {
	var parts []string
	if sep == "" {
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	for _, p := range strings.Split(text, sep) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
