package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/hashicorp/go-multierror"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/hildam/funeral-claim-go/repo/ocr"
)

// TextSource 文件转文本
type TextSource interface {
	Process(ctx context.Context, path string) *model.OCRResult
}

// Pipeline 一批证据文件的抽取流程
type Pipeline struct {
	dir       string
	text      TextSource
	extractor *Extractor
}

// NewPipeline 创建实例，dir 为证据文件目录
func NewPipeline(dir string, text TextSource, extractor *Extractor) *Pipeline {
	return &Pipeline{dir: dir, text: text, extractor: extractor}
}

// Process 逐个处理文件并合并表单字段。单个文件失败不影响其余文件；
// 同一字段后处理的文件覆盖先处理的，取值不一致时记录冲突
func (p *Pipeline) Process(ctx context.Context, filenames []string) *model.ClaimExtraction {
	result := &model.ClaimExtraction{
		Fields:     make(map[string]any),
		Provenance: make(map[string]model.FieldSource),
		Conflicts:  []model.FieldConflict{},
		Documents:  make([]model.DocumentSummary, 0, len(filenames)),
	}

	var errs *multierror.Error
	for _, name := range filenames {
		record, err := p.processFile(ctx, name)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			metrics.ExtractionDocument("unknown", "failed")
			result.Documents = append(result.Documents, model.DocumentSummary{Filename: name, Error: err.Error()})
			continue
		}

		count := merge(result, record)
		metrics.ExtractionDocument(string(record.DocumentType), "ok")
		result.Documents = append(result.Documents, model.DocumentSummary{
			Filename:     name,
			DocumentType: record.DocumentType,
			FieldCount:   count,
		})
		slog.Info("Process info, processed file = %s, document_type = %s, fields = %d", name, record.DocumentType, count)
	}

	if err := errs.ErrorOrNil(); err != nil {
		slog.Error("Process failed, %d of %d documents failed, err = %v", len(errs.Errors), len(filenames), err)
	}
	slog.Info("Process info, extraction completed, fields = %d, conflicts = %d", len(result.Fields), len(result.Conflicts))
	return result
}

// processFile 读取、分类并抽取单个文件
func (p *Pipeline) processFile(ctx context.Context, name string) (*model.DocumentRecord, error) {
	path, err := p.resolve(name)
	if err != nil {
		return nil, err
	}
	// 不支持的格式不进入分类和抽取
	if ext := filepath.Ext(name); !ocr.Supported(ext) {
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	res := p.text.Process(ctx, path)
	if !res.Success {
		return nil, fmt.Errorf("document processing failed: %s", res.Error)
	}

	docType := Classify(res.Text, name)
	return &model.DocumentRecord{
		Filename:        name,
		RawText:         res.Text,
		DocumentType:    docType,
		ExtractedFields: p.extractor.Run(ctx, res.Text, docType, FieldsFor(docType)),
	}, nil
}

// resolve 文件必须位于证据目录内
func (p *Pipeline) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	path := filepath.Join(p.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found")
	}
	return path, nil
}

// merge 按映射表顺序写入字段，返回写入数；空值不覆盖已有取值
func merge(result *model.ClaimExtraction, record *model.DocumentRecord) int {
	count := 0
	for _, m := range MappingFor(record.DocumentType) {
		fv, ok := record.ExtractedFields[m.From]
		if !ok || fv.Value == nil {
			continue
		}
		src := model.FieldSource{
			Document:     record.Filename,
			DocumentType: record.DocumentType,
			SourceField:  m.From,
			Value:        fv.Value,
			Reasoning:    fv.Reasoning,
		}
		if prev, ok := result.Provenance[m.To]; ok && !reflect.DeepEqual(prev.Value, fv.Value) {
			addConflict(result, m.To, prev, src)
		}
		result.Fields[m.To] = fv.Value
		result.Provenance[m.To] = src
		count++
	}
	return count
}

func addConflict(result *model.ClaimExtraction, field string, prev, src model.FieldSource) {
	for i := range result.Conflicts {
		if result.Conflicts[i].Field == field {
			result.Conflicts[i].Sources = append(result.Conflicts[i].Sources, src)
			return
		}
	}
	result.Conflicts = append(result.Conflicts, model.FieldConflict{Field: field, Sources: []model.FieldSource{prev, src}})
}
