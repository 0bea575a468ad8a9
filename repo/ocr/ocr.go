package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/entity/model"
)

// pdf 文本层短于该长度时改为 OCR
const minTextLayer = 100

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// Extractor 文件转文本
type Extractor struct {
	tesseract string // tesseract 可执行文件
	lang      string // 识别语言
}

// NewExtractor 创建实例
func NewExtractor(cfg conf.EvidenceConfig) *Extractor {
	e := &Extractor{tesseract: cfg.Tesseract, lang: cfg.Lang}
	if e.tesseract == "" {
		e.tesseract = "tesseract"
	}
	if e.lang == "" {
		e.lang = "eng"
	}
	return e
}

// Supported 是否支持该扩展名
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	switch {
	case imageExts[ext]:
		return true
	case ext == ".pdf", ext == ".docx", ext == ".doc", ext == ".txt", ext == ".md":
		return true
	}
	return false
}

// ExtractText 按扩展名提取文本；不支持的格式返回说明文本而不是错误
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return e.ocrImage(ctx, path)
	case ext == ".pdf":
		return e.extractPDF(ctx, path)
	case ext == ".docx", ext == ".doc":
		return extractDocx(path)
	case ext == ".txt", ext == ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return fmt.Sprintf("Unsupported file format: %s", ext), nil
}

// Process 提取并清洗文本，附带文件元信息
func (e *Extractor) Process(ctx context.Context, path string) *model.OCRResult {
	info, err := os.Stat(path)
	if err != nil {
		slog.Error("Process failed, file not found, path = %s, err = %+v", path, err)
		return &model.OCRResult{Error: "File not found"}
	}

	slog.Info("Process info, processing file = %s", path)
	raw, err := e.ExtractText(ctx, path)
	if err != nil {
		slog.Error("Process failed, extract text, path = %s, err = %+v", path, err)
		return &model.OCRResult{Error: err.Error()}
	}

	text := Clean(raw)
	slog.Info("Process info, processed file = %s, text length = %d", path, len(text))
	return &model.OCRResult{
		Success: true,
		Metadata: &model.OCRMetadata{
			Filename: filepath.Base(path),
			FileSize: info.Size(),
			FileType: strings.ToLower(filepath.Ext(path)),
		},
		Text:       text,
		TextLength: len(text),
	}
}

// ocrImage 调用 tesseract 识别图片
func (e *Extractor) ocrImage(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, e.tesseract, path, "stdout", "-l", e.lang, "--oem", "3", "--psm", "6")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w", filepath.Base(path), err)
	}
	return string(out), nil
}
