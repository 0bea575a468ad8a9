package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/ledongthuc/pdf"
)

// extractPDF 优先读取文本层，文本过少时转图片后 OCR
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, error) {
	text, err := textLayer(path)
	if err != nil {
		slog.Error("extractPDF failed, read text layer, path = %s, err = %+v", path, err)
	}
	if len(strings.TrimSpace(text)) > minTextLayer {
		return text, nil
	}

	slog.Debug("extractPDF debug, text layer too short, fallback to ocr, path = %s", path)
	return e.ocrPDF(ctx, path)
}

// textLayer 逐页读取文本，只保留超过 50 字符的页
func textLayer(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return sb.String(), fmt.Errorf("page %d: %w", i, err)
		}
		if len(strings.TrimSpace(content)) > 50 {
			sb.WriteString(content)
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

// ocrPDF pdftoppm 以 300dpi 转 png 后逐页识别
func (e *Extractor) ocrPDF(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "ocr-pdf")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", path, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm %s: %w: %s", filepath.Base(path), err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return "", err
	}
	sort.Strings(pages)

	var sb strings.Builder
	for _, page := range pages {
		text, err := e.ocrImage(ctx, page)
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}
