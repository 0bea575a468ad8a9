package handler

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/tidwall/gjson"
)

// ExtractFormData 从证据目录中的文件抽取表单字段，files 可为列表或单个文件名
func (h *Handler) ExtractFormData(ctx context.Context, c *app.RequestContext) {
	files := requestFiles(c.Request.Body())
	if len(files) == 0 {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No files provided"})
		return
	}
	slog.Info("ExtractFormData info, processing %d files", len(files))
	c.JSON(hconsts.StatusOK, h.extractor.Process(ctx, files))
}

// requestFiles 解析 {"files": [...]} 或 {"files": "name"}
func requestFiles(body []byte) []string {
	files := gjson.GetBytes(body, "files")
	if files.IsArray() {
		var out []string
		for _, f := range files.Array() {
			if name := f.String(); name != "" {
				out = append(out, name)
			}
		}
		return out
	}
	if name := files.String(); name != "" {
		return []string{name}
	}
	return nil
}

// OCRProcess 保存上传文件到证据目录并抽取文本
func (h *Handler) OCRProcess(ctx context.Context, c *app.RequestContext) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No file part"})
		return
	}
	if baseName(file.Filename) == "" {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No selected file"})
		return
	}

	path, err := h.saveEvidence(c, file)
	if err != nil {
		c.JSON(hconsts.StatusInternalServerError, utils.H{"error": "Failed to save file"})
		return
	}
	c.JSON(hconsts.StatusOK, h.text.Process(ctx, path))
}

// OCRBatch 批量抽取文本，结果按文件名返回
func (h *Handler) OCRBatch(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No files part"})
		return
	}

	results := make(map[string]*model.OCRResult, len(form.File["files"]))
	for _, file := range form.File["files"] {
		name := baseName(file.Filename)
		if name == "" {
			continue
		}
		path, err := h.saveEvidence(c, file)
		if err != nil {
			results[name] = &model.OCRResult{Error: "Failed to save file"}
			continue
		}
		results[name] = h.text.Process(ctx, path)
	}
	if len(results) == 0 {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No selected files"})
		return
	}
	c.JSON(hconsts.StatusOK, results)
}

// saveEvidence 上传文件保存到证据目录
func (h *Handler) saveEvidence(c *app.RequestContext, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.evidenceDir, 0o755); err != nil {
		slog.Error("saveEvidence failed, mkdir %s err = %+v", h.evidenceDir, err)
		return "", err
	}
	path := filepath.Join(h.evidenceDir, baseName(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		slog.Error("saveEvidence failed, save %s err = %+v", path, err)
		return "", err
	}
	slog.Info("saveEvidence info, saved uploaded file = %s", path)
	return path, nil
}
