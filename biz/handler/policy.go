package handler

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hildam/funeral-claim-go/biz/assistant"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/kb"
	"github.com/hildam/funeral-claim-go/repo/ocr"
)

// AskPolicy 只用政策知识库回答
func (h *Handler) AskPolicy(ctx context.Context, c *app.RequestContext) {
	var req model.ChatReq
	_ = c.BindJSON(&req)

	answer, err := h.assistant.AskPolicy(ctx, req.Input)
	if errors.Is(err, assistant.ErrEmptyInput) {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No input provided"})
		return
	}
	c.JSON(hconsts.StatusOK, utils.H{"response": answer})
}

// CheckForm 按政策检查表单问答
func (h *Handler) CheckForm(ctx context.Context, c *app.RequestContext) {
	var req model.CheckFormReq
	_ = c.BindJSON(&req)

	answer, err := h.assistant.CheckForm(ctx, req.Content)
	if errors.Is(err, assistant.ErrEmptyInput) {
		c.JSON(hconsts.StatusBadRequest, utils.H{"error": "No content provided"})
		return
	}
	c.JSON(hconsts.StatusOK, utils.H{"response": answer})
}

// Upload 保存政策文档并重建知识库。
// 重建或重新加载失败时文档已保存，返回 indexed=false
func (h *Handler) Upload(ctx context.Context, c *app.RequestContext) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(hconsts.StatusBadRequest, utils.H{"success": false, "error": "No file part"})
		return
	}
	name := baseName(file.Filename)
	if name == "" {
		c.JSON(hconsts.StatusBadRequest, utils.H{"success": false, "error": "No selected file"})
		return
	}
	if !ocr.Supported(filepath.Ext(name)) {
		c.JSON(hconsts.StatusBadRequest, utils.H{"success": false, "error": "Unsupported file format: " + filepath.Ext(name)})
		return
	}

	path, err := h.policy.Path(name)
	if err != nil {
		c.JSON(hconsts.StatusBadRequest, utils.H{"success": false, "error": err.Error()})
		return
	}
	if err = c.SaveUploadedFile(file, path); err != nil {
		slog.Error("Upload failed, save %s err = %+v", path, err)
		c.JSON(hconsts.StatusInternalServerError, utils.H{"success": false, "error": err.Error()})
		return
	}
	slog.Info("Upload info, saved policy document = %s", name)
	c.JSON(hconsts.StatusOK, h.reindex(ctx, utils.H{"success": true, "saved": true}))
}

// ListDocs 列出知识库中的政策文档
func (h *Handler) ListDocs(ctx context.Context, c *app.RequestContext) {
	names, err := h.policy.List()
	if err != nil {
		slog.Error("ListDocs failed, err = %+v", err)
		c.JSON(hconsts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	docs := make([]string, 0, len(names))
	for _, name := range names {
		if ocr.Supported(filepath.Ext(name)) {
			docs = append(docs, name)
		}
	}
	c.JSON(hconsts.StatusOK, utils.H{"documents": docs})
}

// DeleteDoc 删除政策文档并重建知识库
func (h *Handler) DeleteDoc(ctx context.Context, c *app.RequestContext) {
	name := c.Param("filename")
	err := h.policy.Delete(name)
	switch {
	case errors.Is(err, kb.ErrInvalidName):
		c.JSON(hconsts.StatusBadRequest, utils.H{"success": false, "error": err.Error()})
		return
	case errors.Is(err, os.ErrNotExist):
		c.JSON(hconsts.StatusNotFound, utils.H{"success": false, "error": "File not found"})
		return
	case err != nil:
		slog.Error("DeleteDoc failed, name = %s, err = %+v", name, err)
		c.JSON(hconsts.StatusInternalServerError, utils.H{"success": false, "error": err.Error()})
		return
	}
	slog.Info("DeleteDoc info, removed policy document = %s", name)
	c.JSON(hconsts.StatusOK, h.reindex(ctx, utils.H{"success": true, "deleted": true}))
}

// reindex 重建知识库，把结果写入响应
func (h *Handler) reindex(ctx context.Context, body utils.H) utils.H {
	if err := h.kb.Refresh(ctx); err != nil {
		slog.Error("reindex failed, err = %+v", err)
		body["indexed"] = false
		body["error"] = err.Error()
		return body
	}
	body["indexed"] = true
	return body
}
