package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hildam/funeral-claim-go/biz/handler"
)

// APIPrefix 接口前缀
const APIPrefix = "/ai-agent"

// Register 注册路由
func Register(r *server.Hertz, h *handler.Handler) {
	r.GET("/metrics", h.Metrics)

	api := r.Group(APIPrefix)
	api.GET("/health", h.Health)
	api.POST("/chat", h.Chat)
	api.POST("/chat/stream", h.ChatStream)
	api.POST("/rag", h.AskPolicy)
	api.POST("/check-form", h.CheckForm)

	api.POST("/upload", h.Upload)
	api.GET("/docs", h.ListDocs)
	api.DELETE("/docs/:filename", h.DeleteDoc)

	api.POST("/extract-form-data", h.ExtractFormData)
	api.POST("/ocr/process", h.OCRProcess)
	api.POST("/ocr/batch", h.OCRBatch)
}
