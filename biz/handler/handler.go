package handler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	hconsts "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hildam/funeral-claim-go/biz/evidence"
	"github.com/hildam/funeral-claim-go/entity/consts"
	"github.com/hildam/funeral-claim-go/entity/model"
	"github.com/hildam/funeral-claim-go/repo/kb"
)

// Assistant 对话与政策问答
type Assistant interface {
	Chat(ctx context.Context, sessionKey, input string, opts ...compose.Option) (*model.ChatResp, error)
	AskPolicy(ctx context.Context, input string) (string, error)
	CheckForm(ctx context.Context, content string) (string, error)
}

// KnowledgeBase 文档变更后重建并替换知识库
type KnowledgeBase interface {
	Refresh(ctx context.Context) error
}

// ClaimExtractor 批量证据抽取
type ClaimExtractor interface {
	Process(ctx context.Context, filenames []string) *model.ClaimExtraction
}

// Handler HTTP 接口实现
type Handler struct {
	assistant   Assistant
	kb          KnowledgeBase
	policy      *kb.PolicyDocs
	extractor   ClaimExtractor
	text        evidence.TextSource
	evidenceDir string
}

// Option 依赖
type Option struct {
	Assistant   Assistant
	KB          KnowledgeBase
	Policy      *kb.PolicyDocs
	Extractor   ClaimExtractor
	Text        evidence.TextSource
	EvidenceDir string
}

// NewHandler 创建实例
func NewHandler(opt Option) *Handler {
	return &Handler{
		assistant:   opt.Assistant,
		kb:          opt.KB,
		policy:      opt.Policy,
		extractor:   opt.Extractor,
		text:        opt.Text,
		evidenceDir: opt.EvidenceDir,
	}
}

// Health 健康检查
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(hconsts.StatusOK, utils.H{"status": "ok"})
}

// sessionKey 优先使用请求头中的会话标识，否则按调用方地址区分
func sessionKey(c *app.RequestContext) string {
	if id := strings.TrimSpace(string(c.GetHeader(consts.SessionHeader))); id != "" {
		return id
	}
	return c.ClientIP()
}

// baseName 去掉上传文件名中的目录部分
func baseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
