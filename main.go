package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hildam/funeral-claim-go/agent"
	"github.com/hildam/funeral-claim-go/agent/selector"
	"github.com/hildam/funeral-claim-go/biz/assistant"
	"github.com/hildam/funeral-claim-go/biz/evidence"
	"github.com/hildam/funeral-claim-go/biz/handler"
	"github.com/hildam/funeral-claim-go/biz/router"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/repo/kb"
	"github.com/hildam/funeral-claim-go/repo/llm"
	"github.com/hildam/funeral-claim-go/repo/mcp"
	"github.com/hildam/funeral-claim-go/repo/ocr"
	"github.com/hildam/funeral-claim-go/repo/search"
	"github.com/hildam/funeral-claim-go/repo/session"
)

func main() {
	ctx := context.Background()

	// 初始化配置
	funcs := []func() error{conf.Init, mcp.InitMcpServer}
	for _, f := range funcs {
		if err := f(); err != nil {
			log.Fatal(err)
		}
	}
	defer mcp.Close()

	cfg := conf.GetCfg()
	h, err := newHandler(ctx, cfg)
	if err != nil {
		slog.Fatal("newHandler failed, err: %v", err)
	}

	srv := server.Default(server.WithHostPorts(cfg.Server.Addr))
	router.Register(srv, h)
	slog.Info("main info, listening on %s", cfg.Server.Addr)
	srv.Spin()
}

// newHandler 按配置组装各组件
func newHandler(ctx context.Context, cfg *conf.AppConfig) (*handler.Handler, error) {
	timeout := time.Duration(cfg.Setting.LLMTimeoutSeconds) * time.Second

	chatModel, err := llm.NewChatModel(ctx, cfg.Model.DefaultModel)
	if err != nil {
		return nil, err
	}
	completer := llm.WithTimeout(llm.NewChatCompleter(chatModel), timeout)

	searcher, err := search.New(cfg.Search)
	if err != nil {
		return nil, err
	}

	graph, err := agent.BuildAgentGraph(ctx, agent.Deps{
		LLM:       completer,
		Search:    searcher,
		Tone:      cfg.Setting.TonePrompt,
		MaxTokens: cfg.Setting.MaxLimitToken,
	})
	if err != nil {
		return nil, err
	}

	sessions, err := session.New(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	// 知识库未构建时照常启动，对话全部走通用流程
	store := kb.NewStoreFromConfig(cfg)
	if err = store.Load(ctx); err != nil {
		if !errors.Is(err, kb.ErrNotLoaded) {
			return nil, err
		}
		slog.Error("newHandler failed, knowledge base not loaded, run ingest first, err = %+v", err)
	}

	text := ocr.NewExtractor(cfg.Evidence)
	extractor := evidence.NewExtractor(llm.NewSchemaCompleters(cfg.Model.DefaultModel, timeout, completer))

	return handler.NewHandler(handler.Option{
		Assistant: assistant.NewAssistant(assistant.Option{
			Selector: selector.NewSelector(cfg.RAG.Keywords),
			Agent:    graph,
			KB:       store,
			LLM:      completer,
			Sessions: sessions,
			TopK:     cfg.RAG.TopK,
		}),
		KB:          store,
		Policy:      kb.NewPolicyDocs(cfg.RAG.PolicyDir),
		Extractor:   evidence.NewPipeline(cfg.Evidence.Dir, text, extractor),
		Text:        text,
		EvidenceDir: cfg.Evidence.Dir,
	}), nil
}
