package kb

import (
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/repo/ocr"
)

// NewBuilderFromConfig 按配置创建 Builder，政策文档与证据文件使用同一套文本抽取
func NewBuilderFromConfig(cfg *conf.AppConfig) *Builder {
	return NewBuilder(BuilderOption{
		Loader:     ocr.NewLoader(ocr.NewExtractor(cfg.Evidence)),
		Splitter:   NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		Embed:      NewEmbeddingFunc(cfg.Model.Embedding),
		PolicyDir:  cfg.RAG.PolicyDir,
		PersistDir: cfg.RAG.PersistDir,
		Collection: cfg.RAG.Collection,
	})
}

// NewStoreFromConfig 按配置创建 Store；配置了 ingest_command 时由外部进程重建
func NewStoreFromConfig(cfg *conf.AppConfig) *Store {
	var rebuilder Rebuilder = NewLocalRebuilder(NewBuilderFromConfig(cfg))
	if len(cfg.RAG.IngestCommand) > 0 {
		rebuilder = NewCommandRebuilder(cfg.RAG.IngestCommand)
	}
	return NewStore(StoreOption{
		PersistDir: cfg.RAG.PersistDir,
		Collection: cfg.RAG.Collection,
		Embed:      NewEmbeddingFunc(cfg.Model.Embedding),
		TopK:       cfg.RAG.TopK,
		Rebuilder:  rebuilder,
	})
}
