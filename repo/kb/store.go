package kb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/hildam/funeral-claim-go/repo/metrics"
	"github.com/philippgille/chromem-go"
)

var (
	// ErrNotLoaded 没有可用的索引版本
	ErrNotLoaded = errors.New("knowledge base not loaded")
	// ErrRebuild 重建索引失败，旧版本仍在使用
	ErrRebuild = errors.New("knowledge base rebuild failed")
	// ErrReload 重建完成但加载新版本失败，内存中的索引已过期
	ErrReload = errors.New("knowledge base reload failed")
)

// Store 持有当前知识库句柄，刷新时整体替换
type Store struct {
	persistDir string
	collection string
	embed      chromem.EmbeddingFunc
	topK       int
	rebuilder  Rebuilder

	current atomic.Pointer[Handle]
	mu      sync.Mutex // 串行化刷新
}

// StoreOption 存储参数
type StoreOption struct {
	PersistDir string
	Collection string
	Embed      chromem.EmbeddingFunc
	TopK       int
	Rebuilder  Rebuilder
}

// NewStore 创建实例，不加载索引
func NewStore(opt StoreOption) *Store {
	return &Store{
		persistDir: opt.PersistDir,
		collection: opt.Collection,
		embed:      opt.Embed,
		topK:       opt.TopK,
		rebuilder:  opt.Rebuilder,
	}
}

// Current 当前句柄，可能为 nil
func (s *Store) Current() *Handle {
	return s.current.Load()
}

// Available 句柄存在且有已索引的切片
func (s *Store) Available() bool {
	return s.Current().DocumentCount() > 0
}

// Load 打开 CURRENT 指向的版本并替换句柄
func (s *Store) Load(ctx context.Context) error {
	generation, err := readCurrent(s.persistDir)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotLoaded
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", currentFile, err)
	}

	db, err := chromem.NewPersistentDB(filepath.Join(s.persistDir, generation), false)
	if err != nil {
		return fmt.Errorf("open generation %s: %w", generation, err)
	}
	col := db.GetCollection(s.collection, s.embed)
	if col == nil {
		return fmt.Errorf("%w: collection %s missing in %s", ErrNotLoaded, s.collection, generation)
	}

	s.current.Store(NewHandle(col, generation, s.topK))
	slog.Info("Load info, knowledge base generation = %s, chunks = %d", generation, col.Count())
	return nil
}

// Refresh 先在新目录重建，再加载并替换句柄；读者只会看到旧句柄或新句柄
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rebuilder == nil {
		return fmt.Errorf("%w: no rebuilder configured", ErrRebuild)
	}
	if err := s.rebuilder.Rebuild(ctx); err != nil {
		slog.Error("Refresh failed, rebuild err = %+v", err)
		metrics.KBRebuild("rebuild_failed")
		return fmt.Errorf("%w: %w", ErrRebuild, err)
	}
	if err := s.Load(ctx); err != nil {
		slog.Error("Refresh failed, reload err = %+v", err)
		metrics.KBRebuild("reload_failed")
		return fmt.Errorf("%w: %w", ErrReload, err)
	}
	metrics.KBRebuild("ok")
	return nil
}

// Retrieve 在当前句柄上检索，未加载时返回 ErrNotLoaded
func (s *Store) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	h := s.Current()
	if h == nil {
		return nil, ErrNotLoaded
	}
	return h.Retrieve(ctx, query, opts...)
}
