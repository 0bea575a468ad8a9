package kb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/philippgille/chromem-go"
)

const (
	currentFile = "CURRENT"
	genPrefix   = "gen-"
)

// Builder 在新目录中构建一份完整索引，不触碰正在使用的版本
type Builder struct {
	loader     document.Loader
	splitter   document.Transformer
	embed      chromem.EmbeddingFunc
	policyDir  string
	persistDir string
	collection string
}

// BuilderOption 构建参数
type BuilderOption struct {
	Loader     document.Loader
	Splitter   document.Transformer
	Embed      chromem.EmbeddingFunc
	PolicyDir  string
	PersistDir string
	Collection string
}

// NewBuilder 创建实例
func NewBuilder(opt BuilderOption) *Builder {
	return &Builder{
		loader:     opt.Loader,
		splitter:   opt.Splitter,
		embed:      opt.Embed,
		policyDir:  opt.PolicyDir,
		persistDir: opt.PersistDir,
		collection: opt.Collection,
	}
}

// Build 加载、切分、向量化政策文档，写入新版本目录后切换 CURRENT 并清理旧版本
func (b *Builder) Build(ctx context.Context) (generation string, err error) {
	docs, err := b.loadAll(ctx)
	if err != nil {
		return "", err
	}
	chunks, err := b.splitter.Transform(ctx, docs)
	if err != nil {
		return "", fmt.Errorf("split documents: %w", err)
	}
	slog.Info("Build info, loaded %d documents, %d chunks", len(docs), len(chunks))

	generation = genPrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
	dir := filepath.Join(b.persistDir, generation)
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return "", fmt.Errorf("open generation %s: %w", generation, err)
	}
	col, err := db.GetOrCreateCollection(b.collection, nil, b.embed)
	if err != nil {
		return "", fmt.Errorf("create collection: %w", err)
	}
	if len(chunks) > 0 {
		if err = col.AddDocuments(ctx, toChromem(chunks), runtime.NumCPU()); err != nil {
			return "", fmt.Errorf("embed chunks: %w", err)
		}
	}

	if err = writeCurrent(b.persistDir, generation); err != nil {
		return "", err
	}
	prune(b.persistDir, generation)
	return generation, nil
}

// loadAll 遍历政策目录下的全部文件
func (b *Builder) loadAll(ctx context.Context) ([]*schema.Document, error) {
	var docs []*schema.Document
	err := filepath.WalkDir(b.policyDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		loaded, err := b.loader.Load(ctx, document.Source{URI: path})
		if err != nil {
			slog.Error("loadAll failed, load %s, err = %+v", path, err)
			return nil
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk policy dir %s: %w", b.policyDir, err)
	}
	return docs, nil
}

func toChromem(chunks []*schema.Document) []chromem.Document {
	out := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		meta := make(map[string]string, len(c.MetaData))
		for k, v := range c.MetaData {
			meta[k] = fmt.Sprint(v)
		}
		out = append(out, chromem.Document{ID: c.ID, Content: c.Content, Metadata: meta})
	}
	return out
}

// writeCurrent 先写临时文件再 rename，保证读到的总是完整内容
func writeCurrent(persistDir, generation string) error {
	tmp := filepath.Join(persistDir, currentFile+".tmp")
	if err := os.WriteFile(tmp, []byte(generation+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", currentFile, err)
	}
	if err := os.Rename(tmp, filepath.Join(persistDir, currentFile)); err != nil {
		return fmt.Errorf("switch %s: %w", currentFile, err)
	}
	return nil
}

// readCurrent 读取当前版本名
func readCurrent(persistDir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(persistDir, currentFile))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// prune 删除除 keep 以外的旧版本
func prune(persistDir, keep string) {
	entries, err := os.ReadDir(persistDir)
	if err != nil {
		slog.Error("prune failed, read dir err = %+v", err)
		return
	}
	var old []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), genPrefix) && e.Name() != keep {
			old = append(old, e.Name())
		}
	}
	sort.Strings(old)
	for _, name := range old {
		if err := os.RemoveAll(filepath.Join(persistDir, name)); err != nil {
			slog.Error("prune failed, remove %s, err = %+v", name, err)
		}
	}
}
