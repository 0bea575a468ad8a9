package kb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidName 文件名为空或包含路径
var ErrInvalidName = errors.New("invalid document name")

// PolicyDocs 政策文档目录
type PolicyDocs struct {
	dir string
}

// NewPolicyDocs 创建实例
func NewPolicyDocs(dir string) *PolicyDocs {
	return &PolicyDocs{dir: dir}
}

// Path 返回文档在目录中的路径，拒绝跳出目录的名字
func (p *PolicyDocs) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(p.dir, name), nil
}

// List 按名字排序列出文档
func (p *PolicyDocs) List() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete 删除文档，不存在时返回 os.ErrNotExist
func (p *PolicyDocs) Delete(name string) error {
	path, err := p.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
