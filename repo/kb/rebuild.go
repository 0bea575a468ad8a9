package kb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/HildaM/logs/slog"
)

// Rebuilder 重建索引，完成后 CURRENT 指向新版本
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// LocalRebuilder 进程内重建
type LocalRebuilder struct {
	builder *Builder
}

// NewLocalRebuilder 创建实例
func NewLocalRebuilder(builder *Builder) *LocalRebuilder {
	return &LocalRebuilder{builder: builder}
}

// Rebuild 调用 Builder
func (l *LocalRebuilder) Rebuild(ctx context.Context) error {
	generation, err := l.builder.Build(ctx)
	if err != nil {
		return err
	}
	slog.Info("Rebuild info, built generation = %s", generation)
	return nil
}

// CommandRebuilder 外部进程重建，例如 ingest 命令
type CommandRebuilder struct {
	args []string
}

// NewCommandRebuilder 创建实例，args[0] 为可执行文件
func NewCommandRebuilder(args []string) *CommandRebuilder {
	return &CommandRebuilder{args: args}
}

// Rebuild 执行命令，非零退出视为失败
func (c *CommandRebuilder) Rebuild(ctx context.Context) error {
	if len(c.args) == 0 {
		return errors.New("empty ingest command")
	}
	cmd := exec.CommandContext(ctx, c.args[0], c.args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", strings.Join(c.args, " "), err, strings.TrimSpace(string(out)))
	}
	slog.Debug("Rebuild debug, ingest output = %s", out)
	return nil
}
