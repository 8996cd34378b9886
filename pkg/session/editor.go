package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-shellwords"
	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/logger"
)

var ErrEditorFailed = errors.New("editor exited uncleanly")

// Editor 在前台打开一组文件, 返回前用户已经编辑完成
type Editor interface {
	Edit(ctx context.Context, paths []string) error
}

// CommandEditor 运行外部编辑器命令, Command 可以带参数, 例如 "code --wait"
type CommandEditor struct {
	Command string
	Exec    executor.Executor
}

func (e *CommandEditor) Edit(ctx context.Context, paths []string) error {
	words, err := shellwords.Parse(e.Command)
	if err != nil {
		return fmt.Errorf("parse editor command %q: %w", e.Command, err)
	}
	if len(words) == 0 {
		return fmt.Errorf("empty editor command")
	}
	cmd := executor.Command{Name: words[0], Args: append(words[1:], paths...)}
	logger.Logger.Debug("starting editor", "command", executor.Cmdline(cmd))
	code, err := e.Exec.Attach(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEditorFailed, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: exit status %d", ErrEditorFailed, code)
	}
	return nil
}
