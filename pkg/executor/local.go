package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// LocalExecutor 本地执行器
type LocalExecutor struct{}

func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

func (e *LocalExecutor) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}
	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if code, ok := exitCode(err); ok {
		res.ExitCode = code
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return res, nil
}

// Attach 不随 ctx 取消而终止进程: 前台程序(编辑器)自行处理终端上的 Ctrl-C
func (e *LocalExecutor) Attach(ctx context.Context, cmd Command) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	err := c.Run()
	if code, ok := exitCode(err); ok {
		return code, nil
	}
	if err != nil {
		return -1, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return 0, nil
}

// exitCode 从 *exec.ExitError 中提取退出码
// 被信号终止的进程 ExitCode() 为 -1
func exitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
