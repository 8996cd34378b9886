package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alessio/shellescape"
	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/location"
)

// exitNotFound 是远端读取命令在文件不存在时使用的退出码
const exitNotFound = 44

// Shell 通过外部 ssh 命令在远端执行 cat 读写文件
// 认证、跳板机等都交给用户的 ssh 配置
type Shell struct {
	Exec    executor.Executor
	Command string   // 默认 "ssh"
	Args    []string // 放在目标主机之前, 例如 -qT
	// Stderr 接收远端命令的错误输出, 为 nil 时使用 os.Stderr
	Stderr io.Writer
}

func (s *Shell) command(loc location.Location, remote string, stdin []byte) executor.Command {
	name := s.Command
	if name == "" {
		name = "ssh"
	}
	args := append([]string(nil), s.Args...)
	if loc.Port != 0 {
		args = append(args, "-p", strconv.Itoa(int(loc.Port)))
	}
	// "--" 之后的目标即使以 '-' 开头也不会被当作选项
	args = append(args, "--", loc.Target(), remote)
	return executor.Command{Name: name, Args: args, Stdin: stdin}
}

// ReadCommand 返回远端读取脚本
func ReadCommand(path string) string {
	q := shellescape.Quote(path)
	return fmt.Sprintf("[ -e %s ] || exit %d; cat -- %s", q, exitNotFound, q)
}

// WriteCommand 返回远端写入脚本, 内容来自标准输入
func WriteCommand(path string) string {
	return "cat > " + shellescape.Quote(path)
}

func (s *Shell) Read(ctx context.Context, loc location.Location) ([]byte, error) {
	res, err := s.Exec.Run(ctx, s.command(loc, ReadCommand(loc.Path), nil))
	if err != nil {
		return nil, err
	}
	s.reportStderr(loc, res.Stderr)
	switch res.ExitCode {
	case 0:
		return res.Stdout, nil
	case exitNotFound:
		return nil, ErrNotFound
	default:
		return nil, exitError(res)
	}
}

func (s *Shell) Write(ctx context.Context, loc location.Location, data []byte) error {
	res, err := s.Exec.Run(ctx, s.command(loc, WriteCommand(loc.Path), data))
	if err != nil {
		return err
	}
	s.reportStderr(loc, res.Stderr)
	if res.ExitCode != 0 {
		return exitError(res)
	}
	return nil
}

// reportStderr 将远端的错误输出原样展示给用户, 每行加上位置前缀
func (s *Shell) reportStderr(loc location.Location, stderr []byte) {
	msg := bytes.TrimSpace(stderr)
	if len(msg) == 0 {
		return
	}
	w := s.Stderr
	if w == nil {
		w = os.Stderr
	}
	for line := range bytes.Lines(msg) {
		fmt.Fprintf(w, "%s: %s\n", loc, bytes.TrimRight(line, "\r\n"))
	}
}

func exitError(res executor.Result) error {
	if msg := bytes.TrimSpace(res.Stderr); len(msg) > 0 {
		return fmt.Errorf("exit status %d: %s", res.ExitCode, msg)
	}
	return fmt.Errorf("exit status %d", res.ExitCode)
}
