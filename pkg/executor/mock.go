package executor

import (
	"context"
	"strings"
	"sync"
)

// MockExecutor 用于测试,按 "命令名 参数..." 匹配预设结果,并记录每次调用
type MockExecutor struct {
	mu      sync.Mutex
	scripts map[string]MockResult
	calls   []Command
	// AttachFunc 为 nil 时 Attach 返回 0
	AttachFunc func(cmd Command) (int, error)
}

type MockResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
	// Func 不为 nil 时优先调用,可以检查 stdin 等输入
	Func func(cmd Command) (Result, error)
}

func NewMockExecutor() *MockExecutor { return &MockExecutor{scripts: map[string]MockResult{}} }

// Set 为完整命令行设置结果, key 形如 "ssh -qT host cat"
func (m *MockExecutor) Set(cmdline string, res MockResult) {
	m.mu.Lock()
	m.scripts[cmdline] = res
	m.mu.Unlock()
}

// Calls 返回已记录的调用副本
func (m *MockExecutor) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.calls...)
}

func (m *MockExecutor) Run(ctx context.Context, cmd Command) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	r, ok := m.scripts[Cmdline(cmd)]
	m.mu.Unlock()
	if !ok {
		return Result{ExitCode: 127}, nil
	}
	if r.Func != nil {
		return r.Func(cmd)
	}
	return Result{Stdout: []byte(r.Stdout), Stderr: []byte(r.Stderr), ExitCode: r.ExitCode}, r.Err
}

func (m *MockExecutor) Attach(ctx context.Context, cmd Command) (int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	fn := m.AttachFunc
	m.mu.Unlock()
	if fn == nil {
		return 0, nil
	}
	return fn(cmd)
}

// Cmdline 将命令拼接为空格分隔的字符串
func Cmdline(cmd Command) string {
	return strings.Join(append([]string{cmd.Name}, cmd.Args...), " ")
}
