package executor

import "context"

// Command 描述一次外部进程调用
type Command struct {
	Name  string
	Args  []string
	Stdin []byte // nil 表示不提供标准输入
}

// Result 是捕获模式下命令的执行结果
// 非零退出码通过 ExitCode 返回,不作为 error
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

type Executor interface {
	// Run 执行命令并捕获 stdout/stderr
	Run(ctx context.Context, cmd Command) (Result, error)
	// Attach 在前台执行命令,继承当前进程的标准输入输出(用于编辑器),返回退出码
	Attach(ctx context.Context, cmd Command) (int, error)
}
