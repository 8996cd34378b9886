package global

import (
	"os"

	"golang.org/x/term"
)

// IsStderrTerminal 为 false 时表示 stderr 被重定向, 不显示进度条
var IsStderrTerminal = term.IsTerminal(int(os.Stderr.Fd()))
