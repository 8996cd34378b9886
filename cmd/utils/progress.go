package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/wentf9/nij/global"
	"github.com/wentf9/nij/pkg/runner"
)

// NewProgress 为批量操作创建进度条回调, 只在 stderr 是终端且远程多于一个时显示
func NewProgress(w io.Writer, total int, desc string) (func(runner.Result), func()) {
	if !global.IsStderrTerminal || total < 2 {
		return func(runner.Result) {}, func() {}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(runner.Result) { _ = bar.Add(1) }, func() { _ = bar.Finish() }
}
