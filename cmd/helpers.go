package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/nodeinfo"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
)

// selectRemotes 按模式选择远程; 给出了模式但没有匹配时报错
func selectRemotes(env *utils.Env, patterns []string) ([]string, error) {
	names, err := env.Registry.Filter(patterns)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 && len(patterns) > 0 {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("没有匹配的远程: %s", strings.Join(patterns, ", "))}
	}
	return names, nil
}

// fetchDocuments 并发读取文档, 文件不存在的远程对应 nil
func fetchDocuments(ctx context.Context, env *utils.Env, names []string, limit int, errOut io.Writer, desc string) ([]runner.Item[*nodeinfo.Document], []runner.Result) {
	onResult, finish := utils.NewProgress(errOut, len(names), desc)
	items, failed := runner.Gather(ctx, names, limit, func(ctx context.Context, name string) (*nodeinfo.Document, error) {
		loc, err := env.Resolve(name)
		if err != nil {
			return nil, err
		}
		return session.FetchDocument(ctx, env.Transport, loc)
	}, runner.WithResultCallback(onResult))
	finish()
	return items, failed
}

// reportFailures 输出失败的远程, 返回失败数量
func reportFailures(w io.Writer, failed []runner.Result) int {
	for _, f := range failed {
		fmt.Fprintf(w, "%s: %v\n", f.Name, f.Err)
	}
	return len(failed)
}
