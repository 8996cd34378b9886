package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
	"github.com/wentf9/nij/pkg/validator"
)

type CheckOptions struct {
	*GlobalOptions
	Patterns []string
}

func NewCmdCheck(g *GlobalOptions) *cobra.Command {
	o := &CheckOptions{GlobalOptions: g}
	return &cobra.Command{
		Use:   "check [<name>...]",
		Short: "校验远程上的 node info, 有警告时退出码为 1",
		Long: `读取并校验一个或多个远程上的 node info,警告按 "<名称>: <警告>" 输出。
不指定名称时校验所有远程, 名称支持 glob 模式 (例如 'eu/*')。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			return o.Run(cmd)
		},
	}
}

func (o *CheckOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := selectRemotes(env, o.Patterns)
	if err != nil {
		return err
	}
	v := validator.Default()
	var mu sync.Mutex
	warnings := make(map[string][]string, len(names))
	onResult, finish := utils.NewProgress(cmd.ErrOrStderr(), len(names), "checking")
	results := runner.RunEach(cmd.Context(), names, o.Concurrency(), func(ctx context.Context, name string) error {
		loc, err := env.Resolve(name)
		if err != nil {
			return err
		}
		doc, err := session.FetchDocument(ctx, env.Transport, loc)
		if err != nil {
			return err
		}
		ws := v.Check(doc)
		mu.Lock()
		warnings[name] = ws
		mu.Unlock()
		return nil
	}, runner.WithResultCallback(onResult))
	finish()

	// 每个远程独立输出, 失败的远程不影响其他远程的警告
	problems := 0
	for _, r := range results {
		if r.Err != nil {
			problems++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Name, r.Err)
			continue
		}
		for _, w := range warnings[r.Name] {
			problems++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Name, w)
		}
	}
	if problems > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
