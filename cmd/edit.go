package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/prompt"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
	"github.com/wentf9/nij/pkg/validator"
)

type EditOptions struct {
	*GlobalOptions
	Patterns []string
	// newEditor 在测试中会被替换
	newEditor func(env *utils.Env) session.Editor
}

func NewCmdEdit(g *GlobalOptions) *cobra.Command {
	o := &EditOptions{GlobalOptions: g, newEditor: defaultEditor}
	return &cobra.Command{
		Use:   "edit [<name>...]",
		Short: "用编辑器修改一个或多个远程上的 node info",
		Long: `读取所有选中远程上的 node info, 一次性在编辑器中打开。
编辑器按 $VISUAL、$EDITOR、设置文件中的 editor、vi 的顺序选择。
保存后未修改或清空的文件不会写回; 无效的 JSON 可以重新编辑。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			return o.Run(cmd)
		},
	}
}

func defaultEditor(env *utils.Env) session.Editor {
	return &session.CommandEditor{Command: env.Settings.EditorCommand(), Exec: env.Exec}
}

func (o *EditOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := selectRemotes(env, o.Patterns)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	ctx := cmd.Context()

	onResult, finish := utils.NewProgress(cmd.ErrOrStderr(), len(names), "fetching")
	items, failed := runner.Gather(ctx, names, o.Concurrency(), func(ctx context.Context, name string) (*session.Session, error) {
		loc, err := env.Resolve(name)
		if err != nil {
			return nil, err
		}
		return session.Fetch(ctx, env.Transport, name, loc)
	}, runner.WithResultCallback(onResult))
	finish()
	problems := reportFailures(cmd.ErrOrStderr(), failed)
	if len(items) == 0 {
		return &ExitError{Code: 1}
	}

	sessions := make([]*session.Session, len(items))
	for i, it := range items {
		sessions[i] = it.Value
	}
	batch := &session.Batch{
		Editor:      o.newEditor(env),
		Prompter:    prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()),
		Transport:   env.Transport,
		Validator:   validator.Default(),
		Out:         cmd.OutOrStdout(),
		ErrOut:      cmd.ErrOrStderr(),
		TempDir:     os.TempDir(),
		MaxAttempts: env.Settings.MaxEditAttempts,
	}
	if err := batch.Run(ctx, sessions); err != nil {
		if errors.Is(err, prompt.ErrInterrupted) {
			return err
		}
		return &ExitError{Code: 1, Err: err}
	}
	logger.Logger.Debug("edit finished", "states", session.Summary(sessions))
	for _, s := range sessions {
		if s.State == session.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", s.Remote, s.Err)
			problems++
		}
	}
	if problems > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
