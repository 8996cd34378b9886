package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
)

var errNoInfo = errors.New("没有 node info, 请先运行 'nij init'")

type TouchOptions struct {
	*GlobalOptions
	Patterns []string
	Now      func() time.Time
}

func NewCmdTouch(g *GlobalOptions) *cobra.Command {
	o := &TouchOptions{GlobalOptions: g, Now: time.Now}
	return &cobra.Command{
		Use:   "touch [<name>...]",
		Short: "刷新 last_modified 并写回",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			return o.Run(cmd)
		},
	}
}

func (o *TouchOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := selectRemotes(env, o.Patterns)
	if err != nil {
		return err
	}
	onResult, finish := utils.NewProgress(cmd.ErrOrStderr(), len(names), "touching")
	results := runner.RunEach(cmd.Context(), names, o.Concurrency(), func(ctx context.Context, name string) error {
		loc, err := env.Resolve(name)
		if err != nil {
			return err
		}
		doc, err := session.FetchDocument(ctx, env.Transport, loc)
		if err != nil {
			return err
		}
		if doc == nil {
			return errNoInfo
		}
		if err := doc.Touch(o.Now()); err != nil {
			return err
		}
		return env.Transport.Write(ctx, loc, doc.Pretty())
	}, runner.WithResultCallback(onResult))
	finish()

	if reportFailures(cmd.ErrOrStderr(), runner.Failed(results)) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}
