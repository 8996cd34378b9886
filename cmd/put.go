package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/nodeinfo"
)

type PutOptions struct {
	*GlobalOptions
	Name string
	Now  func() time.Time
}

func NewCmdPut(g *GlobalOptions) *cobra.Command {
	o := &PutOptions{GlobalOptions: g, Now: time.Now}
	return &cobra.Command{
		Use:   "put <name>",
		Short: "从标准输入读取 node info 并写入远程",
		Long: `从标准输入读取完整的 node info JSON, 刷新 last_modified 后写入远程。
用法示例:
nij cat local | jq '.hostname = "new"' | nij put local`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Name = args[0]
			return o.Run(cmd)
		},
	}
}

func (o *PutOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	loc, err := env.Resolve(o.Name)
	if errors.Is(err, config.ErrNoRemote) {
		return &ExitError{Code: 1, Err: fmt.Errorf("远程 %s 不存在", o.Name)}
	}
	if err != nil {
		return err
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := nodeinfo.Parse(data)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Data is not valid JSON.")
		return &ExitError{Code: 1}
	}
	if err := doc.Touch(o.Now()); err != nil {
		return err
	}
	return env.Transport.Write(cmd.Context(), loc, doc.Pretty())
}
