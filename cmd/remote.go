package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/location"
)

type ListOptions struct {
	*GlobalOptions
}

func NewCmdList(g *GlobalOptions) *cobra.Command {
	o := &ListOptions{GlobalOptions: g}
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "列出所有远程及其位置",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd)
		},
	}
}

func (o *ListOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	for _, e := range env.Registry.List() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Name, e.Path)
	}
	return nil
}

type AddOptions struct {
	*GlobalOptions
	Name     string
	Location location.Location
}

func NewCmdAdd(g *GlobalOptions) *cobra.Command {
	o := &AddOptions{GlobalOptions: g}
	return &cobra.Command{
		Use:   "add <name> <location>",
		Short: "添加一个远程",
		Long: `添加一个远程。名称已存在时报错,不会覆盖。
用法示例:
nij add local ~/www/nodeinfo.json
nij add eu/paris scp://root@paris.example.org//srv/http/nodeinfo.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(args); err != nil {
				return err
			}
			return o.Run()
		},
	}
}

func (o *AddOptions) Complete(args []string) error {
	o.Name = args[0]
	loc, err := location.Parse(args[1])
	if err != nil {
		return fmt.Errorf("无效的位置: %w", err)
	}
	o.Location = loc
	return nil
}

func (o *AddOptions) Run() error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	if err := env.Registry.Add(o.Name, o.Location); err != nil {
		if errors.Is(err, config.ErrRemoteExists) {
			return &ExitError{Code: 1, Err: fmt.Errorf("远程 %s 已存在", o.Name)}
		}
		return err
	}
	return env.SaveRegistry()
}

type RemoveOptions struct {
	*GlobalOptions
	Patterns []string
}

func NewCmdRemove(g *GlobalOptions) *cobra.Command {
	o := &RemoveOptions{GlobalOptions: g}
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove"},
		Short:   "删除远程 (支持 glob 模式)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			return o.Run(cmd)
		},
	}
}

func (o *RemoveOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := env.Registry.Filter(o.Patterns)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("没有匹配的远程: %s", strings.Join(o.Patterns, ", "))}
	}
	if err := env.Registry.Remove(names...); err != nil {
		return err
	}
	return env.SaveRegistry()
}

type RenameOptions struct {
	*GlobalOptions
	From, To string
}

func NewCmdRename(g *GlobalOptions) *cobra.Command {
	o := &RenameOptions{GlobalOptions: g}
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "重命名远程",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.From, o.To = args[0], args[1]
			return o.Run()
		},
	}
}

func (o *RenameOptions) Run() error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	err = env.Registry.Rename(o.From, o.To)
	switch {
	case errors.Is(err, config.ErrNoRemote):
		return &ExitError{Code: 1, Err: fmt.Errorf("远程 %s 不存在", o.From)}
	case errors.Is(err, config.ErrRemoteExists):
		return &ExitError{Code: 1, Err: fmt.Errorf("远程 %s 已存在", o.To)}
	case err != nil:
		return err
	}
	return env.SaveRegistry()
}
