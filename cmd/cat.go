package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/pkg/nodeinfo"
)

type CatOptions struct {
	*GlobalOptions
	Patterns []string
	Output   string
}

func NewCmdCat(g *GlobalOptions) *cobra.Command {
	o := &CatOptions{GlobalOptions: g, Output: "json"}
	cmd := &cobra.Command{
		Use:   "cat [<name>...]",
		Short: "输出远程上的 node info",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd)
		},
	}
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "输出格式: json|yaml")
	return cmd
}

func (o *CatOptions) Validate() error {
	if o.Output != "json" && o.Output != "yaml" {
		return fmt.Errorf("不支持的输出格式: %s", o.Output)
	}
	return nil
}

func (o *CatOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := selectRemotes(env, o.Patterns)
	if err != nil {
		return err
	}
	items, failed := fetchDocuments(cmd.Context(), env, names, o.Concurrency(), cmd.ErrOrStderr(), "fetching")
	out := cmd.OutOrStdout()
	for i, it := range items {
		data, err := render(it.Value, o.Output)
		if err != nil {
			return fmt.Errorf("%s: %w", it.Name, err)
		}
		if o.Output == "yaml" && i > 0 {
			fmt.Fprintln(out, "---")
		}
		out.Write(data)
	}
	if reportFailures(cmd.ErrOrStderr(), failed) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

// render 格式化文档, 不存在的文档输出 null
func render(doc *nodeinfo.Document, format string) ([]byte, error) {
	if doc == nil {
		return []byte("null\n"), nil
	}
	if format == "yaml" {
		return doc.YAML()
	}
	return doc.Pretty(), nil
}
