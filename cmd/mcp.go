package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wentf9/nij/cmd/version"
	"github.com/wentf9/nij/pkg/mcp"
)

func NewCmdMcp(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "在 stdio 上运行 MCP 服务, 提供只读的 list/cat/check 工具",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.Env()
			if err != nil {
				return err
			}
			s := mcp.NewServer(version.Short(), env.Registry, env.Transport, g.Concurrency())
			return s.Run(cmd.Context())
		},
	}
}
