package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/wentf9/nij/cmd/utils"
	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/prompt"
)

// ExitError 携带进程退出码, Err 为 nil 时表示错误信息已经输出过
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeInterrupted 与 shell 对 SIGINT 的约定一致
const exitCodeInterrupted = 130

// GlobalOptions 是所有子命令共享的参数
type GlobalOptions struct {
	Debug        bool
	RegistryPath string
	SettingsPath string
	Jobs         int

	env *utils.Env
}

// loadEnv 在测试中会被替换
var loadEnv = func(g *GlobalOptions) (*utils.Env, error) {
	registryPath, settingsPath := utils.ResolvePaths(g.RegistryPath, g.SettingsPath)
	return utils.LoadEnv(registryPath, settingsPath)
}

// Env 按需加载注册表和设置, 每个进程只加载一次
func (g *GlobalOptions) Env() (*utils.Env, error) {
	if g.env != nil {
		return g.env, nil
	}
	env, err := loadEnv(g)
	if err != nil {
		return nil, err
	}
	if !g.Debug && env.Settings.LogLevel != "" {
		if !logger.SetLogLevel(env.Settings.LogLevel) {
			logger.Logger.Warn("unknown log level in settings", "level", env.Settings.LogLevel)
		}
	}
	g.env = env
	return env, nil
}

// Concurrency 返回并发远程数, 0 表示全部并行
func (g *GlobalOptions) Concurrency() int {
	if g.Jobs > 0 {
		return g.Jobs
	}
	if g.env != nil {
		return g.env.Settings.Concurrency
	}
	return 0
}

func (g *GlobalOptions) close() {
	if g.env != nil {
		g.env.Close()
	}
}

// NewRootCmd 创建完整的命令树
func NewRootCmd() *cobra.Command {
	return newRootCmd(&GlobalOptions{})
}

func newRootCmd(g *GlobalOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nij <command> [flags]",
		Short: "nij 管理多个节点上的 nodeinfo.json",
		Long: `nij 管理一组命名的远程,每个远程指向本地或远程主机上的 nodeinfo.json。
可以查看、校验、用编辑器修改并写回这些文件,支持同时操作多个远程。

位置格式:
  /path/to/nodeinfo.json            本地文件
  scp://[user@]host[:port]/path     通过 ssh 命令读写, 路径相对远端 home
  scp://host//abs/path              远端绝对路径
  sftp://[user@]host[:port]/path    通过内置 ssh/sftp 客户端读写`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.Debug {
				logger.SetLogLevel("debug")
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&g.Debug, "debug", false, "开启调试模式")
	rootCmd.PersistentFlags().StringVar(&g.RegistryPath, "config", "", "注册表文件路径 (默认 $XDG_CONFIG_HOME/nij.json)")
	rootCmd.PersistentFlags().StringVar(&g.SettingsPath, "settings", "", "设置文件路径 (默认 $XDG_CONFIG_HOME/nij.yaml)")
	rootCmd.PersistentFlags().IntVarP(&g.Jobs, "jobs", "j", 0, "同时操作的远程数量, 0 表示全部并行")

	rootCmd.AddGroup(
		&cobra.Group{ID: "manage", Title: "管理远程:"},
		&cobra.Group{ID: "edit", Title: "查看和编辑:"},
	)
	for _, c := range []*cobra.Command{
		NewCmdList(g), NewCmdAdd(g), NewCmdRemove(g), NewCmdRename(g), NewCmdCheck(g), NewCmdPing(g),
	} {
		c.GroupID = "manage"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		NewCmdInit(g), NewCmdTouch(g), NewCmdCat(g), NewCmdPut(g), NewCmdEdit(g),
	} {
		c.GroupID = "edit"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(NewCmdMcp(g), NewCmdVersion())
	return rootCmd
}

// Run 执行命令并返回退出码
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	g := &GlobalOptions{}
	defer g.close()
	rootCmd := newRootCmd(g)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return exitCode(rootCmd.ExecuteContext(ctx), out, errOut)
}

func exitCode(err error, out, errOut io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, prompt.ErrInterrupted) {
		fmt.Fprintln(out)
		return exitCodeInterrupted
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(errOut, "错误:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(errOut, "错误:", err)
	return 1
}

// Execute 由 main.main() 调用
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
