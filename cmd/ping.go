package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	ping "github.com/prometheus-community/pro-bing"
	"github.com/spf13/cobra"
	"github.com/wentf9/nij/pkg/runner"
	"github.com/wentf9/nij/pkg/session"
)

var errNoIP = errors.New("node info 中没有 ip")

type PingOptions struct {
	*GlobalOptions
	Patterns   []string
	Count      int
	Timeout    time.Duration
	Port       uint16
	Privileged bool
	// probe 在测试中会被替换
	probe func(ctx context.Context, ip string) (string, error)
}

func NewCmdPing(g *GlobalOptions) *cobra.Command {
	o := &PingOptions{GlobalOptions: g, Count: 3, Timeout: 5 * time.Second}
	o.probe = o.ping
	cmd := &cobra.Command{
		Use:   "ping [<name>...]",
		Short: "检查远程 node info 中的 cjdns ip 是否可达",
		Long: `读取远程的 node info, 对其中的 ip 发送 ICMP Ping,
指定 --port 时改为检查该 TCP 端口是否开放。
注意: 在 Linux 上默认使用非特权 ICMP (需要 net.ipv4.ping_group_range 允许), 可用 --privileged 切换为 raw socket。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Patterns = args
			return o.Run(cmd)
		},
	}
	cmd.Flags().IntVarP(&o.Count, "count", "c", o.Count, "ICMP 包数量")
	cmd.Flags().DurationVarP(&o.Timeout, "timeout", "t", o.Timeout, "每个远程的超时时间")
	cmd.Flags().Uint16VarP(&o.Port, "port", "p", 0, "检查 TCP 端口而不是 ICMP")
	cmd.Flags().BoolVar(&o.Privileged, "privileged", false, "使用 raw socket 发送 ICMP (需要 root)")
	return cmd
}

func (o *PingOptions) Run(cmd *cobra.Command) error {
	env, err := o.Env()
	if err != nil {
		return err
	}
	names, err := selectRemotes(env, o.Patterns)
	if err != nil {
		return err
	}
	var mu sync.Mutex
	lines := make(map[string]string, len(names))
	results := runner.RunEach(cmd.Context(), names, o.Concurrency(), func(ctx context.Context, name string) error {
		loc, err := env.Resolve(name)
		if err != nil {
			return err
		}
		doc, err := session.FetchDocument(ctx, env.Transport, loc)
		if err != nil {
			return err
		}
		if doc == nil || doc.IP() == "" {
			return errNoIP
		}
		summary, err := o.probe(ctx, doc.IP())
		if err != nil {
			return fmt.Errorf("%s: %w", doc.IP(), err)
		}
		mu.Lock()
		lines[name] = fmt.Sprintf("%s (%s): %s", name, doc.IP(), summary)
		mu.Unlock()
		return nil
	})
	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), lines[r.Name])
		}
	}
	if reportFailures(cmd.ErrOrStderr(), runner.Failed(results)) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func (o *PingOptions) ping(ctx context.Context, ip string) (string, error) {
	if o.Port != 0 {
		d := net.Dialer{Timeout: o.Timeout}
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(int(o.Port))))
		if err != nil {
			return "", fmt.Errorf("端口 %d 已关闭或被过滤: %w", o.Port, err)
		}
		conn.Close()
		return fmt.Sprintf("端口 %d 是开放的", o.Port), nil
	}

	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return "", fmt.Errorf("创建pinger失败: %w", err)
	}
	pinger.SetPrivileged(o.Privileged)
	pinger.Count = o.Count
	pinger.Interval = 500 * time.Millisecond
	pinger.Timeout = o.Timeout
	if err := pinger.RunWithContext(ctx); err != nil {
		return "", err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return "", fmt.Errorf("%d 个包已发送, 全部丢失", stats.PacketsSent)
	}
	return fmt.Sprintf("%d/%d 个包已接收, 最小/平均/最大 = %v/%v/%v",
		stats.PacketsRecv, stats.PacketsSent, stats.MinRtt, stats.AvgRtt, stats.MaxRtt), nil
}
