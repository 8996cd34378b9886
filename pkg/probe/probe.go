// Package probe 从本机环境收集 node info 的初始值
package probe

import (
	"context"
	"net/url"
	"os"
	"os/user"
	"regexp"
	"strings"
	"sync"

	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/nodeinfo"
	"golang.org/x/sync/errgroup"
)

var (
	keyserverRe  = regexp.MustCompile(`(?m)^keyserver:0:.*?"(.*)$`)
	defaultKeyRe = regexp.MustCompile(`(?m)^default-key:.*?"([0-9a-fA-F]+)$`)
	// 旧版 gpg 输出 "Key fingerprint = XXXX XXXX ...", 新版单独一行
	fingerprintRe = regexp.MustCompile(`(?m)(?:Key fingerprint = |^\s+)([0-9A-F]{4}(?: ?[0-9A-F]{4}){4} {0,2}[0-9A-F]{4}(?: ?[0-9A-F]{4}){4})\s*$`)
	tunAddrRe     = regexp.MustCompile(`(?:addr: ?|inet6 )(fc[0-9a-f:]*)`)
)

// Defaults 是探测到的值, 探测失败的字段为空
type Defaults struct {
	Hostname       string
	IP             string
	ContactName    string
	ContactEmail   string
	PGPKeyserver   string
	PGPFingerprint string
}

type Prober struct {
	Exec executor.Executor
	// TunInterface 是 cjdns 使用的网卡, 默认 tun0
	TunInterface string
	CurrentUser  func() (*user.User, error)
	Hostname     func() (string, error)
}

func New(exec executor.Executor) *Prober {
	return &Prober{
		Exec:         exec,
		TunInterface: "tun0",
		CurrentUser:  user.Current,
		Hostname:     os.Hostname,
	}
}

// Probe 并发执行所有探测, 单个探测失败只会留空对应字段
func (p *Prober) Probe(ctx context.Context) Defaults {
	var (
		mu sync.Mutex
		d  Defaults
	)
	set := func(fn func(*Defaults)) {
		mu.Lock()
		fn(&d)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if u, err := p.CurrentUser(); err == nil {
			// gecos 字段逗号之后是房间号、电话等
			name, _, _ := strings.Cut(u.Name, ",")
			set(func(d *Defaults) { d.ContactName = strings.TrimSpace(name) })
		}
		return nil
	})
	g.Go(func() error {
		if out, ok := p.output(ctx, "git", "config", "user.email"); ok {
			set(func(d *Defaults) { d.ContactEmail = out })
		}
		return nil
	})
	g.Go(func() error {
		if h, err := p.Hostname(); err == nil {
			set(func(d *Defaults) { d.Hostname = h })
		}
		return nil
	})
	g.Go(func() error {
		keyserver, fingerprint := p.probePGP(ctx)
		set(func(d *Defaults) {
			d.PGPKeyserver = keyserver
			d.PGPFingerprint = fingerprint
		})
		return nil
	})
	g.Go(func() error {
		out, ok := p.output(ctx, "ifconfig", p.TunInterface)
		if !ok {
			return nil
		}
		if m := tunAddrRe.FindStringSubmatch(out); m != nil {
			set(func(d *Defaults) { d.IP = m[1] })
		}
		return nil
	})
	_ = g.Wait()
	return d
}

func (p *Prober) probePGP(ctx context.Context) (keyserver, fingerprint string) {
	out, ok := p.output(ctx, "gpgconf", "--list-options", "gpg")
	if !ok {
		return "", ""
	}
	if m := keyserverRe.FindStringSubmatch(out); m != nil {
		if ks, err := url.PathUnescape(m[1]); err == nil {
			keyserver = ks
		} else {
			keyserver = m[1]
		}
	}
	m := defaultKeyRe.FindStringSubmatch(out)
	if m == nil {
		return keyserver, ""
	}
	fingerprint = m[1]
	if out, ok := p.output(ctx, "gpg", "--fingerprint", fingerprint); ok {
		if fm := fingerprintRe.FindStringSubmatch(out); fm != nil {
			fingerprint = strings.ReplaceAll(fm[1], " ", "")
		}
	}
	return keyserver, fingerprint
}

// output 执行命令, 只有退出码为 0 时才返回去除空白后的标准输出
func (p *Prober) output(ctx context.Context, name string, args ...string) (string, bool) {
	res, err := p.Exec.Run(ctx, executor.Command{Name: name, Args: args})
	if err != nil || res.ExitCode != 0 {
		logger.Logger.Debug("probe command failed", "command", name, "exit", res.ExitCode, "error", err)
		return "", false
	}
	return strings.TrimSpace(string(res.Stdout)), true
}

// Document 将探测结果转换为文档, 只包含非空字段
func (d Defaults) Document() *nodeinfo.Document {
	doc := nodeinfo.New()
	setIf := func(path, value string) {
		if value != "" {
			_ = doc.Set(path, value)
		}
	}
	setIf("hostname", d.Hostname)
	setIf("ip", d.IP)
	setIf("contact.name", d.ContactName)
	setIf("contact.email", d.ContactEmail)
	setIf("pgp.keyserver", d.PGPKeyserver)
	setIf("pgp.fingerprint", d.PGPFingerprint)
	return doc
}
