package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/utils/concurrent"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/sync/singleflight"
)

// Connector 负责创建并缓存 SSH 连接
type Connector struct {
	Auth           []AuthMethod
	KnownHostsPath string
	Dialer         Dialer
	Timeout        time.Duration
	// KeepAlive 大于 0 时为每个连接启动心跳
	KeepAlive time.Duration

	// 连接池：缓存 user@host:port -> *ssh.Client
	clients *concurrent.Map[string, *ssh.Client]
	sf      singleflight.Group
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewConnector 使用默认认证方式和 ~/.ssh/known_hosts 创建 Connector
func NewConnector() *Connector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connector{
		Auth:    DefaultAuthMethods(),
		Dialer:  &net.Dialer{Timeout: 10 * time.Second},
		Timeout: 15 * time.Second,
		clients: concurrent.NewMap[string, *ssh.Client](concurrent.HashString),
		ctx:     ctx,
		cancel:  cancel,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.KnownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
	}
	return c
}

// Connect 建立或复用到 ep 的连接
// 多个协程同时连接同一目标时只会握手一次
func (c *Connector) Connect(ctx context.Context, ep Endpoint) (*Client, error) {
	if ep.User == "" {
		ep.User = currentUser()
	}
	key := ep.Key()
	if cached, ok := c.clients.Get(key); ok {
		return newClient(cached, ep), nil
	}
	result, err, _ := c.sf.Do(key, func() (any, error) {
		if cached, ok := c.clients.Get(key); ok {
			return cached, nil
		}
		sshConfig, err := c.buildSSHConfig(ep.User)
		if err != nil {
			return nil, fmt.Errorf("failed to build ssh config for '%s': %w", key, err)
		}
		addr := ep.Addr()
		conn, err := c.Dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to dial '%s': %w", addr, err)
		}
		ncc, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("ssh handshake failed for '%s': %w", key, err)
		}
		raw := ssh.NewClient(ncc, chans, reqs)
		c.clients.Set(key, raw)
		logger.Logger.Debug("ssh connected", "target", key)
		if c.KeepAlive > 0 {
			StartKeepAlive(c.ctx, raw, c.KeepAlive, func(err error) {
				logger.Logger.Warn("ssh keepalive failed", "target", key, "error", err)
				c.clients.Remove(key)
			})
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return newClient(result.(*ssh.Client), ep), nil
}

// CloseAll 关闭所有缓存的连接 (在程序退出前调用)
func (c *Connector) CloseAll() {
	c.cancel()
	c.clients.Range(func(name string, client *ssh.Client) bool {
		client.Close()
		return true
	})
	c.clients.Clear()
}

func (c *Connector) buildSSHConfig(username string) (*ssh.ClientConfig, error) {
	auth, err := resolveAuth(c.Auth)
	if err != nil {
		return nil, err
	}
	hostKey, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}
	return &ssh.ClientConfig{
		User:            username,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.Timeout,
	}, nil
}

func (c *Connector) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.KnownHostsPath == "" {
		return nil, fmt.Errorf("known_hosts path not configured")
	}
	cb, err := knownhosts.New(c.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	return cb, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
