package ssh

import (
	"github.com/wentf9/nij/pkg/logger"
	"golang.org/x/crypto/ssh"
)

type Client struct {
	sshClient *ssh.Client
	endpoint  Endpoint
}

func newClient(raw *ssh.Client, ep Endpoint) *Client {
	return &Client{sshClient: raw, endpoint: ep}
}

// Close 关闭连接
func (c *Client) Close() error {
	logger.Logger.Debug("closing ssh connection", "addr", c.endpoint.Addr())
	return c.sshClient.Close()
}

// SSHClient 暴露底层的 ssh.Client (供 sftp 子系统使用)
func (c *Client) SSHClient() *ssh.Client {
	return c.sshClient
}
