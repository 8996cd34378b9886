package sftp

import (
	"fmt"

	"github.com/pkg/sftp"
	"github.com/wentf9/nij/pkg/ssh"
)

// Client 是建立在缓存 ssh 连接上的一个 sftp 会话
type Client struct {
	sftpClient *sftp.Client
}

// NewClient 基于现有的 SSH 连接创建一个 SFTP 客户端
// 底层连接由 ssh.Connector 缓存, Close 不会关闭它
func NewClient(sshCli *ssh.Client) (*Client, error) {
	client, err := sftp.NewClient(sshCli.SSHClient())
	if err != nil {
		return nil, fmt.Errorf("failed to create sftp subsystem: %w", err)
	}
	return &Client{sftpClient: client}, nil
}

// Close 关闭 SFTP 会话
func (c *Client) Close() error {
	return c.sftpClient.Close()
}
