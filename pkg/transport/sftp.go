package transport

import (
	"context"
	"errors"
	"io/fs"

	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/sftp"
	"github.com/wentf9/nij/pkg/ssh"
)

// SFTP 通过原生 ssh 连接的 sftp 子系统读写文件, 连接由 Connector 复用
type SFTP struct {
	Connector *ssh.Connector
}

func (s *SFTP) open(ctx context.Context, loc location.Location) (*sftp.Client, error) {
	cli, err := s.Connector.Connect(ctx, ssh.Endpoint{User: loc.User, Host: loc.Host, Port: loc.Port})
	if err != nil {
		return nil, err
	}
	return sftp.NewClient(cli)
}

func (s *SFTP) Read(ctx context.Context, loc location.Location) ([]byte, error) {
	c, err := s.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	data, err := c.ReadFile(ctx, loc.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *SFTP) Write(ctx context.Context, loc location.Location, data []byte) error {
	c, err := s.open(ctx, loc)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.WriteFile(ctx, loc.Path, data)
}
