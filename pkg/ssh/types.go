package ssh

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

const DefaultPort = 22

// Dialer 定义网络连接行为的接口
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// Endpoint 描述一个 ssh 目标
type Endpoint struct {
	User string
	Host string
	Port uint16
}

// Addr 返回 host:port, 端口为 0 时使用 22
func (e Endpoint) Addr() string {
	port := e.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(int(port)))
}

// Key 作为连接缓存的键
func (e Endpoint) Key() string {
	return fmt.Sprintf("%s@%s", e.User, e.Addr())
}
