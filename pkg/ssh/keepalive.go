package ssh

import (
	"context"
	"time"
)

// keepAliveConn 是心跳需要的连接方法, *ssh.Client 满足该接口
type keepAliveConn interface {
	SendRequest(name string, wantReply bool, payload []byte) (bool, []byte, error)
	Close() error
}

// StartKeepAlive 开启一个协程，定期向 SSH Server 发送心跳, ctx 结束时退出
// 心跳失败时关闭连接并调用 fallback
func StartKeepAlive(ctx context.Context, conn keepAliveConn, interval time.Duration, fallback func(err error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}
			// wantReply = true: 服务器挂了或网络断了时 SendRequest 会报错
			_, _, err := conn.SendRequest("keepalive@openssh.com", true, nil)
			if err != nil {
				conn.Close()
				if fallback != nil {
					fallback(err)
				}
				return
			}
		}
	}()
}
