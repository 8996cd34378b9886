package transport

import (
	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/ssh"
)

// NewDefault 注册全部内置后端: 本地文件, scp/ssh (外部 ssh 命令), sftp (原生连接)
func NewDefault(exec executor.Executor, settings config.Settings, connector *ssh.Connector) *Mux {
	m := NewMux()
	m.Register(Local{}, location.SchemeLocal)
	m.Register(&Shell{Exec: exec, Command: settings.SSHCommand, Args: settings.SSHArgs},
		location.SchemeSCP, location.SchemeSSH)
	if connector != nil {
		m.Register(&SFTP{Connector: connector}, location.SchemeSFTP)
	}
	return m
}
