package utils

import (
	"fmt"

	"github.com/wentf9/nij/pkg/config"
	"github.com/wentf9/nij/pkg/executor"
	"github.com/wentf9/nij/pkg/location"
	"github.com/wentf9/nij/pkg/ssh"
	"github.com/wentf9/nij/pkg/transport"
)

// Env 是命令执行期间共享的状态: 注册表、设置和传输层
// 每个进程加载一次, 通过参数显式传递
type Env struct {
	Settings  config.Settings
	Store     config.Store
	Registry  *config.Registry
	Exec      executor.Executor
	Transport transport.Transport

	connector *ssh.Connector
}

func LoadEnv(registryPath, settingsPath string) (*Env, error) {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("加载设置文件 %s 失败: %w", settingsPath, err)
	}
	store := config.NewDefaultStore(registryPath)
	reg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("加载注册表 %s 失败: %w", registryPath, err)
	}
	exec := executor.NewLocalExecutor()
	connector := ssh.NewConnector()
	connector.KeepAlive = settings.SSHKeepAlive
	return &Env{
		Settings:  settings,
		Store:     store,
		Registry:  reg,
		Exec:      exec,
		Transport: transport.NewDefault(exec, settings, connector),
		connector: connector,
	}, nil
}

// SaveRegistry 持久化注册表
func (e *Env) SaveRegistry() error {
	if err := e.Store.Save(e.Registry); err != nil {
		return fmt.Errorf("保存注册表失败: %w", err)
	}
	return nil
}

// Resolve 返回远程的位置
func (e *Env) Resolve(name string) (location.Location, error) {
	return e.Registry.Resolve(name)
}

// Close 关闭缓存的 ssh 连接
func (e *Env) Close() {
	if e.connector != nil {
		e.connector.CloseAll()
	}
}
