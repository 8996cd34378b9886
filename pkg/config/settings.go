package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEditor       = "vi"
	DefaultSSHCommand   = "ssh"
	DefaultSSHKeepAlive = 30 * time.Second
)

// Settings 对应可选的 yaml 设置文件
type Settings struct {
	Editor          string   `yaml:"editor,omitempty"`            // $VISUAL/$EDITOR 都未设置时使用
	SSHCommand      string   `yaml:"ssh_command,omitempty"`       // 远程 shell 传输使用的 ssh 程序
	SSHArgs         []string `yaml:"ssh_args,omitempty"`          // 放在目标主机之前的 ssh 参数
	Concurrency     int      `yaml:"concurrency,omitempty"`       // 并发远程数, 0 表示不限制
	LogLevel        string   `yaml:"log_level,omitempty"`         // debug/info/warn/error
	MaxEditAttempts int      `yaml:"max_edit_attempts,omitempty"` // 编辑重试上限, 0 表示由用户决定
	// SSHKeepAlive 是 sftp 连接的心跳间隔, 例如 "15s"; 负数关闭心跳
	SSHKeepAlive time.Duration `yaml:"ssh_keepalive,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Editor:       DefaultEditor,
		SSHCommand:   DefaultSSHCommand,
		SSHArgs:      []string{"-qT"},
		SSHKeepAlive: DefaultSSHKeepAlive,
	}
}

// LoadSettings 读取设置文件,文件不存在时返回默认值,缺省字段用默认值补齐
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return s, err
	}
	if loaded.Editor != "" {
		s.Editor = loaded.Editor
	}
	if loaded.SSHCommand != "" {
		s.SSHCommand = loaded.SSHCommand
	}
	if loaded.SSHArgs != nil {
		s.SSHArgs = loaded.SSHArgs
	}
	s.Concurrency = max(loaded.Concurrency, 0)
	s.LogLevel = loaded.LogLevel
	s.MaxEditAttempts = max(loaded.MaxEditAttempts, 0)
	if loaded.SSHKeepAlive != 0 {
		s.SSHKeepAlive = max(loaded.SSHKeepAlive, 0)
	}
	return s, nil
}

// EditorCommand 按 $VISUAL、$EDITOR、设置文件、默认值的顺序选择编辑器
func (s Settings) EditorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if s.Editor != "" {
		return s.Editor
	}
	return DefaultEditor
}
