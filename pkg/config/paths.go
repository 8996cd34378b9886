package config

import (
	"os"
	"path/filepath"
)

const (
	RegistryFileName = "nij.json"
	SettingsFileName = "nij.yaml"
)

// ConfigDir 返回配置目录: $XDG_CONFIG_HOME,否则 ~/.config
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config"
	}
	return filepath.Join(home, ".config")
}

// DefaultRegistryPath 返回注册表路径,可通过 NIJ_CONFIG 覆盖
func DefaultRegistryPath() string {
	if p := os.Getenv("NIJ_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), RegistryFileName)
}

// DefaultSettingsPath 返回设置文件路径
func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), SettingsFileName)
}
