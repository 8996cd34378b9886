package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wentf9/nij/pkg/config"
)

// ResolvePaths 命令行参数优先, 否则使用默认路径
func ResolvePaths(registryFlag, settingsFlag string) (registryPath, settingsPath string) {
	registryPath, settingsPath = registryFlag, settingsFlag
	if registryPath == "" {
		registryPath = config.DefaultRegistryPath()
	}
	if settingsPath == "" {
		settingsPath = config.DefaultSettingsPath()
	}
	return expandHomeDir(registryPath), expandHomeDir(settingsPath)
}

// FindNodeInfoFile 返回第一个已存在的常见 nodeinfo.json 路径
func FindNodeInfoFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "www", "nodeinfo.json"))
	}
	candidates = append(candidates, "/srv/http/nodeinfo.json", "/var/www/nodeinfo.json")
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
