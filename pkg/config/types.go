package config

import (
	"errors"
	"sync"
)

var (
	ErrRemoteExists = errors.New("remote already exists")
	ErrNoRemote     = errors.New("no such remote")
)

// Entry 是注册表中的一项: 远程名称 -> 位置字符串
type Entry struct {
	Name string `json:"-"`
	Path string `json:"path"`
}

// Registry 对应注册表文件 {"infos": {<name>: {"path": <location>}}}
// 保持插入顺序,每次修改后由调用方通过 Store 持久化
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
	// raw 是读入时的完整文件内容,保存时只替换 infos,保留其他顶层键
	raw []byte
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}
