package config

import (
	"fmt"

	"github.com/wentf9/nij/pkg/location"
)

// Resolve 返回远程对应的位置
func (r *Registry) Resolve(name string) (location.Location, error) {
	r.mu.RLock()
	i, ok := r.index[name]
	var path string
	if ok {
		path = r.entries[i].Path
	}
	r.mu.RUnlock()
	if !ok {
		return location.Location{}, fmt.Errorf("%w: %s", ErrNoRemote, name)
	}
	loc, err := location.Parse(path)
	if err != nil {
		return location.Location{}, fmt.Errorf("remote %s: %w", name, err)
	}
	return loc, nil
}

// Has 判断远程是否存在
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[name]
	return ok
}

// Path 返回远程的原始位置字符串
func (r *Registry) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.entries[i].Path, true
}

// Add 添加新远程,名称已存在时返回 ErrRemoteExists,不会覆盖
func (r *Registry) Add(name string, loc location.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrRemoteExists, name)
	}
	r.append(name, loc.String())
	return nil
}

// Upsert 设置远程的位置,返回位置是否发生变化(用于 init: 未变化时无需保存)
func (r *Registry) Upsert(name string, loc location.Location) (bool, error) {
	if err := loc.Validate(); err != nil {
		return false, err
	}
	path := loc.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[name]; ok {
		if r.entries[i].Path == path {
			return false, nil
		}
		r.entries[i].Path = path
		return true, nil
	}
	r.append(name, path)
	return true, nil
}

// Remove 删除远程,任何一个名称不存在时不做修改并返回 ErrNoRemote
func (r *Registry) Remove(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.index[name]; !ok {
			return fmt.Errorf("%w: %s", ErrNoRemote, name)
		}
		drop[name] = true
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !drop[e.Name] {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	r.reindex()
	return nil
}

// Rename 重命名远程,新名称已存在时返回 ErrRemoteExists
func (r *Registry) Rename(from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoRemote, from)
	}
	if _, ok := r.index[to]; ok {
		return fmt.Errorf("%w: %s", ErrRemoteExists, to)
	}
	// 新名称追加到末尾,与 JSON 对象删除再添加键的顺序一致
	path := r.entries[i].Path
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.reindex()
	r.append(to, path)
	return nil
}

// List 按插入顺序返回全部条目
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Names 按插入顺序返回全部名称
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len 返回远程数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) append(name, path string) {
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Path: path})
}

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.entries))
	for i, e := range r.entries {
		r.index[e.Name] = i
	}
}
