// Package concurrent 提供按键分片加锁的并发 Map
package concurrent

import (
	"hash/fnv"
	"sync"
)

const defaultShardCount = 16

type shard[K comparable, V any] struct {
	sync.RWMutex
	items map[K]V
}

// Map 将键按哈希分到多个分片, 每个分片独立加锁
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint32
}

// NewMap 创建并发 Map, hash 决定键所在的分片
func NewMap[K comparable, V any](hash func(K) uint32) *Map[K, V] {
	m := &Map[K, V]{shards: make([]*shard[K, V], defaultShardCount), hash: hash}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

// HashString 是字符串键的 FNV-1a 哈希
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func (m *Map[K, V]) shardOf(key K) *shard[K, V] {
	return m.shards[m.hash(key)%uint32(len(m.shards))]
}

func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardOf(key)
	s.Lock()
	s.items[key] = value
	s.Unlock()
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardOf(key)
	s.RLock()
	defer s.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (m *Map[K, V]) Remove(key K) {
	s := m.shardOf(key)
	s.Lock()
	delete(s.items, key)
	s.Unlock()
}

// Len 返回元素数量, 并发写入时只是近似值
func (m *Map[K, V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.RLock()
		n += len(s.items)
		s.RUnlock()
	}
	return n
}

// Range 逐个分片遍历, fn 返回 false 时停止
// 遍历时持有当前分片的读锁, fn 中不能写入同一个 Map
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.RUnlock()
				return
			}
		}
		s.RUnlock()
	}
}

func (m *Map[K, V]) Clear() {
	for _, s := range m.shards {
		s.Lock()
		clear(s.items)
		s.Unlock()
	}
}
