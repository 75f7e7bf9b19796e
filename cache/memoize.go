package cache

import (
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/logging"
)

// Info 是 TableFunc 的缓存信息。
type Info struct {
	Hits     int64
	Misses   int64
	MaxSize  int // <= 0 表示不限
	CurrSize int
}

// TableFunc 是以表格内容指纹为 key 缓存结果的函数包装。
// 同一张表（内容相同即可，不要求同一个指针）只计算一次；出错的结果不缓存。
type TableFunc[V any] struct {
	fn  func(*dataset.Table) (V, error)
	lru *LRU[V]
}

// Memoize 包装 fn，最多缓存 capacity 个结果。
func Memoize[V any](capacity int, fn func(*dataset.Table) (V, error)) *TableFunc[V] {
	return &TableFunc[V]{fn: fn, lru: NewLRU[V](capacity)}
}

func (f *TableFunc[V]) Call(t *dataset.Table) (V, error) {
	key := dataset.Fingerprint(t)
	if v, ok := f.lru.Get(key); ok {
		return v, nil
	}
	v, err := f.fn(t)
	if err != nil {
		return v, err
	}
	if f.lru.Add(key, v) {
		logging.Debug().Int("capacity", f.lru.Cap()).Msg("table cache evicted least recently used entry")
	}
	return v, nil
}

func (f *TableFunc[V]) Info() Info {
	s := f.lru.Stats()
	return Info{Hits: s.Hits, Misses: s.Misses, MaxSize: f.lru.Cap(), CurrSize: f.lru.Len()}
}

// Clear 清空缓存与统计。
func (f *TableFunc[V]) Clear() {
	f.lru.Purge()
}
