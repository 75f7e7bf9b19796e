// Package cache 提供有界 LRU 缓存，以及按表格指纹缓存计算结果的 Memoize。
package cache

import "sync"

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

// Stats 是缓存命中统计。
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// LRU 是线程安全的最近最少使用缓存，Get/Add/Remove 均为 O(1)。
// capacity <= 0 表示不限容量。
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]

	// 哨兵节点：head.next 最新，tail.prev 最旧
	head *entry[V]
	tail *entry[V]

	stats Stats
}

func NewLRU[V any](capacity int) *LRU[V] {
	c := &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V], max(capacity, 0)),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get 读取并把命中的条目移到最前。
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.moveToFront(e)
		c.stats.Hits++
		return e.value, true
	}
	c.stats.Misses++
	var zero V
	return zero, false
}

// Peek 读取但不改变访问顺序，也不计入统计。
func (c *LRU[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Add 写入或更新条目，超出容量时淘汰最久未使用的条目，返回是否发生了淘汰。
func (c *LRU[V]) Add(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.moveToFront(e)
		return false
	}

	e := &entry[V]{key: key, value: value}
	c.addToFront(e)
	c.items[key] = e

	evicted := false
	for c.capacity > 0 && len(c.items) > c.capacity {
		c.removeEntry(c.tail.prev)
		c.stats.Evictions++
		evicted = true
	}
	return evicted
}

// Remove 删除条目，返回条目是否存在。
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cap 返回容量，<= 0 表示不限。
func (c *LRU[V]) Cap() int { return c.capacity }

// Keys 按最近使用到最久未使用的顺序返回全部 key。
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Purge 清空条目并重置统计。
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], max(c.capacity, 0))
	c.head.next = c.tail
	c.tail.prev = c.head
	c.stats = Stats{}
}

func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// 以下方法调用时须持有锁

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
