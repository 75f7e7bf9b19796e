// Package store 提供 core.Store 的实现：MemoryStore（进程内，支持 TTL）与 RedisStore。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	err := libffm.SaveEncoder(ctx, s, "encoder:ml-100k", enc)
package store

import "github.com/rushteam/recodata/core"

// ErrNotFound 等同于 core.ErrStoreNotFound。
var ErrNotFound = core.ErrStoreNotFound

func expiration(ttl []int) int {
	if len(ttl) > 0 && ttl[0] > 0 {
		return ttl[0]
	}
	return 0
}
