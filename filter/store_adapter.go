package filter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/recodata/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 列表以 JSON 字符串数组存放。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode blacklist %s: %w", key, err)
	}
	return ids, nil
}

// SetBlacklist 把黑名单写入 Store。
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, ids []string, ttl ...int) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data, ttl...)
}

// GetUserBlocks 通过一次 BatchGet 读取多个用户的拉黑列表。
func (a *StoreAdapter) GetUserBlocks(ctx context.Context, keyPrefix string, userIDs []string) (map[string][]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(userIDs))
	owner := make(map[string]string, len(userIDs))
	for i, u := range userIDs {
		keys[i] = userBlockKey(keyPrefix, u)
		owner[keys[i]] = u
	}

	values, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(values))
	for key, data := range values {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("decode user blocks %s: %w", key, err)
		}
		out[owner[key]] = ids
	}
	return out, nil
}

// SetUserBlocks 写入一个用户的拉黑列表。
func (a *StoreAdapter) SetUserBlocks(ctx context.Context, keyPrefix, userID string, ids []string, ttl ...int) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, userBlockKey(keyPrefix, userID), data, ttl...)
}

func userBlockKey(prefix, userID string) string {
	return prefix + ":" + userID
}
