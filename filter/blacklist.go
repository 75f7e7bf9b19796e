package filter

import (
	"context"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
)

// BlacklistFilter 是黑名单过滤器，过滤掉 Column 取值在黑名单中的行。
// 取值按 dataset.FormatValue 的字符串形式比较，整数 ID 50 与黑名单项 "50" 匹配。
type BlacklistFilter struct {
	// Column 是被检查的列，默认 itemID
	Column string

	// IDs 是内存中的黑名单 ID 列表
	IDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(column string, ids []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	if column == "" {
		column = core.DefaultItemCol
	}
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		Column: column,
		IDs:    ids,
		Store:  store,
		Key:    key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, t *dataset.Table) ([]bool, error) {
	if err := dataset.RequireColumns(t, f.Column); err != nil {
		return nil, err
	}

	blocked := make(map[string]struct{}, len(f.IDs))
	for _, id := range f.IDs {
		blocked[id] = struct{}{}
	}
	// key 不存在视为空黑名单
	if f.Store != nil && f.Key != "" {
		ids, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil && !core.IsStoreNotFound(err) {
			return nil, err
		}
		for _, id := range ids {
			blocked[id] = struct{}{}
		}
	}

	col, _ := t.Column(f.Column)
	mask := make([]bool, t.Len())
	if len(blocked) == 0 {
		return mask, nil
	}
	for i := range mask {
		_, mask[i] = blocked[col.Format(i)]
	}
	return mask, nil
}
