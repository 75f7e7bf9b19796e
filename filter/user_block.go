package filter

import (
	"context"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
)

// UserBlockFilter 是用户拉黑过滤器，过滤掉用户拉黑的物品对应的交互。
// 每个用户的拉黑列表存放在 {KeyPrefix}:{userID}。
type UserBlockFilter struct {
	// Store 用于从存储中读取用户拉黑列表
	Store UserBlockStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string

	UserCol string
	ItemCol string
}

// UserBlockStore 是用户拉黑存储接口。
type UserBlockStore interface {
	// GetUserBlocks 批量获取用户拉黑的 ID 列表，没有拉黑记录的用户不出现在结果中
	GetUserBlocks(ctx context.Context, keyPrefix string, userIDs []string) (map[string][]string, error)
}

// NewUserBlockFilter 创建一个用户拉黑过滤器。
func NewUserBlockFilter(storeAdapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	var store UserBlockStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &UserBlockFilter{
		Store:     store,
		KeyPrefix: keyPrefix,
		UserCol:   core.DefaultUserCol,
		ItemCol:   core.DefaultItemCol,
	}
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

func (f *UserBlockFilter) ShouldFilter(ctx context.Context, t *dataset.Table) ([]bool, error) {
	mask := make([]bool, t.Len())
	if f.Store == nil || t.Len() == 0 {
		return mask, nil
	}
	if err := dataset.RequireColumns(t, f.UserCol, f.ItemCol); err != nil {
		return nil, err
	}

	users, _ := t.Column(f.UserCol)
	items, _ := t.Column(f.ItemCol)
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for i := 0; i < t.Len(); i++ {
		u := users.Format(i)
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			ids = append(ids, u)
		}
	}

	blocks, err := f.Store.GetUserBlocks(ctx, f.KeyPrefix, ids)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return mask, nil
	}
	sets := make(map[string]map[string]struct{}, len(blocks))
	for u, list := range blocks {
		s := make(map[string]struct{}, len(list))
		for _, id := range list {
			s[id] = struct{}{}
		}
		sets[u] = s
	}
	for i := range mask {
		if s, ok := sets[users.Format(i)]; ok {
			_, mask[i] = s[items.Format(i)]
		}
	}
	return mask, nil
}
