package dataset

import (
	"math/rand/v2"

	"github.com/rushteam/recodata/core"
)

// PairOption 配置 UserItemPairs。
type PairOption func(*pairOptions)

type pairOptions struct {
	userCol string
	itemCol string
	filter  *Table
	shuffle bool
	seed    uint64
}

// WithUserCol 设置用户 ID 列名（默认 userID），仅在使用过滤表时需要。
func WithUserCol(col string) PairOption {
	return func(o *pairOptions) { o.userCol = col }
}

// WithItemCol 设置物品 ID 列名（默认 itemID），仅在使用过滤表时需要。
func WithItemCol(col string) PairOption {
	return func(o *pairOptions) { o.itemCol = col }
}

// WithPairFilter 去掉在 filter 中出现过的 (user, item) 组合。
// filter 中不属于笛卡尔积的组合被忽略。
func WithPairFilter(filter *Table) PairOption {
	return func(o *pairOptions) { o.filter = filter }
}

// WithShuffle 以 seed 对结果做均匀随机排列。
func WithShuffle(seed uint64) PairOption {
	return func(o *pairOptions) {
		o.shuffle = true
		o.seed = seed
	}
}

// UserItemPairs 生成 users × items 的全部组合（笛卡尔积）。
//
// 输出列为 users 的全部列后接 items 的全部列；不打乱时按 users 外层、items 内层的顺序输出。
// 任一输入为空时返回空表（保留列）。输入表不会被修改。
func UserItemPairs(users, items *Table, opts ...PairOption) (*Table, error) {
	o := pairOptions{userCol: core.DefaultUserCol, itemCol: core.DefaultItemCol}
	for _, opt := range opts {
		opt(&o)
	}

	var exclude *KeySet
	var userKey, itemKey *Column
	if o.filter != nil {
		if err := RequireColumns(users, o.userCol); err != nil {
			return nil, err
		}
		if err := RequireColumns(items, o.itemCol); err != nil {
			return nil, err
		}
		if err := RequireColumns(o.filter, o.userCol, o.itemCol); err != nil {
			return nil, err
		}
		exclude = NewKeySet(o.filter, o.userCol, o.itemCol)
		userKey, _ = users.Column(o.userCol)
		itemKey, _ = items.Column(o.itemCol)
	}

	userRows := make([]int, 0, users.Len()*items.Len())
	itemRows := make([]int, 0, users.Len()*items.Len())
	for u := 0; u < users.Len(); u++ {
		for i := 0; i < items.Len(); i++ {
			if exclude != nil && exclude.Contains(userKey.Value(u), itemKey.Value(i)) {
				continue
			}
			userRows = append(userRows, u)
			itemRows = append(itemRows, i)
		}
	}

	if o.shuffle {
		rng := newRand(o.seed)
		rng.Shuffle(len(userRows), func(a, b int) {
			userRows[a], userRows[b] = userRows[b], userRows[a]
			itemRows[a], itemRows[b] = itemRows[b], itemRows[a]
		})
	}

	left := users.Take(userRows)
	right := items.Take(itemRows)
	return NewTable(append(left.columns, right.columns...)...)
}

// newRand 返回以 seed 确定的随机数发生器。
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
