package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recodata/dataset"
)

// MinCountFilter 过滤掉 Column 上出现次数少于 Min 的取值对应的行，
// 常用于去掉交互过少的冷门用户或物品。只做一轮，不迭代到收敛。
type MinCountFilter struct {
	Column string
	Min    int
}

func NewMinCountFilter(column string, minCount int) *MinCountFilter {
	return &MinCountFilter{Column: column, Min: minCount}
}

func (f *MinCountFilter) Name() string {
	return "filter.min_count"
}

func (f *MinCountFilter) ShouldFilter(_ context.Context, t *dataset.Table) ([]bool, error) {
	if f.Min < 0 {
		return nil, fmt.Errorf("min count must be >= 0, got %d", f.Min)
	}
	if err := dataset.RequireColumns(t, f.Column); err != nil {
		return nil, err
	}
	col, _ := t.Column(f.Column)
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		counts[col.Format(i)]++
	}
	mask := make([]bool, t.Len())
	for i := range mask {
		mask[i] = counts[col.Format(i)] < f.Min
	}
	return mask, nil
}
