package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
)

// TimeWindowFilter 只保留最近 Window 秒内的交互。
// 截止时间相对于表中最大的时间戳计算，不依赖当前时间，同一份数据的结果可复现。
type TimeWindowFilter struct {
	// Column 是 Unix 秒级时间戳列，默认 timestamp
	Column string

	// Window 是时间窗口（秒），<= 0 时不过滤
	Window int64
}

func NewTimeWindowFilter(column string, window int64) *TimeWindowFilter {
	if column == "" {
		column = core.DefaultTimestampCol
	}
	return &TimeWindowFilter{Column: column, Window: window}
}

func (f *TimeWindowFilter) Name() string {
	return "filter.time_window"
}

func (f *TimeWindowFilter) ShouldFilter(_ context.Context, t *dataset.Table) ([]bool, error) {
	mask := make([]bool, t.Len())
	if f.Window <= 0 || t.Len() == 0 {
		return mask, nil
	}
	if err := dataset.RequireColumns(t, f.Column); err != nil {
		return nil, err
	}
	col, _ := t.Column(f.Column)
	if col.Kind() != dataset.KindInt {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeType,
			fmt.Sprintf("time window column %s must be int, got %s", f.Column, col.Kind()))
	}

	ts := col.Ints()
	latest := ts[0]
	for _, v := range ts[1:] {
		latest = max(latest, v)
	}
	cutoff := latest - f.Window
	for i, v := range ts {
		mask[i] = v < cutoff
	}
	return mask, nil
}
