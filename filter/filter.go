// Package filter 提供按行剔除交互记录的过滤器以及组合它们的 FilterNode。
package filter

import (
	"context"

	"github.com/rushteam/recodata/dataset"
)

// Filter 是过滤器的抽象接口，用于判断表中哪些行应该被过滤掉。
// 返回与 t 行对齐的掩码，true 表示该行应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 计算 t 的过滤掩码，不得修改 t
	ShouldFilter(ctx context.Context, t *dataset.Table) ([]bool, error)
}
