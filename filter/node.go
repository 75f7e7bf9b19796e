package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pipeline"
	"github.com/rushteam/recodata/pkg/logging"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 任何一个过滤器标记的行都会被移除；任一过滤器出错时整个 Node 失败。
type FilterNode struct {
	NodeName string
	Filters  []Filter
}

func (n *FilterNode) Name() string {
	if n.NodeName != "" {
		return n.NodeName
	}
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(ctx context.Context, t *dataset.Table) (*dataset.Table, error) {
	if len(n.Filters) == 0 || t.Len() == 0 {
		return t, nil
	}

	drop := make([]bool, t.Len())
	for _, f := range n.Filters {
		mask, err := f.ShouldFilter(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
		if len(mask) != t.Len() {
			return nil, fmt.Errorf("%s: mask has %d entries, table has %d rows", f.Name(), len(mask), t.Len())
		}
		filtered := 0
		for i, m := range mask {
			if m && !drop[i] {
				drop[i] = true
				filtered++
			}
		}
		logging.Debug().Str("node", n.Name()).Str("filter", f.Name()).Int("filtered", filtered).Msg("filter applied")
	}

	keep := make([]int, 0, t.Len())
	for i, d := range drop {
		if !d {
			keep = append(keep, i)
		}
	}
	return t.Take(keep), nil
}
