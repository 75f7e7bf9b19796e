package config

import (
	"fmt"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/feature"
	"github.com/rushteam/recodata/filter"
	"github.com/rushteam/recodata/pipeline"
	"github.com/rushteam/recodata/pkg/conv"
	"github.com/rushteam/recodata/sample"
)

func init() {
	Register("filter.expr", BuildExprFilterNode)
	Register("filter.blacklist", BuildBlacklistNode)
	Register("filter.user_block", BuildUserBlockNode)
	Register("filter.min_count", BuildMinCountNode)
	Register("filter.time_window", BuildTimeWindowNode)
	Register("select", BuildSelectNode)
	Register("sample.negative", BuildNegativeSampleNode)
	Register("libffm.encode", BuildEncodeNode)
}

// BuildExprFilterNode 构建 CEL 行过滤：expr 为 true 的行保留。
func BuildExprFilterNode(_ Resources, cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{NodeName: conv.ConfigGet(cfg, "name", "filter.expr"), Filters: []filter.Filter{f}}, nil
}

func BuildBlacklistNode(res Resources, cfg map[string]any) (pipeline.Node, error) {
	ids, err := conv.ConfigGetStrings(cfg, "ids")
	if err != nil {
		return nil, err
	}
	key := conv.ConfigGet(cfg, "key", "")
	if len(ids) == 0 && key == "" {
		return nil, fmt.Errorf("blacklist needs ids or key")
	}
	adapter, err := storeAdapter(res, key != "")
	if err != nil {
		return nil, err
	}
	f := filter.NewBlacklistFilter(conv.ConfigGet(cfg, "column", core.DefaultItemCol), ids, adapter, key)
	return &filter.FilterNode{NodeName: conv.ConfigGet(cfg, "name", "filter.blacklist"), Filters: []filter.Filter{f}}, nil
}

func BuildUserBlockNode(res Resources, cfg map[string]any) (pipeline.Node, error) {
	prefix := conv.ConfigGet(cfg, "key_prefix", "")
	if prefix == "" {
		return nil, fmt.Errorf("key_prefix not found")
	}
	adapter, err := storeAdapter(res, true)
	if err != nil {
		return nil, err
	}
	f := filter.NewUserBlockFilter(adapter, prefix)
	f.UserCol = conv.ConfigGet(cfg, "user_col", core.DefaultUserCol)
	f.ItemCol = conv.ConfigGet(cfg, "item_col", core.DefaultItemCol)
	return &filter.FilterNode{NodeName: conv.ConfigGet(cfg, "name", "filter.user_block"), Filters: []filter.Filter{f}}, nil
}

func BuildMinCountNode(_ Resources, cfg map[string]any) (pipeline.Node, error) {
	column := conv.ConfigGet(cfg, "column", "")
	if column == "" {
		return nil, fmt.Errorf("column not found")
	}
	minCount := conv.ConfigGetInt64(cfg, "min", 1)
	if minCount < 0 {
		return nil, fmt.Errorf("min must be >= 0, got %d", minCount)
	}
	f := filter.NewMinCountFilter(column, int(minCount))
	return &filter.FilterNode{NodeName: conv.ConfigGet(cfg, "name", "filter.min_count"), Filters: []filter.Filter{f}}, nil
}

func BuildTimeWindowNode(_ Resources, cfg map[string]any) (pipeline.Node, error) {
	window := conv.ConfigGetInt64(cfg, "window", 0)
	if window <= 0 {
		return nil, fmt.Errorf("window must be > 0 seconds")
	}
	f := filter.NewTimeWindowFilter(conv.ConfigGet(cfg, "column", core.DefaultTimestampCol), window)
	return &filter.FilterNode{NodeName: conv.ConfigGet(cfg, "name", "filter.time_window"), Filters: []filter.Filter{f}}, nil
}

func BuildSelectNode(_ Resources, cfg map[string]any) (pipeline.Node, error) {
	cols, err := conv.ConfigGetStrings(cfg, "columns")
	if err != nil {
		return nil, err
	}
	categorical, err := conv.ConfigGetStrings(cfg, "categorical")
	if err != nil {
		return nil, err
	}
	rename, err := conv.ConfigGetStringMap(cfg, "rename")
	if err != nil {
		return nil, err
	}
	return &feature.SelectNode{
		NodeName:    conv.ConfigGet(cfg, "name", "select"),
		Columns:     cols,
		Categorical: categorical,
		Rename:      rename,
	}, nil
}

func BuildNegativeSampleNode(_ Resources, cfg map[string]any) (pipeline.Node, error) {
	n := sample.NewNegativeNode()
	n.NodeName = conv.ConfigGet(cfg, "name", n.Name())
	n.UserCol = conv.ConfigGet(cfg, "user_col", n.UserCol)
	n.ItemCol = conv.ConfigGet(cfg, "item_col", n.ItemCol)
	n.LabelCol = conv.ConfigGet(cfg, "label_col", n.LabelCol)
	n.Ratio = conv.ConfigGetFloat64(cfg, "ratio", n.Ratio)
	if n.Ratio < 0 {
		return nil, fmt.Errorf("ratio must be >= 0, got %v", n.Ratio)
	}
	seed := conv.ConfigGetInt64(cfg, "seed", int64(n.Seed))
	if seed < 0 {
		return nil, fmt.Errorf("seed must be >= 0, got %d", seed)
	}
	n.Seed = uint64(seed)
	n.Workers = int(conv.ConfigGetInt64(cfg, "workers", int64(n.Workers)))
	return n, nil
}

// BuildEncodeNode 构建 libffm 编码：file 为输出路径，key 非空时把编码器写入 Resources.Store。
func BuildEncodeNode(res Resources, cfg map[string]any) (pipeline.Node, error) {
	key := conv.ConfigGet(cfg, "key", "")
	if key != "" && res.Store == nil {
		return nil, fmt.Errorf("key %q requires a store", key)
	}
	return &feature.EncodeNode{
		NodeName:  conv.ConfigGet(cfg, "name", "libffm.encode"),
		RatingCol: conv.ConfigGet(cfg, "rating_col", core.DefaultRatingCol),
		Filepath:  conv.ConfigGet(cfg, "file", ""),
		Store:     res.Store,
		Key:       key,
		TTL:       int(conv.ConfigGetInt64(cfg, "ttl", 0)),
		Reuse:     conv.ConfigGet(cfg, "reuse", false),
	}, nil
}

func storeAdapter(res Resources, required bool) (*filter.StoreAdapter, error) {
	if res.Store == nil {
		if required {
			return nil, fmt.Errorf("store is required")
		}
		return nil, nil
	}
	return filter.NewStoreAdapter(res.Store), nil
}
