// Package config 把 pipeline 配置中的 node type 映射到具体的 Node 构建逻辑。
//
// 内置类型在本包 init 中注册：filter.expr、filter.blacklist、filter.user_block、filter.min_count、
// filter.time_window、select、sample.negative、libffm.encode。
package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/pipeline"
)

// Resources 是构建 Node 时可注入的外部依赖，配置文件里无法表达的对象放在这里。
type Resources struct {
	// Store 用于黑名单/拉黑列表读取与编码器持久化，可为 nil
	Store core.Store
}

// Builder 根据外部依赖与 node 的 config 构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type Builder func(res Resources, cfg map[string]any) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]Builder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory/NewFactory 与配置驱动使用。
func Register(typeName string, builder Builder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回不带外部依赖的 NodeFactory，需要 Store 的配置项会报错。
func DefaultFactory() *pipeline.NodeFactory {
	return NewFactory(Resources{})
}

// NewFactory 返回基于当前注册表构建的 NodeFactory，res 会传给每个 Builder。
func NewFactory(res Resources) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return builder(res, cfg)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	supported := SupportedTypes()
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("node %d: missing type", i)
		}
		defaultBuildersMu.RLock()
		_, ok := defaultBuilders[nc.Type]
		defaultBuildersMu.RUnlock()
		if !ok {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, supported)
		}
	}
	return nil
}
