package pipeline

import (
	"context"

	"github.com/rushteam/recodata/dataset"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：按条件剔除行
	KindSelect Kind = "select" // 投影阶段：选择/重命名列
	KindSample Kind = "sample" // 采样阶段：生成带标签的训练样本
	KindEncode Kind = "encode" // 编码阶段：转换为模型输入格式
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入表 -> 输出表"的形态，Node 不得修改输入表。
type Node interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, t *dataset.Table) (*dataset.Table, error)
}

// NodeFunc 把普通函数包装成 Node，便于测试与临时扩展。
type NodeFunc struct {
	NodeName string
	NodeKind Kind
	Fn       func(ctx context.Context, t *dataset.Table) (*dataset.Table, error)
}

func (n *NodeFunc) Name() string { return n.NodeName }
func (n *NodeFunc) Kind() Kind   { return n.NodeKind }

func (n *NodeFunc) Process(ctx context.Context, t *dataset.Table) (*dataset.Table, error) {
	return n.Fn(ctx, t)
}
