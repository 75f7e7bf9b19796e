// Package recodata 是推荐模型训练数据的准备工具包。
//
// 设计要点：
// - Pipeline-first: 数据准备通过 Node 串联（Filter → Select → Sample → Encode）
// - 纯函数: Node 与 dataset 的函数都返回新表，不修改输入
// - 可复现: 负采样按种子确定，与并发度无关；编码器索引可持久化复用
package recodata

import "github.com/rushteam/recodata/pipeline"

// 轻量 facade：便于用户直接 import "recodata" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter = pipeline.KindFilter
	KindSelect = pipeline.KindSelect
	KindSample = pipeline.KindSample
	KindEncode = pipeline.KindEncode
)
