// Package sample 把只含正反馈的交互表扩展为带 0/1 标签的训练表。
package sample

import (
	"context"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pipeline"
)

// NegativeNode 对输入表做负采样，见 dataset.NegativeFeedbackSampler。
type NegativeNode struct {
	NodeName string
	UserCol  string
	ItemCol  string
	LabelCol string
	Ratio    float64
	Seed     uint64
	Workers  int
}

// NewNegativeNode 返回使用默认列名、ratio=1、seed=42 的 NegativeNode。
func NewNegativeNode() *NegativeNode {
	return &NegativeNode{
		UserCol:  core.DefaultUserCol,
		ItemCol:  core.DefaultItemCol,
		LabelCol: core.DefaultLabelCol,
		Ratio:    1,
		Seed:     dataset.DefaultSamplerSeed,
		Workers:  1,
	}
}

func (n *NegativeNode) Name() string {
	if n.NodeName != "" {
		return n.NodeName
	}
	return "sample.negative"
}

func (n *NegativeNode) Kind() pipeline.Kind { return pipeline.KindSample }

func (n *NegativeNode) Process(ctx context.Context, t *dataset.Table) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := []dataset.SamplerOption{
		dataset.WithRatio(n.Ratio),
		dataset.WithSeed(n.Seed),
		dataset.WithWorkers(n.Workers),
	}
	if n.UserCol != "" {
		opts = append(opts, dataset.WithSamplerUserCol(n.UserCol))
	}
	if n.ItemCol != "" {
		opts = append(opts, dataset.WithSamplerItemCol(n.ItemCol))
	}
	if n.LabelCol != "" {
		opts = append(opts, dataset.WithLabelCol(n.LabelCol))
	}
	return dataset.NegativeFeedbackSampler(t, opts...)
}
