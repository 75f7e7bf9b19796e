// Package feature 提供训练表的特征整理 Node：列投影/重命名/类别化，以及 libffm 编码。
package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pipeline"
)

// SelectNode 投影并整理列，依次执行：
//  1. Columns 非空时只保留这些列（按给定顺序）
//  2. Categorical 中的列转为字符串列，libffm 编码时按类别特征处理
//  3. Rename 按 旧名 → 新名 重命名
type SelectNode struct {
	NodeName    string
	Columns     []string
	Categorical []string
	Rename      map[string]string
}

func (n *SelectNode) Name() string {
	if n.NodeName != "" {
		return n.NodeName
	}
	return "select"
}

func (n *SelectNode) Kind() pipeline.Kind { return pipeline.KindSelect }

func (n *SelectNode) Process(_ context.Context, t *dataset.Table) (*dataset.Table, error) {
	out := t
	var err error
	if len(n.Columns) > 0 {
		if out, err = out.Select(n.Columns...); err != nil {
			return nil, err
		}
	}

	for _, name := range n.Categorical {
		col, ok := out.Column(name)
		if !ok {
			return nil, fmt.Errorf("categorical: %w", dataset.RequireColumns(out, name))
		}
		if col.Kind() == dataset.KindString {
			continue
		}
		values := make([]string, col.Len())
		for i := range values {
			values[i] = col.Format(i)
		}
		if out, err = out.WithColumn(dataset.NewStringColumn(name, values)); err != nil {
			return nil, err
		}
	}

	if len(n.Rename) == 0 {
		return out, nil
	}
	if err := dataset.RequireColumns(out, keys(n.Rename)...); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	cols := make([]*dataset.Column, out.Width())
	for i := range cols {
		c := out.ColumnAt(i)
		if to, ok := n.Rename[c.Name()]; ok {
			c = c.Rename(to)
		}
		cols[i] = c
	}
	return dataset.NewTable(cols...)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
