// Package libffm 把特征表编码为 libffm 格式。
//
// 输入表的每一列（评分列除外）是一个 field：
//   - 字符串列是类别特征，编码为 "<field>:<feature>:1"，feature 为 (field, 取值) 的全局编号
//   - 数值列编码为 "<field>:<field>:<取值>"
//
// 输出表的第一列为评分列，其余列按 fit 时的字段顺序排列，格式约定见
// https://www.csie.ntu.edu.tw/~r01922136/slides/ffm.pdf
package libffm

import (
	"fmt"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/logging"
)

// Option 配置 Converter。
type Option func(*Converter)

// WithFilepath 设置 transform 结果的输出文件（空格分隔、无表头）。
func WithFilepath(path string) Option {
	return func(c *Converter) { c.filepath = path }
}

// Converter 是未 fit 的编码器配置，Fit 之后得到不可变的 Encoder。
type Converter struct {
	filepath string
}

// NewConverter 按选项构造 Converter。
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filepath 返回 transform 结果的输出文件，未设置时为空。
func (c *Converter) Filepath() string { return c.filepath }

// Fit 校验列类型并建立 (field, 取值) → feature 编号的索引。
//
// 索引在 Fit 时一次建好：按字段顺序遍历字符串列，每列自上而下，
// 每遇到一个新的 (field, 取值) 就分配下一个编号（从 1 开始）；数值列不占编号。
// 每次 Fit 都返回新的 Encoder，已有 Encoder 的索引不会改变。
func (c *Converter) Fit(t *dataset.Table, ratingCol string) (*Encoder, error) {
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		if !supportedKind(col.Kind()) {
			return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeType,
				fmt.Sprintf("input columns should be only string and/or numeric types: column %s is %s", name, col.Kind()))
		}
	}
	if !t.HasColumn(ratingCol) {
		return nil, core.NewDomainError(core.ModuleLibffm, core.ErrorCodeSchema,
			fmt.Sprintf("column %s is not in input table columns", ratingCol))
	}

	e := &Encoder{
		ratingCol: ratingCol,
		filepath:  c.filepath,
		index:     make(map[featureKey]int),
	}
	for _, name := range t.Columns() {
		if name == ratingCol {
			continue
		}
		col, _ := t.Column(name)
		e.fields = append(e.fields, Field{Name: name, Kind: col.Kind()})
		if col.Kind() != dataset.KindString {
			continue
		}
		for _, v := range col.Strings() {
			e.addFeature(name, v)
		}
	}

	logging.Debug().
		Str("rating", ratingCol).
		Int("fields", e.FieldCount()).
		Int("features", e.FeatureCount()).
		Msg("libffm encoder fitted")
	return e, nil
}

// FitTransform 等价于 Fit 后对同一张表 Transform。
func (c *Converter) FitTransform(t *dataset.Table, ratingCol string) (*dataset.Table, *Encoder, error) {
	e, err := c.Fit(t, ratingCol)
	if err != nil {
		return nil, nil, err
	}
	out, err := e.Transform(t)
	if err != nil {
		return nil, nil, err
	}
	return out, e, nil
}

func supportedKind(k dataset.Kind) bool {
	return k == dataset.KindString || k.Numeric()
}
