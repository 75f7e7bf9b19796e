// Package dataset 提供内存表格结构以及构建训练样本的基础变换：
// 用户-物品对生成、按列过滤、负反馈采样、表格指纹。
//
// 所有变换都返回新表，不修改输入。
package dataset

import (
	"fmt"

	"github.com/rushteam/recodata/core"
)

// Table 是按列存储的内存表，列有序且行对齐。
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable 由若干列构造表。列名重复或行数不一致时返回 SCHEMA 错误。
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, schemaError(fmt.Sprintf("column %d is nil", i))
		}
		if _, dup := t.index[c.name]; dup {
			return nil, schemaError(fmt.Sprintf("duplicate column %s", c.name))
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, schemaError(fmt.Sprintf("column %s has %d rows, want %d", c.name, c.Len(), t.rows))
		}
		t.index[c.name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustTable 与 NewTable 相同，出错时 panic。用于测试与常量数据。
func MustTable(columns ...*Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len 返回行数。
func (t *Table) Len() int { return t.rows }

// Width 返回列数。
func (t *Table) Width() int { return len(t.columns) }

// Columns 返回列名（按列顺序）。
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Column 按名称取列。
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnAt 按位置取列。
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Select 按给定顺序投影列，缺列时返回 SCHEMA 错误。
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, missingColumn(name)
		}
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// Drop 去掉指定列，不存在的列名被忽略。
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	cols := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if _, ok := drop[c.name]; !ok {
			cols = append(cols, c)
		}
	}
	return &Table{columns: cols, index: indexOf(cols), rows: t.rows}
}

// WithColumn 返回追加（或同名替换）一列后的新表。
func (t *Table) WithColumn(c *Column) (*Table, error) {
	cols := make([]*Column, 0, len(t.columns)+1)
	replaced := false
	for _, old := range t.columns {
		if old.name == c.name {
			cols = append(cols, c)
			replaced = true
			continue
		}
		cols = append(cols, old)
	}
	if !replaced {
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// Take 按行号选取行（可重复、可乱序），返回新表。
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	return &Table{columns: cols, index: indexOf(cols), rows: len(rows)}
}

// Row 返回第 i 行的 列名 → 值 映射。
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		row[c.name] = c.Value(i)
	}
	return row
}

func indexOf(cols []*Column) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c.name] = i
	}
	return idx
}

func schemaError(msg string) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeSchema, msg)
}

func missingColumn(name string) error {
	return schemaError(fmt.Sprintf("missing column: %s", name))
}
