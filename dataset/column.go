package dataset

import (
	"fmt"

	"github.com/rushteam/recodata/core"
)

// Kind 是列的元素类型。同一列内类型一致。
type Kind int

const (
	KindString Kind = iota // 类别型（字符串）
	KindInt                // 整数
	KindFloat              // 浮点数
	KindBool               // 布尔，可以出现在表里，但 libffm 编码不支持
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind 是 Kind.String 的逆操作。
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindString, KindInt, KindFloat, KindBool} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, core.NewDomainError(core.ModuleDataset, core.ErrorCodeType, fmt.Sprintf("unknown column kind %q", s))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Numeric 表示 Int 与 Float，二者共享数值基础类型。
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column 是一列带类型的数据，只有与 Kind 对应的切片有值。
type Column struct {
	name    string
	kind    Kind
	strings []string
	ints    []int64
	floats  []float64
	bools   []bool
}

func NewStringColumn(name string, values []string) *Column {
	return &Column{name: name, kind: KindString, strings: append([]string(nil), values...)}
}

func NewIntColumn(name string, values []int64) *Column {
	return &Column{name: name, kind: KindInt, ints: append([]int64(nil), values...)}
}

func NewFloatColumn(name string, values []float64) *Column {
	return &Column{name: name, kind: KindFloat, floats: append([]float64(nil), values...)}
}

func NewBoolColumn(name string, values []bool) *Column {
	return &Column{name: name, kind: KindBool, bools: append([]bool(nil), values...)}
}

// NewColumn 从 []any 推断列类型。
// int/int32/int64 → Int；float32/float64 → Float；整数与浮点混合 → Float；
// 其余混合或不支持的 Go 类型返回 TYPE 错误。
func NewColumn(name string, values []any) (*Column, error) {
	kind, err := inferKind(name, values)
	if err != nil {
		return nil, err
	}
	c := emptyColumn(name, kind, len(values))
	for _, v := range values {
		c.appendValue(v)
	}
	return c, nil
}

func inferKind(name string, values []any) (Kind, error) {
	if len(values) == 0 {
		return KindString, nil
	}
	var kind Kind
	for i, v := range values {
		var k Kind
		switch v.(type) {
		case string:
			k = KindString
		case int, int32, int64:
			k = KindInt
		case float32, float64:
			k = KindFloat
		case bool:
			k = KindBool
		default:
			return 0, core.NewDomainError(core.ModuleDataset, core.ErrorCodeType,
				fmt.Sprintf("column %s: unsupported value type %T at row %d", name, v, i))
		}
		switch {
		case i == 0 || k == kind:
			kind = k
		case k.Numeric() && kind.Numeric():
			kind = KindFloat
		default:
			return 0, core.NewDomainError(core.ModuleDataset, core.ErrorCodeType,
				fmt.Sprintf("column %s: mixed value types %s and %s", name, kind, k))
		}
	}
	return kind, nil
}

func emptyColumn(name string, kind Kind, capacity int) *Column {
	c := &Column{name: name, kind: kind}
	switch kind {
	case KindString:
		c.strings = make([]string, 0, capacity)
	case KindInt:
		c.ints = make([]int64, 0, capacity)
	case KindFloat:
		c.floats = make([]float64, 0, capacity)
	case KindBool:
		c.bools = make([]bool, 0, capacity)
	}
	return c
}

// appendValue 追加一个值；调用方保证 v 与列类型兼容（来自同类型列或经过 inferKind）。
func (c *Column) appendValue(v any) {
	switch c.kind {
	case KindString:
		c.strings = append(c.strings, v.(string))
	case KindInt:
		switch n := v.(type) {
		case int:
			c.ints = append(c.ints, int64(n))
		case int32:
			c.ints = append(c.ints, int64(n))
		case int64:
			c.ints = append(c.ints, n)
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			c.floats = append(c.floats, n)
		case float32:
			c.floats = append(c.floats, float64(n))
		case int:
			c.floats = append(c.floats, float64(n))
		case int32:
			c.floats = append(c.floats, float64(n))
		case int64:
			c.floats = append(c.floats, float64(n))
		}
	case KindBool:
		c.bools = append(c.bools, v.(bool))
	}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

func (c *Column) Len() int {
	switch c.kind {
	case KindString:
		return len(c.strings)
	case KindInt:
		return len(c.ints)
	case KindFloat:
		return len(c.floats)
	default:
		return len(c.bools)
	}
}

// Value 返回第 i 行的值：string / int64 / float64 / bool。
func (c *Column) Value(i int) any {
	switch c.kind {
	case KindString:
		return c.strings[i]
	case KindInt:
		return c.ints[i]
	case KindFloat:
		return c.floats[i]
	default:
		return c.bools[i]
	}
}

// Format 返回第 i 行的文本形式，见 FormatValue。
func (c *Column) Format(i int) string {
	return FormatValue(c.Value(i))
}

// Strings 返回字符串列的只读视图；非字符串列返回 nil。
func (c *Column) Strings() []string { return c.strings }

// Ints 返回整数列的只读视图；非整数列返回 nil。
func (c *Column) Ints() []int64 { return c.ints }

// Floats 返回浮点列的只读视图；非浮点列返回 nil。
func (c *Column) Floats() []float64 { return c.floats }

// Rename 返回同数据、新列名的列（数据共享，列本身不可变）。
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// take 按行号选取，返回新列。
func (c *Column) take(rows []int) *Column {
	out := emptyColumn(c.name, c.kind, len(rows))
	for _, r := range rows {
		switch c.kind {
		case KindString:
			out.strings = append(out.strings, c.strings[r])
		case KindInt:
			out.ints = append(out.ints, c.ints[r])
		case KindFloat:
			out.floats = append(out.floats, c.floats[r])
		case KindBool:
			out.bools = append(out.bools, c.bools[r])
		}
	}
	return out
}
