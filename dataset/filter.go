package dataset

import (
	"encoding/binary"
	"math"
	"strings"
)

// FilterBy 去掉 t 中在 cols 上的取值组合出现在 filter 中的行，返回新表。
// 按取值精确匹配；整数 1 与浮点 1.0 视为同一个值。
func FilterBy(t, filter *Table, cols ...string) (*Table, error) {
	if err := RequireColumns(t, cols...); err != nil {
		return nil, err
	}
	if err := RequireColumns(filter, cols...); err != nil {
		return nil, err
	}

	exclude := NewKeySet(filter, cols...)
	src := columnsOf(t, cols)
	keep := make([]int, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		if !exclude.has(rowKey(src, r)) {
			keep = append(keep, r)
		}
	}
	return t.Take(keep), nil
}

// KeySet 是多列取值组合的集合，成员判断为 O(1) 均摊。
type KeySet struct {
	cols []string
	keys map[string]struct{}
}

// NewKeySet 用表 t 在 cols 上的所有取值组合构造集合。调用方保证列存在。
func NewKeySet(t *Table, cols ...string) *KeySet {
	s := &KeySet{cols: cols, keys: make(map[string]struct{}, t.Len())}
	src := columnsOf(t, cols)
	for r := 0; r < t.Len(); r++ {
		s.keys[rowKey(src, r)] = struct{}{}
	}
	return s
}

// Contains 判断取值组合（顺序与构造时的 cols 一致）是否在集合中。
func (s *KeySet) Contains(values ...any) bool {
	var b strings.Builder
	for _, v := range values {
		writeKeyPart(&b, v)
	}
	return s.has(b.String())
}

// Len 返回集合中不同取值组合的个数。
func (s *KeySet) Len() int { return len(s.keys) }

func (s *KeySet) has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func columnsOf(t *Table, names []string) []*Column {
	cols := make([]*Column, len(names))
	for i, n := range names {
		cols[i], _ = t.Column(n)
	}
	return cols
}

func rowKey(cols []*Column, r int) string {
	var b strings.Builder
	for _, c := range cols {
		writeKeyPart(&b, c.Value(r))
	}
	return b.String()
}

// writeKeyPart 写入带类型标记、长度前缀的取值编码，保证不同组合不会拼出相同的 key。
func writeKeyPart(b *strings.Builder, v any) {
	var buf [8]byte
	switch x := v.(type) {
	case string:
		b.WriteByte('s')
		binary.LittleEndian.PutUint64(buf[:], uint64(len(x)))
		b.Write(buf[:])
		b.WriteString(x)
	case bool:
		if x {
			b.WriteString("b1")
		} else {
			b.WriteString("b0")
		}
	case int64:
		writeIntPart(b, x)
	case int:
		writeIntPart(b, int64(x))
	case int32:
		writeIntPart(b, int64(x))
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<63 {
			writeIntPart(b, int64(x))
			return
		}
		b.WriteByte('f')
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		b.Write(buf[:])
	default:
		f, _ := toFloat(v)
		writeKeyPart(b, f)
	}
}

// writeIntPart 整数以及整值浮点数共用同一编码，1 与 1.0 得到相同的 key。
func writeIntPart(b *strings.Builder, n int64) {
	var buf [8]byte
	b.WriteByte('i')
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	b.Write(buf[:])
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		return 0, false
	}
}
