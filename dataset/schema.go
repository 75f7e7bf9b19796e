package dataset

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/rushteam/recodata/pkg/logging"
)

// HasColumns 检查表是否包含全部列，缺失的每一列都会记录一条日志。
func HasColumns(t *Table, columns ...string) bool {
	ok := true
	for _, c := range columns {
		if !t.HasColumn(c) {
			logging.Error().Str("column", c).Msg("missing column in table")
			ok = false
		}
	}
	return ok
}

// RequireColumns 与 HasColumns 相同，但以 SCHEMA 错误的形式返回全部缺失列。
func RequireColumns(t *Table, columns ...string) error {
	missing := lo.Filter(columns, func(c string, _ int) bool { return !t.HasColumn(c) })
	if len(missing) == 0 {
		return nil
	}
	return schemaError(fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")))
}

// HasSameBaseKind 检查两张表指定列的基础类型是否一致（int 与 float 视为不同类型，
// 不同位宽的整数在表中已统一为 Int）。
// columns 为空时比较全部列，此时两张表的列集合必须相同。
func HasSameBaseKind(a, b *Table, columns ...string) bool {
	if len(columns) == 0 {
		left, right := lo.Difference(a.Columns(), b.Columns())
		if len(left) > 0 || len(right) > 0 {
			logging.Error().Strs("only_left", left).Strs("only_right", right).
				Msg("cannot compare all columns: column sets differ")
			return false
		}
		columns = a.Columns()
	}
	if !HasColumns(a, columns...) || !HasColumns(b, columns...) {
		return false
	}

	ok := true
	for _, name := range columns {
		ca, _ := a.Column(name)
		cb, _ := b.Column(name)
		if ca.kind != cb.kind {
			logging.Error().Str("column", name).
				Stringer("left", ca.kind).Stringer("right", cb.kind).
				Msg("columns do not have the same base kind")
			ok = false
		}
	}
	return ok
}
