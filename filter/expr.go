package filter

import (
	"context"

	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/dsl"
)

// ExprFilter 用 CEL 表达式选择要保留的行，表达式为 false 的行被过滤。
//
//	row.rating >= 4.0
//	row.genres.contains("Comedy")
type ExprFilter struct {
	rule *dsl.RowFilter
}

// NewExprFilter 编译表达式。
func NewExprFilter(expr string) (*ExprFilter, error) {
	rule, err := dsl.NewRowFilter(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{rule: rule}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) Expr() string { return f.rule.String() }

func (f *ExprFilter) ShouldFilter(ctx context.Context, t *dataset.Table) ([]bool, error) {
	mask := make([]bool, t.Len())
	for i := range mask {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ok, err := f.rule.Match(t.Row(i))
		if err != nil {
			return nil, err
		}
		mask[i] = !ok
	}
	return mask, nil
}
