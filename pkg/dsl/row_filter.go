// Package dsl 提供基于 CEL (Common Expression Language) 的行过滤表达式。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境：唯一的变量 row 为 列名 → 值 的映射。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// RowFilter 是编译后的行过滤表达式，可并发调用 Match。
//
// 表达式语法（CEL 标准语法），row 的取值类型为 string / int / double / bool：
//   - 数值：row.rating >= 4.0 / row.userID % 10 == 0
//   - 字符串：row.genres.contains("Comedy") / row.title.startsWith("The")
//   - 逻辑：row.rating > 3.0 && row.year != ""
//   - 存在性："year" in row
type RowFilter struct {
	expr string
	prg  cel.Program
}

// NewRowFilter 编译表达式，表达式的结果类型必须为 bool。
func NewRowFilter(expr string) (*RowFilter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return boolean, got %s", out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &RowFilter{expr: expr, prg: prg}, nil
}

func (f *RowFilter) String() string { return f.expr }

// Match 对一行求值。访问不存在的列是求值错误。
func (f *RowFilter) Match(row map[string]any) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{"row": row})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
