// Package pipeline 把训练数据的准备过程拆成可组合的 Node 链：过滤、投影、负采样、编码。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/pkg/logging"
)

// Pipeline 按顺序执行 Node，前一个 Node 的输出是后一个的输入。
type Pipeline struct {
	Name  string
	Nodes []Node

	// Metrics 可选，为 nil 时不记录指标
	Metrics *Metrics
}

// Run 执行全部 Node。任一 Node 出错时立即停止，错误带上 Node 名称。
func (p *Pipeline) Run(ctx context.Context, t *dataset.Table) (*dataset.Table, error) {
	runID := uuid.NewString()
	log := logging.With().Str("pipeline", p.Name).Str("run_id", runID).Logger()
	log.Debug().Int("nodes", len(p.Nodes)).Int("rows", t.Len()).Msg("pipeline started")

	cur := t
	for i, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, cur)
		elapsed := time.Since(start)
		if err == nil && next == nil {
			err = errors.New("node returned nil table")
		}
		p.Metrics.observe(p.Name, node, elapsed, next, err)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}

		log.Debug().
			Int("step", i).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("rows_in", cur.Len()).
			Int("rows_out", next.Len()).
			Dur("elapsed", elapsed).
			Msg("node finished")
		cur = next
	}
	return cur, nil
}
