package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/pkg/logging"
)

// DefaultSplitSeed 是随机切分与分层切分的默认种子。
const DefaultSplitSeed = 42

// 分组切分的分组方式。
const (
	FilterByUser = "user"
	FilterByItem = "item"
)

// SplitOption 配置 RandomSplit、StratifiedSplit 与 ChronoSplit。
type SplitOption func(*splitOptions)

type splitOptions struct {
	userCol      string
	itemCol      string
	timestampCol string
	filterBy     string
	minRating    int
	seed         uint64
}

func defaultSplitOptions() splitOptions {
	return splitOptions{
		userCol:      core.DefaultUserCol,
		itemCol:      core.DefaultItemCol,
		timestampCol: core.DefaultTimestampCol,
		filterBy:     FilterByUser,
		minRating:    1,
		seed:         DefaultSplitSeed,
	}
}

// WithSplitUserCol 设置用户列名（默认 userID）。
func WithSplitUserCol(col string) SplitOption {
	return func(o *splitOptions) { o.userCol = col }
}

// WithSplitItemCol 设置物品列名（默认 itemID）。
func WithSplitItemCol(col string) SplitOption {
	return func(o *splitOptions) { o.itemCol = col }
}

// WithSplitTimestampCol 设置时间列名（默认 timestamp），只有 ChronoSplit 使用。
func WithSplitTimestampCol(col string) SplitOption {
	return func(o *splitOptions) { o.timestampCol = col }
}

// WithFilterBy 设置按用户（FilterByUser）还是按物品（FilterByItem）分组。
func WithFilterBy(by string) SplitOption {
	return func(o *splitOptions) { o.filterBy = by }
}

// WithMinRating 只保留交互数不少于 n 的用户（或物品）。
func WithMinRating(n int) SplitOption {
	return func(o *splitOptions) { o.minRating = n }
}

// WithSplitSeed 设置随机种子。
func WithSplitSeed(seed uint64) SplitOption {
	return func(o *splitOptions) { o.seed = seed }
}

// ProcessSplitRatio 把切分比例整理为和为 1 的列表。
//
// 单个比例必须在 (0, 1) 之间，得到 [ratio, 1-ratio]；多个比例必须都大于 0，
// 和不为 1 时按和归一化。
func ProcessSplitRatio(ratios ...float64) ([]float64, error) {
	switch len(ratios) {
	case 0:
		return nil, invalidSplit("no split ratio given")
	case 1:
		r := ratios[0]
		if math.IsNaN(r) || r <= 0 || r >= 1 {
			return nil, invalidSplit(fmt.Sprintf("split ratio has to be between 0 and 1, got %v", r))
		}
		return []float64{r, 1 - r}, nil
	}

	var sum float64
	for _, r := range ratios {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return nil, invalidSplit(fmt.Sprintf("all split ratios should be larger than 0, got %v", ratios))
		}
		sum += r
	}
	out := slices.Clone(ratios)
	if sum != 1 {
		for i := range out {
			out[i] /= sum
		}
	}
	return out, nil
}

// RandomSplit 以 seed 打乱全部行后按比例切成 len(ratios) 份（单个比例时为两份）。
// 第 i 份的结束位置为 round(前 i 个比例之和 × 行数)，round 为四舍六入五取偶。
func RandomSplit(t *Table, ratios []float64, opts ...SplitOption) ([]*Table, error) {
	o := defaultSplitOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ratios, err := ProcessSplitRatio(ratios...)
	if err != nil {
		return nil, err
	}
	rows := shuffledRows(t.Len(), o.seed)
	return takeParts(t, splitRows(rows, ratios)), nil
}

// StratifiedSplit 按用户（或物品）分组，组内以 seed 打乱后按比例切分，
// 再把各组的同一份拼接起来，使每个用户在各份中的占比都接近给定比例。
// 分组按 ID 升序拼接。
func StratifiedSplit(t *Table, ratios []float64, opts ...SplitOption) ([]*Table, error) {
	return groupSplit(t, ratios, true, opts)
}

// ChronoSplit 与 StratifiedSplit 相同，但组内按时间升序排列而不打乱，
// 每个用户最早的交互进入第一份。
func ChronoSplit(t *Table, ratios []float64, opts ...SplitOption) ([]*Table, error) {
	return groupSplit(t, ratios, false, opts)
}

func groupSplit(t *Table, ratios []float64, random bool, opts []SplitOption) ([]*Table, error) {
	o := defaultSplitOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.filterBy != FilterByUser && o.filterBy != FilterByItem {
		return nil, invalidSplit(fmt.Sprintf("filter_by should be either 'user' or 'item', got %q", o.filterBy))
	}
	if o.minRating < 1 {
		return nil, invalidSplit(fmt.Sprintf("min_rating should be larger than or equal to 1, got %d", o.minRating))
	}
	if err := RequireColumns(t, o.userCol, o.itemCol); err != nil {
		return nil, err
	}
	var ts *Column
	if !random {
		if err := RequireColumns(t, o.timestampCol); err != nil {
			return nil, err
		}
		ts, _ = t.Column(o.timestampCol)
	}
	ratios, err := ProcessSplitRatio(ratios...)
	if err != nil {
		return nil, err
	}

	byCol := o.userCol
	if o.filterBy == FilterByItem {
		byCol = o.itemCol
	}
	key, _ := t.Column(byCol)
	groups := groupRows(key)

	parts := make([][]int, len(ratios))
	dropped := 0
	for _, g := range groups {
		if len(g.rows) < o.minRating {
			dropped += len(g.rows)
			continue
		}
		rows := g.rows
		if random {
			rng := newRand(o.seed)
			rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		} else {
			slices.SortStableFunc(rows, func(a, b int) int { return compareValues(ts.Value(a), ts.Value(b)) })
		}
		for i, p := range splitRows(rows, ratios) {
			parts[i] = append(parts[i], p...)
		}
	}

	logging.Debug().
		Str("by", o.filterBy).
		Int("groups", len(groups)).
		Int("dropped_rows", dropped).
		Bool("random", random).
		Msg("grouped split")
	return takeParts(t, parts), nil
}

type rowGroup struct {
	key  any
	rows []int
}

// groupRows 按列取值分组，组按取值升序，组内保持行序。
func groupRows(c *Column) []*rowGroup {
	index := make(map[string]*rowGroup)
	var groups []*rowGroup
	for r := 0; r < c.Len(); r++ {
		v := c.Value(r)
		k := valueKey(v)
		g, ok := index[k]
		if !ok {
			g = &rowGroup{key: v}
			index[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	slices.SortStableFunc(groups, func(a, b *rowGroup) int { return compareValues(a.key, b.key) })
	return groups
}

func shuffledRows(n int, seed uint64) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	rng := newRand(seed)
	rng.Shuffle(n, func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

// splitRows 按累计比例切分 rows，ratios 之和为 1。
func splitRows(rows []int, ratios []float64) [][]int {
	parts := make([][]int, len(ratios))
	n := len(rows)
	start := 0
	var cum float64
	for i, r := range ratios {
		end := n
		if i < len(ratios)-1 {
			cum += r
			end = min(max(int(math.RoundToEven(cum*float64(n))), start), n)
		}
		parts[i] = rows[start:end]
		start = end
	}
	return parts
}

func takeParts(t *Table, parts [][]int) []*Table {
	out := make([]*Table, len(parts))
	for i, rows := range parts {
		out[i] = t.Take(rows)
	}
	return out
}

func invalidSplit(msg string) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, msg)
}
