package dataset

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/pkg/logging"
)

// DefaultSamplerSeed 是负采样的默认随机种子。
const DefaultSamplerSeed = 42

// SamplerOption 配置 NegativeFeedbackSampler。
type SamplerOption func(*samplerOptions)

type samplerOptions struct {
	userCol  string
	itemCol  string
	labelCol string
	ratio    float64
	seed     uint64
	workers  int
}

// WithSamplerUserCol 设置用户列名（默认 userID）。
func WithSamplerUserCol(col string) SamplerOption {
	return func(o *samplerOptions) { o.userCol = col }
}

// WithSamplerItemCol 设置物品列名（默认 itemID）。
func WithSamplerItemCol(col string) SamplerOption {
	return func(o *samplerOptions) { o.itemCol = col }
}

// WithLabelCol 设置输出的标签列名（默认 label）。
func WithLabelCol(col string) SamplerOption {
	return func(o *samplerOptions) { o.labelCol = col }
}

// WithRatio 设置每个用户负样本数相对正样本数的比例（默认 1）。
func WithRatio(ratio float64) SamplerOption {
	return func(o *samplerOptions) { o.ratio = ratio }
}

// WithSeed 设置随机种子（默认 42）。
func WithSeed(seed uint64) SamplerOption {
	return func(o *samplerOptions) { o.seed = seed }
}

// WithWorkers 设置按用户并行采样的协程数（默认 1）。结果与协程数无关。
func WithWorkers(n int) SamplerOption {
	return func(o *samplerOptions) { o.workers = n }
}

// NegativeFeedbackSampler 由只含正反馈的交互表构造带标签的训练表。
//
// 候选负样本为 distinct(user) × distinct(item) 去掉表中已出现的 (user, item)。
// 每个用户保留全部正样本（label=1），再从该用户的候选中无放回地抽取
//
//	min(max(round(正样本数 × ratio), 1), 候选数)
//
// 个负样本（label=0），round 为四舍六入五取偶。没有候选的用户不产生负样本。
//
// 输出列依次为 user、item、label；用户按 ID 升序，每个用户先正样本（保持输入顺序）后负样本。
// 每个用户的抽样都使用以 seed 初始化的独立随机数发生器，相同输入与 seed 的输出完全一致。
func NegativeFeedbackSampler(t *Table, opts ...SamplerOption) (*Table, error) {
	o := samplerOptions{
		userCol:  core.DefaultUserCol,
		itemCol:  core.DefaultItemCol,
		labelCol: core.DefaultLabelCol,
		ratio:    1,
		seed:     DefaultSamplerSeed,
		workers:  1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if math.IsNaN(o.ratio) || math.IsInf(o.ratio, 0) || o.ratio < 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("negative sampling ratio must be a finite number >= 0, got %v", o.ratio))
	}
	if err := RequireColumns(t, o.userCol, o.itemCol); err != nil {
		return nil, err
	}

	interactions, err := t.Select(o.userCol, o.itemCol)
	if err != nil {
		return nil, err
	}
	userCol, _ := interactions.Column(o.userCol)
	itemCol, _ := interactions.Column(o.itemCol)

	users := interactions.Take(distinctRows(userCol)).Drop(o.itemCol)
	items := interactions.Take(distinctRows(itemCol)).Drop(o.userCol)
	candidates, err := UserItemPairs(users, items,
		WithUserCol(o.userCol), WithItemCol(o.itemCol), WithPairFilter(interactions))
	if err != nil {
		return nil, err
	}

	// 按用户分组：正样本来自输入表，负样本候选来自 candidates。
	groups := make(map[string]*userGroup, users.Len())
	order := make([]*userGroup, 0, users.Len())
	userValues, _ := users.Column(o.userCol)
	for r := 0; r < users.Len(); r++ {
		g := &userGroup{user: userValues.Value(r)}
		groups[valueKey(g.user)] = g
		order = append(order, g)
	}
	for r := 0; r < interactions.Len(); r++ {
		g := groups[valueKey(userCol.Value(r))]
		g.positives = append(g.positives, r)
	}
	candUsers, _ := candidates.Column(o.userCol)
	for r := 0; r < candidates.Len(); r++ {
		g := groups[valueKey(candUsers.Value(r))]
		g.candidates = append(g.candidates, r)
	}
	slices.SortStableFunc(order, func(a, b *userGroup) int { return compareValues(a.user, b.user) })

	var eg errgroup.Group
	eg.SetLimit(max(o.workers, 1))
	for _, g := range order {
		eg.Go(func() error {
			g.sample(o.ratio, o.seed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	outUser := emptyColumn(o.userCol, userCol.kind, 0)
	outItem := emptyColumn(o.itemCol, itemCol.kind, 0)
	labels := make([]int64, 0, interactions.Len()*2)
	candItems, _ := candidates.Column(o.itemCol)
	negatives := 0
	for _, g := range order {
		for _, r := range g.positives {
			outUser.appendValue(userCol.Value(r))
			outItem.appendValue(itemCol.Value(r))
			labels = append(labels, 1)
		}
		for _, r := range g.sampled {
			outUser.appendValue(candUsers.Value(r))
			outItem.appendValue(candItems.Value(r))
			labels = append(labels, 0)
		}
		negatives += len(g.sampled)
	}

	logging.Debug().
		Int("users", len(order)).
		Int("items", items.Len()).
		Int("positives", interactions.Len()).
		Int("negatives", negatives).
		Float64("ratio", o.ratio).
		Msg("negative feedback sampled")

	return NewTable(outUser, outItem, NewIntColumn(o.labelCol, labels))
}

type userGroup struct {
	user       any
	positives  []int // 输入表中的行号
	candidates []int // candidates 表中的行号
	sampled    []int
}

// sample 从候选中无放回抽取负样本，结果按抽中的顺序排列。
func (g *userGroup) sample(ratio float64, seed uint64) {
	n := NegativeSampleCount(len(g.positives), len(g.candidates), ratio)
	if n == 0 {
		return
	}
	pool := slices.Clone(g.candidates)
	rng := newRand(seed)
	// 部分 Fisher-Yates：前 n 个位置即为抽样结果
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	g.sampled = pool[:n]
}

// NegativeSampleCount 返回一个用户应抽取的负样本数：
// available 为 0 时为 0，否则为 min(max(round(positives×ratio), 1), available)。
func NegativeSampleCount(positives, available int, ratio float64) int {
	if available <= 0 {
		return 0
	}
	// 先在浮点域截断，超出 int 范围的乘积直接转换结果未定义
	f := math.RoundToEven(float64(positives) * ratio)
	if f >= float64(available) {
		return available
	}
	return max(int(f), 1)
}

// distinctRows 返回每个不同取值第一次出现的行号。
func distinctRows(c *Column) []int {
	rows := lo.Range(c.Len())
	return lo.UniqBy(rows, func(r int) string { return valueKey(c.Value(r)) })
}

func valueKey(v any) string {
	var b strings.Builder
	writeKeyPart(&b, v)
	return b.String()
}

// compareValues 比较同一列中的两个值，用于稳定的输出顺序。
func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		return cmp.Compare(x, b.(string))
	case int64:
		return cmp.Compare(x, b.(int64))
	case float64:
		return cmp.Compare(x, b.(float64))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	default:
		return 0
	}
}
