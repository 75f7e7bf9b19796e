package feature

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/libffm"
	"github.com/rushteam/recodata/store"
)

func labeled() *dataset.Table {
	return dataset.MustTable(
		dataset.NewIntColumn("userID", []int64{1, 1, 2}),
		dataset.NewIntColumn("itemID", []int64{10, 20, 10}),
		dataset.NewIntColumn("label", []int64{1, 0, 1}),
		dataset.NewFloatColumn("score", []float64{0.5, 1, 2}),
	)
}

func strs(t *testing.T, tbl *dataset.Table, name string) []string {
	t.Helper()
	c, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %s missing", name)
	}
	return c.Strings()
}

func TestSelectNode(t *testing.T) {
	n := &SelectNode{
		Columns:     []string{"label", "userID", "itemID"},
		Categorical: []string{"userID", "itemID"},
		Rename:      map[string]string{"userID": "user"},
	}
	in := labeled()
	out, err := n.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got, want := out.Columns(), []string{"label", "user", "itemID"}; !slices.Equal(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if got, want := strs(t, out, "user"), []string{"1", "1", "2"}; !slices.Equal(got, want) {
		t.Errorf("user = %v, want %v", got, want)
	}
	if c, _ := in.Column("userID"); c.Kind() != dataset.KindInt {
		t.Error("input table modified")
	}

	errCases := []*SelectNode{
		{Columns: []string{"nope"}},
		{Categorical: []string{"nope"}},
		{Rename: map[string]string{"nope": "x"}},
		{Rename: map[string]string{"userID": "itemID"}},
	}
	for i, bad := range errCases {
		if _, err := bad.Process(context.Background(), in); !core.IsSchemaError(err) {
			t.Errorf("case %d error = %v, want schema error", i, err)
		}
	}
}

func TestEncodeNode_FitAndPersist(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	prep := &SelectNode{Categorical: []string{"userID", "itemID"}}
	in, err := prep.Process(ctx, labeled())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "train.ffm")
	n := &EncodeNode{RatingCol: "label", Filepath: path, Store: ms, Key: "encoder:ml-100k"}
	out, err := n.Process(ctx, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got, want := strs(t, out, "userID"), []string{"1:1:1", "1:1:1", "1:2:1"}; !slices.Equal(got, want) {
		t.Errorf("userID tokens = %v, want %v", got, want)
	}
	if got, want := strs(t, out, "score"), []string{"3:3:0.5", "3:3:1.0", "3:3:2.0"}; !slices.Equal(got, want) {
		t.Errorf("score tokens = %v, want %v", got, want)
	}
	if n.Encoder() == nil || n.Encoder().FeatureCount() != 4 {
		t.Fatalf("encoder = %+v, want 4 features", n.Encoder())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	samples, err := libffm.ReadSamples(f)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if len(samples) != 3 || samples[1].Label != 0 {
		t.Errorf("samples = %d, second label = %v", len(samples), samples[1].Label)
	}

	stored, err := libffm.LoadEncoder(ctx, ms, "encoder:ml-100k")
	if err != nil {
		t.Fatalf("LoadEncoder() error = %v", err)
	}
	if idx, ok := stored.FeatureIndex("itemID", "20"); !ok || idx != 4 {
		t.Errorf("stored itemID=20 index = %d, %v; want 4", idx, ok)
	}
}

func TestEncodeNode_Reuse(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()

	train := dataset.MustTable(
		dataset.NewFloatColumn("rating", []float64{1, 0}),
		dataset.NewStringColumn("genre", []string{"Drama", "Comedy"}),
	)
	test := dataset.MustTable(
		dataset.NewFloatColumn("rating", []float64{0}),
		dataset.NewStringColumn("genre", []string{"Comedy"}),
	)
	unseen := dataset.MustTable(
		dataset.NewFloatColumn("rating", []float64{0}),
		dataset.NewStringColumn("genre", []string{"Horror"}),
	)

	fit := &EncodeNode{Store: ms, Key: "enc", Reuse: true}
	if _, err := fit.Process(ctx, train); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}

	reuse := &EncodeNode{Store: ms, Key: "enc", Reuse: true}
	out, err := reuse.Process(ctx, test)
	if err != nil {
		t.Fatalf("reuse Process() error = %v", err)
	}
	if got := strs(t, out, "genre"); !slices.Equal(got, []string{"1:2:1"}) {
		t.Errorf("genre tokens = %v, want [1:2:1]", got)
	}

	if _, err := reuse.Process(ctx, unseen); !core.IsUnseenFeature(err) {
		t.Errorf("unseen error = %v, want unseen feature", err)
	}

	refit := &EncodeNode{Store: ms, Key: "enc"}
	out, err = refit.Process(ctx, unseen)
	if err != nil {
		t.Fatalf("refit Process() error = %v", err)
	}
	if got := strs(t, out, "genre"); !slices.Equal(got, []string{"1:1:1"}) {
		t.Errorf("refit genre tokens = %v, want [1:1:1]", got)
	}
}

func TestEncodeNode_ReuseInMemory(t *testing.T) {
	ctx := context.Background()
	train := dataset.MustTable(
		dataset.NewFloatColumn("rating", []float64{1, 0}),
		dataset.NewStringColumn("genre", []string{"Drama", "Comedy"}),
	)
	test := dataset.MustTable(
		dataset.NewFloatColumn("rating", []float64{0}),
		dataset.NewStringColumn("genre", []string{"Comedy"}),
	)

	n := &EncodeNode{}
	if _, err := n.Process(ctx, train); err != nil {
		t.Fatalf("train Process() error = %v", err)
	}
	n.Reuse = true
	testPath := filepath.Join(t.TempDir(), "test.ffm")
	n.Filepath = testPath
	out, err := n.Process(ctx, test)
	if err != nil {
		t.Fatalf("test Process() error = %v", err)
	}
	if got := strs(t, out, "genre"); !slices.Equal(got, []string{"1:2:1"}) {
		t.Errorf("genre tokens = %v, want [1:2:1] from the training index", got)
	}
	if got := n.Encoder().Filepath(); got != testPath {
		t.Errorf("encoder file = %q, want %q", got, testPath)
	}
	if _, err := os.Stat(testPath); err != nil {
		t.Errorf("test file not written: %v", err)
	}
}

func TestEncodeNode_FitCache(t *testing.T) {
	ctx := context.Background()
	n := &EncodeNode{RatingCol: "label"}
	if info := n.FitCacheInfo(); info.Hits != 0 || info.MaxSize != fitCacheSize {
		t.Errorf("initial FitCacheInfo() = %+v", info)
	}

	if _, err := n.Process(ctx, labeled()); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	first := n.Encoder()
	// 内容相同、指针不同的表命中缓存
	if _, err := n.Process(ctx, labeled()); err != nil {
		t.Fatalf("second Process() error = %v", err)
	}
	info := n.FitCacheInfo()
	if info.Hits != 1 || info.Misses != 1 || info.CurrSize != 1 {
		t.Errorf("FitCacheInfo() = %+v, want 1 hit, 1 miss, 1 entry", info)
	}
	if n.Encoder().FeatureCount() != first.FeatureCount() {
		t.Errorf("cached encoder features = %d, want %d", n.Encoder().FeatureCount(), first.FeatureCount())
	}

	other := labeled().Drop("score")
	if _, err := n.Process(ctx, other); err != nil {
		t.Fatalf("third Process() error = %v", err)
	}
	if info := n.FitCacheInfo(); info.Misses != 2 || info.CurrSize != 2 {
		t.Errorf("FitCacheInfo() after new table = %+v, want 2 misses, 2 entries", info)
	}
}
