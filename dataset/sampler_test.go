package dataset

import (
	"fmt"
	"math"
	"testing"

	"github.com/rushteam/recodata/core"
)

func interactions() *Table {
	return MustTable(
		NewIntColumn("userID", []int64{3, 1, 2, 1}),
		NewIntColumn("itemID", []int64{3, 1, 2, 4}),
		NewFloatColumn("rating", []float64{5, 4, 3, 2}),
	)
}

func TestNegativeSampleCount(t *testing.T) {
	tests := []struct {
		positives, available int
		ratio                float64
		want                 int
	}{
		{positives: 1, available: 3, ratio: 1, want: 1},
		{positives: 3, available: 10, ratio: 0.5, want: 2},
		{positives: 5, available: 10, ratio: 0.5, want: 2}, // 2.5 取偶
		{positives: 7, available: 10, ratio: 0.5, want: 4}, // 3.5 取偶
		{positives: 1, available: 10, ratio: 0, want: 1},
		{positives: 4, available: 2, ratio: 1, want: 2},
		{positives: 2, available: 0, ratio: 1, want: 0},
		{positives: 2, available: 100, ratio: 3, want: 6},
		{positives: 1, available: 5, ratio: 1e19, want: 5},
		{positives: 1, available: 5, ratio: math.Inf(1), want: 5},
		{positives: math.MaxInt32, available: 7, ratio: math.MaxFloat64, want: 7},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("k=%d m=%d r=%v", tt.positives, tt.available, tt.ratio)
		t.Run(name, func(t *testing.T) {
			if got := NegativeSampleCount(tt.positives, tt.available, tt.ratio); got != tt.want {
				t.Errorf("NegativeSampleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNegativeFeedbackSampler(t *testing.T) {
	in := interactions()
	got, err := NegativeFeedbackSampler(in)
	if err != nil {
		t.Fatalf("NegativeFeedbackSampler() error = %v", err)
	}
	if want := []string{"userID", "itemID", "label"}; fmt.Sprint(got.Columns()) != fmt.Sprint(want) {
		t.Fatalf("Columns() = %v, want %v", got.Columns(), want)
	}

	users, _ := got.Column("userID")
	items, _ := got.Column("itemID")
	labels, _ := got.Column("label")

	// user 1: 2 正样本 + 2 负样本（候选 {2,3}）；user 2、3：各 1 正 1 负
	wantUsers := []int64{1, 1, 1, 1, 2, 2, 3, 3}
	wantLabels := []int64{1, 1, 0, 0, 1, 0, 1, 0}
	if got.Len() != len(wantUsers) {
		t.Fatalf("rows = %d, want %d", got.Len(), len(wantUsers))
	}
	for r := range wantUsers {
		if users.Ints()[r] != wantUsers[r] || labels.Ints()[r] != wantLabels[r] {
			t.Errorf("row %d = (user %d, label %d), want (user %d, label %d)",
				r, users.Ints()[r], labels.Ints()[r], wantUsers[r], wantLabels[r])
		}
	}
	if items.Ints()[0] != 1 || items.Ints()[1] != 4 {
		t.Errorf("user 1 positives = %v, want input order [1 4]", items.Ints()[:2])
	}

	seen := NewKeySet(in, "userID", "itemID")
	negatives := map[string]bool{}
	for r := 0; r < got.Len(); r++ {
		if labels.Ints()[r] != 0 {
			continue
		}
		u, i := users.Ints()[r], items.Ints()[r]
		if seen.Contains(u, i) {
			t.Errorf("negative (%d, %d) is an observed interaction", u, i)
		}
		key := fmt.Sprintf("%d/%d", u, i)
		if negatives[key] {
			t.Errorf("negative %s sampled twice", key)
		}
		negatives[key] = true
	}
	if in.Width() != 3 || in.Len() != 4 {
		t.Error("input table mutated")
	}
}

func TestNegativeFeedbackSampler_Deterministic(t *testing.T) {
	n := 40
	userIDs := make([]int64, 0, n)
	itemIDs := make([]int64, 0, n)
	for u := int64(0); u < 8; u++ {
		for i := int64(0); i < 5; i++ {
			userIDs = append(userIDs, u)
			itemIDs = append(itemIDs, (u*7+i*3)%30)
		}
	}
	in := MustTable(NewIntColumn("userID", userIDs), NewIntColumn("itemID", itemIDs))

	base, err := NegativeFeedbackSampler(in, WithSeed(11), WithRatio(2))
	if err != nil {
		t.Fatalf("NegativeFeedbackSampler() error = %v", err)
	}
	for _, workers := range []int{1, 4, 16} {
		again, err := NegativeFeedbackSampler(in, WithSeed(11), WithRatio(2), WithWorkers(workers))
		if err != nil {
			t.Fatalf("workers=%d: error = %v", workers, err)
		}
		if Fingerprint(again) != Fingerprint(base) {
			t.Errorf("workers=%d: output differs from single worker run", workers)
		}
	}
	if base.Len() != 8*5+8*10 {
		t.Errorf("rows = %d, want %d", base.Len(), 8*5+8*10)
	}
}

func TestNegativeFeedbackSampler_NoCandidates(t *testing.T) {
	in := MustTable(
		NewStringColumn("userID", []string{"u1", "u1", "u2"}),
		NewStringColumn("itemID", []string{"a", "b", "a"}),
	)
	got, err := NegativeFeedbackSampler(in)
	if err != nil {
		t.Fatalf("NegativeFeedbackSampler() error = %v", err)
	}
	users, _ := got.Column("userID")
	items, _ := got.Column("itemID")
	labels, _ := got.Column("label")
	if got.Len() != 4 {
		t.Fatalf("rows = %d, want 4", got.Len())
	}
	for r := 0; r < 2; r++ {
		if users.Strings()[r] != "u1" || labels.Ints()[r] != 1 {
			t.Errorf("row %d = %s/%d, want u1 positive", r, users.Strings()[r], labels.Ints()[r])
		}
	}
	if users.Strings()[3] != "u2" || items.Strings()[3] != "b" || labels.Ints()[3] != 0 {
		t.Errorf("row 3 = %s/%s/%d, want u2/b/0", users.Strings()[3], items.Strings()[3], labels.Ints()[3])
	}
}

func TestNegativeFeedbackSampler_Errors(t *testing.T) {
	if _, err := NegativeFeedbackSampler(interactions(), WithSamplerUserCol("user")); !core.IsSchemaError(err) {
		t.Errorf("missing column: error = %v, want schema error", err)
	}
	if _, err := NegativeFeedbackSampler(interactions(), WithRatio(-1)); !core.IsInvalidInput(err) {
		t.Errorf("negative ratio: error = %v, want invalid input", err)
	}
	for _, r := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if _, err := NegativeFeedbackSampler(interactions(), WithRatio(r)); !core.IsInvalidInput(err) {
			t.Errorf("ratio %v: error = %v, want invalid input", r, err)
		}
	}
}

func TestNegativeFeedbackSampler_CustomColumns(t *testing.T) {
	in := MustTable(
		NewIntColumn("uid", []int64{1, 2}),
		NewIntColumn("iid", []int64{1, 2}),
	)
	got, err := NegativeFeedbackSampler(in,
		WithSamplerUserCol("uid"), WithSamplerItemCol("iid"), WithLabelCol("y"))
	if err != nil {
		t.Fatalf("NegativeFeedbackSampler() error = %v", err)
	}
	if fmt.Sprint(got.Columns()) != "[uid iid y]" {
		t.Errorf("Columns() = %v", got.Columns())
	}
	if got.Len() != 4 {
		t.Errorf("rows = %d, want 4", got.Len())
	}
}
