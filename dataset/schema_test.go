package dataset

import "testing"

func TestHasColumns(t *testing.T) {
	tbl := MustTable(NewIntColumn("userID", []int64{1}), NewIntColumn("itemID", []int64{2}))
	if !HasColumns(tbl, "userID", "itemID") {
		t.Error("HasColumns() = false, want true")
	}
	if HasColumns(tbl, "userID", "rating") {
		t.Error("HasColumns() = true, want false")
	}
}

func TestHasSameBaseKind(t *testing.T) {
	a := MustTable(
		NewIntColumn("userID", []int64{1}),
		NewFloatColumn("rating", []float64{4.5}),
	)
	b := MustTable(
		NewIntColumn("userID", []int64{7, 8}),
		NewIntColumn("rating", []int64{4, 5}),
	)
	c := MustTable(NewIntColumn("userID", []int64{1}))

	tests := []struct {
		name    string
		a, b    *Table
		columns []string
		want    bool
	}{
		{name: "shared int column", a: a, b: b, columns: []string{"userID"}, want: true},
		{name: "int vs float", a: a, b: b, columns: []string{"rating"}, want: false},
		{name: "all columns differ in kind", a: a, b: b, want: false},
		{name: "column sets differ", a: a, b: c, want: false},
		{name: "missing column", a: a, b: c, columns: []string{"rating"}, want: false},
		{name: "same table", a: a, b: a, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasSameBaseKind(tt.a, tt.b, tt.columns...); got != tt.want {
				t.Errorf("HasSameBaseKind() = %v, want %v", got, tt.want)
			}
		})
	}
}
