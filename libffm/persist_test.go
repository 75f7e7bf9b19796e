package libffm

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/store"
)

func TestSaveLoadEncoder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	enc, err := NewConverter().Fit(featureTable(), "rating")
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := SaveEncoder(ctx, s, "encoder:test", enc); err != nil {
		t.Fatalf("SaveEncoder() error = %v", err)
	}
	loaded, err := LoadEncoder(ctx, s, "encoder:test")
	if err != nil {
		t.Fatalf("LoadEncoder() error = %v", err)
	}

	if loaded.RatingColumn() != "rating" || !slices.Equal(loaded.FieldNames(), enc.FieldNames()) {
		t.Errorf("loaded encoder = %v/%v", loaded.RatingColumn(), loaded.FieldNames())
	}
	if !slices.Equal(loaded.Features(), enc.Features()) {
		t.Errorf("Features() = %v, want %v", loaded.Features(), enc.Features())
	}

	want, _ := enc.Transform(featureTable())
	got, err := loaded.Transform(featureTable())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	for _, name := range want.Columns() {
		if !slices.Equal(column(t, got, name), column(t, want, name)) {
			t.Errorf("column %s differs after reload", name)
		}
	}

	if _, err := LoadEncoder(ctx, s, "encoder:none"); !core.IsStoreNotFound(err) {
		t.Errorf("LoadEncoder(missing) error = %v, want not found", err)
	}
}

func TestEncoder_UnmarshalRejectsBadState(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no rating", `{"rating_column":"","fields":[],"features":[]}`},
		{"gap in index", `{"rating_column":"r","fields":[{"name":"f","kind":"string"}],"features":[{"field":"f","value":"a","index":2}]}`},
		{"numeric field feature", `{"rating_column":"r","fields":[{"name":"f","kind":"int"}],"features":[{"field":"f","value":"a","index":1}]}`},
		{"unknown field", `{"rating_column":"r","fields":[],"features":[{"field":"f","value":"a","index":1}]}`},
		{"bool field", `{"rating_column":"r","fields":[{"name":"f","kind":"bool"}],"features":[]}`},
		{"unknown kind", `{"rating_column":"r","fields":[{"name":"f","kind":"decimal"}],"features":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var enc Encoder
			if err := json.Unmarshal([]byte(tt.data), &enc); err == nil {
				t.Error("Unmarshal() should fail")
			}
		})
	}
}
