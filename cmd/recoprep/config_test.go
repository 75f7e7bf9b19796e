package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Data.Size != "100k" || cfg.Pipeline != "pipeline.yaml" || cfg.Timeout != 10*time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Redis.Enabled || cfg.Redis.KeyPrefix != "recodata:" {
		t.Errorf("redis defaults = %+v", cfg.Redis)
	}
	if cfg.Split.Method != "" || !slices.Equal(cfg.Split.Ratios, []float64{0.75}) || cfg.Split.Seed != 42 {
		t.Errorf("split defaults = %+v", cfg.Split)
	}
}

func TestLoadConfig_Split(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.yaml", `
split:
  method: chrono
  min_rating: 3
`)
	t.Setenv("RECODATA_SPLIT__RATIOS", "0.6, 0.2,0.2")
	t.Setenv("RECODATA_SPLIT__FILTER_BY", "item")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := SplitConfig{Method: "chrono", Ratios: []float64{0.6, 0.2, 0.2}, Seed: 42, FilterBy: "item", MinRating: 3}
	if got := cfg.Split; got.Method != want.Method || !slices.Equal(got.Ratios, want.Ratios) ||
		got.Seed != want.Seed || got.FilterBy != want.FilterBy || got.MinRating != want.MinRating {
		t.Errorf("split = %+v, want %+v", got, want)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "app.yaml", `
data:
  dir: /srv/movielens
  size: 20m
  genres_col: genres
pipeline: train.yaml
timeout: 90s
logging:
  level: debug
`)
	t.Setenv("RECODATA_DATA__SIZE", "1m")
	t.Setenv("RECODATA_DATA__HEADER", "user, item ,rating")
	t.Setenv("RECODATA_REDIS__KEY_PREFIX", "ml:")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Data.Dir != "/srv/movielens" || cfg.Data.GenresCol != "genres" || cfg.Pipeline != "train.yaml" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Data.Size != "1m" {
		t.Errorf("size = %q, env should override the file", cfg.Data.Size)
	}
	if want := []string{"user", "item", "rating"}; !slices.Equal(cfg.Data.Header, want) {
		t.Errorf("header = %v, want %v", cfg.Data.Header, want)
	}
	if cfg.Redis.KeyPrefix != "ml:" {
		t.Errorf("key prefix = %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown size", "data:\n  size: 5m\n", "data.size"},
		{"redis without addr", "redis:\n  enabled: true\n  addr: \"\"\n", "redis.addr"},
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
		{"short header", "data:\n  header: [user]\n", "data.header"},
		{"unknown split method", "split:\n  method: kfold\n", "split.method"},
		{"zero split ratio", "split:\n  method: random\n  ratios: [0.8, 0]\n", "split.ratios"},
		{"split by session", "split:\n  filter_by: session\n", "split.filterby"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "app.yaml", tt.yaml)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}
