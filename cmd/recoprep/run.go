package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rushteam/recodata/config"
	"github.com/rushteam/recodata/core"
	"github.com/rushteam/recodata/dataset"
	"github.com/rushteam/recodata/feature"
	"github.com/rushteam/recodata/movielens"
	"github.com/rushteam/recodata/pipeline"
	"github.com/rushteam/recodata/pkg/logging"
	"github.com/rushteam/recodata/store"
)

// Run 执行一次完整的数据准备：加载评分、运行 pipeline、写出结果与指标。
func Run(ctx context.Context, cfg *AppConfig) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	pcfg, err := pipeline.LoadFromYAML(cfg.Pipeline)
	if err != nil {
		return fmt.Errorf("load pipeline %s: %w", cfg.Pipeline, err)
	}
	if err := config.ValidatePipelineConfig(pcfg); err != nil {
		return err
	}

	s, err := openStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := pcfg.BuildPipeline(config.NewFactory(config.Resources{Store: s}))
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	if cfg.Metrics.Textfile != "" {
		p.Metrics = pipeline.NewMetrics()
	}

	ratings, err := loadRatings(ctx, cfg.Data)
	if err != nil {
		return err
	}
	logging.Info().Str("size", cfg.Data.Size).Int("rows", ratings.Len()).Strs("columns", ratings.Columns()).Msg("ratings loaded")

	parts := []part{{table: ratings}}
	if cfg.Split.Method != "" {
		if parts, err = splitRatings(ratings, cfg.Split, cfg.Data.Header); err != nil {
			return err
		}
	}

	runErr := runParts(ctx, p, parts, cfg.Output)
	// 失败时也写出指标，便于定位出错的 node
	if p.Metrics != nil {
		if err := p.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logging.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("write metrics textfile")
		}
	}
	if runErr != nil {
		return runErr
	}
	logging.Info().Str("pipeline", p.Name).Int("parts", len(parts)).Str("store", s.Name()).Msg("pipeline finished")
	return nil
}

// part 是切分后的一份评分；第一份的 name 为空，输出沿用配置的路径。
type part struct {
	name  string
	table *dataset.Table
}

// runParts 依次对每一份运行 pipeline。第一份之后，所有 libffm.encode 节点改为复用
// 第一份 fit 的编码器，输出文件加上该份的后缀。
func runParts(ctx context.Context, p *pipeline.Pipeline, parts []part, output string) error {
	encoders := encodeNodes(p)
	files := make([]string, len(encoders))
	for i, n := range encoders {
		files[i] = n.Filepath
	}
	base := p.Name

	for i, pt := range parts {
		if i > 0 {
			p.Name = base + "." + pt.name
			for j, n := range encoders {
				n.Reuse = true
				if files[j] != "" {
					n.Filepath = suffixPath(files[j], pt.name)
				}
			}
		}
		out, err := p.Run(ctx, pt.table)
		if err != nil {
			return fmt.Errorf("run pipeline %s: %w", p.Name, err)
		}
		if output != "" {
			if err := writeTable(suffixPath(output, pt.name), out); err != nil {
				return err
			}
		}
		logging.Info().Str("pipeline", p.Name).Int("input_rows", pt.table.Len()).Int("rows", out.Len()).Msg("part finished")
	}

	for _, n := range encoders {
		info := n.FitCacheInfo()
		logging.Debug().Str("node", n.Name()).Int64("hits", info.Hits).Int64("misses", info.Misses).Msg("encoder fit cache")
	}
	return nil
}

func encodeNodes(p *pipeline.Pipeline) []*feature.EncodeNode {
	var out []*feature.EncodeNode
	for _, n := range p.Nodes {
		if en, ok := n.(*feature.EncodeNode); ok {
			out = append(out, en)
		}
	}
	return out
}

// splitRatings 按配置切分评分，各份依次命名为 train、test（三份时为 train、valid、test）。
// header 与 DataConfig.Header 一致，非空时从中取 user、item、timestamp 的列名。
func splitRatings(ratings *dataset.Table, cfg SplitConfig, header []string) ([]part, error) {
	opts := []dataset.SplitOption{
		dataset.WithSplitSeed(cfg.Seed),
		dataset.WithFilterBy(cfg.FilterBy),
		dataset.WithMinRating(cfg.MinRating),
	}
	if len(header) >= 2 {
		opts = append(opts, dataset.WithSplitUserCol(header[0]), dataset.WithSplitItemCol(header[1]))
	}
	if len(header) >= 4 {
		opts = append(opts, dataset.WithSplitTimestampCol(header[3]))
	}
	var (
		tables []*dataset.Table
		err    error
	)
	switch cfg.Method {
	case "random":
		tables, err = dataset.RandomSplit(ratings, cfg.Ratios, opts...)
	case "stratified":
		tables, err = dataset.StratifiedSplit(ratings, cfg.Ratios, opts...)
	case "chrono":
		tables, err = dataset.ChronoSplit(ratings, cfg.Ratios, opts...)
	default:
		return nil, fmt.Errorf("unknown split method %q", cfg.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("split ratings: %w", err)
	}

	names := partNames(len(tables))
	parts := make([]part, len(tables))
	for i, t := range tables {
		parts[i] = part{name: names[i], table: t}
		logging.Info().Str("method", cfg.Method).Str("part", names[i]).Int("rows", t.Len()).Msg("ratings split")
	}
	parts[0].name = ""
	return parts, nil
}

func partNames(n int) []string {
	switch n {
	case 2:
		return []string{"train", "test"}
	case 3:
		return []string{"train", "valid", "test"}
	}
	names := make([]string, n)
	names[0] = "train"
	for i := 1; i < n; i++ {
		names[i] = fmt.Sprintf("part%d", i)
	}
	return names
}

// suffixPath 在扩展名前插入后缀：train.ffm → train.test.ffm。suffix 为空时原样返回。
func suffixPath(path, suffix string) string {
	if suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + suffix + ext
}

func openStore(ctx context.Context, cfg RedisConfig) (core.Store, error) {
	if !cfg.Enabled {
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewRedisStore(ctx, cfg.Addr, cfg.DB,
		store.WithRedisPassword(cfg.Password), store.WithKeyPrefix(cfg.KeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return s, nil
}

func loadRatings(ctx context.Context, cfg DataConfig) (*dataset.Table, error) {
	if cfg.Download {
		if _, err := movielens.Download(ctx, http.DefaultClient, cfg.Size, cfg.Dir); err != nil {
			return nil, err
		}
	}
	opts := movielens.ItemOptions{TitleCol: cfg.TitleCol, GenresCol: cfg.GenresCol, YearCol: cfg.YearCol}
	return movielens.LoadRatingsWithItems(cfg.Dir, cfg.Size, cfg.Header, opts)
}

// writeTable 以制表符分隔写出带表头的结果表。
func writeTable(path string, t *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := dataset.WriteDelimited(f, t, "\t", true); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}
