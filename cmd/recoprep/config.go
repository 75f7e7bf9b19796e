package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/recodata/dataset"
)

// EnvPrefix 是覆盖配置的环境变量前缀。嵌套字段用双下划线分隔：
// RECODATA_DATA__SIZE=1m、RECODATA_REDIS__KEY_PREFIX=recodata:
const EnvPrefix = "RECODATA_"

// AppConfig 是 recoprep 的运行配置。
type AppConfig struct {
	Data     DataConfig    `koanf:"data"`
	Pipeline string        `koanf:"pipeline" validate:"required"`
	Output   string        `koanf:"output"`
	Timeout  time.Duration `koanf:"timeout"`
	Split    SplitConfig   `koanf:"split"`
	Redis    RedisConfig   `koanf:"redis"`
	Metrics  MetricsConfig `koanf:"metrics"`
	Logging  LoggingConfig `koanf:"logging"`
}

// DataConfig 指定 MovieLens 数据集的位置与读取方式。
type DataConfig struct {
	Dir      string   `koanf:"dir" validate:"required"`
	Size     string   `koanf:"size" validate:"required,oneof=100k 1m 10m 20m"`
	Download bool     `koanf:"download"`
	Header   []string `koanf:"header" validate:"omitempty,min=2"`

	// 电影信息列，都为空时不读取 items 文件
	TitleCol  string `koanf:"title_col"`
	GenresCol string `koanf:"genres_col"`
	YearCol   string `koanf:"year_col"`
}

// SplitConfig 在运行 pipeline 前把评分切成训练集与测试集（或更多份）。
// Method 为空时不切分。第一份之后的每一份复用第一份 fit 的编码器，
// 输出文件名在扩展名前加上 .test、.valid 等后缀。
type SplitConfig struct {
	Method    string    `koanf:"method" validate:"omitempty,oneof=random stratified chrono"`
	Ratios    []float64 `koanf:"ratios" validate:"min=1,dive,gt=0"`
	Seed      uint64    `koanf:"seed"`
	FilterBy  string    `koanf:"filter_by" validate:"oneof=user item"`
	MinRating int       `koanf:"min_rating" validate:"min=1"`
}

type RedisConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Addr      string `koanf:"addr" validate:"required_if=Enabled true"`
	DB        int    `koanf:"db" validate:"min=0"`
	Password  string `koanf:"password"`
	KeyPrefix string `koanf:"key_prefix"`
}

type MetricsConfig struct {
	// Textfile 非空时在运行结束后写出 Prometheus textfile
	Textfile string `koanf:"textfile"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Data: DataConfig{
			Dir:  "data",
			Size: "100k",
		},
		Pipeline: "pipeline.yaml",
		Timeout:  10 * time.Minute,
		Split: SplitConfig{
			Ratios:    []float64{0.75},
			Seed:      dataset.DefaultSplitSeed,
			FilterBy:  dataset.FilterByUser,
			MinRating: 1,
		},
		Redis: RedisConfig{
			Addr:      "127.0.0.1:6379",
			KeyPrefix: "recodata:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig 依次叠加默认值、YAML 文件（path 非空时）与 RECODATA_ 环境变量，最后校验。
func LoadConfig(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	// 环境变量里的列表写成逗号分隔
	for _, key := range []string{"data.header", "split.ratios"} {
		if s, ok := k.Get(key).(string); ok {
			if err := k.Set(key, splitList(s)); err != nil {
				return nil, fmt.Errorf("set %s: %w", key, err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate 校验配置，错误信息使用 koanf 的字段路径。
func (c *AppConfig) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "AppConfig."))
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// envKey 把 RECODATA_REDIS__KEY_PREFIX 转为 redis.key_prefix。
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
