// Command recoprep 把 MovieLens 评分数据加工成 libffm 训练文件。
//
//	recoprep -config app.yaml
//
// app.yaml 指定数据集、pipeline 定义文件、可选的 Redis 与指标输出；
// 所有配置项都可以用 RECODATA_ 前缀的环境变量覆盖。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/recodata/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the application config (YAML)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "recoprep:", err)
		os.Exit(2)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("recoprep failed")
		stop()
		os.Exit(1)
	}
}
