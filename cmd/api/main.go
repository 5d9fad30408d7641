package main

import (
	"context"
	"log"
	"os"
	"time"

	"StockAtlas/pkg/adapter"
	"StockAtlas/pkg/aggregator"
	"StockAtlas/pkg/api"
	"StockAtlas/pkg/classifier"
	"StockAtlas/pkg/config"
	"StockAtlas/pkg/merger"
	"StockAtlas/pkg/pipeline"
	"StockAtlas/pkg/scheduler"
	"StockAtlas/pkg/scorer"
	"StockAtlas/pkg/store"
)

func main() {
	log.Println("启动API服务...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	ruleSet, err := config.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		log.Fatalf("加载规则配置失败: %v\n", err)
	}

	db, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("连接数据库失败: %v\n", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("建表失败: %v\n", err)
	}

	policy := merger.NewPolicy(ruleSet.SourcePriority)
	st := store.NewGormStore(db, policy)

	if len(ruleSet.IndustryTree) > 0 {
		if err := st.SaveIndustryNodes(context.Background(), ruleSet.IndustryTree); err != nil {
			log.Fatalf("写入行业树失败: %v\n", err)
		}
	}

	adapters, closers := buildAdapters(cfg)
	defer func() {
		for _, close := range closers {
			close()
		}
	}()

	runner := adapter.NewRunner(
		cfg.Pipeline.FetchTimeout,
		cfg.Pipeline.FetchRetries,
		cfg.Pipeline.FetchBackoff,
	)
	cls := classifier.New(ruleSet.Classification, ruleSet.Vocabulary)
	sc := scorer.New(ruleSet.Lexicon)
	pl := pipeline.New(adapters, runner, cls, sc, st, cfg.Pipeline.Workers)
	agg := aggregator.New(st, 10)

	retention := time.Duration(cfg.Pipeline.RetentionDays) * 24 * time.Hour
	sched := scheduler.NewScheduler(pl, st, retention)
	if err := sched.Start(cfg.Pipeline.CronSpec); err != nil {
		log.Fatalf("启动调度器失败: %v\n", err)
	}
	defer sched.Stop()

	server := api.NewServer(cfg.API.Port)
	server.SetupRoutes(api.NewHandlers(st, agg, pl, ruleSet))
	server.Start()
}

// buildAdapters 按配置装配启用的数据源适配器
func buildAdapters(cfg *config.Config) ([]adapter.SourceAdapter, []func() error) {
	var adapters []adapter.SourceAdapter
	var closers []func() error

	if cfg.DataSources.Eastmoney.Enabled {
		adapters = append(adapters,
			adapter.NewEastmoneySpotAdapter("eastmoney", cfg.DataSources.Eastmoney.BaseURL))
	}
	if cfg.DataSources.Static.Enabled {
		adapters = append(adapters,
			adapter.NewStaticListAdapter("static", cfg.DataSources.Static.Stocks))
	}
	if cfg.DataSources.CSV.Enabled {
		adapters = append(adapters,
			adapter.NewCSVSnapshotAdapter("csv", cfg.DataSources.CSV.Path))
	}
	if cfg.DataSources.Cls.Enabled {
		adapters = append(adapters,
			adapter.NewClsNewsAdapter("cls", cfg.DataSources.Cls.BaseURL))
	}
	if cfg.NATS.Enabled {
		natsAdapter, err := adapter.NewNatsNewsAdapter(
			"cls-nats",
			cfg.NATS.URL,
			cfg.NATS.ClusterID,
			cfg.NATS.ClientID,
			cfg.NATS.Subject,
		)
		if err != nil {
			log.Fatalf("连接NATS失败: %v\n", err)
		}
		adapters = append(adapters, natsAdapter)
		closers = append(closers, natsAdapter.Close)
	}

	return adapters, closers
}
