package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"StockAtlas/pkg/adapter"
	"StockAtlas/pkg/classifier"
	"StockAtlas/pkg/config"
	"StockAtlas/pkg/merger"
	"StockAtlas/pkg/pipeline"
	"StockAtlas/pkg/scorer"
	"StockAtlas/pkg/store"
)

// 单次运行的流水线入口。配置了数据库时写库，否则用内存存储跑一轮
// 并把报告打到标准输出，便于人工核对采集结果。
func main() {
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

	policy := merger.NewPolicy(ruleSet.SourcePriority)

	var st store.Store
	if cfg.Database.Host != "" {
		db, err := store.Open(cfg.DSN())
		if err != nil {
			log.Fatalf("连接数据库失败: %v\n", err)
		}
		if err := store.AutoMigrate(db); err != nil {
			log.Fatalf("建表失败: %v\n", err)
		}
		st = store.NewGormStore(db, policy)
	} else {
		st = store.NewMemoryStore(policy)
	}

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
	pl := pipeline.New(
		adapters,
		runner,
		classifier.New(ruleSet.Classification, ruleSet.Vocabulary),
		scorer.New(ruleSet.Lexicon),
		st,
		cfg.Pipeline.Workers,
	)

	report, err := pl.Run(context.Background())
	if err != nil {
		log.Fatalf("流水线执行失败: %v\n", err)
	}

	output, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(output)
	os.Stdout.Write([]byte("\n"))
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
