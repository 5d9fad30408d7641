// pkg/adapter/static.go
package adapter

import (
	"context"
	"time"

	"StockAtlas/pkg/model"
)

// StaticStock 配置中内置的一条权威股票记录
type StaticStock struct {
	Code   string       `yaml:"code"`
	Name   string       `yaml:"name"`
	Market model.Market `yaml:"market"`
}

// StaticListAdapter 静态股票名单适配器。名单来自权威来源的配置文件，
// 记录标记为已校验，分类命中时置信度按 1.0 处理。
type StaticListAdapter struct {
	name    string
	entries []StaticStock
}

// NewStaticListAdapter 创建静态名单适配器
func NewStaticListAdapter(name string, entries []StaticStock) *StaticListAdapter {
	if name == "" {
		name = "static"
	}
	return &StaticListAdapter{name: name, entries: entries}
}

// Name 返回来源名
func (a *StaticListAdapter) Name() string { return a.name }

// Fetch 返回名单内容，不涉及网络
func (a *StaticListAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	now := time.Now()
	records := make([]model.RawEntity, 0, len(a.entries))
	for _, entry := range a.entries {
		records = append(records, model.RawEntity{
			Kind:        model.KindStock,
			Source:      a.name,
			Code:        entry.Code,
			DisplayName: entry.Name,
			Market:      entry.Market,
			ObservedAt:  now,
			Validated:   true,
		})
	}
	return records, nil
}
