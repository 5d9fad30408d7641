// pkg/aggregator/aggregator.go
package aggregator

import (
	"context"
	"fmt"
	"sort"

	"StockAtlas/pkg/model"
	"StockAtlas/pkg/store"
)

// TopItem 频次排行中的一项
type TopItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Statistics 一次快照上计算出的全量汇总。每次调用都重新计算，
// 不做增量维护，结果总是反映最新的合并状态。
type Statistics struct {
	StockTotal   int64 `json:"stock_total"`
	HotspotTotal int64 `json:"hotspot_total"`

	ByHotspotType   map[model.HotspotType]int64   `json:"by_hotspot_type"`
	ByHotspotLevel  map[model.HotspotLevel]int64  `json:"by_hotspot_level"`
	ByStatus        map[model.HotspotStatus]int64 `json:"by_status"`
	BySource        map[string]int64              `json:"by_source"`
	ByMarket        map[model.Market]int64        `json:"by_market"`
	ByMapping       map[model.MappingStatus]int64 `json:"by_mapping_status"`
	ByIndustryLevel map[int]int64                 `json:"by_industry_level"`

	AvgHeatScore      float64 `json:"avg_heat_score"`
	AvgSentimentScore float64 `json:"avg_sentiment_score"`

	TopKeywords          []TopItem `json:"top_keywords"`
	TopRelatedCompanies  []TopItem `json:"top_related_companies"`
	TopRelatedIndustries []TopItem `json:"top_related_industries"`
}

// Aggregator 只读汇总器
type Aggregator struct {
	store store.Store
	topN  int
}

// New 创建汇总器，topN 不合法时取 10
func New(s store.Store, topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{store: s, topN: topN}
}

// Statistics 从存储快照计算全部汇总指标
func (a *Aggregator) Statistics(ctx context.Context) (*Statistics, error) {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取存储快照失败: %w", err)
	}

	stats := &Statistics{
		StockTotal:      int64(len(snap.Stocks)),
		HotspotTotal:    int64(len(snap.Hotspots)),
		ByHotspotType:   make(map[model.HotspotType]int64),
		ByHotspotLevel:  make(map[model.HotspotLevel]int64),
		ByStatus:        make(map[model.HotspotStatus]int64),
		BySource:        make(map[string]int64),
		ByMarket:        make(map[model.Market]int64),
		ByMapping:       make(map[model.MappingStatus]int64),
		ByIndustryLevel: make(map[int]int64),
	}

	for _, node := range snap.Industries {
		stats.ByIndustryLevel[node.Level]++
	}

	for _, stock := range snap.Stocks {
		stats.BySource[stock.Source]++
		stats.ByMapping[stock.MappingStatus]++
		if stock.Market != "" {
			stats.ByMarket[stock.Market]++
		}
	}

	keywordCount := make(map[string]int)
	companyCount := make(map[string]int)
	industryCount := make(map[string]int)
	var heatSum, sentimentSum float64

	for _, hotspot := range snap.Hotspots {
		stats.ByHotspotType[hotspot.HotspotType]++
		stats.ByHotspotLevel[hotspot.HotspotLevel]++
		stats.ByStatus[hotspot.Status]++
		stats.BySource[hotspot.Source]++
		heatSum += hotspot.HeatScore
		sentimentSum += hotspot.SentimentScore

		for _, kw := range hotspot.Keywords {
			keywordCount[kw]++
		}
		for _, company := range hotspot.RelatedCompanies {
			companyCount[company]++
		}
		for _, industry := range hotspot.RelatedIndustries {
			industryCount[industry]++
		}
	}

	if len(snap.Hotspots) > 0 {
		stats.AvgHeatScore = heatSum / float64(len(snap.Hotspots))
		stats.AvgSentimentScore = sentimentSum / float64(len(snap.Hotspots))
	}

	stats.TopKeywords = topN(keywordCount, a.topN)
	stats.TopRelatedCompanies = topN(companyCount, a.topN)
	stats.TopRelatedIndustries = topN(industryCount, a.topN)

	return stats, nil
}

// topN 按次数降序取前 n 项，次数相同时按值排序保证结果稳定
func topN(counts map[string]int, n int) []TopItem {
	items := make([]TopItem, 0, len(counts))
	for value, count := range counts {
		items = append(items, TopItem{Value: value, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Value < items[j].Value
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
