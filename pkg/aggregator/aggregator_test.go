package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAtlas/pkg/model"
	"StockAtlas/pkg/store"
)

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore(nil)
	ctx := context.Background()
	now := time.Now()

	industryBank := "BK0475"
	stocks := []*model.StockEntity{
		{
			Meta:          model.Meta{NaturalKey: "000001", Source: "eastmoney", Confidence: 0.8, ObservedAt: now},
			Code:          "000001",
			Name:          "平安银行",
			Market:        model.MarketMain,
			IndustryCode:  &industryBank,
			MappingStatus: model.MappingAutoMapped,
		},
		{
			Meta:          model.Meta{NaturalKey: "300750", Source: "eastmoney", Confidence: 0.0, ObservedAt: now},
			Code:          "300750",
			Name:          "宁德时代",
			Market:        model.MarketChiNext,
			MappingStatus: model.MappingPending,
		},
	}
	for _, entity := range stocks {
		_, err := st.UpsertStock(ctx, entity)
		require.NoError(t, err)
	}

	hotspots := []*model.HotspotEntity{
		{
			Meta:              model.Meta{NaturalKey: "hs-1", Source: "cls", Confidence: 0.8, ObservedAt: now},
			Title:             "政策热点",
			HotspotType:       model.HotspotPolicy,
			HotspotLevel:      model.LevelVeryHigh,
			Status:            model.StatusActive,
			PublishTime:       now,
			HeatScore:         90,
			SentimentScore:    0.6,
			Keywords:          []string{"融资", "并购"},
			RelatedCompanies:  []string{"平安银行"},
			RelatedIndustries: []string{"BK0475"},
		},
		{
			Meta:              model.Meta{NaturalKey: "hs-2", Source: "cls", Confidence: 0.8, ObservedAt: now},
			Title:             "新闻热点",
			HotspotType:       model.HotspotNews,
			HotspotLevel:      model.LevelMedium,
			Status:            model.StatusActive,
			PublishTime:       now,
			HeatScore:         50,
			SentimentScore:    -0.3,
			Keywords:          []string{"融资"},
			RelatedCompanies:  []string{"平安银行", "招商银行"},
			RelatedIndustries: []string{"BK0475", "BK1036"},
		},
	}
	for _, entity := range hotspots {
		_, err := st.UpsertHotspot(ctx, entity)
		require.NoError(t, err)
	}

	root := "BK0000"
	require.NoError(t, st.SaveIndustryNodes(ctx, []*model.IndustryNode{
		{Code: "BK0000", Name: "全部行业", Level: 1},
		{Code: "BK0475", Name: "银行", Level: 2, ParentCode: &root},
		{Code: "BK1036", Name: "半导体", Level: 2, ParentCode: &root},
	}))

	return st
}

func TestStatistics(t *testing.T) {
	st := seedStore(t)
	agg := New(st, 10)

	stats, err := agg.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.StockTotal)
	assert.Equal(t, int64(2), stats.HotspotTotal)

	assert.Equal(t, int64(1), stats.ByHotspotType[model.HotspotPolicy])
	assert.Equal(t, int64(1), stats.ByHotspotType[model.HotspotNews])
	assert.Equal(t, int64(1), stats.ByHotspotLevel[model.LevelVeryHigh])
	assert.Equal(t, int64(2), stats.ByStatus[model.StatusActive])
	assert.Equal(t, int64(2), stats.BySource["eastmoney"])
	assert.Equal(t, int64(2), stats.BySource["cls"])
	assert.Equal(t, int64(1), stats.ByMarket[model.MarketMain])
	assert.Equal(t, int64(1), stats.ByMarket[model.MarketChiNext])
	assert.Equal(t, int64(1), stats.ByMapping[model.MappingPending])
	assert.Equal(t, int64(1), stats.ByIndustryLevel[1])
	assert.Equal(t, int64(2), stats.ByIndustryLevel[2])

	assert.InDelta(t, 70.0, stats.AvgHeatScore, 1e-9)
	assert.InDelta(t, 0.15, stats.AvgSentimentScore, 1e-9)
}

func TestStatisticsTopN(t *testing.T) {
	st := seedStore(t)
	agg := New(st, 10)

	stats, err := agg.Statistics(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, stats.TopKeywords)
	assert.Equal(t, "融资", stats.TopKeywords[0].Value)
	assert.Equal(t, 2, stats.TopKeywords[0].Count)

	require.NotEmpty(t, stats.TopRelatedCompanies)
	assert.Equal(t, "平安银行", stats.TopRelatedCompanies[0].Value)
	assert.Equal(t, 2, stats.TopRelatedCompanies[0].Count)

	require.NotEmpty(t, stats.TopRelatedIndustries)
	assert.Equal(t, "BK0475", stats.TopRelatedIndustries[0].Value)
}

func TestStatisticsTopNLimit(t *testing.T) {
	st := seedStore(t)
	agg := New(st, 1)

	stats, err := agg.Statistics(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats.TopKeywords, 1)
}

func TestStatisticsEmptyStore(t *testing.T) {
	agg := New(store.NewMemoryStore(nil), 10)

	stats, err := agg.Statistics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.StockTotal)
	assert.Zero(t, stats.HotspotTotal)
	assert.Zero(t, stats.AvgHeatScore)
	assert.Zero(t, stats.AvgSentimentScore)
	assert.Empty(t, stats.TopKeywords)
}
