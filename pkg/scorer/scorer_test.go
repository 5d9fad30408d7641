package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StockAtlas/pkg/model"
)

func newTestScorer(now time.Time) *Scorer {
	s := New(DefaultLexicon())
	s.now = func() time.Time { return now }
	return s
}

func TestSentiment(t *testing.T) {
	s := New(DefaultLexicon())

	cases := []struct {
		name string
		text string
		want float64
	}{
		{name: "无情感词", text: "今日开盘", want: 0.0},
		{name: "单个正向词", text: "股价上涨", want: 0.15},
		{name: "两个正向词", text: "上涨后突破前高", want: 0.3},
		{name: "正向词截断到0.9", text: "上涨 上涨 上涨 上涨 上涨 上涨 上涨", want: 0.9},
		{name: "单个负向词", text: "存在风险", want: -0.15},
		{name: "负向词截断到-0.9", text: "下跌 下跌 下跌 下跌 下跌 下跌 下跌", want: -0.9},
		{name: "正负相等非零时中性", text: "上涨之后下跌", want: 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.sentiment(tc.text)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestSentimentCountsRepeats(t *testing.T) {
	s := New(DefaultLexicon())

	// 同一个词出现两次按两次计数
	got := s.sentiment("上涨，继续上涨")
	assert.InDelta(t, 0.3, got, 1e-9)
}

func TestHeatPolicyScenario(t *testing.T) {
	now := time.Now()
	s := newTestScorer(now)

	// 政策类热点，两次热度关键词命中，情感分超过 0.5：
	// 50 + 8*2 + 15 + 10 = 91
	h := &model.HotspotEntity{
		Title:       "重大政策出台，行业迎来重大利好",
		Content:     "多项举措上涨预期强烈，突破在即，创新高可期",
		HotspotType: model.HotspotPolicy,
		PublishTime: now,
	}
	s.Score(h)

	assert.InDelta(t, 0.6, h.SentimentScore, 1e-9)
	assert.InDelta(t, 91.0, h.HeatScore, 1e-9)
	assert.Equal(t, model.LevelVeryHigh, h.HotspotLevel)
	assert.Equal(t, model.StatusActive, h.Status)
}

func TestHeatHotKeywordsNotDeduplicated(t *testing.T) {
	now := time.Now()
	s := newTestScorer(now)

	h := &model.HotspotEntity{
		Title:       "突发！突发！",
		HotspotType: model.HotspotNews,
		PublishTime: now,
	}
	s.Score(h)

	// 50 + 8*2 + 5 = 71
	assert.InDelta(t, 71.0, h.HeatScore, 1e-9)
	assert.Equal(t, model.LevelHigh, h.HotspotLevel)
}

func TestHeatCompanyBonus(t *testing.T) {
	now := time.Now()
	s := newTestScorer(now)

	h := &model.HotspotEntity{
		Title:            "四家公司公告",
		HotspotType:      model.HotspotMarket,
		PublishTime:      now,
		RelatedCompanies: []string{"A", "B", "C", "D"},
	}
	s.Score(h)

	// 50 + 5，市场类无类型加成
	assert.InDelta(t, 55.0, h.HeatScore, 1e-9)
}

func TestHeatClampUpper(t *testing.T) {
	now := time.Now()
	s := newTestScorer(now)

	h := &model.HotspotEntity{
		Title:       "重大 突发 紧急 重磅 首次 历史性 暴涨",
		Content:     "重大 突发 紧急 重磅 首次 历史性 暴跌",
		HotspotType: model.HotspotPolicy,
		PublishTime: now,
	}
	s.Score(h)

	assert.Equal(t, 100.0, h.HeatScore)
	assert.Equal(t, model.LevelVeryHigh, h.HotspotLevel)
}

func TestScoreBounds(t *testing.T) {
	now := time.Now()
	s := newTestScorer(now)

	texts := []string{
		"", "上涨", "下跌 暴跌 亏损 风险 警告 下滑 跌停 利空 创新低",
		"重大 重大 重大 重大 重大 重大 重大 重大",
	}
	for _, text := range texts {
		h := &model.HotspotEntity{Title: text, HotspotType: model.HotspotNews, PublishTime: now}
		s.Score(h)
		assert.GreaterOrEqual(t, h.HeatScore, 0.0)
		assert.LessOrEqual(t, h.HeatScore, 100.0)
		assert.GreaterOrEqual(t, h.SentimentScore, -1.0)
		assert.LessOrEqual(t, h.SentimentScore, 1.0)
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, model.LevelVeryHigh, LevelFor(80))
	assert.Equal(t, model.LevelHigh, LevelFor(60))
	assert.Equal(t, model.LevelHigh, LevelFor(79.9))
	assert.Equal(t, model.LevelMedium, LevelFor(40))
	assert.Equal(t, model.LevelLow, LevelFor(39.9))
	assert.Equal(t, model.LevelLow, LevelFor(0))
}

func TestStatusFor(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	// 超过 7 天过期，与热度无关
	assert.Equal(t, model.StatusExpired,
		StatusFor(now.Add(-8*24*time.Hour), 95, now))
	// 超过 3 天且热度不足 30 衰退
	assert.Equal(t, model.StatusDeclining,
		StatusFor(now.Add(-4*24*time.Hour), 20, now))
	// 超过 3 天但热度足够仍活跃
	assert.Equal(t, model.StatusActive,
		StatusFor(now.Add(-4*24*time.Hour), 50, now))
	// 新发布的活跃
	assert.Equal(t, model.StatusActive,
		StatusFor(now.Add(-time.Hour), 10, now))
}
