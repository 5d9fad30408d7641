// pkg/scorer/scorer.go
package scorer

import (
	"math"
	"strings"
	"time"

	"StockAtlas/pkg/model"
)

// 情感打分的饱和线性参数：每个词 ±0.15，上下限 ±0.9。
// 这些常数决定历史数据的可比性，不要调整。
const (
	sentimentStep  = 0.15
	sentimentClamp = 0.9
)

// 热度打分参数
const (
	heatBase          = 50.0
	heatPerHotKeyword = 8.0
	heatPolicyBonus   = 15.0
	heatNewsBonus     = 5.0
	heatSentimentHigh = 10.0 // |sentiment| > 0.5 时
	heatCompanyBonus  = 5.0  // 关联公司超过 3 家时
)

// Lexicon 打分词表，构造时注入，运行期间不可变
type Lexicon struct {
	Positive    []string `yaml:"positive"`     // 正向情感词
	Negative    []string `yaml:"negative"`     // 负向情感词
	HotKeywords []string `yaml:"hot_keywords"` // 热度关键词
}

// DefaultLexicon 内置打分词表
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Positive: []string{
			"上涨", "暴涨", "涨停", "利好", "突破", "增长", "盈利", "创新高", "机会",
		},
		Negative: []string{
			"下跌", "暴跌", "跌停", "利空", "亏损", "下滑", "风险", "创新低", "警告",
		},
		HotKeywords: []string{
			"重大", "突发", "紧急", "重磅", "首次", "历史性", "暴涨", "暴跌",
		},
	}
}

// Scorer 热点打分器
type Scorer struct {
	lexicon *Lexicon
	now     func() time.Time
}

// New 创建打分器
func New(lexicon *Lexicon) *Scorer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Scorer{lexicon: lexicon, now: time.Now}
}

// Score 计算热点的情感分和热度分，并推导热度等级和生命周期状态。
// 所有结果写回实体；分值保证落在 [-1,1] 和 [0,100] 区间内。
func (s *Scorer) Score(h *model.HotspotEntity) {
	text := h.Title + " " + h.Content

	h.SentimentScore = s.sentiment(text)
	h.HeatScore = s.heat(text, h)
	h.HotspotLevel = LevelFor(h.HeatScore)
	h.Status = StatusFor(h.PublishTime, h.HeatScore, s.now())
}

// sentiment 统计正负情感词出现次数并做饱和线性映射
func (s *Scorer) sentiment(text string) float64 {
	positive := 0
	for _, word := range s.lexicon.Positive {
		positive += strings.Count(text, word)
	}
	negative := 0
	for _, word := range s.lexicon.Negative {
		negative += strings.Count(text, word)
	}

	switch {
	case positive > negative:
		return math.Min(sentimentClamp, float64(positive)*sentimentStep)
	case negative > positive:
		return math.Max(-sentimentClamp, -float64(negative)*sentimentStep)
	default:
		// 两者相等（含都为零）时情感中性
		return 0.0
	}
}

// heat 从基础分 50 起累加各项加成，最终裁剪到 [0,100]。
// 热度关键词不去重，同一个词出现多次每次都加分。
func (s *Scorer) heat(text string, h *model.HotspotEntity) float64 {
	score := heatBase

	for _, kw := range s.lexicon.HotKeywords {
		score += heatPerHotKeyword * float64(strings.Count(text, kw))
	}

	switch h.HotspotType {
	case model.HotspotPolicy:
		score += heatPolicyBonus
	case model.HotspotNews:
		score += heatNewsBonus
	}

	if math.Abs(h.SentimentScore) > 0.5 {
		score += heatSentimentHigh
	}
	if len(h.RelatedCompanies) > 3 {
		score += heatCompanyBonus
	}

	return math.Max(0.0, math.Min(100.0, score))
}

// LevelFor 由热度分推导热度等级
func LevelFor(heat float64) model.HotspotLevel {
	switch {
	case heat >= 80:
		return model.LevelVeryHigh
	case heat >= 60:
		return model.LevelHigh
	case heat >= 40:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

// StatusFor 由发布时间和热度推导生命周期状态：
// 超过 7 天过期，超过 3 天且热度不足 30 衰退，否则活跃。
func StatusFor(publishTime time.Time, heat float64, now time.Time) model.HotspotStatus {
	age := now.Sub(publishTime)
	switch {
	case age > 7*24*time.Hour:
		return model.StatusExpired
	case age > 3*24*time.Hour && heat < 30:
		return model.StatusDeclining
	default:
		return model.StatusActive
	}
}
