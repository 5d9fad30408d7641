// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"log"
	"sync"

	"StockAtlas/pkg/adapter"
	"StockAtlas/pkg/classifier"
	"StockAtlas/pkg/model"
	"StockAtlas/pkg/normalizer"
	"StockAtlas/pkg/scorer"
	"StockAtlas/pkg/store"
)

// SourceReport 单个来源的本轮执行情况
type SourceReport struct {
	Collected int    `json:"collected"`
	Error     string `json:"error,omitempty"`
}

// Report 一轮流水线的执行报告。流水线总是跑完并返回报告，
// 单条坏记录或单个不可用的来源不会导致整轮中止。
type Report struct {
	Collected int                     `json:"collected"` // 各来源抓到的原始记录总数
	Processed int                     `json:"processed"` // 通过归一化校验、完成分类打分的记录数
	Saved     int                     `json:"saved"`     // 成功写入存储的记录数（含合并后保留已有行）
	Failed    int                     `json:"failed"`    // 写入失败的记录数
	Dropped   int                     `json:"dropped"`   // 归一化阶段丢弃的无效记录数
	Sources   map[string]SourceReport `json:"sources"`
}

// Pipeline 批处理流水线：并行抓取各来源，来源内部顺序执行
// 归一化、分类、打分和写入。
type Pipeline struct {
	adapters   []adapter.SourceAdapter
	runner     *adapter.Runner
	classifier *classifier.Classifier
	scorer     *scorer.Scorer
	store      store.Store
	workers    int
}

// New 创建流水线，workers 限制并行抓取的来源数
func New(
	adapters []adapter.SourceAdapter,
	runner *adapter.Runner,
	cls *classifier.Classifier,
	sc *scorer.Scorer,
	st store.Store,
	workers int,
) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		adapters:   adapters,
		runner:     runner,
		classifier: cls,
		scorer:     sc,
		store:      st,
		workers:    workers,
	}
}

// Run 执行一轮完整的流水线
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{Sources: make(map[string]SourceReport)}
	var mutex sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)

	for _, src := range p.adapters {
		wg.Add(1)
		sem <- struct{}{}
		go func(src adapter.SourceAdapter) {
			defer wg.Done()
			defer func() { <-sem }()

			records, err := p.runner.Run(ctx, src)
			if err != nil {
				log.Printf("来源 %s 本轮贡献为零: %v", src.Name(), err)
				mutex.Lock()
				report.Sources[src.Name()] = SourceReport{Error: err.Error()}
				mutex.Unlock()
				return
			}

			partial := p.process(ctx, src.Name(), records)
			mutex.Lock()
			report.Collected += partial.Collected
			report.Processed += partial.Processed
			report.Saved += partial.Saved
			report.Failed += partial.Failed
			report.Dropped += partial.Dropped
			report.Sources[src.Name()] = SourceReport{Collected: partial.Collected}
			mutex.Unlock()
		}(src)
	}
	wg.Wait()

	log.Printf("流水线完成: 采集 %d, 处理 %d, 入库 %d, 失败 %d, 丢弃 %d",
		report.Collected, report.Processed, report.Saved, report.Failed, report.Dropped)
	return report, nil
}

// process 顺序处理一个来源的输出流
func (p *Pipeline) process(ctx context.Context, source string, records []model.RawEntity) Report {
	partial := Report{Collected: len(records)}

	for _, raw := range records {
		normalized := normalizer.Normalize(raw)
		if normalized.NaturalKey == "" {
			log.Printf("来源 %s 记录校验失败，已丢弃: code=%q name=%q",
				source, raw.Code, raw.DisplayName)
			partial.Dropped++
			continue
		}

		var err error
		switch normalized.Kind {
		case model.KindStock:
			err = p.saveStock(ctx, normalized)
		case model.KindHotspot:
			err = p.saveHotspot(ctx, normalized)
		default:
			partial.Dropped++
			continue
		}

		partial.Processed++
		if err != nil {
			log.Printf("写入失败: key=%s source=%s err=%v", normalized.NaturalKey, source, err)
			partial.Failed++
			continue
		}
		partial.Saved++
	}
	return partial
}

// saveStock 分类并写入一条股票记录
func (p *Pipeline) saveStock(ctx context.Context, raw model.RawEntity) error {
	result := p.classifier.Classify(raw.DisplayName, raw.Validated)

	entity := &model.StockEntity{
		Meta: model.Meta{
			NaturalKey: raw.NaturalKey,
			Source:     raw.Source,
			Confidence: result.Confidence,
			ObservedAt: raw.ObservedAt,
		},
		Code:          raw.Code,
		Name:          raw.DisplayName,
		Market:        raw.Market,
		IndustryCode:  result.IndustryCode,
		IndustryName:  result.IndustryName,
		MappingStatus: result.MappingStatus,
	}

	_, err := p.store.UpsertStock(ctx, entity)
	return err
}

// saveHotspot 抽取、打分并写入一条热点记录
func (p *Pipeline) saveHotspot(ctx context.Context, raw model.RawEntity) error {
	extraction := p.classifier.Extract(raw.Title, raw.Content)

	entity := &model.HotspotEntity{
		Meta: model.Meta{
			NaturalKey: raw.NaturalKey,
			Source:     raw.Source,
			ObservedAt: raw.ObservedAt,
		},
		Title:             raw.Title,
		Content:           raw.Content,
		HotspotType:       raw.HotspotType,
		PublishTime:       raw.PublishTime,
		Keywords:          extraction.Keywords,
		RelatedCompanies:  extraction.RelatedCompanies,
		RelatedIndustries: extraction.RelatedIndustries,
	}
	p.scorer.Score(entity)

	// 抽取和打分完成后热点即视为已处理，置信度随之确定
	entity.Confidence = hotspotConfidence(entity)

	_, err := p.store.UpsertHotspot(ctx, entity)
	return err
}

// hotspotConfidence 热点的置信度反映抽取信号的丰富程度：
// 有任何抽取结果记 0.8，否则 0.5；保持在 (0,1] 内使其参与正常合并。
func hotspotConfidence(h *model.HotspotEntity) float64 {
	if len(h.Keywords) > 0 || len(h.RelatedCompanies) > 0 || len(h.RelatedIndustries) > 0 {
		return 0.8
	}
	return 0.5
}
