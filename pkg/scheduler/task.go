package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"StockAtlas/pkg/pipeline"
	"StockAtlas/pkg/store"
)

// Scheduler 任务调度器：定时跑流水线，每天凌晨清理过期热点
type Scheduler struct {
	cron      *cron.Cron
	pipeline  *pipeline.Pipeline
	store     store.Store
	retention time.Duration
}

// NewScheduler 创建任务调度器，retention 是热点的保留时长
func NewScheduler(pl *pipeline.Pipeline, st store.Store, retention time.Duration) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		pipeline:  pl,
		store:     st,
		retention: retention,
	}
}

// Start 启动调度器。pipelineSpec 为空时不做定时采集，只保留清理任务。
func (s *Scheduler) Start(pipelineSpec string) error {
	if pipelineSpec != "" {
		if _, err := s.cron.AddFunc(pipelineSpec, s.runPipeline); err != nil {
			return err
		}
	}

	// 每天凌晨三点清理过期热点
	if _, err := s.cron.AddFunc("0 3 * * *", s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// runPipeline 跑一轮流水线
func (s *Scheduler) runPipeline() {
	log.Println("定时流水线开始...")
	if _, err := s.pipeline.Run(context.Background()); err != nil {
		log.Printf("定时流水线失败: %v", err)
	}
}

// sweep 清理保留期之外的热点
func (s *Scheduler) sweep() {
	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.SweepHotspots(context.Background(), cutoff)
	if err != nil {
		log.Printf("清理过期热点失败: %v", err)
		return
	}
	log.Printf("已清理 %d 条过期热点", removed)
}
