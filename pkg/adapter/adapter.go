// pkg/adapter/adapter.go
package adapter

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockAtlas/pkg/model"
)

// SourceAdapter 数据源适配器。每个外部数据源实现一个适配器，
// 只负责把一个源的原始负载转成 RawEntity 列表，互相独立，单个失败不影响其他源。
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawEntity, error)
}

// FetchError 数据源抓取失败。流水线把它当作该源本轮贡献为零处理，
// 不会让整个批次失败。
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("来源 %s 抓取失败: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Runner 统一的抓取执行器：对所有适配器施加相同的超时和重试退避策略，
// 取代每个采集脚本各写一套重试的做法。
type Runner struct {
	timeout time.Duration
	retries int
	backoff time.Duration
}

// NewRunner 创建抓取执行器。timeout 是单次抓取的独立超时，
// retries 是失败后的额外重试次数，backoff 是首次重试的等待时间，逐次线性递增。
func NewRunner(timeout time.Duration, retries int, backoff time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	if backoff <= 0 {
		backoff = 3 * time.Second
	}
	return &Runner{timeout: timeout, retries: retries, backoff: backoff}
}

// Run 执行一次带超时和重试的抓取
func (r *Runner) Run(ctx context.Context, adapter SourceAdapter) ([]model.RawEntity, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * r.backoff
			log.Printf("来源 %s 第 %d/%d 次重试，等待 %s", adapter.Name(), attempt, r.retries, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &FetchError{Source: adapter.Name(), Err: ctx.Err()}
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		records, err := adapter.Fetch(fetchCtx)
		cancel()
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, &FetchError{Source: adapter.Name(), Err: lastErr}
}
