// pkg/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"StockAtlas/pkg/model"
)

// ErrNotFound 按自然键查询不到记录
var ErrNotFound = errors.New("记录不存在")

// UpsertResult 写入结果
type UpsertResult string

const (
	UpsertInserted UpsertResult = "inserted" // 新增一行
	UpsertUpdated  UpsertResult = "updated"  // 合并后替换已有行
	UpsertKept     UpsertResult = "kept"     // 合并后保留已有行，未写入
)

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StockFilter 股票列表查询条件
type StockFilter struct {
	Market        model.Market
	IndustryCode  string
	MappingStatus model.MappingStatus
	Source        string
	Keyword       string // 代码或名称模糊匹配
	SortBy        string // code / name / confidence / updated_at
	SortOrder     SortOrder
	Page          int
	PageSize      int
}

// HotspotFilter 热点列表查询条件
type HotspotFilter struct {
	Type      model.HotspotType
	Level     model.HotspotLevel
	Status    model.HotspotStatus
	Source    string
	Keyword   string // 标题模糊匹配
	SortBy    string // heat_score / sentiment_score / publish_time / title / confidence / updated_at
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// Snapshot 当前存量数据的一次性读取结果，供聚合器使用
type Snapshot struct {
	Stocks     []*model.StockEntity
	Hotspots   []*model.HotspotEntity
	Industries []*model.IndustryNode
}

// Store 实体存储。Upsert 在写入时持有按键的锁并重新执行合并策略，
// 保证任意并发调用序列之后每个自然键至多存在一行。
type Store interface {
	UpsertStock(ctx context.Context, entity *model.StockEntity) (UpsertResult, error)
	UpsertHotspot(ctx context.Context, entity *model.HotspotEntity) (UpsertResult, error)

	GetStock(ctx context.Context, naturalKey string) (*model.StockEntity, error)
	GetHotspot(ctx context.Context, naturalKey string) (*model.HotspotEntity, error)
	ListStocks(ctx context.Context, filter StockFilter) ([]*model.StockEntity, int64, error)
	ListHotspots(ctx context.Context, filter HotspotFilter) ([]*model.HotspotEntity, int64, error)

	Snapshot(ctx context.Context) (*Snapshot, error)

	// SaveIndustryNodes 整批写入行业树节点，按代码覆盖已有节点
	SaveIndustryNodes(ctx context.Context, nodes []*model.IndustryNode) error

	// SweepHotspots 删除发布时间早于 cutoff 的热点，返回删除行数。
	// 与并发写入互不破坏唯一性约束。
	SweepHotspots(ctx context.Context, cutoff time.Time) (int64, error)
}

const defaultPageSize = 20

// normalizePage 页码从 1 起，页大小缺省 20
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
