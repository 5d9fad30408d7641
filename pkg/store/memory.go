// pkg/store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"StockAtlas/pkg/merger"
	"StockAtlas/pkg/model"
)

// MemoryStore 内存存储，用于测试和单次运行的命令行形态。
// 写入在互斥锁内完成合并决策，满足按键串行化要求。
type MemoryStore struct {
	policy     *merger.Policy
	mutex      sync.RWMutex
	stocks     map[string]*model.StockEntity
	hotspots   map[string]*model.HotspotEntity
	industries map[string]*model.IndustryNode
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(policy *merger.Policy) *MemoryStore {
	if policy == nil {
		policy = merger.DefaultPolicy()
	}
	return &MemoryStore{
		policy:     policy,
		stocks:     make(map[string]*model.StockEntity),
		hotspots:   make(map[string]*model.HotspotEntity),
		industries: make(map[string]*model.IndustryNode),
	}
}

// UpsertStock 按合并策略写入股票实体
func (s *MemoryStore) UpsertStock(ctx context.Context, entity *model.StockEntity) (UpsertResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, ok := s.stocks[entity.NaturalKey]
	if !ok {
		clone := *entity
		clone.UpdatedAt = time.Now()
		s.stocks[entity.NaturalKey] = &clone
		return UpsertInserted, nil
	}
	if !s.policy.Replaces(existing, entity) {
		return UpsertKept, nil
	}
	clone := *entity
	clone.UpdatedAt = time.Now()
	s.stocks[entity.NaturalKey] = &clone
	return UpsertUpdated, nil
}

// UpsertHotspot 按合并策略写入热点实体
func (s *MemoryStore) UpsertHotspot(ctx context.Context, entity *model.HotspotEntity) (UpsertResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, ok := s.hotspots[entity.NaturalKey]
	if !ok {
		clone := *entity
		clone.UpdatedAt = time.Now()
		s.hotspots[entity.NaturalKey] = &clone
		return UpsertInserted, nil
	}
	if !s.policy.Replaces(existing, entity) {
		return UpsertKept, nil
	}
	clone := *entity
	clone.UpdatedAt = time.Now()
	s.hotspots[entity.NaturalKey] = &clone
	return UpsertUpdated, nil
}

// GetStock 按自然键查询股票
func (s *MemoryStore) GetStock(ctx context.Context, naturalKey string) (*model.StockEntity, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entity, ok := s.stocks[naturalKey]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *entity
	return &clone, nil
}

// GetHotspot 按自然键查询热点
func (s *MemoryStore) GetHotspot(ctx context.Context, naturalKey string) (*model.HotspotEntity, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entity, ok := s.hotspots[naturalKey]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *entity
	return &clone, nil
}

// ListStocks 过滤、排序并分页返回股票列表和总数
func (s *MemoryStore) ListStocks(ctx context.Context, filter StockFilter) ([]*model.StockEntity, int64, error) {
	s.mutex.RLock()
	matched := make([]*model.StockEntity, 0, len(s.stocks))
	for _, entity := range s.stocks {
		if matchStock(entity, filter) {
			clone := *entity
			matched = append(matched, &clone)
		}
	}
	s.mutex.RUnlock()

	sortStocks(matched, filter.SortBy, filter.SortOrder)
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.PageSize), total, nil
}

// ListHotspots 过滤、排序并分页返回热点列表和总数
func (s *MemoryStore) ListHotspots(ctx context.Context, filter HotspotFilter) ([]*model.HotspotEntity, int64, error) {
	s.mutex.RLock()
	matched := make([]*model.HotspotEntity, 0, len(s.hotspots))
	for _, entity := range s.hotspots {
		if matchHotspot(entity, filter) {
			clone := *entity
			matched = append(matched, &clone)
		}
	}
	s.mutex.RUnlock()

	sortHotspots(matched, filter.SortBy, filter.SortOrder)
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.PageSize), total, nil
}

// Snapshot 一次性读取全部存量数据
func (s *MemoryStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap := &Snapshot{
		Stocks:   make([]*model.StockEntity, 0, len(s.stocks)),
		Hotspots: make([]*model.HotspotEntity, 0, len(s.hotspots)),
	}
	for _, entity := range s.stocks {
		clone := *entity
		snap.Stocks = append(snap.Stocks, &clone)
	}
	for _, entity := range s.hotspots {
		clone := *entity
		snap.Hotspots = append(snap.Hotspots, &clone)
	}
	for _, node := range s.industries {
		clone := *node
		snap.Industries = append(snap.Industries, &clone)
	}
	return snap, nil
}

// SaveIndustryNodes 整批写入行业树节点
func (s *MemoryStore) SaveIndustryNodes(ctx context.Context, nodes []*model.IndustryNode) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, node := range nodes {
		clone := *node
		s.industries[node.Code] = &clone
	}
	return nil
}

// SweepHotspots 删除发布时间早于 cutoff 的热点
func (s *MemoryStore) SweepHotspots(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var removed int64
	for key, entity := range s.hotspots {
		if entity.PublishTime.Before(cutoff) {
			delete(s.hotspots, key)
			removed++
		}
	}
	return removed, nil
}

func matchStock(entity *model.StockEntity, filter StockFilter) bool {
	if filter.Market != "" && entity.Market != filter.Market {
		return false
	}
	if filter.IndustryCode != "" {
		if entity.IndustryCode == nil || *entity.IndustryCode != filter.IndustryCode {
			return false
		}
	}
	if filter.MappingStatus != "" && entity.MappingStatus != filter.MappingStatus {
		return false
	}
	if filter.Source != "" && entity.Source != filter.Source {
		return false
	}
	if filter.Keyword != "" &&
		!strings.Contains(entity.Code, filter.Keyword) &&
		!strings.Contains(entity.Name, filter.Keyword) {
		return false
	}
	return true
}

func matchHotspot(entity *model.HotspotEntity, filter HotspotFilter) bool {
	if filter.Type != "" && entity.HotspotType != filter.Type {
		return false
	}
	if filter.Level != "" && entity.HotspotLevel != filter.Level {
		return false
	}
	if filter.Status != "" && entity.Status != filter.Status {
		return false
	}
	if filter.Source != "" && entity.Source != filter.Source {
		return false
	}
	if filter.Keyword != "" && !strings.Contains(entity.Title, filter.Keyword) {
		return false
	}
	return true
}

func sortStocks(items []*model.StockEntity, sortBy string, order SortOrder) {
	less := func(a, b *model.StockEntity) bool { return a.NaturalKey < b.NaturalKey }
	switch sortBy {
	case "code":
		less = func(a, b *model.StockEntity) bool { return a.Code < b.Code }
	case "name":
		less = func(a, b *model.StockEntity) bool { return a.Name < b.Name }
	case "confidence":
		less = func(a, b *model.StockEntity) bool { return a.Confidence < b.Confidence }
	case "updated_at":
		less = func(a, b *model.StockEntity) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if order == SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func sortHotspots(items []*model.HotspotEntity, sortBy string, order SortOrder) {
	less := func(a, b *model.HotspotEntity) bool { return a.NaturalKey < b.NaturalKey }
	switch sortBy {
	case "heat_score":
		less = func(a, b *model.HotspotEntity) bool { return a.HeatScore < b.HeatScore }
	case "sentiment_score":
		less = func(a, b *model.HotspotEntity) bool { return a.SentimentScore < b.SentimentScore }
	case "publish_time":
		less = func(a, b *model.HotspotEntity) bool { return a.PublishTime.Before(b.PublishTime) }
	case "title":
		less = func(a, b *model.HotspotEntity) bool { return a.Title < b.Title }
	case "confidence":
		less = func(a, b *model.HotspotEntity) bool { return a.Confidence < b.Confidence }
	case "updated_at":
		less = func(a, b *model.HotspotEntity) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if order == SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func paginate[T any](items []T, page, pageSize int) []T {
	page, pageSize = normalizePage(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
