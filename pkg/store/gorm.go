// pkg/store/gorm.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"StockAtlas/pkg/merger"
	"StockAtlas/pkg/model"
)

// GormStore 基于 PostgreSQL 的存储实现。Upsert 在事务内对自然键所在行
// 加 SELECT ... FOR UPDATE 锁后重新执行合并策略，并发写同一键时串行化；
// 两个写入同时插入新键的竞争由主键约束兜底，失败一方重试走更新路径。
type GormStore struct {
	db     *gorm.DB
	policy *merger.Policy
}

// Open 建立数据库连接并配置连接池
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.StockEntity{},
		&model.HotspotEntity{},
		&model.IndustryNode{},
	)
}

// NewGormStore 创建数据库存储
func NewGormStore(db *gorm.DB, policy *merger.Policy) *GormStore {
	if policy == nil {
		policy = merger.DefaultPolicy()
	}
	return &GormStore{db: db, policy: policy}
}

// UpsertStock 按合并策略写入股票实体
func (s *GormStore) UpsertStock(ctx context.Context, entity *model.StockEntity) (UpsertResult, error) {
	var result UpsertResult
	write := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing model.StockEntity
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&existing, "natural_key = ?", entity.NaturalKey).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				entity.UpdatedAt = time.Now()
				if err := tx.Create(entity).Error; err != nil {
					return err
				}
				result = UpsertInserted
				return nil
			}
			if err != nil {
				return fmt.Errorf("查询已有记录失败: %w", err)
			}
			if !s.policy.Replaces(&existing, entity) {
				result = UpsertKept
				return nil
			}
			entity.UpdatedAt = time.Now()
			if err := tx.Save(entity).Error; err != nil {
				return fmt.Errorf("更新记录失败: %w", err)
			}
			result = UpsertUpdated
			return nil
		})
	}

	err := write()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 两个写入同时插入同一个新键，输掉约束竞争的一方重试走更新路径
		err = write()
	}
	if err != nil {
		return "", fmt.Errorf("写入股票实体失败: %w", err)
	}
	return result, nil
}

// UpsertHotspot 按合并策略写入热点实体
func (s *GormStore) UpsertHotspot(ctx context.Context, entity *model.HotspotEntity) (UpsertResult, error) {
	var result UpsertResult
	write := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing model.HotspotEntity
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&existing, "natural_key = ?", entity.NaturalKey).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				entity.UpdatedAt = time.Now()
				if err := tx.Create(entity).Error; err != nil {
					return err
				}
				result = UpsertInserted
				return nil
			}
			if err != nil {
				return fmt.Errorf("查询已有记录失败: %w", err)
			}
			if !s.policy.Replaces(&existing, entity) {
				result = UpsertKept
				return nil
			}
			entity.UpdatedAt = time.Now()
			if err := tx.Save(entity).Error; err != nil {
				return fmt.Errorf("更新记录失败: %w", err)
			}
			result = UpsertUpdated
			return nil
		})
	}

	err := write()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = write()
	}
	if err != nil {
		return "", fmt.Errorf("写入热点实体失败: %w", err)
	}
	return result, nil
}

// GetStock 按自然键查询股票
func (s *GormStore) GetStock(ctx context.Context, naturalKey string) (*model.StockEntity, error) {
	var entity model.StockEntity
	err := s.db.WithContext(ctx).First(&entity, "natural_key = ?", naturalKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询股票失败: %w", err)
	}
	return &entity, nil
}

// GetHotspot 按自然键查询热点
func (s *GormStore) GetHotspot(ctx context.Context, naturalKey string) (*model.HotspotEntity, error) {
	var entity model.HotspotEntity
	err := s.db.WithContext(ctx).First(&entity, "natural_key = ?", naturalKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询热点失败: %w", err)
	}
	return &entity, nil
}

// 排序字段白名单，防止拼接任意列名
var stockSortColumns = map[string]string{
	"code":       "code",
	"name":       "name",
	"confidence": "confidence",
	"updated_at": "updated_at",
}

var hotspotSortColumns = map[string]string{
	"heat_score":      "heat_score",
	"sentiment_score": "sentiment_score",
	"publish_time":    "publish_time",
	"title":           "title",
	"confidence":      "confidence",
	"updated_at":      "updated_at",
}

// ListStocks 过滤、排序并分页返回股票列表和总数
func (s *GormStore) ListStocks(ctx context.Context, filter StockFilter) ([]*model.StockEntity, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.StockEntity{})
	if filter.Market != "" {
		query = query.Where("market = ?", filter.Market)
	}
	if filter.IndustryCode != "" {
		query = query.Where("industry_code = ?", filter.IndustryCode)
	}
	if filter.MappingStatus != "" {
		query = query.Where("mapping_status = ?", filter.MappingStatus)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计股票总数失败: %w", err)
	}

	query = query.Order(orderClause(stockSortColumns, filter.SortBy, filter.SortOrder, "natural_key"))
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var items []*model.StockEntity
	err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询股票列表失败: %w", err)
	}
	return items, total, nil
}

// ListHotspots 过滤、排序并分页返回热点列表和总数
func (s *GormStore) ListHotspots(ctx context.Context, filter HotspotFilter) ([]*model.HotspotEntity, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.HotspotEntity{})
	if filter.Type != "" {
		query = query.Where("hotspot_type = ?", filter.Type)
	}
	if filter.Level != "" {
		query = query.Where("hotspot_level = ?", filter.Level)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Keyword != "" {
		query = query.Where("title LIKE ?", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计热点总数失败: %w", err)
	}

	query = query.Order(orderClause(hotspotSortColumns, filter.SortBy, filter.SortOrder, "publish_time"))
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var items []*model.HotspotEntity
	err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询热点列表失败: %w", err)
	}
	return items, total, nil
}

// Snapshot 一次性读取全部存量数据
func (s *GormStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := s.db.WithContext(ctx).Find(&snap.Stocks).Error; err != nil {
		return nil, fmt.Errorf("读取股票快照失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Find(&snap.Hotspots).Error; err != nil {
		return nil, fmt.Errorf("读取热点快照失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Find(&snap.Industries).Error; err != nil {
		return nil, fmt.Errorf("读取行业树快照失败: %w", err)
	}
	return snap, nil
}

// SaveIndustryNodes 整批写入行业树节点，按代码覆盖已有节点
func (s *GormStore) SaveIndustryNodes(ctx context.Context, nodes []*model.IndustryNode) error {
	if len(nodes) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).
		CreateInBatches(nodes, 500).Error
	if err != nil {
		return fmt.Errorf("写入行业树失败: %w", err)
	}
	return nil
}

// SweepHotspots 删除发布时间早于 cutoff 的热点
func (s *GormStore) SweepHotspots(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("publish_time < ?", cutoff).
		Delete(&model.HotspotEntity{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期热点失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func orderClause(columns map[string]string, sortBy string, order SortOrder, fallback string) string {
	column, ok := columns[sortBy]
	if !ok {
		column = fallback
	}
	direction := "ASC"
	if order == SortDesc {
		direction = "DESC"
	}
	return column + " " + direction
}
