// pkg/model/hotspot.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HotspotType 热点类型
type HotspotType string

const (
	HotspotNews     HotspotType = "news"
	HotspotPolicy   HotspotType = "policy"
	HotspotIndustry HotspotType = "industry"
	HotspotMarket   HotspotType = "market"
)

// HotspotLevel 热度等级，由 heat_score 推导
type HotspotLevel string

const (
	LevelVeryHigh HotspotLevel = "very_high" // heat >= 80
	LevelHigh     HotspotLevel = "high"      // heat >= 60
	LevelMedium   HotspotLevel = "medium"    // heat >= 40
	LevelLow      HotspotLevel = "low"
)

// HotspotStatus 热点生命周期状态，由发布时间和热度推导
type HotspotStatus string

const (
	StatusActive    HotspotStatus = "active"
	StatusDeclining HotspotStatus = "declining"
	StatusExpired   HotspotStatus = "expired"
)

// HotspotEntity 热点事件实体
type HotspotEntity struct {
	Meta
	Title             string        `gorm:"not null" json:"title"`
	Content           string        `gorm:"type:text" json:"content"`
	HotspotType       HotspotType   `gorm:"type:varchar(16);not null;index" json:"hotspot_type"`
	HotspotLevel      HotspotLevel  `gorm:"type:varchar(16);not null;index" json:"hotspot_level"`
	Status            HotspotStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	PublishTime       time.Time     `gorm:"not null;index" json:"publish_time"`
	Keywords          []string      `gorm:"type:jsonb;serializer:json" json:"keywords"`
	RelatedCompanies  []string      `gorm:"type:jsonb;serializer:json" json:"related_companies"`
	RelatedIndustries []string      `gorm:"type:jsonb;serializer:json" json:"related_industries"` // 行业代码
	SentimentScore    float64       `gorm:"not null;default:0" json:"sentiment_score"`            // [-1,1]
	HeatScore         float64       `gorm:"not null;default:0" json:"heat_score"`                 // [0,100]
}

func (HotspotEntity) TableName() string { return "hotspot_entities" }

func (h *HotspotEntity) BeforeCreate(tx *gorm.DB) error {
	if h.NaturalKey == "" {
		h.NaturalKey = uuid.New().String()
	}
	return nil
}
