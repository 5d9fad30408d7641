package model

import (
	"time"
)

// EntityKind 实体类型
type EntityKind string

const (
	KindStock   EntityKind = "stock"
	KindHotspot EntityKind = "hotspot"
)

// Market 市场板块
type Market string

const (
	MarketMain    Market = "main"    // 沪深主板
	MarketSME     Market = "sme"     // 中小板
	MarketChiNext Market = "chinext" // 创业板
	MarketSTAR    Market = "star"    // 科创板
	MarketNEEQ    Market = "neeq"    // 新三板
	MarketHK      Market = "hk"      // 港股通标的
)

// RawEntity 适配器产出的原始记录，尚未归一化、分类和打分
type RawEntity struct {
	Kind        EntityKind  `json:"kind"`
	Source      string      `json:"source"`
	NaturalKey  string      `json:"natural_key"` // 由 Normalizer 计算；为空表示记录无效
	Code        string      `json:"code"`        // 原始代码，保留展示用
	DisplayName string      `json:"display_name"`
	Market      Market      `json:"market"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	HotspotType HotspotType `json:"hotspot_type"`
	PublishTime time.Time   `json:"publish_time"`
	ObservedAt  time.Time   `json:"observed_at"` // 采集到该记录的时间
	Validated   bool        `json:"validated"`   // 来自权威名单，分类命中时置信度为 1.0
}

// Meta 持久化实体的公共字段
type Meta struct {
	NaturalKey string    `gorm:"primaryKey;type:varchar(64)" json:"natural_key"`
	Source     string    `gorm:"type:varchar(32);not null;index" json:"source"`
	Confidence float64   `gorm:"not null;default:0" json:"confidence"` // [0,1]，0 表示未分类
	ObservedAt time.Time `gorm:"not null" json:"observed_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Key 返回自然键
func (m Meta) Key() string { return m.NaturalKey }

// ConfidenceValue 返回置信度
func (m Meta) ConfidenceValue() float64 { return m.Confidence }

// SourceName 返回来源适配器名称
func (m Meta) SourceName() string { return m.Source }

// ObservedTime 返回采集时间
func (m Meta) ObservedTime() time.Time { return m.ObservedAt }
