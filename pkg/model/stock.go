package model

// MappingStatus 行业映射状态
type MappingStatus string

const (
	MappingPending    MappingStatus = "pending"     // 未命中任何规则，等待人工处理
	MappingAutoMapped MappingStatus = "auto_mapped" // 规则自动命中
	MappingConfirmed  MappingStatus = "confirmed"   // 权威名单校验或人工确认
)

// StockEntity 上市公司实体
type StockEntity struct {
	Meta
	Code          string        `gorm:"type:varchar(16);not null;index" json:"code"` // 保留来源的原始代码
	Name          string        `gorm:"type:varchar(64);not null" json:"name"`
	Market        Market        `gorm:"type:varchar(16);not null;index" json:"market"`
	IndustryCode  *string       `gorm:"type:varchar(16);index" json:"industry_code"`
	IndustryName  *string       `gorm:"type:varchar(64)" json:"industry_name"`
	MappingStatus MappingStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"mapping_status"`
}

func (StockEntity) TableName() string { return "stock_entities" }

// IndustryNode 行业分类树节点，level 为 1 时是根节点。
// 节点既入库也从规则文件加载，yaml 标签与 json 列名保持一致。
type IndustryNode struct {
	Code       string  `gorm:"primaryKey;type:varchar(16)" json:"code" yaml:"code"`
	Name       string  `gorm:"type:varchar(64);not null" json:"name" yaml:"name"`
	Level      int     `gorm:"not null" json:"level" yaml:"level"`
	ParentCode *string `gorm:"type:varchar(16);index" json:"parent_code" yaml:"parent_code"` // 仅根节点为空
}

func (IndustryNode) TableName() string { return "industry_nodes" }
