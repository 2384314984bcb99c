package model

import (
	"gorm.io/datatypes"
)

// ImportLog 价格表导入日志
type ImportLog struct {
	BaseModel

	// 关联
	ShopID int64 `gorm:"not null;index"`
	Shop   *Shop `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`

	// 本次导入的批次号
	BatchID string `gorm:"size:36;index"`

	// 来源信息
	Source string `gorm:"size:16;index"` // payload / url
	Url    string `gorm:"size:255"`

	// 导入统计
	CategoriesCount int `gorm:"default:0"`
	ProductsCount   int `gorm:"default:0"`
	ParametersCount int `gorm:"default:0"`

	// 状态
	Status   string `gorm:"size:32;index;default:success"` // success / failed
	ErrorMsg string `gorm:"size:1024"`

	// 解析后的原始货单（PostgreSQL JSONB）
	Payload datatypes.JSON `gorm:"type:jsonb"`
}

func (ImportLog) TableName() string {
	return "import_logs"
}

// ==================== 来源常量 ====================

const (
	ImportSourcePayload = "payload"
	ImportSourceURL     = "url"
)

// ==================== 状态常量 ====================

const (
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"
)
