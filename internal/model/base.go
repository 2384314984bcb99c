package model

import (
	"time"
)

// BaseModel 通用主键与时间戳字段
// 注意：本项目所有删除均为物理删除，外键级联由数据库约束负责，
// 因此不使用 gorm 的软删除字段。
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
