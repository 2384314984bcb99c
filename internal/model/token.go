package model

import (
	"time"

	"gorm.io/gorm"

	"orders_backend_v1_202606/pkg/utils"
)

// ConfirmTokenKeyLength Key 的固定长度（十六进制字符数）
const ConfirmTokenKeyLength = 64

// ConfirmEmailToken 邮箱确认令牌
// Key 在首次保存时才生成，之后不再变化；全局唯一由唯一索引保证
type ConfirmEmailToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time // 仅创建时写入一次

	UserID int64 `gorm:"not null;index"`
	User   *User `gorm:"foreignKey:UserID"`

	Key string `gorm:"size:64;uniqueIndex"`
}

func (ConfirmEmailToken) TableName() string {
	return "confirm_email_tokens"
}

// BeforeSave 缺少 Key 时用密码学随机源补齐，已有 Key 不重新生成
func (t *ConfirmEmailToken) BeforeSave(tx *gorm.DB) error {
	if t.Key == "" {
		key, err := utils.GenerateHexKey(ConfirmTokenKeyLength)
		if err != nil {
			return err
		}
		t.Key = key
	}
	return nil
}
