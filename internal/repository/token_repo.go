package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
)

// ==================== ConfirmEmailTokenRepository 邮箱确认令牌仓库 ====================

// ConfirmEmailTokenRepository 邮箱确认令牌仓库接口
type ConfirmEmailTokenRepository interface {
	Create(ctx context.Context, token *model.ConfirmEmailToken) error
	GetByUserAndKey(ctx context.Context, userID int64, key string) (*model.ConfirmEmailToken, error)
	ListByUser(ctx context.Context, userID int64) ([]model.ConfirmEmailToken, error)
	DeleteForUser(ctx context.Context, userID int64) error
}

// ==================== 实现 ====================

type confirmEmailTokenRepository struct {
	db *gorm.DB
}

// NewConfirmEmailTokenRepository 创建邮箱确认令牌仓库
func NewConfirmEmailTokenRepository(db *gorm.DB) ConfirmEmailTokenRepository {
	return &confirmEmailTokenRepository{db: db}
}

// Create 创建令牌（Key 由模型钩子在首次保存时生成）
func (r *confirmEmailTokenRepository) Create(ctx context.Context, token *model.ConfirmEmailToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByUserAndKey 按 用户+Key 查找令牌
func (r *confirmEmailTokenRepository) GetByUserAndKey(ctx context.Context, userID int64, key string) (*model.ConfirmEmailToken, error) {
	var token model.ConfirmEmailToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &token, err
}

// ListByUser 用户名下的全部令牌
func (r *confirmEmailTokenRepository) ListByUser(ctx context.Context, userID int64) ([]model.ConfirmEmailToken, error) {
	var tokens []model.ConfirmEmailToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&tokens).Error
	return tokens, err
}

// DeleteForUser 清空用户的令牌（确认成功后令牌一次性作废）
func (r *confirmEmailTokenRepository) DeleteForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.ConfirmEmailToken{}).Error
}
