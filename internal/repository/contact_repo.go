package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
)

// ==================== ContactRepository 联系方式仓库 ====================

// ContactRepository 收货联系方式仓库接口
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id int64) error
}

// ==================== 实现 ====================

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系方式仓库
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create 创建联系方式
func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// GetByID 根据 ID 获取联系方式
func (r *contactRepository) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contact, err
}

// ListByUser 用户的联系方式列表
func (r *contactRepository) ListByUser(ctx context.Context, userID int64) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error
	return contacts, err
}

// Update 更新联系方式
func (r *contactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Delete 删除联系方式
func (r *contactRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Contact{}, id).Error
}
