package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
)

// ==================== ShopRepository 店铺仓库 ====================

// ShopRepository 店铺仓库接口
type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id int64) (*model.Shop, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	UpdateState(ctx context.Context, id int64, state bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Shop, error)
	ListAccepting(ctx context.Context) ([]model.Shop, error)
	AttachCategory(ctx context.Context, shop *model.Shop, category *model.Category) error
}

// ==================== 实现 ====================

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create 创建店铺
func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// GetByID 根据 ID 获取店铺
func (r *shopRepository) GetByID(ctx context.Context, id int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).First(&shop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

// GetByUserID 根据绑定账号获取店铺（一对一）
func (r *shopRepository) GetByUserID(ctx context.Context, userID int64) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &shop, err
}

// Update 更新店铺
func (r *shopRepository) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

// UpdateState 切换接单开关
func (r *shopRepository) UpdateState(ctx context.Context, id int64, state bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", id).
		Update("state", state).Error
}

// Delete 删除店铺（货单与订单项由外键级联删除）
func (r *shopRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Shop{}, id).Error
}

// List 全部店铺
func (r *shopRepository) List(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).Order("name DESC").Find(&shops).Error
	return shops, err
}

// ListAccepting 接单中的店铺
func (r *shopRepository) ListAccepting(ctx context.Context) ([]model.Shop, error) {
	var shops []model.Shop
	err := r.db.WithContext(ctx).
		Where("state = ?", true).
		Order("name DESC").
		Find(&shops).Error
	return shops, err
}

// AttachCategory 把分类挂到店铺（多对多，重复挂载是幂等的）
func (r *shopRepository) AttachCategory(ctx context.Context, shop *model.Shop, category *model.Category) error {
	return r.db.WithContext(ctx).
		Model(shop).
		Association("Categories").
		Append(category)
}
