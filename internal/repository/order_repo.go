package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
)

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetBasket(ctx context.Context, userID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	// 订单项
	AddItem(ctx context.Context, item *model.OrderItem) error
	GetItem(ctx context.Context, orderID, productID, shopID int64) (*model.OrderItem, error)
	GetItemByID(ctx context.Context, id int64) (*model.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, id int64, quantity int) error
	RemoveItem(ctx context.Context, id int64) error
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID 根据 ID 获取订单（带订单项）
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// GetBasket 获取用户的购物车（每个用户至多一个 basket 状态订单）
func (r *orderRepository) GetBasket(ctx context.Context, userID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status = ?", userID, model.OrderStatusBasket).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// ListByUser 用户的订单列表（不含购物车）
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusBasket).
		Order("dt DESC").
		Find(&orders).Error
	return orders, err
}

// Update 更新订单（经过 BeforeSave 状态校验）
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateStatus 更新订单状态
// 列更新不会触发模型钩子，这里在持久化边界上显式校验状态值
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !model.IsValidOrderStatus(status) {
		return model.ErrInvalidOrderStatus
	}
	return r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete 删除订单（订单项级联删除）
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

// AddItem 追加订单项
func (r *orderRepository) AddItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetItem 按 订单+商品+店铺 查找订单项
func (r *orderRepository) GetItem(ctx context.Context, orderID, productID, shopID int64) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_id = ? AND shop_id = ?", orderID, productID, shopID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// GetItemByID 根据 ID 获取订单项
func (r *orderRepository) GetItemByID(ctx context.Context, id int64) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// UpdateItemQuantity 修改订单项数量
func (r *orderRepository) UpdateItemQuantity(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// RemoveItem 删除订单项
func (r *orderRepository) RemoveItem(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.OrderItem{}, id).Error
}
