package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusBasket    = "basket"    // 购物车（未提交）
	OrderStatusConfirmed = "confirmed" // 已确认
	OrderStatusAssembled = "assembled" // 已拣货
	OrderStatusSent      = "sent"      // 已发出
	OrderStatusDelivered = "delivered" // 已送达
	OrderStatusCancelled = "cancelled" // 已取消
)

// ErrInvalidOrderStatus 订单状态不在六个合法值之内
var ErrInvalidOrderStatus = errors.New("非法的订单状态")

// IsValidOrderStatus 校验状态值是否合法
// 注意：只限定取值集合，状态之间的跳转顺序不在模型层强制
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusBasket, OrderStatusConfirmed, OrderStatusAssembled,
		OrderStatusSent, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ==================== Order 订单主表 ====================

// Order 订单，status 为 basket 时即用户的购物车
type Order struct {
	BaseModel

	UserID int64 `gorm:"not null;index"`
	User   *User `gorm:"foreignKey:UserID"`

	// 下单时间，确认订单时写入
	Dt time.Time `gorm:"column:dt"`

	Status string `gorm:"size:50;not null;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (*Order) TableName() string {
	return "orders"
}

// BeforeSave 持久化边界上拒绝未知状态值
func (o *Order) BeforeSave(tx *gorm.DB) error {
	if !IsValidOrderStatus(o.Status) {
		return ErrInvalidOrderStatus
	}
	return nil
}

// IsBasket 是否为购物车
func (o *Order) IsBasket() bool {
	return o.Status == OrderStatusBasket
}

// CanConfirm 检查是否可以确认下单
func (o *Order) CanConfirm() bool {
	return o.Status == OrderStatusBasket && len(o.Items) > 0
}

// CanCancel 检查是否可以取消
func (o *Order) CanCancel() bool {
	return o.Status != OrderStatusDelivered && o.Status != OrderStatusCancelled
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单行，锁定 商品+店铺+数量
type OrderItem struct {
	BaseModel

	OrderID   int64 `gorm:"not null;index;uniqueIndex:idx_item_order_product_shop"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_item_order_product_shop"`
	ShopID    int64 `gorm:"not null;index;uniqueIndex:idx_item_order_product_shop"`

	Quantity int `gorm:"not null;default:1"`

	Product *Product `gorm:"foreignKey:ProductID"`
	Shop    *Shop    `gorm:"foreignKey:ShopID"`
}

func (*OrderItem) TableName() string {
	return "order_items"
}
