package service

import (
	"context"
	"errors"
	"time"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 服务错误 ====================

var (
	ErrOrderNotFound    = errors.New("订单不存在")
	ErrOrderItemMissing = errors.New("订单项不存在")
	ErrListingNotFound  = errors.New("店铺没有该商品的货单")
	ErrShopNotAccepting = errors.New("店铺当前不接单")
	ErrEmptyBasket      = errors.New("购物车为空")
	ErrInvalidQuantity  = errors.New("数量必须为正数")
)

// ==================== OrderService 订单服务 ====================

// OrderService 购物车与订单生命周期
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
	contactRepo repository.ContactRepository
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	shopRepo repository.ShopRepository,
	contactRepo repository.ContactRepository,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shopRepo:    shopRepo,
		contactRepo: contactRepo,
	}
}

// ==================== 购物车 ====================

// GetOrCreateBasket 获取用户购物车，没有则建一个
// 每个用户至多一个 basket 状态订单
func (s *OrderService) GetOrCreateBasket(ctx context.Context, userID int64) (*model.Order, error) {
	basket, err := s.orderRepo.GetBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket != nil {
		return basket, nil
	}

	basket = &model.Order{
		UserID: userID,
		Dt:     time.Now(),
		Status: model.OrderStatusBasket,
	}
	if err := s.orderRepo.Create(ctx, basket); err != nil {
		return nil, err
	}
	return basket, nil
}

// AddItem 向购物车加货
// 要求货单存在且店铺正在接单；同一 商品+店铺 已在车里则累加数量
func (s *OrderService) AddItem(ctx context.Context, userID, productID, shopID int64, quantity int) (*model.OrderItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	listing, err := s.productRepo.GetListing(ctx, shopID, productID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil || !shop.State {
		return nil, ErrShopNotAccepting
	}

	basket, err := s.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.GetItem(ctx, basket.ID, productID, shopID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		item.Quantity += quantity
		if err := s.orderRepo.UpdateItemQuantity(ctx, item.ID, item.Quantity); err != nil {
			return nil, err
		}
		return item, nil
	}

	item = &model.OrderItem{
		OrderID:   basket.ID,
		ProductID: productID,
		ShopID:    shopID,
		Quantity:  quantity,
	}
	if err := s.orderRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity 修改购物车某项的数量
func (s *OrderService) UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	item, err := s.basketItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.orderRepo.UpdateItemQuantity(ctx, item.ID, quantity)
}

// RemoveItem 从购物车删除某项
func (s *OrderService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	item, err := s.basketItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.orderRepo.RemoveItem(ctx, item.ID)
}

// basketItem 取用户购物车里的指定订单项
func (s *OrderService) basketItem(ctx context.Context, userID, itemID int64) (*model.OrderItem, error) {
	basket, err := s.orderRepo.GetBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket == nil {
		return nil, ErrEmptyBasket
	}

	item, err := s.orderRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.OrderID != basket.ID {
		return nil, ErrOrderItemMissing
	}
	return item, nil
}

// ==================== 订单生命周期 ====================

// Confirm 确认下单：basket -> confirmed
// 要求购物车非空，且联系方式属于同一用户；确认时写入下单时间
func (s *OrderService) Confirm(ctx context.Context, userID, contactID int64) (*model.Order, error) {
	basket, err := s.orderRepo.GetBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if basket == nil || !basket.CanConfirm() {
		return nil, ErrEmptyBasket
	}

	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil || contact.UserID != userID {
		return nil, ErrContactNotFound
	}

	basket.Status = model.OrderStatusConfirmed
	basket.Dt = time.Now()
	if err := s.orderRepo.Update(ctx, basket); err != nil {
		return nil, err
	}
	return basket, nil
}

// SetStatus 更新订单状态
// 只校验取值在六个合法状态之内；跳转顺序的合法性由上层业务把握
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.orderRepo.UpdateStatus(ctx, order.ID, status)
}

// Cancel 取消订单
func (s *OrderService) Cancel(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if !order.CanCancel() {
		return model.ErrInvalidOrderStatus
	}
	return s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusCancelled)
}

// ListOrders 用户的历史订单（不含购物车）
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}
