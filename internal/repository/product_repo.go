package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orders_backend_v1_202606/internal/model"
)

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品/货单/参数仓库接口
// 商品目录、店铺货单、参数值聚在一起维护，价格表导入是主要写入方
type ProductRepository interface {
	// 商品目录
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetOrCreateProduct(ctx context.Context, name string, categoryID *int64) (*model.Product, error)

	// 店铺货单
	UpsertListing(ctx context.Context, info *model.ProductInfo) error
	GetListing(ctx context.Context, shopID, productID int64) (*model.ProductInfo, error)
	GetListingByID(ctx context.Context, id int64) (*model.ProductInfo, error)
	ListListingsByShop(ctx context.Context, shopID int64) ([]model.ProductInfo, error)
	DeleteListingsByShop(ctx context.Context, shopID int64) error

	// 参数
	GetOrCreateParameter(ctx context.Context, name string) (*model.Parameter, error)
	ReplaceListingParameters(ctx context.Context, productInfoID int64, params []model.ProductParameter) error
}

// ==================== 实现 ====================

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// CreateProduct 创建商品
func (r *productRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetProductByID 根据 ID 获取商品
func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetOrCreateProduct 按名称+分类取商品，不存在则创建
func (r *productRepository) GetOrCreateProduct(ctx context.Context, name string, categoryID *int64) (*model.Product, error) {
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}

	var product model.Product
	err := query.First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = model.Product{Name: name, CategoryID: categoryID}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertListing 写入店铺货单，按 (product_id, shop_id) 冲突时更新库存与价格
func (r *productRepository) UpsertListing(ctx context.Context, info *model.ProductInfo) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "shop_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "price_amount", "price_rrc_amount", "updated_at",
			}),
		}).
		Create(info).Error
}

// GetListing 根据 店铺+商品 获取货单
func (r *productRepository) GetListing(ctx context.Context, shopID, productID int64) (*model.ProductInfo, error) {
	var info model.ProductInfo
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ?", shopID, productID).
		First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &info, err
}

// GetListingByID 根据 ID 获取货单
func (r *productRepository) GetListingByID(ctx context.Context, id int64) (*model.ProductInfo, error) {
	var info model.ProductInfo
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		First(&info, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &info, err
}

// ListListingsByShop 店铺全部货单
func (r *productRepository) ListListingsByShop(ctx context.Context, shopID int64) ([]model.ProductInfo, error) {
	var infos []model.ProductInfo
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Preload("Product").
		Preload("Parameters").
		Find(&infos).Error
	return infos, err
}

// DeleteListingsByShop 清空店铺货单（参数值级联删除），导入前调用
func (r *productRepository) DeleteListingsByShop(ctx context.Context, shopID int64) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Delete(&model.ProductInfo{}).Error
}

// GetOrCreateParameter 按名称取参数，不存在则创建
func (r *productRepository) GetOrCreateParameter(ctx context.Context, name string) (*model.Parameter, error) {
	var param model.Parameter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&param).Error
	if err == nil {
		return &param, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	param = model.Parameter{Name: name}
	if err := r.db.WithContext(ctx).Create(&param).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

// ReplaceListingParameters 重写某条货单的全部参数值
func (r *productRepository) ReplaceListingParameters(ctx context.Context, productInfoID int64, params []model.ProductParameter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_info_id = ?", productInfoID).
			Delete(&model.ProductParameter{}).Error; err != nil {
			return err
		}
		if len(params) == 0 {
			return nil
		}
		for i := range params {
			params[i].ProductInfoID = productInfoID
		}
		return tx.Create(&params).Error
	})
}
