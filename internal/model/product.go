package model

// ==================== Product 商品 ====================

// Product 目录商品，归属一个分类（分类可为空）
type Product struct {
	BaseModel

	Name string `gorm:"size:50;not null"`

	CategoryID *int64    `gorm:"index"`
	Category   *Category `gorm:"foreignKey:CategoryID"`

	Listings   []ProductInfo `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	OrderItems []OrderItem   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string {
	return "products"
}

// ==================== ProductInfo 店铺货单 ====================

// ProductInfo 商品在某店铺的上架信息：库存、价格、建议零售价
// 金额以分为单位存储（两位小数定点）
type ProductInfo struct {
	BaseModel

	ProductID int64 `gorm:"not null;uniqueIndex:idx_listing_product_shop"`
	ShopID    int64 `gorm:"not null;index;uniqueIndex:idx_listing_product_shop"`

	Quantity       int   `gorm:"not null;default:0;check:quantity >= 0"`
	PriceAmount    int64 `gorm:"not null;default:0"`
	PriceRrcAmount int64 `gorm:"not null;default:0"`

	Product    *Product           `gorm:"foreignKey:ProductID"`
	Shop       *Shop              `gorm:"foreignKey:ShopID"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
}

func (ProductInfo) TableName() string {
	return "product_infos"
}

// GetPrice 获取售价（元）
func (i *ProductInfo) GetPrice() float64 {
	return float64(i.PriceAmount) / 100
}

// GetPriceRrc 获取建议零售价（元）
func (i *ProductInfo) GetPriceRrc() float64 {
	return float64(i.PriceRrcAmount) / 100
}

// ==================== Parameter 商品参数 ====================

// Parameter 自由属性名（如 “屏幕尺寸”）
type Parameter struct {
	BaseModel

	Name string `gorm:"size:100;not null;uniqueIndex"`

	Values []ProductParameter `gorm:"foreignKey:ParameterID;constraint:OnDelete:CASCADE"`
}

func (Parameter) TableName() string {
	return "parameters"
}

// ==================== ProductParameter 货单参数值 ====================

// ProductParameter 某条货单上某个参数的取值
type ProductParameter struct {
	BaseModel

	ProductInfoID int64 `gorm:"not null;index;uniqueIndex:idx_listing_parameter"`
	ParameterID   int64 `gorm:"not null;uniqueIndex:idx_listing_parameter"`

	Value string `gorm:"size:300;not null"`

	Parameter *Parameter `gorm:"foreignKey:ParameterID"`
}

func (ProductParameter) TableName() string {
	return "product_parameters"
}
