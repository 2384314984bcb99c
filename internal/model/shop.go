package model

// ==================== Shop 店铺 ====================

// Shop 卖家店铺
// Url 为店铺价格表链接，定时同步任务据此拉取货单
type Shop struct {
	BaseModel

	Name string `gorm:"size:50;not null"`
	Url  string `gorm:"size:255"`

	// 可选的一对一账号绑定（店铺可以先于账号存在）
	UserID *int64 `gorm:"uniqueIndex"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// 是否接单
	State bool `gorm:"default:true"`

	// 关联关系
	Categories []Category    `gorm:"many2many:shop_categories;"`
	Listings   []ProductInfo `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	OrderItems []OrderItem   `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}

func (Shop) TableName() string {
	return "shops"
}

// ==================== Category 商品分类 ====================

// Category 商品分类，与店铺多对多
type Category struct {
	BaseModel

	Name string `gorm:"size:50;not null;uniqueIndex"`

	Shops    []Shop    `gorm:"many2many:shop_categories;"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (Category) TableName() string {
	return "categories"
}
