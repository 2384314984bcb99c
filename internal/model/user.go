package model

import (
	"strings"
	"time"
)

// ==================== 用户类型常量 ====================

// UserType 账号类型：shop (店铺方), customer (买家)
const (
	UserTypeShop     = "shop"
	UserTypeCustomer = "customer"
)

// ==================== User 用户 ====================

// User 账号实体
// 登录标识是 Email（唯一），不是 Username
type User struct {
	BaseModel

	// 基础信息
	Email    string `gorm:"size:254;uniqueIndex;not null"`
	Username string `gorm:"size:150;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码，绝不存明文

	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	Company   string `gorm:"size:40"`
	Position  string `gorm:"size:40"`

	// 账号类型: shop / customer，列宽要放得下最长的取值
	Type string `gorm:"size:10;default:'customer'"`

	// 新账号默认未激活，由邮箱确认流程置为 true
	IsActive    bool `gorm:"default:false"`
	IsStaff     bool `gorm:"default:false"`
	IsSuperuser bool `gorm:"default:false"`

	LastLoginAt *time.Time

	// ==============================
	// 关联关系（删除用户时数据库级联删除）
	// ==============================
	Orders             []Order             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Contacts           []Contact           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ConfirmEmailTokens []ConfirmEmailToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// IsShop 是否为店铺方账号
func (u *User) IsShop() bool {
	return u.Type == UserTypeShop
}

// FullName 姓名展示
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
