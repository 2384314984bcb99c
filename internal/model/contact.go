package model

// Contact 用户的收货联系方式
type Contact struct {
	BaseModel

	UserID int64 `gorm:"not null;index"`
	User   *User `gorm:"foreignKey:UserID"`

	City      string `gorm:"size:30;not null"`
	Street    string `gorm:"size:50;not null"`
	House     string `gorm:"size:5;not null"`
	Apartment string `gorm:"size:5"` // 可为空（独栋无房号）
	Phone     string `gorm:"size:15;not null"`
	Email     string `gorm:"size:30;not null"`
}

func (Contact) TableName() string {
	return "contacts"
}
