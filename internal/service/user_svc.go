package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 服务错误 ====================

var (
	ErrEmailRequired      = errors.New("邮箱不能为空")
	ErrEmailExists        = errors.New("邮箱已存在")
	ErrUsernameExists     = errors.New("用户名已存在")
	ErrPasswordRequired   = errors.New("密码不能为空")
	ErrSuperuserFlags     = errors.New("超级用户必须同时具备 is_staff 与 is_superuser")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserInactive       = errors.New("账号尚未激活")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidConfirmKey  = errors.New("邮箱确认令牌无效")
	ErrContactNotFound    = errors.New("联系方式不存在")
)

// ==================== UserService 用户服务 ====================

// UserService 账号管理：注册、超级用户、邮箱确认、认证、收货联系方式
type UserService struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.ConfirmEmailTokenRepository
	contactRepo repository.ContactRepository
	validate    *validator.Validate
}

// NewUserService 创建用户服务
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.ConfirmEmailTokenRepository,
	contactRepo repository.ContactRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		contactRepo: contactRepo,
		validate:    validator.New(),
	}
}

// ==================== 输入结构 ====================

// CreateUserInput 注册输入
// IsStaff / IsSuperuser 用指针区分 “未传” 与 “显式 false”
type CreateUserInput struct {
	Email     string `validate:"required,email"`
	Username  string `validate:"required,max=150"`
	Password  string `validate:"required,min=8"`
	FirstName string `validate:"max=150"`
	LastName  string `validate:"max=150"`
	Company   string `validate:"max=40"`
	Position  string `validate:"max=40"`
	Type      string `validate:"omitempty,oneof=shop customer"`

	IsStaff     *bool
	IsSuperuser *bool
}

// ContactInput 收货联系方式输入
type ContactInput struct {
	City      string `validate:"required,max=30"`
	Street    string `validate:"required,max=50"`
	House     string `validate:"required,max=5"`
	Apartment string `validate:"max=5"`
	Phone     string `validate:"required,max=15"`
	Email     string `validate:"omitempty,email,max=30"`
}

// ==================== 账号创建 ====================

// CreateUser 创建普通用户
// 邮箱是登录标识：必填、规范化后存储；新账号默认未激活
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*model.User, error) {
	isStaff := input.IsStaff != nil && *input.IsStaff
	isSuperuser := input.IsSuperuser != nil && *input.IsSuperuser
	return s.createUser(ctx, input, isStaff, isSuperuser)
}

// CreateSuperuser 创建超级用户
// is_staff / is_superuser 默认均为 true，显式传 false 直接拒绝
func (s *UserService) CreateSuperuser(ctx context.Context, input *CreateUserInput) (*model.User, error) {
	if input.IsStaff != nil && !*input.IsStaff {
		return nil, ErrSuperuserFlags
	}
	if input.IsSuperuser != nil && !*input.IsSuperuser {
		return nil, ErrSuperuserFlags
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	return s.createUser(ctx, input, true, true)
}

// createUser 创建并保存用户（公共路径）
func (s *UserService) createUser(ctx context.Context, input *CreateUserInput, isStaff, isSuperuser bool) (*model.User, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrEmailRequired
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)

	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailExists
	}
	if exists, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userType := input.Type
	if userType == "" {
		userType = model.UserTypeCustomer
	}

	user := &model.User{
		Email:       email,
		Username:    input.Username,
		Password:    string(hashed),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Company:     input.Company,
		Position:    input.Position,
		Type:        userType,
		IsActive:    false,
		IsStaff:     isStaff,
		IsSuperuser: isSuperuser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ==================== 邮箱确认 ====================

// RequestEmailConfirmation 为用户签发邮箱确认令牌
// Key 由模型钩子在首次保存时生成，投递邮件是外部系统的事
func (s *UserService) RequestEmailConfirmation(ctx context.Context, userID int64) (*model.ConfirmEmailToken, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	token := &model.ConfirmEmailToken{UserID: user.ID}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmEmail 用令牌激活账号
// 令牌一次性有效：确认成功后清空该用户的全部令牌
func (s *UserService) ConfirmEmail(ctx context.Context, email, key string) error {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := s.tokenRepo.GetByUserAndKey(ctx, user.ID, key)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrInvalidConfirmKey
	}

	if err := s.userRepo.SetActive(ctx, user.ID, true); err != nil {
		return err
	}
	return s.tokenRepo.DeleteForUser(ctx, user.ID)
}

// ==================== 认证 ====================

// Authenticate 校验邮箱+密码
// 只做凭证校验，不签发任何会话；未激活账号直接拒绝
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 更新最后登录时间，失败不影响认证结果
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("[UserService] 更新最后登录时间失败: %v", err)
	}

	return user, nil
}

// ==================== 收货联系方式 ====================

// CreateContact 新增收货联系方式
func (s *UserService) CreateContact(ctx context.Context, userID int64, input *ContactInput) (*model.Contact, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	contact := &model.Contact{
		UserID:    user.ID,
		City:      input.City,
		Street:    input.Street,
		House:     input.House,
		Apartment: input.Apartment,
		Phone:     input.Phone,
		Email:     input.Email,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts 用户的联系方式列表
func (s *UserService) ListContacts(ctx context.Context, userID int64) ([]model.Contact, error) {
	return s.contactRepo.ListByUser(ctx, userID)
}

// UpdateContact 更新联系方式（只能改自己的）
func (s *UserService) UpdateContact(ctx context.Context, userID, contactID int64, input *ContactInput) (*model.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil || contact.UserID != userID {
		return nil, ErrContactNotFound
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	contact.City = input.City
	contact.Street = input.Street
	contact.House = input.House
	contact.Apartment = input.Apartment
	contact.Phone = input.Phone
	contact.Email = input.Email

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact 删除联系方式（只能删自己的）
func (s *UserService) DeleteContact(ctx context.Context, userID, contactID int64) error {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if contact == nil || contact.UserID != userID {
		return ErrContactNotFound
	}
	return s.contactRepo.Delete(ctx, contact.ID)
}

// ==================== 工具 ====================

// NormalizeEmail 邮箱规范化：域名部分统一小写，本地部分保留原样
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
