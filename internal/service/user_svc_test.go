package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 测试辅助 ====================

func setupSvcTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{}, &model.Contact{}, &model.ConfirmEmailToken{},
		&model.Shop{}, &model.Category{}, &model.Product{},
		&model.ProductInfo{}, &model.Parameter{}, &model.ProductParameter{},
		&model.Order{}, &model.OrderItem{},
		&model.ImportLog{},
	); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewConfirmEmailTokenRepository(db),
		repository.NewContactRepository(db),
	)
}

func validInput(email, username string) *CreateUserInput {
	return &CreateUserInput{
		Email:    email,
		Username: username,
		Password: "secret-password",
	}
}

func boolPtr(v bool) *bool { return &v }

// ==================== 账号创建 ====================

func TestUserService_CreateUserRequiresEmail(t *testing.T) {
	svc := newUserService(setupSvcTestDB(t))

	input := validInput("", "alice")
	if _, err := svc.CreateUser(context.Background(), input); !errors.Is(err, ErrEmailRequired) {
		t.Errorf("err = %v, want ErrEmailRequired", err)
	}

	input = validInput("   ", "alice")
	if _, err := svc.CreateUser(context.Background(), input); !errors.Is(err, ErrEmailRequired) {
		t.Errorf("空白邮箱 err = %v, want ErrEmailRequired", err)
	}

	// 非法邮箱由结构校验拦截
	input = validInput("not-an-email", "alice")
	if _, err := svc.CreateUser(context.Background(), input); err == nil {
		t.Error("非法邮箱应当校验失败")
	}
}

func TestUserService_CreateUserDefaults(t *testing.T) {
	svc := newUserService(setupSvcTestDB(t))

	user, err := svc.CreateUser(context.Background(), validInput("Alice@EXAMPLE.Com", "alice"))
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	if user.IsActive {
		t.Error("新账号应当默认未激活")
	}
	if user.IsStaff || user.IsSuperuser {
		t.Error("普通用户不应有特权标记")
	}
	if user.Type != model.UserTypeCustomer {
		t.Errorf("type = %s, want customer", user.Type)
	}

	// 域名部分小写，本地部分保留
	if user.Email != "Alice@example.com" {
		t.Errorf("email = %s, want Alice@example.com", user.Email)
	}

	// 密码只存哈希
	if user.Password == "secret-password" {
		t.Error("密码不应明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret-password")); err != nil {
		t.Error("哈希应当能校验原密码")
	}
}

func TestUserService_CreateUserDuplicates(t *testing.T) {
	svc := newUserService(setupSvcTestDB(t))
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, validInput("a@example.com", "alice")); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	if _, err := svc.CreateUser(ctx, validInput("a@example.com", "alice2")); !errors.Is(err, ErrEmailExists) {
		t.Errorf("重复邮箱 err = %v, want ErrEmailExists", err)
	}
	// 规范化后相同的邮箱同样算重复
	if _, err := svc.CreateUser(ctx, validInput("a@EXAMPLE.com", "alice3")); !errors.Is(err, ErrEmailExists) {
		t.Errorf("规范化重复邮箱 err = %v, want ErrEmailExists", err)
	}
	if _, err := svc.CreateUser(ctx, validInput("b@example.com", "alice")); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("重复用户名 err = %v, want ErrUsernameExists", err)
	}
}

func TestUserService_CreateSuperuser(t *testing.T) {
	svc := newUserService(setupSvcTestDB(t))
	ctx := context.Background()

	admin, err := svc.CreateSuperuser(ctx, validInput("root@example.com", "root"))
	if err != nil {
		t.Fatalf("创建超级用户失败: %v", err)
	}
	if !admin.IsStaff || !admin.IsSuperuser {
		t.Error("超级用户的 is_staff / is_superuser 应当为 true")
	}

	// 显式传 false 直接拒绝
	input := validInput("root2@example.com", "root2")
	input.IsStaff = boolPtr(false)
	if _, err := svc.CreateSuperuser(ctx, input); !errors.Is(err, ErrSuperuserFlags) {
		t.Errorf("is_staff=false err = %v, want ErrSuperuserFlags", err)
	}

	input = validInput("root3@example.com", "root3")
	input.IsSuperuser = boolPtr(false)
	if _, err := svc.CreateSuperuser(ctx, input); !errors.Is(err, ErrSuperuserFlags) {
		t.Errorf("is_superuser=false err = %v, want ErrSuperuserFlags", err)
	}
}

// ==================== 邮箱确认 ====================

func TestUserService_ConfirmEmailActivates(t *testing.T) {
	db := setupSvcTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, validInput("a@example.com", "alice"))
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	token, err := svc.RequestEmailConfirmation(ctx, user.ID)
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	if len(token.Key) != model.ConfirmTokenKeyLength {
		t.Fatalf("key 长度 = %d, want %d", len(token.Key), model.ConfirmTokenKeyLength)
	}

	// 错误的 key 不激活
	if err := svc.ConfirmEmail(ctx, "a@example.com", "bogus"); !errors.Is(err, ErrInvalidConfirmKey) {
		t.Errorf("错误 key err = %v, want ErrInvalidConfirmKey", err)
	}

	if err := svc.ConfirmEmail(ctx, "a@example.com", token.Key); err != nil {
		t.Fatalf("确认邮箱失败: %v", err)
	}

	var found model.User
	db.First(&found, user.ID)
	if !found.IsActive {
		t.Error("确认后账号应当激活")
	}

	// 令牌一次性有效
	if err := svc.ConfirmEmail(ctx, "a@example.com", token.Key); !errors.Is(err, ErrInvalidConfirmKey) {
		t.Errorf("复用令牌 err = %v, want ErrInvalidConfirmKey", err)
	}
}

// ==================== 认证 ====================

func TestUserService_Authenticate(t *testing.T) {
	db := setupSvcTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, validInput("a@example.com", "alice"))
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	// 未激活账号直接拒绝
	if _, err := svc.Authenticate(ctx, "a@example.com", "secret-password"); !errors.Is(err, ErrUserInactive) {
		t.Errorf("未激活 err = %v, want ErrUserInactive", err)
	}

	db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", true)

	if _, err := svc.Authenticate(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码 err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "missing@example.com", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱 err = %v, want ErrInvalidCredentials", err)
	}

	got, err := svc.Authenticate(ctx, "a@EXAMPLE.com", "secret-password")
	if err != nil {
		t.Fatalf("认证失败: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("认证返回用户 %d, want %d", got.ID, user.ID)
	}
}

// failingLastLoginRepo 登录时间写入必失败的用户仓库
type failingLastLoginRepo struct {
	repository.UserRepository
}

func (r *failingLastLoginRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	return errors.New("写入失败")
}

func TestUserService_AuthenticateLastLoginWriteIsBestEffort(t *testing.T) {
	db := setupSvcTestDB(t)
	svc := NewUserService(
		&failingLastLoginRepo{UserRepository: repository.NewUserRepository(db)},
		repository.NewConfirmEmailTokenRepository(db),
		repository.NewContactRepository(db),
	)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, validInput("a@example.com", "alice"))
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	db.Model(&model.User{}).Where("id = ?", user.ID).Update("is_active", true)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	got, err := svc.Authenticate(ctx, "a@example.com", "secret-password")
	if err != nil {
		t.Fatalf("登录时间写入失败不应影响认证: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("认证返回用户 %d, want %d", got.ID, user.ID)
	}
	if !strings.Contains(buf.String(), "[UserService]") {
		t.Errorf("失败应当带 [UserService] 前缀记录日志, got %q", buf.String())
	}
}

// ==================== 联系方式 ====================

func TestUserService_ContactOwnership(t *testing.T) {
	svc := newUserService(setupSvcTestDB(t))
	ctx := context.Background()

	alice, _ := svc.CreateUser(ctx, validInput("a@example.com", "alice"))
	bob, _ := svc.CreateUser(ctx, validInput("b@example.com", "bob"))

	contact, err := svc.CreateContact(ctx, alice.ID, &ContactInput{
		City: "Moscow", Street: "Lenina", House: "1", Apartment: "12", Phone: "123456",
	})
	if err != nil {
		t.Fatalf("创建联系方式失败: %v", err)
	}

	// 别人的联系方式不可改不可删
	if _, err := svc.UpdateContact(ctx, bob.ID, contact.ID, &ContactInput{
		City: "SPb", Street: "Nevsky", House: "2", Phone: "654321",
	}); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("跨用户更新 err = %v, want ErrContactNotFound", err)
	}
	if err := svc.DeleteContact(ctx, bob.ID, contact.ID); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("跨用户删除 err = %v, want ErrContactNotFound", err)
	}

	contacts, err := svc.ListContacts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("查询联系方式失败: %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("联系方式数量 = %d, want 1", len(contacts))
	}

	if err := svc.DeleteContact(ctx, alice.ID, contact.ID); err != nil {
		t.Fatalf("删除联系方式失败: %v", err)
	}
}

// ==================== 邮箱规范化 ====================

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Name@EXAMPLE.Com", "Name@example.com"},
		{"  a@B.c  ", "a@b.c"},
		{"no-at-sign", "no-at-sign"},
		{"a@b@C.D", "a@b@c.d"},
	}
	for _, c := range cases {
		if got := NormalizeEmail(c.in); got != c.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
