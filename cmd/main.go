package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
	"orders_backend_v1_202606/internal/service"
	"orders_backend_v1_202606/internal/task"
	"orders_backend_v1_202606/pkg/database"
)

func main() {
	// 0. 加载环境变量（本地开发从 .env 读取）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用进程环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 等待退出信号
	waitForShutdown(deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	Repos    *Repositories
	Services *Services
	Tasks    *Tasks
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Shop      repository.ShopRepository
	Category  repository.CategoryRepository
	Product   repository.ProductRepository
	Order     repository.OrderRepository
	Contact   repository.ContactRepository
	Token     repository.ConfirmEmailTokenRepository
	ImportLog repository.ImportLogRepository
}

// Services 服务集合
type Services struct {
	User    *service.UserService
	Order   *service.OrderService
	Partner *service.PartnerService
}

// Tasks 定时任务集合
type Tasks struct {
	PriceSync *task.PriceSyncTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	cfg := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "orders_admin"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "orders"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		LogSQL:   getEnv("DB_LOG_SQL", "") == "true",
	}

	return database.InitDB(cfg,
		// Account
		&model.User{}, &model.Contact{}, &model.ConfirmEmailToken{},
		// Catalog
		&model.Shop{}, &model.Category{}, &model.Product{},
		&model.ProductInfo{}, &model.Parameter{}, &model.ProductParameter{},
		// Order
		&model.Order{}, &model.OrderItem{},
		// Import
		&model.ImportLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:      repository.NewUserRepository(db),
		Shop:      repository.NewShopRepository(db),
		Category:  repository.NewCategoryRepository(db),
		Product:   repository.NewProductRepository(db),
		Order:     repository.NewOrderRepository(db),
		Contact:   repository.NewContactRepository(db),
		Token:     repository.NewConfirmEmailTokenRepository(db),
		ImportLog: repository.NewImportLogRepository(db),
	}

	// -------- 业务服务 --------
	services := &Services{
		User:    service.NewUserService(repos.User, repos.Token, repos.Contact),
		Order:   service.NewOrderService(repos.Order, repos.Product, repos.Shop, repos.Contact),
		Partner: service.NewPartnerService(repos.Shop, repos.Category, repos.Product, repos.ImportLog),
	}

	return &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	priceSync := task.NewPriceSyncTask(deps.Repos.Shop, deps.Services.Partner)
	priceSync.Start()

	deps.Tasks = &Tasks{PriceSync: priceSync}
	log.Println("定时任务已启动")
}

// ==================== 退出处理 ====================

// waitForShutdown 阻塞直到收到退出信号，停掉任务并关闭连接池
func waitForShutdown(deps *Dependencies) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("收到退出信号，正在关闭...")

	if deps.Tasks != nil {
		deps.Tasks.PriceSync.Stop()
	}

	if sqlDB, err := deps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("服务已退出")
}

// getEnv 读取环境变量，空则用默认值
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
