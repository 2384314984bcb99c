package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 辅助函数 ====================

func setupTaskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Shop{}, &model.Category{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// fakeImporter 记录被同步的店铺，可按店铺 ID 返回失败
type fakeImporter struct {
	mu      sync.Mutex
	called  []int64
	failFor map[int64]bool
}

func (f *fakeImporter) ImportFromURL(ctx context.Context, shopID int64, url string) (*model.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, shopID)
	if f.failFor[shopID] {
		return nil, errors.New("拉取价格表失败")
	}
	return &model.ImportLog{ShopID: shopID, Status: model.ImportStatusSuccess}, nil
}

// ==================== 测试用例 ====================

func TestSyncableShops(t *testing.T) {
	shops := []model.Shop{
		{Name: "有链接", Url: "https://example.com/price.yaml"},
		{Name: "无链接", Url: ""},
		{Name: "另一家", Url: "https://example.com/other.yaml"},
	}

	syncable := SyncableShops(shops)
	if len(syncable) != 2 {
		t.Fatalf("期望过滤出 2 家店铺, 实际 %d", len(syncable))
	}
	for _, shop := range syncable {
		if shop.Url == "" {
			t.Errorf("不应包含没有价格表链接的店铺: %s", shop.Name)
		}
	}
}

func TestPriceSyncTask_SyncJob(t *testing.T) {
	db := setupTaskTestDB(t)

	shops := []model.Shop{
		{Name: "接单有链接", Url: "https://example.com/a.yaml", State: true},
		{Name: "接单无链接", Url: "", State: true},
		{Name: "停止接单", Url: "https://example.com/b.yaml", State: true},
	}
	for i := range shops {
		if err := db.Create(&shops[i]).Error; err != nil {
			t.Fatalf("创建店铺失败: %v", err)
		}
	}
	// default:true 会覆盖零值，停止接单要走更新
	if err := db.Model(&shops[2]).Update("state", false).Error; err != nil {
		t.Fatalf("更新店铺状态失败: %v", err)
	}

	importer := &fakeImporter{}
	task := NewPriceSyncTask(repository.NewShopRepository(db), importer)
	task.sleepTime = time.Millisecond

	task.syncJob(context.Background())

	if len(importer.called) != 1 {
		t.Fatalf("期望只同步 1 家店铺, 实际 %d", len(importer.called))
	}
	if importer.called[0] != shops[0].ID {
		t.Errorf("同步了错误的店铺: %d", importer.called[0])
	}
}

func TestPriceSyncTask_SingleFailureDoesNotStopRound(t *testing.T) {
	db := setupTaskTestDB(t)

	shops := []model.Shop{
		{Name: "会失败", Url: "https://example.com/a.yaml", State: true},
		{Name: "正常", Url: "https://example.com/b.yaml", State: true},
	}
	for i := range shops {
		if err := db.Create(&shops[i]).Error; err != nil {
			t.Fatalf("创建店铺失败: %v", err)
		}
	}

	importer := &fakeImporter{failFor: map[int64]bool{shops[0].ID: true}}
	task := NewPriceSyncTask(repository.NewShopRepository(db), importer)
	task.sleepTime = time.Millisecond

	task.syncJob(context.Background())

	if len(importer.called) != 2 {
		t.Fatalf("单店失败不应中断本轮同步, 期望同步 2 家, 实际 %d", len(importer.called))
	}
}

func TestPriceSyncTask_ContextCancelStopsRound(t *testing.T) {
	db := setupTaskTestDB(t)

	for i := 0; i < 3; i++ {
		shop := model.Shop{Name: "店铺", Url: "https://example.com/p.yaml", State: true}
		if err := db.Create(&shop).Error; err != nil {
			t.Fatalf("创建店铺失败: %v", err)
		}
	}

	importer := &fakeImporter{}
	task := NewPriceSyncTask(repository.NewShopRepository(db), importer)
	task.sleepTime = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	task.syncJob(ctx)

	if len(importer.called) != 1 {
		t.Fatalf("取消后应在第一家店铺同步后退出, 实际同步 %d 家", len(importer.called))
	}
}
