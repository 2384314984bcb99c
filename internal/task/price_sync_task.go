package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 外部依赖接口 ====================

// PriceListImporter 价格表导入接口
type PriceListImporter interface {
	ImportFromURL(ctx context.Context, shopID int64, url string) (*model.ImportLog, error)
}

// ==================== PriceSyncTask 价格表同步任务 ====================

// PriceSyncTask 定时重导接单中店铺的价格表
// 只处理配置了价格表链接的店铺，单店失败不影响后续店铺
type PriceSyncTask struct {
	shopRepo repository.ShopRepository
	importer PriceListImporter
	cron     *cron.Cron

	sleepTime time.Duration
}

// NewPriceSyncTask 创建价格表同步任务
func NewPriceSyncTask(shopRepo repository.ShopRepository, importer PriceListImporter) *PriceSyncTask {
	return &PriceSyncTask{
		shopRepo:  shopRepo,
		importer:  importer,
		cron:      cron.New(cron.WithSeconds()),
		sleepTime: 500 * time.Millisecond,
	}
}

// Start 启动定时任务
func (t *PriceSyncTask) Start() {
	// 价格表同步（每6小时）
	_, err := t.cron.AddFunc("0 0 */6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		t.syncJob(ctx)
	})
	if err != nil {
		log.Fatalf("[PriceSyncTask] 无法启动价格表同步任务: %v", err)
	}

	t.cron.Start()
	log.Println("[PriceSyncTask] 价格表同步任务已启动")
}

// Stop 停止定时任务
func (t *PriceSyncTask) Stop() {
	t.cron.Stop()
	log.Println("[PriceSyncTask] 已停止")
}

// syncJob 逐店铺重新导入价格表
func (t *PriceSyncTask) syncJob(ctx context.Context) {
	shops, err := t.shopRepo.ListAccepting(ctx)
	if err != nil {
		log.Printf("[PriceSyncTask] 获取接单店铺失败: %v", err)
		return
	}

	synced, failed := 0, 0
	for _, shop := range SyncableShops(shops) {
		if _, err := t.importer.ImportFromURL(ctx, shop.ID, shop.Url); err != nil {
			// 失败已写入导入日志，这里只记录并继续
			log.Printf("[PriceSyncTask] 店铺 %d (%s) 同步失败: %v", shop.ID, shop.Name, err)
			failed++
		} else {
			synced++
		}

		select {
		case <-ctx.Done():
			log.Printf("[PriceSyncTask] 同步中断: %v", ctx.Err())
			return
		case <-time.After(t.sleepTime):
		}
	}

	log.Printf("[PriceSyncTask] 本轮同步完成: 成功 %d 失败 %d", synced, failed)
}

// SyncableShops 过滤出可同步的店铺（配置了价格表链接）
func SyncableShops(shops []model.Shop) []model.Shop {
	out := make([]model.Shop, 0, len(shops))
	for _, shop := range shops {
		if shop.Url != "" {
			out = append(out, shop)
		}
	}
	return out
}
