package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 测试辅助 ====================

const testPriceList = `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Smartphone Apple iPhone XS Max 512GB (golden)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Screen Size (inches)": 6.5
      "Resolution (pixels)": 2688x1242
      "Internal Memory (GB)": 512
      "Color": golden
  - id: 4672670
    category: 15
    model: apple/case
    name: Leather Case iPhone XS Max
    price: 3000
    price_rrc: 3500
    quantity: 50
    parameters:
      "Color": black
`

func setupPartnerSvc(t *testing.T) (*PartnerService, *model.Shop, *repositoriesBundle) {
	db := setupSvcTestDB(t)

	repos := &repositoriesBundle{
		shop:     repository.NewShopRepository(db),
		category: repository.NewCategoryRepository(db),
		product:  repository.NewProductRepository(db),
		log:      repository.NewImportLogRepository(db),
	}
	svc := NewPartnerService(repos.shop, repos.category, repos.product, repos.log)

	shop := &model.Shop{Name: "Svyaznoy", State: true}
	require.NoError(t, db.Create(shop).Error, "创建店铺失败")

	return svc, shop, repos
}

type repositoriesBundle struct {
	shop     repository.ShopRepository
	category repository.CategoryRepository
	product  repository.ProductRepository
	log      repository.ImportLogRepository
}

// ==================== 价格表导入 ====================

func TestPartnerService_ImportPriceList(t *testing.T) {
	svc, shop, repos := setupPartnerSvc(t)
	ctx := context.Background()

	importLog, err := svc.ImportPriceList(ctx, shop.ID, []byte(testPriceList))
	require.NoError(t, err, "导入失败")

	assert.Equal(t, model.ImportStatusSuccess, importLog.Status)
	assert.Equal(t, 2, importLog.CategoriesCount)
	assert.Equal(t, 2, importLog.ProductsCount)
	assert.Equal(t, 5, importLog.ParametersCount)
	assert.NotEmpty(t, importLog.BatchID)
	assert.NotEmpty(t, importLog.Payload)

	// 货单与参数值落库
	listings, err := repos.product.ListListingsByShop(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	byName := map[string]model.ProductInfo{}
	for _, l := range listings {
		byName[l.Product.Name] = l
	}
	phone := byName["Smartphone Apple iPhone XS Max 512GB (golden)"]
	assert.Equal(t, 14, phone.Quantity)
	assert.Equal(t, int64(11000000), phone.PriceAmount)
	assert.Equal(t, int64(11699000), phone.PriceRrcAmount)
	assert.Len(t, phone.Parameters, 4)

	// 分类挂到店铺
	categories, err := repos.category.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestPartnerService_ReimportReplaces(t *testing.T) {
	svc, shop, repos := setupPartnerSvc(t)
	ctx := context.Background()

	_, err := svc.ImportPriceList(ctx, shop.ID, []byte(testPriceList))
	require.NoError(t, err)

	// 第二份价格表只剩一件货，数量变化
	second := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 4216292
    category: 224
    name: Smartphone Apple iPhone XS Max 512GB (golden)
    price: 105000
    price_rrc: 112000
    quantity: 3
    parameters:
      "Color": golden
`
	_, err = svc.ImportPriceList(ctx, shop.ID, []byte(second))
	require.NoError(t, err)

	listings, err := repos.product.ListListingsByShop(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, listings, 1, "覆盖式导入应当清掉旧货单")
	assert.Equal(t, 3, listings[0].Quantity)
	assert.Equal(t, int64(10500000), listings[0].PriceAmount)
	assert.Len(t, listings[0].Parameters, 1)
}

func TestPartnerService_ImportFailuresAreLogged(t *testing.T) {
	svc, shop, repos := setupPartnerSvc(t)
	ctx := context.Background()

	// 非法 YAML
	_, err := svc.ImportPriceList(ctx, shop.ID, []byte("{{{not yaml"))
	require.Error(t, err)

	// 空货单
	_, err = svc.ImportPriceList(ctx, shop.ID, []byte("shop: Empty\ngoods: []\n"))
	assert.ErrorIs(t, err, ErrEmptyPriceList)

	logs, err := repos.log.ListByShop(ctx, shop.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, model.ImportStatusFailed, l.Status)
		assert.NotEmpty(t, l.ErrorMsg)
	}

	// 不存在的店铺
	_, err = svc.ImportPriceList(ctx, 99999, []byte(testPriceList))
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestPartnerService_RepositoryFailureIsLogged(t *testing.T) {
	db := setupSvcTestDB(t)

	repos := &repositoriesBundle{
		shop:     repository.NewShopRepository(db),
		category: repository.NewCategoryRepository(db),
		product:  repository.NewProductRepository(db),
		log:      repository.NewImportLogRepository(db),
	}
	svc := NewPartnerService(repos.shop, repos.category, repos.product, repos.log)

	shop := &model.Shop{Name: "Svyaznoy", State: true}
	require.NoError(t, db.Create(shop).Error, "创建店铺失败")

	// 解析之后、落库过程中的失败同样要有审计记录
	require.NoError(t, db.Migrator().DropTable(&model.ProductParameter{}))

	_, err := svc.ImportPriceList(context.Background(), shop.ID, []byte(testPriceList))
	require.Error(t, err)

	logs, err := repos.log.ListByShop(context.Background(), shop.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ImportStatusFailed, logs[0].Status)
	assert.NotEmpty(t, logs[0].ErrorMsg)
}

func TestPartnerService_ImportStats(t *testing.T) {
	svc, shop, repos := setupPartnerSvc(t)
	ctx := context.Background()

	_, err := svc.ImportPriceList(ctx, shop.ID, []byte(testPriceList))
	require.NoError(t, err)
	_, _ = svc.ImportPriceList(ctx, shop.ID, []byte("{{{not yaml"))

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	stats, err := repos.log.GetStatsByShop(ctx, shop.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRuns)
	assert.Equal(t, int64(1), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailedCount)
	assert.Equal(t, int64(2), stats.TotalProducts)
}

// ==================== 接单开关 ====================

func TestPartnerService_SetShopState(t *testing.T) {
	svc, shop, repos := setupPartnerSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.SetShopState(ctx, shop.ID, false))

	got, err := repos.shop.GetByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.False(t, got.State)

	accepting, err := repos.shop.ListAccepting(ctx)
	require.NoError(t, err)
	assert.Empty(t, accepting)

	assert.ErrorIs(t, svc.SetShopState(ctx, 99999, true), ErrShopNotFound)
}
