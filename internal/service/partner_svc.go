package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"orders_backend_v1_202606/internal/model"
	"orders_backend_v1_202606/internal/repository"
)

// ==================== 服务错误 ====================

var (
	ErrShopNotFound   = errors.New("店铺不存在")
	ErrEmptyPriceList = errors.New("价格表为空")
)

// ==================== 价格表格式 ====================

// PriceList 店铺价格表（YAML）
type PriceList struct {
	Shop       string              `yaml:"shop"`
	Categories []PriceListCategory `yaml:"categories"`
	Goods      []PriceListGood     `yaml:"goods"`
}

// PriceListCategory 价格表中的分类条目
type PriceListCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// PriceListGood 价格表中的货品条目
// Parameters 的值可能是字符串或数字，统一按字符串落库
type PriceListGood struct {
	ID         int64          `yaml:"id"`
	Category   int64          `yaml:"category"`
	Model      string         `yaml:"model"`
	Name       string         `yaml:"name"`
	Price      float64        `yaml:"price"`
	PriceRrc   float64        `yaml:"price_rrc"`
	Quantity   int            `yaml:"quantity"`
	Parameters map[string]any `yaml:"parameters"`
}

// ==================== PartnerService 合作店铺服务 ====================

// PartnerService 店铺侧操作：价格表导入、接单开关
type PartnerService struct {
	shopRepo     repository.ShopRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logRepo      repository.ImportLogRepository

	client *resty.Client
}

// NewPartnerService 创建合作店铺服务
func NewPartnerService(
	shopRepo repository.ShopRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	logRepo repository.ImportLogRepository,
) *PartnerService {
	// 设置超时和重试，防止网络波动
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	return &PartnerService{
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logRepo:      logRepo,
		client:       client,
	}
}

// ==================== 价格表导入 ====================

// ImportPriceList 从 YAML 载荷导入店铺货单
// 覆盖式导入：先清空店铺现有货单，再按价格表重建；每次导入落一条日志
func (s *PartnerService) ImportPriceList(ctx context.Context, shopID int64, payload []byte) (*model.ImportLog, error) {
	return s.importPriceList(ctx, shopID, payload, model.ImportSourcePayload, "")
}

// ImportFromURL 拉取远端 YAML 价格表并导入
func (s *PartnerService) ImportFromURL(ctx context.Context, shopID int64, url string) (*model.ImportLog, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return s.failedLog(ctx, shopID, model.ImportSourceURL, url, nil,
			fmt.Errorf("拉取价格表失败: %w", err))
	}
	if resp.StatusCode() != 200 {
		return s.failedLog(ctx, shopID, model.ImportSourceURL, url, nil,
			fmt.Errorf("拉取价格表失败: 状态码 %d", resp.StatusCode()))
	}
	return s.importPriceList(ctx, shopID, resp.Body(), model.ImportSourceURL, url)
}

// importPriceList 解析并落库（公共路径）
func (s *PartnerService) importPriceList(ctx context.Context, shopID int64, payload []byte, source, url string) (*model.ImportLog, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	var list PriceList
	if err := yaml.Unmarshal(payload, &list); err != nil {
		return s.failedLog(ctx, shopID, source, url, nil,
			fmt.Errorf("价格表解析失败: %w", err))
	}
	if len(list.Goods) == 0 {
		return s.failedLog(ctx, shopID, source, url, &list, ErrEmptyPriceList)
	}

	// 分类：价格表里的外部 ID 只在文件内有意义，按名称归一
	categoryByExtID := make(map[int64]*model.Category, len(list.Categories))
	for _, c := range list.Categories {
		category, err := s.categoryRepo.GetOrCreateByName(ctx, c.Name)
		if err != nil {
			return s.failedLog(ctx, shopID, source, url, &list,
				fmt.Errorf("写入分类失败: %w", err))
		}
		if err := s.shopRepo.AttachCategory(ctx, shop, category); err != nil {
			return s.failedLog(ctx, shopID, source, url, &list,
				fmt.Errorf("关联分类失败: %w", err))
		}
		categoryByExtID[c.ID] = category
	}

	// 覆盖式导入：旧货单（含参数值）整体清掉
	if err := s.productRepo.DeleteListingsByShop(ctx, shopID); err != nil {
		return s.failedLog(ctx, shopID, source, url, &list,
			fmt.Errorf("清理旧货单失败: %w", err))
	}

	paramCount := 0
	for _, good := range list.Goods {
		var categoryID *int64
		if category, ok := categoryByExtID[good.Category]; ok {
			categoryID = &category.ID
		}

		product, err := s.productRepo.GetOrCreateProduct(ctx, good.Name, categoryID)
		if err != nil {
			return s.failedLog(ctx, shopID, source, url, &list,
				fmt.Errorf("写入商品失败: %w", err))
		}

		info := &model.ProductInfo{
			ProductID:      product.ID,
			ShopID:         shopID,
			Quantity:       good.Quantity,
			PriceAmount:    toMinorUnits(good.Price),
			PriceRrcAmount: toMinorUnits(good.PriceRrc),
		}
		if err := s.productRepo.UpsertListing(ctx, info); err != nil {
			return s.failedLog(ctx, shopID, source, url, &list,
				fmt.Errorf("写入货单失败: %w", err))
		}
		if info.ID == 0 {
			// 冲突更新时主键不回填，重查一次
			existing, err := s.productRepo.GetListing(ctx, shopID, product.ID)
			if err != nil {
				return s.failedLog(ctx, shopID, source, url, &list,
					fmt.Errorf("回查货单失败: %w", err))
			}
			info = existing
		}

		params := make([]model.ProductParameter, 0, len(good.Parameters))
		for name, value := range good.Parameters {
			parameter, err := s.productRepo.GetOrCreateParameter(ctx, name)
			if err != nil {
				return s.failedLog(ctx, shopID, source, url, &list,
					fmt.Errorf("写入参数失败: %w", err))
			}
			params = append(params, model.ProductParameter{
				ParameterID: parameter.ID,
				Value:       fmt.Sprint(value),
			})
		}
		if err := s.productRepo.ReplaceListingParameters(ctx, info.ID, params); err != nil {
			return s.failedLog(ctx, shopID, source, url, &list,
				fmt.Errorf("写入参数失败: %w", err))
		}
		paramCount += len(params)
	}

	importLog := &model.ImportLog{
		ShopID:          shopID,
		BatchID:         uuid.NewString(),
		Source:          source,
		Url:             url,
		CategoriesCount: len(list.Categories),
		ProductsCount:   len(list.Goods),
		ParametersCount: paramCount,
		Status:          model.ImportStatusSuccess,
		Payload:         marshalPayload(&list),
	}
	if err := s.logRepo.Create(ctx, importLog); err != nil {
		return nil, err
	}

	log.Printf("[PartnerService] 店铺 %d 价格表导入完成: %d 分类 %d 货品 %d 参数",
		shopID, len(list.Categories), len(list.Goods), paramCount)
	return importLog, nil
}

// failedLog 记录失败的导入并返回原始错误
func (s *PartnerService) failedLog(ctx context.Context, shopID int64, source, url string, list *PriceList, cause error) (*model.ImportLog, error) {
	importLog := &model.ImportLog{
		ShopID:   shopID,
		BatchID:  uuid.NewString(),
		Source:   source,
		Url:      url,
		Status:   model.ImportStatusFailed,
		ErrorMsg: cause.Error(),
		Payload:  marshalPayload(list),
	}
	if err := s.logRepo.Create(ctx, importLog); err != nil {
		log.Printf("[PartnerService] 写入失败日志出错: %v", err)
	}
	return importLog, cause
}

// ==================== 接单开关 ====================

// SetShopState 切换店铺接单状态
func (s *PartnerService) SetShopState(ctx context.Context, shopID int64, accepting bool) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	if shop == nil {
		return ErrShopNotFound
	}
	return s.shopRepo.UpdateState(ctx, shopID, accepting)
}

// ==================== 工具 ====================

// toMinorUnits 元转分（两位小数定点）
func toMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

// marshalPayload 解析后的价格表以 JSON 形式留档
func marshalPayload(list *PriceList) datatypes.JSON {
	if list == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
