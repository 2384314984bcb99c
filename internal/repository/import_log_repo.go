package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"orders_backend_v1_202606/internal/model"
)

// ==================== 仓储接口 ====================

// ImportLogRepository 价格表导入日志仓储接口
type ImportLogRepository interface {
	Create(ctx context.Context, log *model.ImportLog) error
	GetByID(ctx context.Context, id int64) (*model.ImportLog, error)
	ListByShop(ctx context.Context, shopID int64, limit int) ([]model.ImportLog, error)

	// 统计查询
	GetStatsByShop(ctx context.Context, shopID int64, startTime, endTime time.Time) (*ImportStats, error)
}

// ==================== 统计结构 ====================

// ImportStats 导入统计
type ImportStats struct {
	TotalRuns     int64 `json:"total_runs"`
	SuccessCount  int64 `json:"success_count"`
	FailedCount   int64 `json:"failed_count"`
	TotalProducts int64 `json:"total_products"`
}

// ==================== 仓储实现 ====================

type importLogRepo struct {
	db *gorm.DB
}

// NewImportLogRepository 创建价格表导入日志仓储
func NewImportLogRepository(db *gorm.DB) ImportLogRepository {
	return &importLogRepo{db: db}
}

// Create 写入导入日志
func (r *importLogRepo) Create(ctx context.Context, log *model.ImportLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByID 根据 ID 获取导入日志
func (r *importLogRepo) GetByID(ctx context.Context, id int64) (*model.ImportLog, error) {
	var log model.ImportLog
	err := r.db.WithContext(ctx).First(&log, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &log, err
}

// ListByShop 店铺最近的导入记录
func (r *importLogRepo) ListByShop(ctx context.Context, shopID int64, limit int) ([]model.ImportLog, error) {
	if limit < 1 {
		limit = 20
	}
	var logs []model.ImportLog
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetStatsByShop 店铺在时间段内的导入统计
func (r *importLogRepo) GetStatsByShop(ctx context.Context, shopID int64, startTime, endTime time.Time) (*ImportStats, error) {
	stats := &ImportStats{}

	query := r.db.WithContext(ctx).
		Model(&model.ImportLog{}).
		Where("shop_id = ? AND created_at BETWEEN ? AND ?", shopID, startTime, endTime)

	if err := query.Count(&stats.TotalRuns).Error; err != nil {
		return nil, err
	}

	if err := query.
		Select("COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)", model.ImportStatusSuccess).
		Scan(&stats.SuccessCount).Error; err != nil {
		return nil, err
	}
	stats.FailedCount = stats.TotalRuns - stats.SuccessCount

	if err := r.db.WithContext(ctx).
		Model(&model.ImportLog{}).
		Where("shop_id = ? AND created_at BETWEEN ? AND ? AND status = ?",
			shopID, startTime, endTime, model.ImportStatusSuccess).
		Select("COALESCE(SUM(products_count), 0)").
		Scan(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
