package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/linhai/battswap/internal/domain/swap"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// swapRecordRepository 换电记录仓储实现(MySQL)
// 审计行只增不改,没有任何Update/Delete路径
type swapRecordRepository struct {
	db *gorm.DB
}

// NewSwapRecordRepository 创建换电记录仓储
func NewSwapRecordRepository(db *gorm.DB) swap.Repository {
	return &swapRecordRepository{db: db}
}

// Create 创建换电记录
// 必须在执行器事务内调用(通过context传入事务DB)
func (r *swapRecordRepository) Create(ctx context.Context, rec *swap.Record) error {
	model := toSwapRecordModel(rec)

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建换电记录失败")
	}

	// 回填自增ID
	rec.ID = model.ID
	return nil
}

// FindPrevHandOut 查找某电池严格早于before、为同一车辆作为battery_out
// 发出的最近一条记录;无匹配返回(nil, nil)
// 过滤与排序都落在idx_out_vehicle_time复合索引上
func (r *swapRecordRepository) FindPrevHandOut(ctx context.Context, batteryID, vehicleID uint, before time.Time) (*swap.Record, error) {
	var model SwapRecordModel
	err := r.getDB(ctx).
		Where("battery_out_id = ?", batteryID).
		Where("vehicle_id = ?", vehicleID).
		Where("swapped_at < ?", before).
		Order("swapped_at DESC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询历史换电记录失败")
	}

	return toSwapRecordEntity(&model), nil
}

// ListByVehicle 分页查询车辆的换电历史
func (r *swapRecordRepository) ListByVehicle(ctx context.Context, vehicleID uint, page, pageSize int) ([]*swap.Record, int64, error) {
	return r.list(ctx, "vehicle_id = ?", vehicleID, page, pageSize)
}

// ListByDriver 分页查询司机的换电历史
func (r *swapRecordRepository) ListByDriver(ctx context.Context, driverID uint, page, pageSize int) ([]*swap.Record, int64, error) {
	return r.list(ctx, "driver_id = ?", driverID, page, pageSize)
}

// list 按条件分页查询,按时间降序
func (r *swapRecordRepository) list(ctx context.Context, cond string, arg uint, page, pageSize int) ([]*swap.Record, int64, error) {
	var models []SwapRecordModel
	var total int64

	query := r.getDB(ctx).Model(&SwapRecordModel{}).Where(cond, arg)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询换电记录总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("swapped_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询换电记录列表失败")
	}

	records := make([]*swap.Record, len(models))
	for i := range models {
		records[i] = toSwapRecordEntity(&models[i])
	}
	return records, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toSwapRecordModel 领域实体 → GORM模型
func toSwapRecordModel(rec *swap.Record) *SwapRecordModel {
	return &SwapRecordModel{
		ID:           rec.ID,
		RecordNo:     rec.RecordNo,
		DriverID:     rec.DriverID,
		VehicleID:    rec.VehicleID,
		StationID:    rec.StationID,
		BatteryInID:  rec.BatteryInID,
		BatteryOutID: rec.BatteryOutID,
		SOHIn:        rec.SOHIn,
		SOHOut:       rec.SOHOut,
		SwappedAt:    rec.SwappedAt,
	}
}

// toSwapRecordEntity GORM模型 → 领域实体
func toSwapRecordEntity(model *SwapRecordModel) *swap.Record {
	return &swap.Record{
		ID:           model.ID,
		RecordNo:     model.RecordNo,
		DriverID:     model.DriverID,
		VehicleID:    model.VehicleID,
		StationID:    model.StationID,
		BatteryInID:  model.BatteryInID,
		BatteryOutID: model.BatteryOutID,
		SOHIn:        model.SOHIn,
		SOHOut:       model.SOHOut,
		SwappedAt:    model.SwappedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *swapRecordRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
