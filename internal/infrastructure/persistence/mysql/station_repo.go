package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linhai/battswap/internal/domain/station"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// stationRepository 站点/仓位仓储实现(MySQL)
// 设计说明:
// 1. 仓位查询JOIN电柜表回填StationID,领域层拿到的仓位自带归属站点
// 2. 批量锁仓位按ID升序,固定加锁顺序避免并发换电互相死锁
type stationRepository struct {
	db *gorm.DB
}

// NewStationRepository 创建站点仓储
func NewStationRepository(db *gorm.DB) station.Repository {
	return &stationRepository{db: db}
}

// FindStationByID 根据ID查找站点
func (r *stationRepository) FindStationByID(ctx context.Context, id uint) (*station.Station, error) {
	var model StationModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, station.ErrStationNotFound
		}
		return nil, apperrors.Wrap(err, "查询站点失败")
	}

	return &station.Station{
		ID:        model.ID,
		Name:      model.Name,
		Address:   model.Address,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// slotRow 仓位查询行(JOIN回填station_id)
type slotRow struct {
	CabinetSlotModel
	StationID uint
}

// slotQuery 仓位基础查询:JOIN电柜表取归属站点
func (r *stationRepository) slotQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Model(&CabinetSlotModel{}).
		Select("cabinet_slots.*, cabinets.station_id AS station_id").
		Joins("JOIN cabinets ON cabinets.id = cabinet_slots.cabinet_id")
}

// FindSlotByID 根据ID查找仓位(含归属站点)
func (r *stationRepository) FindSlotByID(ctx context.Context, id uint) (*station.CabinetSlot, error) {
	var row slotRow
	err := r.slotQuery(ctx).Where("cabinet_slots.id = ?", id).Take(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, station.ErrSlotNotFound
		}
		return nil, apperrors.Wrap(err, "查询仓位失败")
	}

	return toSlotEntity(&row), nil
}

// LockSlotByID 悲观锁查询仓位
// SELECT FOR UPDATE锁定仓位行,必须在事务内调用
func (r *stationRepository) LockSlotByID(ctx context.Context, id uint) (*station.CabinetSlot, error) {
	var row slotRow
	err := r.slotQuery(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "cabinet_slots"}}).
		Where("cabinet_slots.id = ?", id).Take(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, station.ErrSlotNotFound
		}
		return nil, apperrors.Wrap(err, "锁定仓位失败")
	}

	return toSlotEntity(&row), nil
}

// LockSlotsByIDs 批量悲观锁查询仓位,按ID升序加锁
func (r *stationRepository) LockSlotsByIDs(ctx context.Context, ids []uint) ([]*station.CabinetSlot, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []slotRow
	err := r.slotQuery(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "cabinet_slots"}}).
		Where("cabinet_slots.id IN ?", ids).
		Order("cabinet_slots.id ASC").
		Find(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "批量锁定仓位失败")
	}

	slots := make([]*station.CabinetSlot, len(rows))
	for i := range rows {
		slots[i] = toSlotEntity(&rows[i])
	}
	return slots, nil
}

// UpdateSlotStatus 更新仓位状态
func (r *stationRepository) UpdateSlotStatus(ctx context.Context, slotID uint, to station.SlotStatus) error {
	result := r.getDB(ctx).Model(&CabinetSlotModel{}).
		Where("id = ?", slotID).
		Update("status", string(to))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新仓位状态失败")
	}
	if result.RowsAffected == 0 {
		return station.ErrSlotNotFound
	}
	return nil
}

// CountResidentBatteries 统计站点内在仓电池总数
// 对账/守恒校验用:一次换电前后站点在仓电池数应当不变
func (r *stationRepository) CountResidentBatteries(ctx context.Context, stationID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&BatteryModel{}).
		Joins("JOIN cabinet_slots ON cabinet_slots.id = batteries.slot_id").
		Joins("JOIN cabinets ON cabinets.id = cabinet_slots.cabinet_id").
		Where("cabinets.station_id = ?", stationID).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计在仓电池失败")
	}
	return count, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toSlotEntity 查询行 → 领域实体
func toSlotEntity(row *slotRow) *station.CabinetSlot {
	return &station.CabinetSlot{
		ID:        row.ID,
		CabinetID: row.CabinetID,
		StationID: row.StationID,
		Number:    row.Number,
		Status:    station.SlotStatus(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *stationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
