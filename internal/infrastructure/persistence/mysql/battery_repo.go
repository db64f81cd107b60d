package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/station"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// batteryRepository 电池仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/battery/repository.go定义的接口
// 2. 位置写入(挂车/入仓)把vehicle_id和slot_id放在同一条UPDATE里
//    配对更新,位置互斥不变量在持久层不可能被打破
// 3. 选仓查询JOIN仓位表过滤locked仓位,排序放在SQL里保证确定性
type batteryRepository struct {
	db *gorm.DB
}

// NewBatteryRepository 创建电池仓储
func NewBatteryRepository(db *gorm.DB) battery.Repository {
	return &batteryRepository{db: db}
}

// FindByID 根据ID查找电池
func (r *batteryRepository) FindByID(ctx context.Context, id uint) (*battery.Battery, error) {
	var model BatteryModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, battery.ErrBatteryNotFound
		}
		return nil, apperrors.Wrap(err, "查询电池失败")
	}

	return toBatteryEntity(&model), nil
}

// FindBySerial 根据序列号查找电池
func (r *batteryRepository) FindBySerial(ctx context.Context, serialNo string) (*battery.Battery, error) {
	var model BatteryModel
	err := r.getDB(ctx).Where("serial_no = ?", serialNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, battery.ErrBatteryNotFound
		}
		return nil, apperrors.Wrap(err, "查询电池失败")
	}

	return toBatteryEntity(&model), nil
}

// FindByVehicle 查询车辆当前携带的全部电池
func (r *batteryRepository) FindByVehicle(ctx context.Context, vehicleID uint) ([]*battery.Battery, error) {
	var models []BatteryModel
	err := r.getDB(ctx).Where("vehicle_id = ?", vehicleID).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询车辆电池失败")
	}

	batteries := make([]*battery.Battery, len(models))
	for i := range models {
		batteries[i] = toBatteryEntity(&models[i])
	}
	return batteries, nil
}

// FindEligibleAtStation 查询站点内可出仓的电池
// 查询条件(见domain/battery/repository.go):
// - 电池在本站电柜的仓位中(JOIN cabinet_slots、cabinets)
// - 仓位状态不是locked(已被预约)也不是faulty
// - 型号匹配、SOC>=阈值、无故障标记
// 排序:SOC降序,仓位ID升序(平局时保证确定性)
// lock=true时加FOR UPDATE,供执行器在事务内复选,
// 防止两个并发换电选中同一块电池(选中即锁行)
func (r *batteryRepository) FindEligibleAtStation(ctx context.Context, stationID, classID uint, limit int, lock bool) ([]*battery.Battery, error) {
	db := r.getDB(ctx)

	query := db.Model(&BatteryModel{}).
		Joins("JOIN cabinet_slots ON cabinet_slots.id = batteries.slot_id").
		Joins("JOIN cabinets ON cabinets.id = cabinet_slots.cabinet_id").
		Where("cabinets.station_id = ?", stationID).
		Where("cabinet_slots.status IN ?", []string{
			string(station.SlotStatusCharged),
			string(station.SlotStatusCharging),
		}).
		Where("batteries.class_id = ?", classID).
		Where("batteries.soc >= ?", battery.EligibleSOCMin).
		Where("batteries.faulty = ?", false).
		Order("batteries.soc DESC, batteries.slot_id ASC").
		Limit(limit)

	if lock {
		// SELECT ... FOR UPDATE:锁电池行(含JOIN到的仓位行)
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var models []BatteryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询可出仓电池失败")
	}

	batteries := make([]*battery.Battery, len(models))
	for i := range models {
		batteries[i] = toBatteryEntity(&models[i])
	}
	return batteries, nil
}

// LockByID 悲观锁查询电池
// SELECT FOR UPDATE锁定行,必须在事务内调用
func (r *batteryRepository) LockByID(ctx context.Context, id uint) (*battery.Battery, error) {
	var model BatteryModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, battery.ErrBatteryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定电池失败")
	}

	return toBatteryEntity(&model), nil
}

// AttachToVehicle 持久化"电池挂车"
// vehicle_id与slot_id在一条UPDATE里配对更新,保证位置互斥
func (r *batteryRepository) AttachToVehicle(ctx context.Context, batteryID, vehicleID uint) error {
	result := r.getDB(ctx).Model(&BatteryModel{}).
		Where("id = ?", batteryID).
		Updates(map[string]interface{}{
			"vehicle_id": vehicleID,
			"slot_id":    nil,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "电池挂车失败")
	}
	if result.RowsAffected == 0 {
		return battery.ErrBatteryNotFound
	}
	return nil
}

// PlaceInSlot 持久化"电池入仓"
func (r *batteryRepository) PlaceInSlot(ctx context.Context, batteryID, slotID uint) error {
	result := r.getDB(ctx).Model(&BatteryModel{}).
		Where("id = ?", batteryID).
		Updates(map[string]interface{}{
			"slot_id":    slotID,
			"vehicle_id": nil,
		})

	if result.Error != nil {
		// slot_id唯一索引冲突说明目标仓位已被其他电池占用
		if isDuplicateError(result.Error) {
			return station.ErrSlotNotEmpty
		}
		return apperrors.Wrap(result.Error, "电池入仓失败")
	}
	if result.RowsAffected == 0 {
		return battery.ErrBatteryNotFound
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBatteryEntity GORM模型 → 领域实体
func toBatteryEntity(model *BatteryModel) *battery.Battery {
	return &battery.Battery{
		ID:        model.ID,
		SerialNo:  model.SerialNo,
		ClassID:   model.ClassID,
		VehicleID: model.VehicleID,
		SlotID:    model.SlotID,
		SOC:       model.SOC,
		SOH:       model.SOH,
		Faulty:    model.Faulty,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *batteryRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
