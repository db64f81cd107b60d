package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// vehicleRepository 车辆仓储实现(MySQL)
type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository 创建车辆仓储
func NewVehicleRepository(db *gorm.DB) vehicle.Repository {
	return &vehicleRepository{db: db}
}

// FindByID 根据ID查找车辆
func (r *vehicleRepository) FindByID(ctx context.Context, id uint) (*vehicle.Vehicle, error) {
	var model VehicleModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vehicle.ErrVehicleNotFound
		}
		return nil, apperrors.Wrap(err, "查询车辆失败")
	}

	return &vehicle.Vehicle{
		ID:        model.ID,
		DriverID:  model.DriverID,
		ClassID:   model.ClassID,
		PlateNo:   model.PlateNo,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// FindClassByID 根据ID查找车型
func (r *vehicleRepository) FindClassByID(ctx context.Context, id uint) (*vehicle.VehicleClass, error) {
	var model VehicleClassModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vehicle.ErrClassNotFound
		}
		return nil, apperrors.Wrap(err, "查询车型失败")
	}

	return &vehicle.VehicleClass{
		ID:             model.ID,
		Name:           model.Name,
		BatteryClassID: model.BatteryClassID,
		BatterySlots:   model.BatterySlots,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *vehicleRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromCtx(ctx, r.db)
}
