package vehicle

import (
	"context"
)

// Repository 车辆仓储接口
type Repository interface {
	// FindByID 根据ID查找车辆
	FindByID(ctx context.Context, id uint) (*Vehicle, error)

	// FindClassByID 根据ID查找车型
	FindClassByID(ctx context.Context, id uint) (*VehicleClass, error)
}
